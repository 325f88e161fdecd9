/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/beetseer/internal/analysis"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var formats = []string{formatTable, formatJSON, formatYAML}

func validFormat(f string) bool {
	for _, v := range formats {
		if f == v {
			return true
		}
	}
	return false
}

func renderResponse(w io.Writer, resp *analysis.Response, format string) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return encoder.Close()
	case formatTable, "":
		return renderTable(w, resp)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// documentRows flattens a response into field/value rows. List fields become
// one value per line.
func documentRows(resp *analysis.Response) [][]string {
	doc := resp.Analysis
	rows := [][]string{
		{"Artist", resp.ArtistName},
	}
	if doc == nil {
		return rows
	}
	rows = append(rows,
		[]string{"Origin", doc.ArtistOrigin.Country},
		[]string{"Genre", doc.GenreInfo.Genre},
		[]string{"Score", fmt.Sprintf("%g", doc.GenreInfo.Score)},
		[]string{"Compatibility", doc.GenreInfo.Compatibility},
	)
	for _, name := range analysis.ListFieldNames() {
		rows = append(rows, []string{name, strings.Join(doc.List(name), "\n")})
	}
	return rows
}

func renderTable(w io.Writer, resp *analysis.Response) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	for _, row := range documentRows(resp) {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}
