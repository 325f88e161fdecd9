/*
Copyright 2026 Google LLC

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
package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Document is the analysis returned to callers. Every list is non-nil once
// the document has been through ParseDocument.
type Document struct {
	ArtistOrigin        ArtistOrigin `json:"artist_origin" yaml:"artist_origin"`
	GenreInfo           GenreInfo    `json:"genre_info" yaml:"genre_info"`
	GenreEvolution      []string     `json:"genre_evolution" yaml:"genre_evolution"`
	GrowthIndicators    []string     `json:"growth_indicators" yaml:"growth_indicators"`
	MarketPosition      []string     `json:"market_position" yaml:"market_position"`
	Genres              []string     `json:"genres" yaml:"genres"`
	SceneTypes          []string     `json:"sceneTypes" yaml:"sceneTypes"`
	PotentialGenres     []string     `json:"potentialGenres" yaml:"potentialGenres"`
	PlacementStrategies []string     `json:"placementStrategies" yaml:"placementStrategies"`
	BestUses            []string     `json:"best_uses" yaml:"best_uses"`
	Impact              []string     `json:"impact" yaml:"impact"`
	SoundElements       []string     `json:"sound_elements" yaml:"sound_elements"`
	TechnicalDetails    []string     `json:"technical_details" yaml:"technical_details"`
}

type ArtistOrigin struct {
	Country string `json:"country" yaml:"country"`
}

type GenreInfo struct {
	Genre         string  `json:"genre" yaml:"genre"`
	Score         float64 `json:"score" yaml:"score"`
	Compatibility string  `json:"compatibility" yaml:"compatibility"`
}

// Compatibility levels accepted in genre_info.compatibility.
var CompatibilityLevels = []string{"LOW", "MEDIUM", "HIGH", "VERY HIGH"}

const (
	fieldArtistOrigin = "artist_origin"
	fieldGenreInfo    = "genre_info"
)

// lists returns pointers to the list fields keyed by their JSON names, in
// schema order.
func (d *Document) lists() []listField {
	return []listField{
		{"genre_evolution", &d.GenreEvolution},
		{"growth_indicators", &d.GrowthIndicators},
		{"market_position", &d.MarketPosition},
		{"genres", &d.Genres},
		{"sceneTypes", &d.SceneTypes},
		{"potentialGenres", &d.PotentialGenres},
		{"placementStrategies", &d.PlacementStrategies},
		{"best_uses", &d.BestUses},
		{"impact", &d.Impact},
		{"sound_elements", &d.SoundElements},
		{"technical_details", &d.TechnicalDetails},
	}
}

type listField struct {
	name string
	dst  *[]string
}

// List returns the list field with the given JSON name, or nil.
func (d *Document) List(name string) []string {
	for _, f := range d.lists() {
		if f.name == name {
			return *f.dst
		}
	}
	return nil
}

// ListFieldNames are the JSON names of every list-valued field.
func ListFieldNames() []string {
	var d Document
	var names []string
	for _, f := range d.lists() {
		names = append(names, f.name)
	}
	return names
}

// NormalizeCompatibility upper-cases a compatibility level and returns
// false if it isn't one of CompatibilityLevels.
func NormalizeCompatibility(level string) (string, bool) {
	level = strings.ToUpper(strings.TrimSpace(level))
	level = strings.Join(strings.FieldsFunc(level, func(r rune) bool { return r == ' ' || r == '_' || r == '-' }), " ")
	for _, l := range CompatibilityLevels {
		if level == l {
			return l, true
		}
	}
	return "", false
}

// ParseDocument decodes and validates raw model output. It returns a
// *SchemaDecodeError if raw isn't JSON and a *SchemaShapeError if it is JSON
// but doesn't match the document schema.
func ParseDocument(raw string) (*Document, error) {
	body := []byte(stripCodeFence(raw))
	if !json.Valid(body) {
		var syntaxErr error = errors.New("invalid JSON")
		var probe any
		if err := json.Unmarshal(body, &probe); err != nil {
			syntaxErr = err
		}
		return nil, &SchemaDecodeError{Raw: raw, Err: syntaxErr}
	}
	if len(body) == 0 || body[0] != '{' {
		return nil, &SchemaShapeError{Raw: raw, Problems: []string{"top level must be a JSON object"}}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &SchemaDecodeError{Raw: raw, Err: err}
	}

	doc := &Document{}
	dups, err := duplicateKeys(body)
	if err != nil {
		return nil, &SchemaDecodeError{Raw: raw, Err: err}
	}
	var problems []string
	for _, k := range dups {
		problems = append(problems, fmt.Sprintf("duplicate field %q", k))
	}

	known := map[string]bool{fieldArtistOrigin: true, fieldGenreInfo: true}
	for _, f := range doc.lists() {
		known[f.name] = true
	}
	var unexpected []string
	for k := range top {
		if !known[k] {
			unexpected = append(unexpected, k)
		}
	}
	sort.Strings(unexpected)
	for _, k := range unexpected {
		problems = append(problems, fmt.Sprintf("unexpected field %q", k))
	}

	if msg, ok := top[fieldGenreInfo]; ok {
		info, infoProblems := parseGenreInfo(msg)
		doc.GenreInfo = info
		problems = append(problems, infoProblems...)
	} else {
		problems = append(problems, fmt.Sprintf("missing field %q", fieldGenreInfo))
	}

	for _, f := range doc.lists() {
		msg, ok := top[f.name]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing field %q", f.name))
			continue
		}
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 || msg[0] != '[' {
			problems = append(problems, fmt.Sprintf("field %q must be an array", f.name))
			continue
		}
		items, err := stringItems(msg)
		if err != nil {
			problems = append(problems, fmt.Sprintf("field %q must be an array of strings: %v", f.name, err))
			continue
		}
		*f.dst = items
	}

	if len(problems) > 0 {
		return nil, &SchemaShapeError{Raw: raw, Problems: problems}
	}
	return doc, nil
}

func parseGenreInfo(msg json.RawMessage) (GenreInfo, []string) {
	var info GenreInfo
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || msg[0] != '{' {
		return info, []string{fmt.Sprintf("field %q must be an object", fieldGenreInfo)}
	}

	var in map[string]json.RawMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		return info, []string{fmt.Sprintf("field %q: %v", fieldGenreInfo, err)}
	}

	var problems []string
	var unexpected []string
	for k := range in {
		if k != "genre" && k != "score" && k != "compatibility" {
			unexpected = append(unexpected, k)
		}
	}
	sort.Strings(unexpected)
	for _, k := range unexpected {
		problems = append(problems, fmt.Sprintf("field %q: unexpected key %q", fieldGenreInfo, k))
	}

	if genre, ok, err := stringValue(in["genre"]); err != nil {
		problems = append(problems, "genre_info.genre must be a string")
	} else if !ok || strings.TrimSpace(genre) == "" {
		problems = append(problems, "genre_info.genre is required")
	} else {
		info.Genre = strings.TrimSpace(genre)
	}

	if score, ok, err := numberValue(in["score"]); err != nil {
		problems = append(problems, "genre_info.score must be a number")
	} else if !ok {
		problems = append(problems, "genre_info.score is required")
	} else if score < 0 || score > 100 {
		problems = append(problems, fmt.Sprintf("genre_info.score %v is outside 0-100", score))
	} else {
		info.Score = score
	}

	if compat, ok, err := stringValue(in["compatibility"]); err != nil {
		problems = append(problems, "genre_info.compatibility must be a string")
	} else if !ok {
		problems = append(problems, "genre_info.compatibility is required")
	} else if level, valid := NormalizeCompatibility(compat); !valid {
		problems = append(problems, fmt.Sprintf("genre_info.compatibility %q is not one of %s", compat, strings.Join(CompatibilityLevels, ", ")))
	} else {
		info.Compatibility = level
	}
	return info, problems
}

// stringValue decodes a JSON string. ok is false when msg is absent or null.
func stringValue(msg json.RawMessage) (value string, ok bool, err error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return "", false, nil
	}
	if msg[0] != '"' {
		return "", false, errors.New("not a string")
	}
	if err := json.Unmarshal(msg, &value); err != nil {
		return "", false, err
	}
	return value, true, nil
}

// numberValue decodes a JSON number. ok is false when msg is absent or null.
func numberValue(msg json.RawMessage) (value float64, ok bool, err error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return 0, false, nil
	}
	if c := msg[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false, errors.New("not a number")
	}
	if err := json.Unmarshal(msg, &value); err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// stringItems decodes a JSON array whose elements must all be strings.
func stringItems(msg json.RawMessage) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	items := make([]string, 0, len(raw))
	for i, elem := range raw {
		item, ok, err := stringValue(elem)
		if err != nil || !ok {
			return nil, fmt.Errorf("element %d is %s", i, bytes.TrimSpace(elem))
		}
		items = append(items, item)
	}
	return items, nil
}

// duplicateKeys reports every object key that appears more than once in its
// object, as a dotted path.
func duplicateKeys(body []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var dups []string
	var walk func(path string) error
	walk = func(path string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			return nil
		}
		switch delim {
		case '{':
			seen := map[string]bool{}
			for dec.More() {
				tok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := tok.(string)
				name := key
				if path != "" {
					name = path + "." + key
				}
				if seen[key] {
					dups = append(dups, name)
				}
				seen[key] = true
				if err := walk(name); err != nil {
					return err
				}
			}
		case '[':
			for dec.More() {
				if err := walk(path); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		_, err = dec.Token()
		return err
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return dups, nil
}

// stripCodeFence removes surrounding whitespace and a single enclosing
// Markdown code fence.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// Drop the info string, e.g. ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

// Normalize makes the pipeline's own values authoritative: the origin always
// comes from id, and any caller-supplied genre, score or compatibility
// replaces whatever the model produced.
func (d *Document) Normalize(id ResolvedIdentity, o Overrides) {
	d.ArtistOrigin = ArtistOrigin{Country: id.OriginCountry}
	if strings.TrimSpace(o.Genre) != "" {
		d.GenreInfo.Genre = id.Genre
	}
	if o.ProjectedGrowth != 0 {
		d.GenreInfo.Score = float64(o.ProjectedGrowth)
	}
	if level, ok := NormalizeCompatibility(o.GenreCompatibility); ok {
		d.GenreInfo.Compatibility = level
	}
}
