// Package prompt renders the analysis prompts sent to the language model.
//
// Templates are plain text with {{field}} placeholders drawn from a closed
// set of Fields. Rendering replaces every placeholder in a single pass, so
// substituted values are never scanned for further placeholders, and it
// fails rather than send a prompt with a placeholder left in it.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

type Field string

const (
	FieldArtistName         Field = "artist_name"
	FieldGenre              Field = "genre"
	FieldOriginCountry      Field = "origin_country"
	FieldArtistMetadata     Field = "artist_metadata"
	FieldListeningStats     Field = "listening_stats"
	FieldProjectedGrowth    Field = "projected_growth"
	FieldGenreCompatibility Field = "genre_compatibility"
)

var knownFields = map[Field]bool{
	FieldArtistName:         true,
	FieldGenre:              true,
	FieldOriginCountry:      true,
	FieldArtistMetadata:     true,
	FieldListeningStats:     true,
	FieldProjectedGrowth:    true,
	FieldGenreCompatibility: true,
}

var placeholderRE = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Values maps fields to their rendered text.
type Values map[Field]string

// UnresolvedPlaceholderError is returned when a template uses a field that
// has no value.
type UnresolvedPlaceholderError struct {
	Template string
	Field    Field
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("template %q: no value for placeholder {{%s}}", e.Template, e.Field)
}

type Template struct {
	name   string
	body   string
	fields []Field
}

// Parse checks that every placeholder in body names a known field.
func Parse(name, body string) (*Template, error) {
	matches := placeholderRE.FindAllStringSubmatch(body, -1)
	if strings.Count(body, "{{") != len(matches) {
		return nil, fmt.Errorf("template %q: malformed placeholder", name)
	}

	t := &Template{name: name, body: body}
	seen := make(map[Field]bool)
	for _, m := range matches {
		f := Field(m[1])
		if !knownFields[f] {
			return nil, fmt.Errorf("template %q: unknown placeholder {{%s}}", name, f)
		}
		if !seen[f] {
			seen[f] = true
			t.fields = append(t.fields, f)
		}
	}
	return t, nil
}

func (t *Template) Name() string { return t.name }

// Fields returns the fields the template uses, in order of first use.
func (t *Template) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// Render substitutes values into the template.
func (t *Template) Render(v Values) (string, error) {
	for _, f := range t.fields {
		if _, ok := v[f]; !ok {
			return "", &UnresolvedPlaceholderError{Template: t.name, Field: f}
		}
	}
	return placeholderRE.ReplaceAllStringFunc(t.body, func(token string) string {
		return v[Field(placeholderRE.FindStringSubmatch(token)[1])]
	}), nil
}
