package prompt

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ademuri/beetseer/internal/analysis"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Token budgets. Prompts that include listening statistics ask for more
// evidence-backed commentary and get a larger budget.
const (
	SingleSourceMaxTokens = 1500
	DualSourceMaxTokens   = 2500
)

type Variant string

const (
	// VariantCold asks the model to infer score and compatibility.
	VariantCold Variant = "cold"
	// VariantOverride states caller-supplied values as ground truth.
	VariantOverride Variant = "override"
)

type Input struct {
	ArtistName string
	Identity   analysis.ResolvedIdentity
	Metadata   *analysis.ArtistMetadata
	Listening  *analysis.ListeningStats
	Overrides  analysis.Overrides
}

type Prompt struct {
	Variant       Variant
	WithListening bool
	Text          string
	MaxTokens     int
}

// Name identifies the template combination, e.g. "override+listening".
func (p Prompt) Name() string {
	if p.WithListening {
		return string(p.Variant) + "+listening"
	}
	return string(p.Variant)
}

// Compiler holds the parsed templates. It is safe for concurrent use.
type Compiler struct {
	templates map[string]*Template
}

func NewCompiler() (*Compiler, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	c := &Compiler{templates: make(map[string]*Template)}
	for _, e := range entries {
		body, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".txt")
		t, err := Parse(name, string(body))
		if err != nil {
			return nil, err
		}
		c.templates[name] = t
	}

	for _, name := range []string{"intro_cold", "intro_override", "listening", "score_infer", "score_echo", "compat_infer", "compat_echo", "analysis", "schema"} {
		if _, ok := c.templates[name]; !ok {
			return nil, fmt.Errorf("missing template %q", name)
		}
	}
	return c, nil
}

// Compile selects the templates for in and renders them into one prompt.
func (c *Compiler) Compile(in Input) (Prompt, error) {
	if in.Metadata == nil {
		return Prompt{}, fmt.Errorf("compiling prompt: no catalog metadata")
	}

	p := Prompt{
		Variant:       VariantCold,
		WithListening: in.Listening != nil,
		MaxTokens:     SingleSourceMaxTokens,
	}
	if in.Overrides.Any() {
		p.Variant = VariantOverride
	}
	if p.WithListening {
		p.MaxTokens = DualSourceMaxTokens
	}

	values, err := buildValues(in)
	if err != nil {
		return Prompt{}, err
	}

	names := []string{"intro_" + string(p.Variant)}
	if p.WithListening {
		names = append(names, "listening")
	}
	if in.Overrides.ProjectedGrowth != 0 {
		names = append(names, "score_echo")
	} else {
		names = append(names, "score_infer")
	}
	if _, ok := values[FieldGenreCompatibility]; ok {
		names = append(names, "compat_echo")
	} else {
		names = append(names, "compat_infer")
	}
	names = append(names, "analysis", "schema")

	var sections []string
	for _, name := range names {
		text, err := c.templates[name].Render(values)
		if err != nil {
			return Prompt{}, err
		}
		sections = append(sections, strings.TrimSpace(text))
	}
	p.Text = strings.Join(sections, "\n\n") + "\n"
	return p, nil
}

func buildValues(in Input) (Values, error) {
	metadata, err := yaml.Marshal(in.Metadata)
	if err != nil {
		return nil, fmt.Errorf("serializing artist metadata: %w", err)
	}

	name := in.ArtistName
	if name == "" {
		name = in.Metadata.Name
	}
	v := Values{
		FieldArtistName:     name,
		FieldGenre:          in.Identity.Genre,
		FieldOriginCountry:  in.Identity.OriginCountry,
		FieldArtistMetadata: strings.TrimSpace(string(metadata)),
	}

	if in.Listening != nil {
		stats, err := yaml.Marshal(in.Listening)
		if err != nil {
			return nil, fmt.Errorf("serializing listening stats: %w", err)
		}
		v[FieldListeningStats] = strings.TrimSpace(string(stats))
	}
	if in.Overrides.ProjectedGrowth != 0 {
		v[FieldProjectedGrowth] = strconv.Itoa(in.Overrides.ProjectedGrowth)
	}
	if level, ok := analysis.NormalizeCompatibility(in.Overrides.GenreCompatibility); ok {
		v[FieldGenreCompatibility] = level
	}
	return v, nil
}
