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

// Package pipeline turns an artist name into a validated analysis document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ademuri/beetseer/internal/analysis"
	"github.com/ademuri/beetseer/internal/llm"
	"github.com/ademuri/beetseer/internal/metrics"
	"github.com/ademuri/beetseer/internal/prompt"
)

type Catalog interface {
	SearchArtist(ctx context.Context, creds analysis.Credentials, name string) (*analysis.ArtistMetadata, error)
}

type Encyclopedia interface {
	LookupArtist(ctx context.Context, name string) (*analysis.EncyclopediaEntry, error)
}

type ListeningNetwork interface {
	ListeningStats(ctx context.Context, name string) (*analysis.ListeningStats, error)
}

type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Config holds the long-lived dependencies of a Pipeline. Listening may be
// nil, in which case listening statistics are never requested.
type Config struct {
	Catalog      Catalog
	Encyclopedia Encyclopedia
	Listening    ListeningNetwork
	Generator    Generator
	Policy       analysis.Policy
	Logger       *zap.Logger
}

// Pipeline is safe for concurrent use; each call to Analyze is independent.
type Pipeline struct {
	catalog      Catalog
	encyclopedia Encyclopedia
	listening    ListeningNetwork
	generator    Generator
	compiler     *prompt.Compiler
	policy       analysis.Policy
	logger       *zap.Logger
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("pipeline: catalog is required")
	}
	if cfg.Encyclopedia == nil {
		return nil, errors.New("pipeline: encyclopedia is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("pipeline: generator is required")
	}
	compiler, err := prompt.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		catalog:      cfg.Catalog,
		encyclopedia: cfg.Encyclopedia,
		listening:    cfg.Listening,
		generator:    cfg.Generator,
		compiler:     compiler,
		policy:       cfg.Policy,
		logger:       logger,
	}, nil
}

// Analyze runs the whole pipeline for one request. Every failure is one of
// the error types in package analysis; an ineligible origin is reported as
// *analysis.IneligibleOriginError.
func (p *Pipeline) Analyze(ctx context.Context, req analysis.Request) (resp *analysis.Response, err error) {
	defer func() {
		metrics.AnalysesTotal.WithLabelValues(analysis.Code(err)).Inc()
	}()

	req, err = validateRequest(req)
	if err != nil {
		return nil, err
	}
	log := p.logger.With(zap.String("artist", req.Artist))

	src := p.lookup(ctx, req, log)
	if src.catalogErr != nil {
		if errors.Is(src.catalogErr, analysis.ErrNotFound) {
			return nil, &analysis.NotFoundError{Artist: req.Artist}
		}
		return nil, &analysis.CatalogUnavailableError{Err: src.catalogErr}
	}
	if src.metadata == nil {
		return nil, &analysis.NotFoundError{Artist: req.Artist}
	}
	artistName := src.metadata.Name
	if artistName == "" {
		artistName = req.Artist
	}

	id := analysis.Resolve(src.metadata, src.encyclopedia, req.Overrides)
	log = log.With(zap.String("genre", id.Genre), zap.String("origin", id.OriginCountry))

	decision := p.policy.Evaluate(id, req.Overrides.OriginCountry != "")
	if decision.Bypassed {
		log.Info("origin supplied by caller, skipping eligibility check")
	}
	if !decision.Allowed {
		log.Info("origin not eligible for analysis")
		return nil, &analysis.IneligibleOriginError{
			Artist:  artistName,
			Country: id.OriginCountry,
			Message: decision.Reason,
		}
	}

	compiled, err := p.compiler.Compile(prompt.Input{
		ArtistName: artistName,
		Identity:   id,
		Metadata:   src.metadata,
		Listening:  src.listening,
		Overrides:  req.Overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling prompt: %w", err)
	}

	start := time.Now()
	raw, err := p.generator.Generate(ctx, llm.Request{
		System:      llm.SystemInstruction,
		Prompt:      compiled.Text,
		MaxTokens:   compiled.MaxTokens,
		Temperature: llm.DefaultTemperature,
	})
	metrics.GenerationDuration.WithLabelValues(compiled.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("generation failed", zap.String("variant", compiled.Name()), zap.Error(err))
		return nil, &analysis.GenerationError{Err: err}
	}

	doc, err := analysis.ParseDocument(raw)
	if err != nil {
		log.Error("model output rejected",
			zap.String("variant", compiled.Name()),
			zap.String("raw", raw),
			zap.Error(err))
		return nil, err
	}
	doc.Normalize(id, req.Overrides)

	log.Info("analysis complete", zap.String("variant", compiled.Name()))
	return &analysis.Response{ArtistName: artistName, Analysis: doc}, nil
}

func validateRequest(req analysis.Request) (analysis.Request, error) {
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Artist == "" {
		return req, &analysis.InvalidRequestError{Field: "artist", Reason: "artist name is required"}
	}

	var missing []string
	if strings.TrimSpace(req.Credentials.ClientID) == "" {
		missing = append(missing, "client ID")
	}
	if strings.TrimSpace(req.Credentials.ClientSecret) == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return req, &analysis.MissingCredentialsError{Missing: missing}
	}

	o := &req.Overrides
	o.Genre = strings.TrimSpace(o.Genre)
	o.OriginCountry = strings.TrimSpace(o.OriginCountry)
	if o.ProjectedGrowth < 0 || o.ProjectedGrowth > 100 {
		return req, &analysis.InvalidRequestError{Field: "projected_growth", Reason: "must be between 1 and 100"}
	}
	if o.GenreCompatibility != "" {
		level, ok := analysis.NormalizeCompatibility(o.GenreCompatibility)
		if !ok {
			return req, &analysis.InvalidRequestError{
				Field:  "genre_compatibility",
				Reason: "must be one of " + strings.Join(analysis.CompatibilityLevels, ", "),
			}
		}
		o.GenreCompatibility = level
	}
	return req, nil
}
