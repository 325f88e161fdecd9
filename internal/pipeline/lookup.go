package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ademuri/beetseer/internal/analysis"
	"github.com/ademuri/beetseer/internal/metrics"
)

const (
	sourceCatalog      = "catalog"
	sourceEncyclopedia = "encyclopedia"
	sourceListening    = "listening"
)

// sources holds the settled result of every metadata lookup for a request.
type sources struct {
	metadata   *analysis.ArtistMetadata
	catalogErr error

	encyclopedia *analysis.EncyclopediaEntry
	listening    *analysis.ListeningStats
}

// lookup queries every source concurrently, once each, and waits for all of
// them. Encyclopedia and listening failures are logged and dropped.
func (p *Pipeline) lookup(ctx context.Context, req analysis.Request, log *zap.Logger) sources {
	var s sources
	var g errgroup.Group

	g.Go(func() error {
		s.catalogErr = guard(sourceCatalog, func() error {
			var err error
			s.metadata, err = p.catalog.SearchArtist(ctx, req.Credentials, req.Artist)
			return err
		})
		record(sourceCatalog, s.catalogErr)
		return nil
	})

	g.Go(func() error {
		err := guard(sourceEncyclopedia, func() error {
			var err error
			s.encyclopedia, err = p.encyclopedia.LookupArtist(ctx, req.Artist)
			return err
		})
		record(sourceEncyclopedia, err)
		if err != nil {
			s.encyclopedia = nil
			if !errors.Is(err, analysis.ErrNotFound) {
				log.Warn("encyclopedia unavailable, origin will be unknown", zap.Error(err))
			}
		}
		return nil
	})

	if req.Capabilities.WithListeningStats && p.listening != nil {
		g.Go(func() error {
			err := guard(sourceListening, func() error {
				var err error
				s.listening, err = p.listening.ListeningStats(ctx, req.Artist)
				return err
			})
			record(sourceListening, err)
			if err != nil {
				s.listening = nil
				if !errors.Is(err, analysis.ErrNotFound) {
					log.Warn("listening network unavailable, continuing without stats", zap.Error(err))
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return s
}

// guard runs fn, converting a panic into an unavailable error.
func guard(source string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = analysis.Unavailable(source, fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}

func record(source string, err error) {
	result := metrics.ResultFound
	switch {
	case errors.Is(err, analysis.ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultUnavailable
	}
	metrics.SourceLookupsTotal.WithLabelValues(source, result).Inc()
}
