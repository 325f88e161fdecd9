// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ademuri/beetseer/internal/analysis"
	"github.com/ademuri/beetseer/internal/metrics"
)

// OutcomeHeader carries the stable outcome code of every analysis response.
const OutcomeHeader = "X-Analysis-Outcome"

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Response, error)
}

type Options struct {
	// ListeningStats is the default for requests that don't set
	// listening_stats themselves.
	ListeningStats bool
	AllowedOrigins []string
}

type Server struct {
	analyzer Analyzer
	opts     Options
	logger   *zap.Logger
}

func New(analyzer Analyzer, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{analyzer: analyzer, opts: opts, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{OutcomeHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(instrument)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/artist-analysis", s.handleAnalysis)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from beetseer!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set(OutcomeHeader, analysis.CodeOK)
	writeJSON(w, http.StatusOK, resp)
}

// parseRequest reads the query parameters. Parameter names match the
// original public API, including the spotify_CLIENT_* spelling.
func (s *Server) parseRequest(r *http.Request) (analysis.Request, error) {
	q := r.URL.Query()
	req := analysis.Request{
		Artist: q.Get("artist"),
		Credentials: analysis.Credentials{
			ClientID:     firstOf(q.Get("spotify_CLIENT_ID"), q.Get("spotify_client_id")),
			ClientSecret: firstOf(q.Get("spotify_CLIENT_SECRET"), q.Get("spotify_client_secret")),
		},
		Overrides: analysis.Overrides{
			Genre:              q.Get("genre"),
			GenreCompatibility: firstOf(q.Get("genre_compatibility"), q.Get("genreCompatibility")),
			OriginCountry:      firstOf(q.Get("origin_country"), q.Get("originCountry")),
		},
		Capabilities: analysis.Capabilities{WithListeningStats: s.opts.ListeningStats},
	}

	if v := firstOf(q.Get("projected_growth"), q.Get("projectedGrowth")); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 || n > 100 {
			return req, &analysis.InvalidRequestError{Field: "projected_growth", Reason: "must be an integer between 1 and 100"}
		}
		req.Overrides.ProjectedGrowth = n
	}
	if v := q.Get("listening_stats"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, &analysis.InvalidRequestError{Field: "listening_stats", Reason: "must be a boolean"}
		}
		req.Capabilities.WithListeningStats = b
	}
	return req, nil
}

type errorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// StatusFor maps an outcome code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case analysis.CodeOK, analysis.CodeIneligibleOrigin:
		return http.StatusOK
	case analysis.CodeInvalidRequest, analysis.CodeMissingCredentials:
		return http.StatusBadRequest
	case analysis.CodeNotFound:
		return http.StatusNotFound
	case analysis.CodeCatalogUnavailable, analysis.CodeSchemaDecode, analysis.CodeSchemaShape:
		return http.StatusBadGateway
	case analysis.CodeGenerationFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := analysis.Code(err)
	w.Header().Set(OutcomeHeader, code)

	var ineligible *analysis.IneligibleOriginError
	if errors.As(err, &ineligible) {
		writeJSON(w, StatusFor(code), ineligible.OriginMessage())
		return
	}

	detail := err.Error()
	switch code {
	case analysis.CodeGenerationFailed:
		detail = "The analysis service is temporarily unavailable, please try again."
	case analysis.CodeSchemaDecode, analysis.CodeSchemaShape:
		detail = "The analysis service returned an invalid response, please try again."
	case analysis.CodeInternal:
		s.logger.Error("analysis failed", zap.Error(err))
		detail = "Unexpected error occurred"
	}
	writeJSON(w, StatusFor(code), errorBody{Code: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
