package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/ademuri/beetseer/internal/analysis"
	"github.com/ademuri/beetseer/internal/catalog"
	"github.com/ademuri/beetseer/internal/encyclopedia"
	"github.com/ademuri/beetseer/internal/listening"
	"github.com/ademuri/beetseer/internal/llm"
	"github.com/ademuri/beetseer/internal/pipeline"
)

const (
	appName    = "beetseer"
	appVersion = "1.0"
)

// AppConfig is the process-wide configuration shared by serve and analyze.
type AppConfig struct {
	AnthropicAPIKey    string
	AnthropicModel     string
	LastFmAPIKey       string
	LastFmSecret       string
	MusicBrainzContact string
	ListeningStats     bool
	LogLevel           string
	Policy             analysis.Policy
}

// requiredKeys must be configured before any analysis can run.
var requiredKeys = []string{"anthropic_api_key", "lastfm_api_key", "lastfm_secret"}

func loadAppConfig() (AppConfig, error) {
	if err := requireKeys(requiredKeys...); err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		AnthropicAPIKey:    viper.GetString("anthropic_api_key"),
		AnthropicModel:     viper.GetString("anthropic_model"),
		LastFmAPIKey:       viper.GetString("lastfm_api_key"),
		LastFmSecret:       viper.GetString("lastfm_secret"),
		MusicBrainzContact: viper.GetString("musicbrainz_contact"),
		ListeningStats:     viper.GetBool("listening_stats"),
		LogLevel:           viper.GetString("log_level"),
		Policy: analysis.Policy{
			Allowed:             upperAll(viper.GetStringSlice("eligibility.allowed_countries")),
			Denied:              upperAll(viper.GetStringSlice("eligibility.denied_countries")),
			TrustOriginOverride: viper.GetBool("eligibility.trust_origin_override"),
		},
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func buildPipeline(config AppConfig, logger *zap.Logger) (*pipeline.Pipeline, error) {
	cfg, err := pipelineConfig(config, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg)
}

// pipelineConfig always wires the listening network. Whether a request uses
// it is decided per request by Capabilities.WithListeningStats, which
// listening_stats only defaults.
func pipelineConfig(config AppConfig, logger *zap.Logger) (pipeline.Config, error) {
	generator, err := llm.New(config.AnthropicAPIKey, config.AnthropicModel)
	if err != nil {
		return pipeline.Config{}, err
	}
	listeningClient, err := listening.New(config.LastFmAPIKey, config.LastFmSecret)
	if err != nil {
		return pipeline.Config{}, err
	}
	encyclopediaClient, err := encyclopedia.New(appName, appVersion, config.MusicBrainzContact)
	if err != nil {
		return pipeline.Config{}, err
	}

	logger.Info("building pipeline",
		zap.String("model", generator.Model()),
		zap.Bool("listening_stats", config.ListeningStats),
		zap.Strings("allowed_countries", config.Policy.Allowed),
		zap.Strings("denied_countries", config.Policy.Denied),
		zap.Bool("trust_origin_override", config.Policy.TrustOriginOverride),
	)

	return pipeline.Config{
		Catalog:      catalog.New(rate.NewLimiter(rate.Every(100*time.Millisecond), 5)),
		Encyclopedia: encyclopediaClient,
		Listening:    listeningClient,
		Generator:    generator,
		Policy:       config.Policy,
		Logger:       logger,
	}, nil
}

// upperAll normalizes a country list. Environment variables arrive as a
// single "US,GB" entry, so entries are also split on commas.
func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, entry := range values {
		for _, v := range strings.Split(entry, ",") {
			if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
