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
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/beetseer/internal/analysis"
	"github.com/ademuri/beetseer/internal/server"
)

type AnalyzeConfig struct {
	Request analysis.Request
	Format  string
	EmailTo string
	DryRun  bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <artist>",
	Short: "Analyzes one artist and prints the result",
	Long: `Runs a single analysis and prints it.
  --format is one of: table, json, yaml.
  With --email, the analysis is also sent to that address.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireKeys(requiredKeys...); err != nil {
			return err
		}
		if err := requireKeys("spotify_client_id", "spotify_client_secret"); err != nil {
			return err
		}
		if !validFormat(viper.GetString("format")) {
			return fmt.Errorf("invalid --format %q, must be one of: %s", viper.GetString("format"), strings.Join(formats, ", "))
		}
		if viper.GetString("email") != "" {
			return requireKeys("from")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := AnalyzeConfig{
			Request: analysis.Request{
				Artist: args[0],
				Credentials: analysis.Credentials{
					ClientID:     viper.GetString("spotify_client_id"),
					ClientSecret: viper.GetString("spotify_client_secret"),
				},
				Overrides: analysis.Overrides{
					Genre:              viper.GetString("genre"),
					ProjectedGrowth:    viper.GetInt("projected_growth"),
					GenreCompatibility: viper.GetString("genre_compatibility"),
					OriginCountry:      viper.GetString("origin_country"),
				},
				Capabilities: analysis.Capabilities{WithListeningStats: viper.GetBool("listening_stats")},
			},
			Format:  viper.GetString("format"),
			EmailTo: viper.GetString("email"),
			DryRun:  viper.GetBool("dryRun"),
		}
		if err := runAnalyze(cmd.Context(), config, os.Stdout); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	var clientID string
	analyzeCmd.Flags().StringVar(&clientID, "spotify_client_id", "", "Spotify client ID")
	viper.BindPFlag("spotify_client_id", analyzeCmd.Flags().Lookup("spotify_client_id"))

	var clientSecret string
	analyzeCmd.Flags().StringVar(&clientSecret, "spotify_client_secret", "", "Spotify client secret")
	viper.BindPFlag("spotify_client_secret", analyzeCmd.Flags().Lookup("spotify_client_secret"))

	var genre string
	analyzeCmd.Flags().StringVar(&genre, "genre", "", "Genre to analyze the artist against")
	viper.BindPFlag("genre", analyzeCmd.Flags().Lookup("genre"))

	var growth int
	analyzeCmd.Flags().IntVar(&growth, "projected_growth", 0, "Projected growth score (1-100)")
	viper.BindPFlag("projected_growth", analyzeCmd.Flags().Lookup("projected_growth"))

	var compatibility string
	analyzeCmd.Flags().StringVar(&compatibility, "genre_compatibility", "", "Genre compatibility (LOW, MEDIUM, HIGH, VERY HIGH)")
	viper.BindPFlag("genre_compatibility", analyzeCmd.Flags().Lookup("genre_compatibility"))

	var origin string
	analyzeCmd.Flags().StringVar(&origin, "origin_country", "", "ISO country code of the artist's origin")
	viper.BindPFlag("origin_country", analyzeCmd.Flags().Lookup("origin_country"))

	var format string
	analyzeCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	viper.BindPFlag("format", analyzeCmd.Flags().Lookup("format"))

	var email string
	analyzeCmd.Flags().StringVar(&email, "email", "", "Also email the analysis to this address")
	viper.BindPFlag("email", analyzeCmd.Flags().Lookup("email"))

	var from string
	analyzeCmd.Flags().StringVar(&from, "from", "", "Sender address for --email")
	viper.BindPFlag("from", analyzeCmd.Flags().Lookup("from"))

	var sendgridKey string
	analyzeCmd.Flags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key for --email")
	viper.BindPFlag("sendgrid_api_key", analyzeCmd.Flags().Lookup("sendgrid_api_key"))

	var dryRun bool
	analyzeCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print the email instead of sending it")
	viper.BindPFlag("dryRun", analyzeCmd.Flags().Lookup("dry_run"))
}

func runAnalyze(ctx context.Context, config AnalyzeConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	appConfig, err := loadAppConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := buildPipeline(appConfig, logger)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	return analyzeAndReport(ctx, p, config, out)
}

// analyzeAndReport runs one analysis and writes it to out, then emails it if
// requested. An ineligible origin is printed rather than treated as an error.
func analyzeAndReport(ctx context.Context, analyzer server.Analyzer, config AnalyzeConfig, out io.Writer) error {
	resp, err := analyzer.Analyze(ctx, config.Request)
	var ineligible *analysis.IneligibleOriginError
	if errors.As(err, &ineligible) {
		fmt.Fprintln(out, ineligible.Message)
		return nil
	}
	if err != nil {
		return fmt.Errorf("analyzing %q (%s): %w", config.Request.Artist, analysis.Code(err), err)
	}

	if err := renderResponse(out, resp, config.Format); err != nil {
		return err
	}

	if config.EmailTo == "" {
		return nil
	}
	return sendAnalysisEmail(SendEmailConfig{
		From:   viper.GetString("from"),
		To:     config.EmailTo,
		APIKey: viper.GetString("sendgrid_api_key"),
		DryRun: config.DryRun,
	}, resp, out)
}
