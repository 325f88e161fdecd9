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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ademuri/beetseer/internal/server"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the artist analysis HTTP API",
	Long: `Serves GET /artist-analysis, plus /healthz and /metrics.

Example:
  curl 'localhost:8000/artist-analysis?artist=Phoebe+Bridgers&spotify_CLIENT_ID=...&spotify_CLIENT_SECRET=...'`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireKeys(requiredKeys...)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	var listen string
	serveCmd.Flags().StringVar(&listen, "listen", ":8000", "Address to listen on")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))

	var origins []string
	serveCmd.Flags().StringSliceVar(&origins, "allowed_origins", []string{"*"}, "CORS origins allowed to call the API")
	viper.BindPFlag("allowed_origins", serveCmd.Flags().Lookup("allowed_origins"))
}

func runServe() error {
	config, err := loadAppConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(config.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := buildPipeline(config, logger)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	srv := server.New(p, server.Options{
		ListeningStats: config.ListeningStats,
		AllowedOrigins: viper.GetStringSlice("allowed_origins"),
	}, logger)

	httpServer := &http.Server{
		Addr:              viper.GetString("listen"),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
