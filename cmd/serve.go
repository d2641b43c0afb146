// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sapflow/cli/internal/config"
	"sapflow/cli/internal/httpapi"
	"sapflow/cli/internal/logging"
	"sapflow/cli/internal/orchestrator"
)

// serveCmd exposes the extraction run over HTTP for schedulers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction trigger API over HTTP",
	Long: `The serve command starts an HTTP server exposing POST /api/v1/sap/run. Each
request triggers one extraction run; concurrent requests are rejected while a
run is executing since the automation drives a single GUI session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolveCredentials(&cfg)
		if err := cfg.ValidateCredentials(); err != nil {
			return err
		}

		log := slog.Default()
		server := httpapi.NewServer(perRunRunner{cfg: &cfg}, log)

		httpServer := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("http server listening", "addr", cfg.ListenAddr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		fmt.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// perRunRunner builds a fresh pipeline per request so every run gets its own
// correlation id in the logs.
type perRunRunner struct {
	cfg *config.Config
}

func (r perRunRunner) Run(ctx context.Context, cmd orchestrator.RunCommand) (*orchestrator.RunResult, error) {
	log, _ := logging.ForRun()
	return newRunner(r.cfg, log).Run(ctx, cmd)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
