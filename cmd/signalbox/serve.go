package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/signalbox/signalbox/analysis"
	"github.com/signalbox/signalbox/fetch"
	"github.com/signalbox/signalbox/server"
	"github.com/signalbox/signalbox/store"
)

func serveCmd(newApp func() (*app, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Serve exposes the analyzer over HTTP: POST a repository URL to
/api/analyze and fetch stored runs and reports from /api/analyses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return runServe(a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServe(a *app) error {
	runs, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer runs.Close()

	opts := []fetch.ClientOption{fetch.WithLogger(a.logger)}
	if a.cfg.GitHub.Token != "" {
		opts = append(opts, fetch.WithToken(a.cfg.GitHub.Token))
	}
	if a.cfg.GitHub.APIBaseURL != "" {
		opts = append(opts, fetch.WithBaseURL(a.cfg.GitHub.APIBaseURL))
	}
	fetcher := fetch.NewClient(opts...)

	analyzer := analysis.New(analysis.WithLogger(a.logger), analysis.WithDefaultModel(a.cfg.Analysis.DefaultModel))

	mux := http.NewServeMux()
	srv := server.New(analyzer, fetcher, runs, a.logger)
	srv.RegisterHandlers("api", mux)

	httpServer := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: mux,
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", slog.String("addr", a.cfg.Server.Addr), slog.String("version", Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-signalCtx.Done():
	}

	a.logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	a.logger.Info("Shutdown complete")
	return nil
}
