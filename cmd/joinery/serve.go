package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joinery-data/joinery/internal/catalog"
	"github.com/joinery-data/joinery/internal/config"
	"github.com/joinery-data/joinery/internal/lifecycle"
	"github.com/joinery-data/joinery/internal/web"
)

var (
	serveConfigDir    string
	serveEnsureSchema bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigDir, "config", ".", "Directory containing joinery.yaml")
	serveCmd.Flags().BoolVar(&serveEnsureSchema, "ensure-schema", false, "Apply the schema DDL before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog API server",
	Long:  "Resolve configuration, connect to PostgreSQL, provision the entity facades, and serve the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resolver := &config.FileResolver{Paths: []string{serveConfigDir}}
		cfg, err := resolver.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve configuration: %w", err)
		}

		log, err := buildLogger(cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer log.Sync()

		schema, err := catalog.BuildSchema()
		if err != nil {
			return fmt.Errorf("failed to build catalog schema: %w", err)
		}

		opts := []lifecycle.Option{lifecycle.WithLogger(log)}
		if serveEnsureSchema {
			opts = append(opts, lifecycle.WithEnsureSchema())
		}
		coord := lifecycle.New(&config.StaticResolver{Config: cfg}, lifecycle.PostgresConnector{}, opts...)
		if err := coord.Start(ctx, schema); err != nil {
			return fmt.Errorf("startup failed: %w", err)
		}
		defer coord.Close()

		webOpts := []web.Option{web.WithLogger(log)}
		if cfg.Auth.TokenSecret != "" {
			webOpts = append(webOpts, web.WithTokenService(
				web.NewTokenService(cfg.Auth.TokenSecret, 24*time.Hour)))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           web.New(coord.Facades(), webOpts...),
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		color.Green("✓ serving %d facades on http://%s", len(coord.Facades()), cfg.Server.Addr())

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server stopped: %w", err)
		case sig := <-sigCh:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}

		log.Info("server stopped")
		return nil
	},
}

// buildLogger builds the process logger at the configured level.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
