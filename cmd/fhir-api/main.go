package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/fhir-api/internal/config"
	"github.com/ehr/fhir-api/internal/domain/push"
	"github.com/ehr/fhir-api/internal/platform/server"
	"github.com/ehr/fhir-api/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fhir-api",
		Short: "FHIR patient read API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(pushCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the data directory and report collection sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			_, err = store.LoadDir(cfg.DataDir, logger)
			return err
		},
	}
}

func pushCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push one resource from a JSON file to the FHIR server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			gw := push.NewGateway(cfg.FHIRServerURL, push.WithLogger(logger))
			return runPush(cmd.Context(), gw, file, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON file holding one FHIR resource")
	return cmd
}

// setup loads and validates the configuration and builds the logger it asks for.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		l, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		level = l
	}

	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func runPush(ctx context.Context, p push.Pusher, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resource: %w", err)
	}
	var resource store.Record
	if err := json.Unmarshal(data, &resource); err != nil {
		return fmt.Errorf("decode resource %s: %w", path, err)
	}

	result, err := p.Push(ctx, resource)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runServer() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	data, err := store.LoadDir(cfg.DataDir, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load data")
		return err
	}

	gw := push.NewGateway(cfg.FHIRServerURL, push.WithLogger(logger))
	e := server.New(cfg, logger, data, gw)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("fhir_server", cfg.FHIRServerURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
