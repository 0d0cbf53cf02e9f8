package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/paddlegame/internal/api"
	"github.com/mcoot/paddlegame/internal/api/handler"
	"github.com/mcoot/paddlegame/internal/config"
	"github.com/mcoot/paddlegame/internal/factory"
)

func main() {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Everything it
// opens is closed before it returns.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	// .env feeds the flag defaults below; a missing file is fine
	_ = godotenv.Load()

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("CONFIG_PATH"), "Path to a YAML config file (env: CONFIG_PATH)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		slog.String("addr", cfg.HTTP.Addr()),
		slog.String("storage", cfg.Storage.Type),
	)

	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Storage.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		GameDefaults:   handler.GameDefaults(app.GameDefaults),
	})

	server := api.NewServer(router, api.ServerConfigFrom(cfg.HTTP), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
