package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/innkeep/localize/internal/cli"
	"github.com/innkeep/localize/internal/config"
	"github.com/innkeep/localize/internal/httpapi"
	"github.com/innkeep/localize/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "", "Host interface to bind (defaults to HTTP_HOST)")
	port := fs.Int("port", 0, "HTTP port (defaults to HTTP_PORT)")
	providerName := fs.String("provider", "", "Translation provider name")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	svc, registry, err := buildService(cfg, *providerName, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to build translator")
		fmt.Fprintf(os.Stderr, "Failed to build translator: %v\n", err)
		return 1
	}
	defer svc.Close()

	opts := httpapi.Options{
		Host:            cfg.HTTPHost,
		Port:            cfg.HTTPPort,
		ReadTimeout:     time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout:    time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		ShutdownTimeout: time.Duration(cfg.HTTPShutdownGraceSec) * time.Second,
		Registry:        registry,
	}
	if *host != "" {
		opts.Host = *host
	}
	if *port != 0 {
		opts.Port = *port
	}

	server, err := httpapi.NewServer(svc, logger, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build server: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return 1
	}
	return 0
}
