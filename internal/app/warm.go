package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/innkeep/localize/internal/cli"
	"github.com/innkeep/localize/internal/config"
	"github.com/innkeep/localize/internal/logging"
	"github.com/innkeep/localize/internal/phrasebook"
)

func runWarm(args []string) int {
	fs := flag.NewFlagSet("warm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	providerName := fs.String("provider", "", "Translation provider name")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "warm requires exactly one phrasebook file argument")
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

	book, err := phrasebook.LoadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid phrasebook: %v\n", err)
		return 1
	}

	svc, _, err := buildService(cfg, *providerName, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build translator: %v\n", err)
		return 1
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Preload reports how many unique uncached entries it scheduled; that
	// count is the settle target, not phrases times languages, because
	// whitespace variants collapse to one cache key and the default source
	// language is skipped.
	expected := svc.Preload(ctx, book.Phrases, book.Languages)
	logger.Info().
		Str("phrasebook", book.Name).
		Int("phrases", len(book.Phrases)).
		Int("languages", len(book.Languages)).
		Int("scheduled", expected).
		Msg("cache warm-up started")

	// Preload is fire-and-forget; for the CLI we wait for the cache to
	// settle so the process does not exit mid-warm-up.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		stats := svc.Stats()
		if stats.CacheSize+int(stats.ProviderErrors) >= expected {
			break
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Warm-up timed out before the cache settled")
			return 1
		case <-ticker.C:
		}
	}

	stats := svc.Stats()
	fmt.Printf("warmed %d entries (%d provider errors)\n", stats.CacheSize, stats.ProviderErrors)
	if stats.ProviderErrors > 0 {
		return 1
	}
	return 0
}
