package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/innkeep/localize/internal/cli"
	"github.com/innkeep/localize/internal/config"
	"github.com/innkeep/localize/internal/language"
	"github.com/innkeep/localize/internal/logging"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Target language (ISO 639-1, for example: es, fr)")
	source := fs.String("source", "", "Source language hint (detected when omitted)")
	providerName := fs.String("provider", "", "Translation provider name (for example: static, mymemory, llm)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "translate requires exactly one text argument")
		return 2
	}

	targetLang := language.NormalizeCode(*lang)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--lang is required and must be a valid language code")
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

	svc, _, err := buildService(cfg, *providerName, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build translator: %v\n", err)
		return 1
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result := svc.Translate(ctx, strings.TrimSpace(fs.Arg(0)), targetLang, *source)
	if result.Degraded {
		fmt.Fprintln(os.Stderr, "Warning: translation provider failed, returning original text")
	}
	fmt.Println(result.Text)
	return 0
}
