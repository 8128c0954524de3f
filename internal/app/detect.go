package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/innkeep/localize/internal/cli"
	"github.com/innkeep/localize/internal/detect"
)

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")
	asJSON := fs.Bool("json", false, "Print the detection result as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "detect requires exactly one text sample argument")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	detector := detect.New(detect.EnvSource{})
	result := detector.Detect(ctx, strings.TrimSpace(fs.Arg(0)))

	if *asJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
		fmt.Println(string(encoded))
		return 0
	}

	if !result.Available() {
		fmt.Println("language: unknown (no signal available)")
		return 0
	}
	fmt.Printf("language: %s (confidence %.2f, source %s)\n", result.LanguageCode, result.Confidence, result.Source)
	return 0
}
