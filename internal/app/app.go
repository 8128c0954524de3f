package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "detect":
		return runDetect(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "warm":
		return runWarm(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "localize CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  localize <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  detect     Detect the language of a text sample")
	fmt.Fprintln(os.Stderr, "  translate  Translate one text snippet")
	fmt.Fprintln(os.Stderr, "  warm       Pre-translate a phrasebook file into the cache")
	fmt.Fprintln(os.Stderr, "  serve      Start the localization API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"localize <command> -h\" for command-specific flags.")
}
