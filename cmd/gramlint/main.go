package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gramlint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "gramlint",
	Short:         "Rule-based grammar and style checker",
	Long:          `gramlint checks natural-language text against per-language pattern rules`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errMatchesFound makes the process exit with status 1 without printing an
// error: the matches themselves are the output.
var errMatchesFound = errors.New("matches found")

// main registers subcommands and persistent flags and executes the root
// command. Usage and runtime errors exit with status 2, found matches with 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval for long checks (0 = off)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	pf.String("data-dir", "", "language data directory (default: built-in data)")
	pf.String("redis-addr", "", "redis address of the user dictionary")
	pf.String("config", "", "path to gramlint.toml (default: search upwards)")

	// Ctrl+C отменяет проверку через контекст
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errMatchesFound):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "gramlint: %v\n", err)
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
