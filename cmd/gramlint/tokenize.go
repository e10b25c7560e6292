package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gramlint/internal/diagfmt"
	"gramlint/internal/driver"
	"gramlint/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file|->",
	Short: "Split text into sentences and tokens",
	Long:  `Tokenize segments the text into sentences and prints the tokens of each`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args, false)
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [flags] <file|->",
	Short: "Print tokens with their disambiguated readings",
	Long:  `Tag runs the analysis pipeline without rules and prints lemma/tag readings of every token`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{tokenizeCmd, tagCmd} {
		c.Flags().String("format", "pretty", "output format (pretty|json)")
		c.Flags().String("lang", "en", "language code or variant")
	}
}

func runAnalyze(cmd *cobra.Command, args []string, withReadings bool) error {
	cleanup, err := setupDiagnostics(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	var id source.FileID
	if args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		id = fileSet.AddVirtual("<stdin>", content)
	} else if id, err = fileSet.Load(args[0]); err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	reg, err := openRegistry(ctx, g, lang)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	session := driver.NewSession(reg, driver.Options{})
	analysis, err := session.Analyze(ctx, driver.Request{
		Text:     string(fileSet.Get(id).Content),
		Language: lang,
		File:     id,
	})
	if err != nil {
		return err
	}
	if !g.quiet {
		for _, ae := range analysis.Failed {
			fmt.Fprintf(os.Stderr, "warning: %v\n", ae)
		}
	}

	switch format {
	case "json":
		return diagfmt.FormatTokensJSON(os.Stdout, analysis.Sentences, withReadings)
	default:
		return diagfmt.FormatTokensPretty(os.Stdout, analysis.Sentences, fileSet, withReadings)
	}
}
