package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gramlint/internal/pattern"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List available languages",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules of a language",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	languagesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().String("lang", "en", "language code or variant")
	rulesCmd.Flags().Bool("false-friends", false, "include false friend rules")
}

type languageJSON struct {
	Name     string   `json:"name"`
	Code     string   `json:"code"`
	Variants []string `json:"variants"`
}

type ruleJSON struct {
	ID           string `json:"id"`
	Category     string `json:"category,omitempty"`
	Severity     string `json:"severity"`
	Default      bool   `json:"default"`
	MotherTongue string `json:"mother_tongue,omitempty"`
	Description  string `json:"description,omitempty"`
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	reg, err := openRegistry(cmd.Context(), g)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	infos := reg.Languages()
	switch format {
	case "json":
		out := make([]languageJSON, 0, len(infos))
		for _, info := range infos {
			variants := info.Variants
			if variants == nil {
				variants = []string{}
			}
			out = append(out, languageJSON{Name: info.Name, Code: info.Code, Variants: variants})
		}
		return writeJSON(os.Stdout, out)
	case "pretty":
		for _, info := range infos {
			fmt.Fprintf(os.Stdout, "%-4s %-12s %s\n", info.Code, info.Name, strings.Join(info.Variants, ", "))
		}
		for _, le := range reg.Errors() {
			fmt.Fprintf(os.Stderr, "warning: %v\n", le)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

func runRules(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	code, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	withFriends, err := cmd.Flags().GetBool("false-friends")
	if err != nil {
		return fmt.Errorf("failed to get false-friends flag: %w", err)
	}
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	reg, err := openRegistry(cmd.Context(), g)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()
	lang, err := reg.Get(code)
	if err != nil {
		return err
	}

	list := lang.Rules.All()
	if !withFriends {
		list = regularRules(list)
	}
	switch format {
	case "json":
		out := make([]ruleJSON, 0, len(list))
		for _, r := range list {
			out = append(out, ruleJSON{
				ID:           r.ID,
				Category:     r.Category,
				Severity:     r.Severity.String(),
				Default:      r.DefaultOn,
				MotherTongue: r.MotherTongue,
				Description:  r.Description,
			})
		}
		return writeJSON(os.Stdout, out)
	case "pretty":
		useColor, err := readColor(g.color, os.Stdout)
		if err != nil {
			return err
		}
		printRules(os.Stdout, list, useColor)
		return nil
	}
	return fmt.Errorf("unknown format: %s", format)
}

// regularRules drops false friends, which carry a mother tongue.
func regularRules(list []*pattern.Rule) []*pattern.Rule {
	out := make([]*pattern.Rule, 0, len(list))
	for _, r := range list {
		if r.MotherTongue == "" {
			out = append(out, r)
		}
	}
	return out
}

func printRules(w io.Writer, list []*pattern.Rule, useColor bool) {
	id := color.New(color.FgMagenta)
	off := color.New(color.Faint)
	for _, c := range []*color.Color{id, off} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, r := range list {
		state := "on"
		if !r.DefaultOn {
			state = off.Sprint("off")
		}
		fmt.Fprintf(w, "%s  %-12s %-3s  %s\n", id.Sprintf("%-28s", r.ID), r.Category, state, r.Description)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
