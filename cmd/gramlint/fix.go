package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gramlint/internal/diag"
	"gramlint/internal/driver"
	"gramlint/internal/fix"
	"gramlint/internal/project"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <path|->",
	Short: "Apply suggested replacements to a file or directory",
	Long: `Check the text and apply the first suggestion of each match according to
the chosen strategy. With "-" the fixed stdin is written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().String("mode", "once", "which fixes to apply (once|all|id)")
	fixCmd.Flags().String("id", "", "apply the fix with this identifier (implies --mode id)")
	fixCmd.Flags().StringSlice("rule", nil, "only fix matches of these rule ids")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
	fixCmd.Flags().String("lang", "", "language code (default from gramlint.toml, else en)")
	fixCmd.Flags().String("mother-tongue", "", "mother tongue of the writer; enables false friends")
	fixCmd.Flags().StringSlice("enable", nil, "comma-separated rule ids; only these rules run")
	fixCmd.Flags().StringSlice("disable", nil, "comma-separated rule ids to turn off")
}

func readApplyOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	modeStr, err := cmd.Flags().GetString("mode")
	if err != nil {
		return fix.ApplyOptions{}, fmt.Errorf("failed to get mode flag: %w", err)
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return fix.ApplyOptions{}, fmt.Errorf("failed to get id flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fix.ApplyOptions{}, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	return parseApplyOptions(modeStr, targetID, cmd.Flags().Changed("mode"), dryRun)
}

func parseApplyOptions(modeStr, targetID string, modeSet, dryRun bool) (fix.ApplyOptions, error) {
	opts := fix.ApplyOptions{TargetID: targetID, DryRun: dryRun}
	switch strings.ToLower(modeStr) {
	case "", "once":
		opts.Mode = fix.ApplyModeOnce
	case "all":
		opts.Mode = fix.ApplyModeAll
	case "id":
		opts.Mode = fix.ApplyModeID
	default:
		return opts, fmt.Errorf("unknown fix mode %q (expected once|all|id)", modeStr)
	}
	if targetID != "" {
		if modeSet && opts.Mode != fix.ApplyModeID {
			return opts, errors.New("--id cannot be combined with --mode once or all")
		}
		opts.Mode = fix.ApplyModeID
	}
	if opts.Mode == fix.ApplyModeID && targetID == "" {
		return opts, errors.New("--mode id requires --id")
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	cleanup, err := setupDiagnostics(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	applyOpts, err := readApplyOptions(cmd)
	if err != nil {
		return err
	}
	rulesOnly, err := cmd.Flags().GetStringSlice("rule")
	if err != nil {
		return fmt.Errorf("failed to get rule flag: %w", err)
	}
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(g, args[0])
	if err != nil {
		return err
	}
	// fix использует те же флаги выбора правил, что и check
	opts, err := readFixCheckOptions(cmd, cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reg, err := openRegistry(ctx, g, opts.lang)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()
	session := driver.NewSession(reg, driver.Options{Jobs: opts.jobs, Timeout: opts.timeout})

	var run *checkRun
	stdin := args[0] == "-"
	if stdin {
		run, err = checkStdin(ctx, session, opts)
	} else {
		run, err = checkPaths(ctx, session, opts, args)
	}
	if err != nil {
		return err
	}

	bag := diag.NewBag(0)
	for _, fr := range run.results {
		for _, m := range fr.Result.Matches {
			bag.Add(m)
		}
	}
	bag.Sort()
	matches := filterRules(bag.Items(), splitList(rulesOnly))

	res, applyErr := fix.Apply(run.fileSet, fix.FromMatches(run.fileSet, matches), applyOpts)
	if stdin {
		if applyErr != nil && !errors.Is(applyErr, fix.ErrNoFixes) {
			return applyErr
		}
		return writeFixedStdin(os.Stdout, run, res)
	}
	return handleApplyResult(os.Stdout, res, applyErr)
}

func readFixCheckOptions(cmd *cobra.Command, cfg *project.Config) (checkOptions, error) {
	f := cmd.Flags()
	var opts checkOptions
	var err error
	if opts.lang, err = f.GetString("lang"); err != nil {
		return opts, fmt.Errorf("failed to get lang flag: %w", err)
	}
	if opts.motherTongue, err = f.GetString("mother-tongue"); err != nil {
		return opts, fmt.Errorf("failed to get mother-tongue flag: %w", err)
	}
	enable, err := f.GetStringSlice("enable")
	if err != nil {
		return opts, fmt.Errorf("failed to get enable flag: %w", err)
	}
	disable, err := f.GetStringSlice("disable")
	if err != nil {
		return opts, fmt.Errorf("failed to get disable flag: %w", err)
	}
	opts.enable, opts.disable = splitList(enable), splitList(disable)
	opts.ui = uiModeOff
	mergeProjectConfig(&opts, cfg, f.Changed)
	return opts, nil
}

func filterRules(matches []diag.RuleMatch, ids []string) []diag.RuleMatch {
	if len(ids) == 0 {
		return matches
	}
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := matches[:0:0]
	for _, m := range matches {
		if _, ok := keep[m.RuleID]; ok {
			out = append(out, m)
		}
	}
	return out
}

func writeFixedStdin(w io.Writer, run *checkRun, res *fix.ApplyResult) error {
	id := run.results[0].FileID
	content := run.fileSet.Get(id).Content
	if res != nil {
		if c, ok := res.Content[id]; ok {
			content = c
		}
	}
	_, err := w.Write(content)
	return err
}

func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		if errors.Is(applyErr, fix.ErrNoFixes) {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(w, "  %s [%s] %s: %s\n", item.Title, item.ID, location, item.RuleID)
		}
	}
	if len(res.FileChanges) > 0 {
		fmt.Fprintln(w, "Updated files:")
		for _, change := range res.FileChanges {
			state := ""
			if !change.Written {
				state = ", not written"
			}
			fmt.Fprintf(w, "  %s (%d edits%s)\n", change.Path, change.EditCount, state)
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	if len(res.Applied) == 0 {
		fmt.Fprintln(w, "No fixes applied.")
	}
	return nil
}
