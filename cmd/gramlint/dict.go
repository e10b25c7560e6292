package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gramlint/internal/dict"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage dictionaries",
	Long:  `Compile tagger dictionaries and edit the user dictionary stored in redis`,
}

var dictCompileCmd = &cobra.Command{
	Use:   "compile IN.tsv OUT.bin",
	Short: "Compile a form/lemma/tag TSV file into a memory-mapped dictionary",
	Args:  cobra.ExactArgs(2),
	RunE:  runDictCompile,
}

var dictAddCmd = &cobra.Command{
	Use:   "add --lang CODE WORD...",
	Short: "Add words to the user dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictAdd,
}

var dictRemoveCmd = &cobra.Command{
	Use:   "remove --lang CODE WORD...",
	Short: "Remove words from the user dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictRemove,
}

var dictListCmd = &cobra.Command{
	Use:   "list --lang CODE",
	Short: "List the user dictionary",
	Args:  cobra.NoArgs,
	RunE:  runDictList,
}

func init() {
	dictCmd.AddCommand(dictCompileCmd, dictAddCmd, dictRemoveCmd, dictListCmd)
	for _, c := range []*cobra.Command{dictAddCmd, dictRemoveCmd, dictListCmd} {
		c.Flags().String("lang", "en", "language code")
	}
	dictAddCmd.Flags().String("lemma", "", "lemma of the added words (default: the word itself)")
	dictAddCmd.Flags().String("tag", dict.UserTag, "tag of the added words")
}

func runDictCompile(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	entries, err := dict.ReadTSV(in)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err := dict.CompileFile(args[1], entries); err != nil {
		return fmt.Errorf("failed to compile %s: %w", args[1], err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "compiled %d entries into %s\n", len(entries), args[1])
	}
	return nil
}

// userStore opens the redis store named by --redis-addr and the language key
// of --lang.
func userStore(cmd *cobra.Command) (*dict.RedisStore, string, func(), error) {
	g, err := readGlobals(cmd)
	if err != nil {
		return nil, "", nil, err
	}
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to get lang flag: %w", err)
	}
	store, closeStore, err := openUserStore(g.redisAddr)
	if err != nil {
		return nil, "", nil, err
	}
	return store, userDictKey(lang), closeStore, nil
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	lemma, err := cmd.Flags().GetString("lemma")
	if err != nil {
		return fmt.Errorf("failed to get lemma flag: %w", err)
	}
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return fmt.Errorf("failed to get tag flag: %w", err)
	}
	store, lang, closeStore, err := userStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	entries := make([]dict.Entry, 0, len(args))
	for _, w := range args {
		l := lemma
		if l == "" {
			l = w
		}
		entries = append(entries, dict.Entry{Form: w, Lemma: l, Tag: tag})
	}
	if err := store.Add(cmd.Context(), lang, entries...); err != nil {
		return fmt.Errorf("failed to add words: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d word(s) to %s\n", len(entries), lang)
	return nil
}

func runDictRemove(cmd *cobra.Command, args []string) error {
	store, lang, closeStore, err := userStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	n, err := store.Remove(cmd.Context(), lang, args...)
	if err != nil {
		return fmt.Errorf("failed to remove words: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d entr(ies) from %s\n", n, lang)
	return nil
}

func runDictList(cmd *cobra.Command, _ []string) error {
	store, lang, closeStore, err := userStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	entries, err := store.List(cmd.Context(), lang)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.Form, e.Lemma, e.Tag)
	}
	return nil
}
