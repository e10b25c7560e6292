package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	langtag "golang.org/x/text/language"

	"gramlint/internal/dict"
	"gramlint/internal/language"
	"gramlint/internal/project"
)

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	color     string
	quiet     bool
	timings   bool
	dataDir   string
	redisAddr string
	config    string
}

func readGlobals(cmd *cobra.Command) (globalOptions, error) {
	pf := cmd.Root().PersistentFlags()
	var g globalOptions
	var err error
	if g.color, err = pf.GetString("color"); err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.quiet, err = pf.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = pf.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.dataDir, err = pf.GetString("data-dir"); err != nil {
		return g, fmt.Errorf("failed to get data-dir flag: %w", err)
	}
	if g.redisAddr, err = pf.GetString("redis-addr"); err != nil {
		return g, fmt.Errorf("failed to get redis-addr flag: %w", err)
	}
	if g.config, err = pf.GetString("config"); err != nil {
		return g, fmt.Errorf("failed to get config flag: %w", err)
	}
	return g, nil
}

// openUserStore connects to the user dictionary. The returned close function
// is never nil.
func openUserStore(addr string) (*dict.RedisStore, func(), error) {
	if addr == "" {
		return nil, func() {}, fmt.Errorf("user dictionary requires --redis-addr")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return dict.NewRedisStore(client), func() { _ = client.Close() }, nil
}

// userDictKey maps a language code or variant to the data directory name,
// e.g. "en-US" to "en".
func userDictKey(code string) string {
	tag, err := langtag.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// openRegistry loads the language data. With --redis-addr the user words of
// langs are layered over the main dictionaries.
func openRegistry(ctx context.Context, g globalOptions, langs ...string) (*language.Registry, error) {
	opts := language.Options{Dir: g.dataDir}
	if g.redisAddr != "" && len(langs) > 0 {
		store, closeStore, err := openUserStore(g.redisAddr)
		if err != nil {
			return nil, err
		}
		defer closeStore()
		opts.UserDicts = make(map[string]dict.Dictionary, len(langs))
		for _, code := range langs {
			if code == "" {
				continue
			}
			key := userDictKey(code)
			if _, ok := opts.UserDicts[key]; ok {
				continue
			}
			words, err := store.Load(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to load user dictionary for %s: %w", key, err)
			}
			opts.UserDicts[key] = words
		}
	}
	reg, err := language.NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// loadProjectConfig returns the --config file or the gramlint.toml found
// above start. A missing config is not an error.
func loadProjectConfig(g globalOptions, start string) (*project.Config, error) {
	if g.config != "" {
		return project.LoadFile(g.config)
	}
	if start == "" || start == "-" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		start = wd
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	cfg, _, err := project.Load(abs)
	return cfg, err
}

// splitList разбирает значения вида "A,B" из повторяемых флагов.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
