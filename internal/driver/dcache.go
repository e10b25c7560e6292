package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"gramlint/internal/diag"
	"gramlint/internal/language"
	"gramlint/internal/pattern"
	"gramlint/internal/source"
)

// cacheSchema меняется при любом изменении cacheEntry.
const cacheSchema uint16 = 2

type digest [32]byte

func (d digest) String() string { return hex.EncodeToString(d[:]) }

// cacheEntry is one stored check result. Key and Language repeat what the
// file name encodes, so a foreign or truncated file never counts as a hit.
type cacheEntry struct {
	Schema    uint16           `msgpack:"v"`
	Key       digest           `msgpack:"k"`
	Language  string           `msgpack:"l"`
	Stored    int64            `msgpack:"t"`
	Matches   []diag.RuleMatch `msgpack:"m"`
	Sentences []source.Span    `msgpack:"s"`
}

// DiskCache хранит результаты проверки на диске, по файлу на запрос.
// Results with failed sentences are never stored. Safe for concurrent use;
// a nil *DiskCache is a cache that always misses.
type DiskCache struct {
	dir    string
	mu     sync.RWMutex
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats counts lookups since the cache was opened.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// OpenDiskCache opens the cache of app under the user cache directory.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) entriesDir() string { return filepath.Join(c.dir, "checks") }

func (c *DiskCache) pathFor(key digest) string {
	name := key.String()
	// подкаталог по первому байту ключа
	return filepath.Join(c.entriesDir(), name[:2], name+".mp")
}

// load returns the stored result for key, checked against lang.
func (c *DiskCache) load(key digest, lang string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	entry, err := c.read(key)
	if err != nil || entry.Schema != cacheSchema || entry.Key != key || entry.Language != lang {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	res := &Result{
		Language:  lang,
		Matches:   entry.Matches,
		Sentences: entry.Sentences,
		Cached:    true,
	}
	if res.Matches == nil {
		res.Matches = []diag.RuleMatch{}
	}
	if res.Sentences == nil {
		res.Sentences = []source.Span{}
	}
	return res, true
}

func (c *DiskCache) read(key digest) (*cacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var entry cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// save stores res under key unless some sentence failed; a failed sentence
// is analyzed again on the next check.
func (c *DiskCache) save(key digest, res *Result) error {
	if c == nil || res == nil || len(res.Failed) > 0 {
		return nil
	}
	return c.write(key, &cacheEntry{
		Schema:    cacheSchema,
		Key:       key,
		Language:  res.Language,
		Stored:    time.Now().Unix(),
		Matches:   res.Matches,
		Sentences: res.Sentences,
	})
}

func (c *DiskCache) write(key digest, entry *cacheEntry) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Stats returns the hit and miss counters.
func (c *DiskCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Prune removes entries written more than maxAge ago and leftover temp
// files, returning how many files were removed.
func (c *DiskCache) Prune(maxAge time.Duration) (int, error) {
	if c == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(c.entriesDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stale := strings.HasPrefix(d.Name(), "tmp-") || info.ModTime().Before(cutoff)
		if !stale {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.entriesDir() + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.entriesDir(), old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// keyHasher writes length-prefixed fields so that adjacent fields never
// run into each other.
type keyHasher struct {
	h   hash.Hash
	buf [8]byte
}

func (k *keyHasher) num(n uint64) {
	binary.LittleEndian.PutUint64(k.buf[:], n)
	k.h.Write(k.buf[:])
}

func (k *keyHasher) str(s string) {
	k.num(uint64(len(s)))
	k.h.Write([]byte(s))
}

// requestKey hashes everything a check result depends on: the language
// definition, the file, the mother tongue, the effective rule list and
// the text.
func requestKey(lang *language.Language, file source.FileID, active []*pattern.Rule, motherTongue, text string) digest {
	k := keyHasher{h: sha256.New()}
	k.str(lang.Code)
	k.h.Write(lang.Digest[:])
	k.num(uint64(file))
	k.str(motherTongue)
	ids := ruleIDs(active)
	k.num(uint64(len(ids)))
	for _, id := range ids {
		k.str(id)
	}
	k.str(text)
	var out digest
	k.h.Sum(out[:0])
	return out
}
