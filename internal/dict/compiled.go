package dict

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/edsrzf/mmap-go"
	"github.com/vmihailenco/msgpack/v5"

	"gramlint/internal/token"
)

// Формат скомпилированного словаря:
//
//	header | index: count*uint64 (абсолютные смещения записей, по возрастанию формы) | data: msgpack-записи
const compiledMagic = "GLD1"

type compiledHeader struct {
	Magic    [4]byte
	Count    uint32
	IndexOff uint64
	DataOff  uint64
}

const headerSize = 4 + 4 + 8 + 8

type record struct {
	_msgpack struct{} `msgpack:",as_array"`
	Form     string
	Readings []recordReading
}

type recordReading struct {
	_msgpack struct{} `msgpack:",as_array"`
	Lemma    string
	Tag      string
}

// Compile writes entries in the binary format read by OpenCompiled.
// Readings of one form keep their order; forms are sorted.
func Compile(w io.Writer, entries []Entry) error {
	m := NewMap()
	for _, e := range entries {
		m.Add(e)
	}
	forms := make([]string, 0, m.Len())
	for f := range m.m {
		forms = append(forms, f)
	}
	sort.Strings(forms)

	var data bytes.Buffer
	enc := msgpack.NewEncoder(&data)
	rel := make([]uint64, len(forms))
	for i, f := range forms {
		rel[i] = uint64(data.Len())
		rec := record{Form: f}
		for _, r := range m.m[f] {
			rec.Readings = append(rec.Readings, recordReading{Lemma: r.Lemma, Tag: r.Tag})
		}
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("encode %q: %w", f, err)
		}
	}

	count := uint32(len(forms)) // #nosec G115 -- dictionaries stay far below 4G forms
	h := compiledHeader{Count: count, IndexOff: headerSize}
	copy(h.Magic[:], compiledMagic)
	h.DataOff = h.IndexOff + 8*uint64(count)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return err
	}
	for _, off := range rel {
		if err := binary.Write(bw, binary.LittleEndian, h.DataOff+off); err != nil {
			return err
		}
	}
	if _, err := bw.Write(data.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// CompileFile writes entries into path, replacing it atomically.
func CompileFile(path string, entries []Entry) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dict-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := Compile(tmp, entries); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Compiled is a memory-mapped dictionary. Lookups binary-search the offset
// index and decode only the records they touch.
type Compiled struct {
	m       mmap.MMap
	count   int
	indexAt uint64
}

// OpenCompiled maps the file at path read-only.
func OpenCompiled(path string) (*Compiled, error) {
	// #nosec G304 -- path comes from language configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary: %w", err)
	}
	c, err := newCompiled(m)
	if err != nil {
		_ = m.Unmap()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func newCompiled(m []byte) (*Compiled, error) {
	if len(m) < headerSize {
		return nil, fmt.Errorf("file too small for header")
	}
	var h compiledHeader
	if err := binary.Read(bytes.NewReader(m[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(h.Magic[:]) != compiledMagic {
		return nil, fmt.Errorf("bad magic %q", h.Magic[:])
	}
	if h.IndexOff+8*uint64(h.Count) > uint64(len(m)) || h.DataOff > uint64(len(m)) {
		return nil, fmt.Errorf("index of %d entries exceeds file size %d", h.Count, len(m))
	}
	return &Compiled{m: m, count: int(h.Count), indexAt: h.IndexOff}, nil
}

func (c *Compiled) offset(i int) uint64 {
	at := c.indexAt + 8*uint64(i) // #nosec G115 -- i < count
	return binary.LittleEndian.Uint64(c.m[at : at+8])
}

func (c *Compiled) decoder(i int) (*msgpack.Decoder, error) {
	off := c.offset(i)
	if off >= uint64(len(c.m)) {
		return nil, fmt.Errorf("record %d offset %d out of range", i, off)
	}
	return msgpack.NewDecoder(bytes.NewReader(c.m[off:])), nil
}

// formAt decodes only the form of record i.
func (c *Compiled) formAt(i int) (string, error) {
	dec, err := c.decoder(i)
	if err != nil {
		return "", err
	}
	if _, err := dec.DecodeArrayLen(); err != nil {
		return "", err
	}
	return dec.DecodeString()
}

func (c *Compiled) Lookup(form string) []token.Reading {
	var failed bool
	i := sort.Search(c.count, func(i int) bool {
		f, err := c.formAt(i)
		if err != nil {
			failed = true
			return true
		}
		return f >= form
	})
	if failed || i >= c.count {
		return nil
	}
	dec, err := c.decoder(i)
	if err != nil {
		return nil
	}
	var rec record
	if err := dec.Decode(&rec); err != nil || rec.Form != form {
		return nil
	}
	out := make([]token.Reading, len(rec.Readings))
	for j, r := range rec.Readings {
		out[j] = token.Reading{Lemma: r.Lemma, Tag: r.Tag}
	}
	return out
}

// Len returns the number of forms.
func (c *Compiled) Len() int { return c.count }

// Close unmaps the file. The dictionary must not be used afterwards.
func (c *Compiled) Close() error {
	if c.m == nil {
		return nil
	}
	err := c.m.Unmap()
	c.m = nil
	return err
}
