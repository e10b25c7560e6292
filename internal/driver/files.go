package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"gramlint/internal/source"
)

// DefaultExtensions are the file suffixes collected from directories.
var DefaultExtensions = []string{".txt", ".md", ".text"}

// FileResult содержит результат проверки одного файла
type FileResult struct {
	Path   string
	FileID source.FileID
	Result *Result
}

// ListFiles expands paths: files are kept as given, directories are walked
// for files with one of exts. The result is sorted and deduplicated.
func ListFiles(paths, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if path == root || hasExt(path, exts) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// FileStatus is the state reported for one file of CheckFiles.
type FileStatus uint8

const (
	FileChecking FileStatus = iota
	FileDone
	FileError
)

func (s FileStatus) String() string {
	switch s {
	case FileChecking:
		return "checking"
	case FileDone:
		return "done"
	case FileError:
		return "error"
	}
	return "unknown"
}

// FileEvent reports progress of one file. Index is its position in the ids
// passed to CheckFiles.
type FileEvent struct {
	Index   int
	Path    string
	Status  FileStatus
	Matches int
	Failed  int // предложения с ошибкой анализа
	Err     error
}

// CheckFiles checks the given files of fileSet in parallel, each with req
// and the file's content as text. Results are returned in input order.
// progress, if set, is called from the calling goroutine only.
// Any error other than per-sentence analysis failures aborts the run.
func (s *Session) CheckFiles(ctx context.Context, fileSet *source.FileSet, ids []source.FileID, req Request, progress func(FileEvent)) ([]FileResult, error) {
	results := make([]FileResult, len(ids))
	if len(ids) == 0 {
		return results, nil
	}
	jobs := s.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// по два события на файл, отправка никогда не блокируется
	events := make(chan FileEvent, 2*len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ids)))
	for i, id := range ids {
		g.Go(func() error {
			f := fileSet.Get(id)
			events <- FileEvent{Index: i, Path: f.Path, Status: FileChecking}
			fr := req
			fr.Text = string(f.Content)
			fr.File = id
			res, err := s.Check(gctx, fr)
			if err != nil {
				events <- FileEvent{Index: i, Path: f.Path, Status: FileError, Err: err}
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			// индексы уникальны, мьютекс не нужен
			results[i] = FileResult{Path: f.Path, FileID: id, Result: res}
			events <- FileEvent{Index: i, Path: f.Path, Status: FileDone, Matches: len(res.Matches), Failed: len(res.Failed)}
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(events)
	}()
	for ev := range events {
		if progress != nil {
			progress(ev)
		}
	}
	if err := <-waitErr; err != nil {
		return nil, err
	}
	return results, nil
}
