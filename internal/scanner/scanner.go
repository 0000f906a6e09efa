// Package scanner discovers convertible source files below a directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Options selects which files a scan returns.
type Options struct {
	Extensions []string
	Excludes   []string
	Recursive  bool
}

// Scanner lists source files under a root directory.
type Scanner interface {
	Scan(rootDir string, opts Options) ([]string, error)
}

// FileScanner implements Scanner using filepath.WalkDir.
type FileScanner struct{}

// NewScanner creates a new FileScanner.
func NewScanner() *FileScanner {
	return &FileScanner{}
}

// Scan walks rootDir and returns the sorted paths of regular files whose
// extension is one of opts.Extensions (case-insensitive). Paths relative to
// rootDir that match an exclude glob are skipped, directories included.
func (s *FileScanner) Scan(rootDir string, opts Options) ([]string, error) {
	excludes := opts.Excludes
	wanted := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(rootDir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if !opts.Recursive || excluded(rel, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || excluded(rel, excludes) {
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewError("scan", rootDir, 0, "failed to scan directory", err)
	}

	slices.Sort(files)
	return files, nil
}

func excluded(rel string, excludes []string) bool {
	for _, exc := range excludes {
		if matchGlob(rel, filepath.ToSlash(exc)) {
			return true
		}
	}
	return false
}

// matchGlob matches a slash-separated path against a glob pattern. A "**"
// segment matches any number of directories; a pattern without a slash
// is also tried against the base name.
func matchGlob(path, pattern string) bool {
	if before, after, ok := strings.Cut(pattern, "**"); ok {
		prefix := strings.TrimSuffix(before, "/")
		suffix := strings.TrimPrefix(after, "/")

		if prefix != "" {
			if path != prefix && !strings.HasPrefix(path, prefix+"/") {
				return false
			}
			path = strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
		}
		if suffix == "" {
			return true
		}

		parts := strings.Split(path, "/")
		for i := range parts {
			if ok, _ := filepath.Match(suffix, strings.Join(parts[i:], "/")); ok {
				return true
			}
		}
		return false
	}

	if !strings.Contains(pattern, "/") {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	ok, _ := filepath.Match(pattern, path)
	return ok
}
