package core

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// FileEntry is one regular file handed to the organizer by the traversal.
type FileEntry struct {
	Path string
	Name string

	// Open gives access to the file content. It is only called for kinds
	// that read metadata.
	Open func() (io.ReadCloser, error)
}

// NewFileEntry describes the file at path on the local file system.
func NewFileEntry(path string) FileEntry {
	return FileEntry{
		Path: path,
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Walk calls fn for every regular file under root. Directories are visited in
// lexical order, symlinks are never followed, and any directory in exclude
// is skipped entirely. Exclude entries that are not strictly below root, such
// as root itself or one of its parents, are ignored. Unreadable subdirectories are logged and skipped; only
// a failure on root itself, or an error returned by fn, stops the walk.
func Walk(logger hclog.Logger, root string, exclude []string, fn func(FileEntry) error) error {
	root = filepath.Clean(root)
	excluded := excludedBelow(root, exclude)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if isExcluded(path, excluded) {
				logger.Debug("skipping excluded directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		return fn(NewFileEntry(path))
	})
}

// countFiles returns how many entries Walk would produce, so progress can be
// shown against a known total.
func countFiles(logger hclog.Logger, root string, exclude []string) (int, error) {
	count := 0
	err := Walk(logger.Named("count"), root, exclude, func(FileEntry) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func cleanPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

// excludedBelow keeps the exclude entries that live inside root. A destination
// that contains the source must not hide the source's own subdirectories.
func excludedBelow(root string, exclude []string) []string {
	var out []string
	for _, base := range cleanPaths(exclude) {
		rel, err := filepath.Rel(root, base)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, base)
	}
	return out
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
