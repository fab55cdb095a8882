package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDestinationExists matches every *DestinationConflictError.
var ErrDestinationExists = errors.New("a file with the same name already exists in the destination path")

// DestinationConflictError reports that a move was refused because something
// already occupies the destination. Neither file is touched.
type DestinationConflictError struct {
	Src string
	Dst string
}

func (e *DestinationConflictError) Error() string {
	return fmt.Sprintf("cannot move %q to %q: %v", e.Src, e.Dst, ErrDestinationExists)
}

func (e *DestinationConflictError) Is(target error) bool {
	return target == ErrDestinationExists
}

// Mover relocates a single file. dst is an absolute path including the file
// name.
type Mover interface {
	Move(src, dst string) error
}

// renameFunc is swapped in tests to simulate cross-device renames.
var renameFunc = os.Rename

// FileMover moves files on the local file system and never overwrites.
type FileMover struct{}

func (FileMover) Move(src, dst string) error {
	if err := checkDestination(src, dst); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination dir: %w", err)
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return fmt.Errorf("failed to move file to destination dir: %w", err)
	}

	// Source and destination live on different file systems, so fall back
	// to copy and delete.
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy %q across devices: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied %q but failed to remove the source: %w", src, err)
	}
	return nil
}

// DryRunMover performs the same conflict check as FileMover without touching
// anything. It remembers the destinations it has already approved, so two
// files of one run that map to the same path conflict just like they would in
// a real run.
type DryRunMover struct {
	planned map[string]struct{}
}

func NewDryRunMover() *DryRunMover {
	return &DryRunMover{planned: make(map[string]struct{})}
}

func (m *DryRunMover) Move(src, dst string) error {
	key := filepath.Clean(dst)
	if _, ok := m.planned[key]; ok {
		return &DestinationConflictError{Src: src, Dst: dst}
	}
	if err := checkDestination(src, dst); err != nil {
		return err
	}
	if m.planned == nil {
		m.planned = make(map[string]struct{})
	}
	m.planned[key] = struct{}{}
	return nil
}

func checkDestination(src, dst string) error {
	_, err := os.Lstat(dst)
	if err == nil {
		return &DestinationConflictError{Src: src, Dst: dst}
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check destination %q: %w", dst, err)
	}
	return nil
}

// copyFile copies src next to dst under a temporary name and renames it into
// place once fully written, so an interrupted copy never leaves a partial
// file under the final name. The source modification time is kept.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
