// Package writer exposes sinks for document emission.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileWriter replaces the file at Path atomically: output goes to a temp
// file next to it, which is renamed over Path only once fully written.
type FileWriter struct {
	Path string
	Perm os.FileMode // defaults to 0o644
}

// WriteBytes writes buf to the configured path.
func (w *FileWriter) WriteBytes(buf []byte) error {
	return w.Stream(func(f io.WriteSeeker) error {
		_, err := f.Write(buf)
		return err
	})
}

// Stream lets fn write the file contents through a seekable sink and commits
// them when fn succeeds. On any failure the previous file is left untouched.
func (w *FileWriter) Stream(fn func(io.WriteSeeker) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(w.Path), ".bymlkit-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fn(tmpFile); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, w.Path); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}
