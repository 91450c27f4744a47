package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Files stores result-file attachments on local disk, one directory per
// competition slug.
type Files struct {
	baseDir string
}

func NewFiles(baseDir string) *Files {
	return &Files{baseDir: baseDir}
}

func (f *Files) WriteResultFile(slug, filename string, content []byte) (string, error) {
	dir := filepath.Join(f.baseDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// filepath.Base guards against path traversal in imported filenames.
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *Files) ReadResultFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}
