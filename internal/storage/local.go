package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore publishes files to a directory served under /uploads.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the public directory if missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage public dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create public dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory served as /uploads.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Publish writes the file into the public directory.
func (s *LocalStore) Publish(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name = safeName(name)
	target := filepath.Join(s.dir, name)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create published file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("write published file: %w", err)
	}
	if err := out.Sync(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("sync published file: %w", err)
	}

	return "/uploads/" + name, nil
}

// Remove deletes a published file.
func (s *LocalStore) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, safeName(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func safeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	return name
}
