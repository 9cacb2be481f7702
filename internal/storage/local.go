package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores objects as files under a directory on the local
// filesystem. It serves as the default backend for development and
// single-node deployments.
type LocalClient struct {
	dir string
}

// NewLocalClient constructs a filesystem-backed client rooted at dir.
func NewLocalClient(dir string) (*LocalClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local storage directory is required")
	}
	return &LocalClient{dir: dir}, nil
}

// EnsureBucket creates the storage directory if it does not exist.
func (l *LocalClient) EnsureBucket(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes an object to disk. The write goes through a temp file and
// rename so a partially written object is never visible under its key.
func (l *LocalClient) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := l.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get opens a reader for an object on disk.
func (l *LocalClient) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.keyPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// Delete removes an object from disk. Deleting an absent object is an
// error so callers can distinguish cleanup failures.
func (l *LocalClient) Delete(_ context.Context, key string) error {
	path, err := l.keyPath(key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Bucket returns the storage directory.
func (l *LocalClient) Bucket() string {
	return l.dir
}

func (l *LocalClient) keyPath(key string) (string, error) {
	cleaned := filepath.Base(filepath.Clean(key))
	if cleaned == "" || cleaned == "." || cleaned == string(filepath.Separator) {
		return "", errors.New("invalid object key")
	}
	return filepath.Join(l.dir, cleaned), nil
}
