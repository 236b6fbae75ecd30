package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage writes files below dir; they are served under prefix.
type LocalStorage struct {
	dir    string
	prefix string
	log    *zap.Logger
}

func NewLocalStorage(dir, prefix string, log *zap.Logger) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &LocalStorage{dir: dir, prefix: prefix, log: log.Named("storage")}, nil
}

func (l *LocalStorage) Dir() string { return l.dir }

func (l *LocalStorage) Save(ctx context.Context, kind, filename string, r io.Reader) (string, error) {
	key, _, err := objectKey(kind, filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err = f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	l.log.Debug("saved upload", zap.String("key", key))
	return l.prefix + key, nil
}

func (l *LocalStorage) Remove(ctx context.Context, url string) error {
	key, err := keyFromURL(l.prefix, url)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
