// Package storage keeps uploaded images (company logos, product photos) and
// hands back the public URL they are served from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"toyWholesale/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KindLogo    = "logos"
	KindProduct = "products"
)

var ErrUnsupportedType = errors.New("unsupported image type")

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var ErrForeignURL = errors.New("url was not issued by this storage")

// Storage saves one file under kind and returns the URL clients fetch it from.
// Remove deletes a file by the URL Save returned.
type Storage interface {
	Save(ctx context.Context, kind, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// New builds the driver selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.Dir, cfg.PublicPrefix, log)
	case "s3":
		return NewS3Storage(ctx, cfg.S3, WithLogger(log))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// keyFromURL recovers "<kind>/<name>" from a public URL under base.
func keyFromURL(base, url string) (string, error) {
	key, ok := strings.CutPrefix(url, base)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", ErrForeignURL
	}
	kind, name, ok := strings.Cut(key, "/")
	if !ok || name == "" || strings.Contains(name, "/") || (kind != KindLogo && kind != KindProduct) {
		return "", ErrForeignURL
	}
	return key, nil
}

// objectKey returns "<kind>/<uuid><ext>" for an accepted image name.
func objectKey(kind, filename string) (key, contentType string, err error) {
	switch kind {
	case KindLogo, KindProduct:
	default:
		return "", "", fmt.Errorf("unknown upload kind %q", kind)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExt[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return kind + "/" + uuid.NewString() + ext, contentType, nil
}
