package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/dept-portal-api/pkg/config"
)

// Provider stores attachment bytes and hands back a reference URL.
type Provider interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New selects the provider configured for the deployment.
func New(ctx context.Context, cfg config.StorageConfig) (Provider, error) {
	switch cfg.Driver {
	case config.StorageDriverMinio:
		return NewMinioStorage(ctx, cfg)
	case config.StorageDriverLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalPublicBase)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ObjectKey builds a collision-free key under prefix keeping the original extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	day := time.Now().UTC().Format("2006/01/02")
	return path.Join(prefix, day, uuid.NewString()+ext)
}
