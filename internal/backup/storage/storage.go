// Package storage defines the object-storage capability CloudKeep distributes
// backups across, plus one adapter per supported cloud target.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudkeep/cloudkeep/internal/backup/config"
)

var ErrNoBackends = errors.New("no storage backends configured")

// Backend is the uniform contract every cloud target implements. Adapters
// perform a single attempt per call and never retry; callers decide how to
// react to failures.
type Backend interface {
	// Name is a stable, unique, human-readable identifier. It is used as
	// both display label and lookup key, so names must be unique across
	// the configured backend set.
	Name() string

	// Upload transfers the local file's content to remoteName.
	Upload(ctx context.Context, localPath, remoteName string) error

	// Exists reports whether remoteName is already present.
	Exists(ctx context.Context, remoteName string) (bool, error)

	// List enumerates every remote name currently stored on this backend.
	List(ctx context.Context) ([]string, error)

	// Download writes the remote object's content to localPath.
	Download(ctx context.Context, remoteName, localPath string) error
}

// FromConfig constructs one backend per configured cloud target, in a fixed
// order (S3, GCS, Azure). The order is stable for a given config; resolution
// fallbacks depend on it.
func FromConfig(ctx context.Context, cfg *config.Config) ([]Backend, error) {
	var backends []Backend

	if cfg.S3.Configured() {
		b, err := NewS3Backend(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("init s3 backend: %w", err)
		}
		backends = append(backends, b)
	}

	if cfg.GCS.Configured() {
		b, err := NewGCSBackend(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("init gcs backend: %w", err)
		}
		backends = append(backends, b)
	}

	if cfg.Azure.Configured() {
		b, err := NewAzureBackend(cfg.Azure)
		if err != nil {
			return nil, fmt.Errorf("init azure backend: %w", err)
		}
		backends = append(backends, b)
	}

	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	return backends, nil
}
