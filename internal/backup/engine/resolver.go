package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cloudkeep/cloudkeep/internal/backup/storage"
)

// UnknownService marks a listing row whose owning backend is not recorded;
// resolution for such rows always consults the live backends.
const UnknownService = "Unknown"

var (
	ErrNotFound      = errors.New("no stored file matches the given prefix")
	ErrInvalidSerial = errors.New("invalid serial number")
)

// Resolve locates the full remote identity of a file from a short basename
// prefix. The manifest is consulted first; live backend listings are the
// fallback. A hint of "" or "Unknown" accepts the first match, otherwise the
// owning service must match the hint exactly.
func (e *Engine) Resolve(ctx context.Context, prefix, hint string) (remoteName, service string, err error) {
	remoteName, service = e.resolveFromManifest(prefix, hint)

	// A manifest miss, or a match whose recorded service is unknown, falls
	// back to live enumeration in backend order.
	if remoteName == "" || service == UnknownService {
		if name, svc := e.resolveFromBackends(ctx, prefix, hint); name != "" {
			return name, svc, nil
		}
	}

	if remoteName == "" {
		return "", "", fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return remoteName, service, nil
}

func (e *Engine) resolveFromManifest(prefix, hint string) (string, string) {
	entries := e.manifest.Entries()

	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		name := filepath.Base(path)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		service := entries[path].Service
		if service == "" {
			service = UnknownService
		}
		if hint == "" || hint == UnknownService || service == hint {
			return name, service
		}
	}
	return "", ""
}

func (e *Engine) resolveFromBackends(ctx context.Context, prefix, hint string) (string, string) {
	for i, names := range e.listAll(ctx) {
		backendName := e.backends[i].Name()
		if hint != "" && hint != UnknownService && backendName != hint {
			continue
		}
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				return name, backendName
			}
		}
	}
	return "", ""
}

// Download fetches remoteName from the backend called service into destDir
// and returns the local path. When no configured backend carries that name,
// a last-resort pass probes every backend's existence check in order and
// takes the first positive answer.
func (e *Engine) Download(ctx context.Context, remoteName, service, destDir string) (string, error) {
	var backend storage.Backend
	for _, b := range e.backends {
		if b.Name() == service {
			backend = b
			break
		}
	}

	if backend == nil {
		for _, b := range e.backends {
			ok, err := b.Exists(ctx, remoteName)
			if err != nil {
				slog.Warn("existence probe failed", "backend", b.Name(), "name", remoteName, "error", err)
				continue
			}
			if ok {
				slog.Debug("resolved by existence probe", "backend", b.Name(), "name", remoteName)
				backend = b
				break
			}
		}
	}

	if backend == nil {
		return "", fmt.Errorf("no backend holds %q", remoteName)
	}

	localPath := filepath.Join(destDir, remoteName)
	if err := backend.Download(ctx, remoteName, localPath); err != nil {
		return "", fmt.Errorf("download %q from %s: %w", remoteName, backend.Name(), err)
	}

	slog.Info("downloaded", "name", remoteName, "backend", backend.Name(), "path", localPath)
	return localPath, nil
}

// DownloadBySerial maps a serial from the given listing snapshot back to a
// full remote identity and downloads it into destDir.
func (e *Engine) DownloadBySerial(ctx context.Context, serial int, listing *Listing, destDir string) (string, error) {
	if listing == nil || serial < 1 || serial > len(listing.Rows) {
		return "", fmt.Errorf("%w: %d", ErrInvalidSerial, serial)
	}

	row := listing.Rows[serial-1]
	remoteName, service, err := e.Resolve(ctx, row.DisplayName, row.Service)
	if err != nil {
		return "", err
	}

	return e.Download(ctx, remoteName, service, destDir)
}
