// Package engine orchestrates CloudKeep's backup runs: content hashing,
// dedup filtering against the manifest, even distribution across backends,
// concurrent uploads through a bounded worker pool, and prefix-based
// resolution and retrieval of stored files.
package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cloudkeep/cloudkeep/internal/backup/manifest"
	"github.com/cloudkeep/cloudkeep/internal/backup/storage"
	"github.com/cloudkeep/cloudkeep/internal/utils"
)

// maxUploadWorkers bounds the upload pool; the effective pool size is
// min(maxUploadWorkers, queued tasks).
const maxUploadWorkers = 3

type Engine struct {
	backends []storage.Backend
	manifest *manifest.Store
}

func New(backends []storage.Backend, m *manifest.Store) (*Engine, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return &Engine{
		backends: backends,
		manifest: m,
	}, nil
}

// Backends returns the configured backends in their stable order.
func (e *Engine) Backends() []storage.Backend {
	return e.backends
}

// uploadTask is one unit of work: a single file bound to its assigned
// backend. Consumed exactly once by a worker; never retried.
type uploadTask struct {
	backend    storage.Backend
	localPath  string
	remoteName string
	hash       string
	size       int64
}

type pendingFile struct {
	path string
	hash string
	size int64
}

// SyncResult summarizes one backup run.
type SyncResult struct {
	Uploaded      int // confirmed uploads recorded in the manifest
	Failed        int // upload attempts that errored (no retry)
	AlreadyBacked int // skipped: manifest hash matches
	AlreadyRemote int // skipped: backend already holds the remote name
	Missing       int // skipped: local path does not exist
}

// Sync backs up the given local files. Missing files and failed uploads are
// logged and skipped; one file's failure never blocks the others. Every
// confirmed upload is recorded to the manifest immediately.
func (e *Engine) Sync(ctx context.Context, filePaths []string) (*SyncResult, error) {
	result := &SyncResult{}
	if len(filePaths) == 0 {
		return result, nil
	}

	// Filter against the manifest: dedup is keyed by (path, content hash),
	// so identical content under two paths is backed up twice on purpose.
	var pending []pendingFile
	for _, path := range filePaths {
		info, err := os.Stat(path)
		if err != nil {
			slog.Error("file does not exist, skipping", "path", path)
			result.Missing++
			continue
		}

		hash, err := utils.FileHash(path)
		if err != nil {
			slog.Error("hash failed, skipping", "path", path, "error", err)
			result.Missing++
			continue
		}

		if entry, ok := e.manifest.Get(path); ok && entry.Hash == hash {
			slog.Info("already backed up, skipping", "path", path)
			result.AlreadyBacked++
			continue
		}

		pending = append(pending, pendingFile{path: path, hash: hash, size: info.Size()})
	}

	if len(pending) == 0 {
		slog.Info("all files are already backed up")
		return result, nil
	}

	paths := make([]string, len(pending))
	byPath := make(map[string]pendingFile, len(pending))
	for i, p := range pending {
		paths[i] = p.path
		byPath[p.path] = p
	}

	assignments, err := Distribute(paths, e.backends)
	if err != nil {
		return nil, err
	}

	// Existence check per (backend, file) before enqueueing.
	var tasks []*uploadTask
	for _, a := range assignments {
		for _, path := range a.Files {
			p := byPath[path]
			remoteName := filepath.Base(path)

			exists, err := a.Backend.Exists(ctx, remoteName)
			if err != nil {
				slog.Warn("existence check failed", "backend", a.Backend.Name(), "name", remoteName, "error", err)
			} else if exists {
				slog.Info("file already exists on backend, skipping", "backend", a.Backend.Name(), "name", remoteName)
				result.AlreadyRemote++
				continue
			}

			tasks = append(tasks, &uploadTask{
				backend:    a.Backend,
				localPath:  path,
				remoteName: remoteName,
				hash:       p.hash,
				size:       p.size,
			})
		}
	}

	if len(tasks) == 0 {
		return result, nil
	}

	e.runUploads(ctx, tasks, result)
	return result, nil
}

// runUploads drains the task queue with a bounded pool of workers and blocks
// until all of them finish. Manifest updates happen from worker context; the
// store serializes them internally.
func (e *Engine) runUploads(ctx context.Context, tasks []*uploadTask, result *SyncResult) {
	taskCh := make(chan *uploadTask, len(tasks))

	var resultMu sync.Mutex

	process := func(ctx context.Context, t *uploadTask) {
		slog.Info("uploading", "path", t.localPath, "backend", t.backend.Name(), "size", humanize.Bytes(uint64(t.size)))

		if err := t.backend.Upload(ctx, t.localPath, t.remoteName); err != nil {
			slog.Error("upload failed", "path", t.localPath, "backend", t.backend.Name(), "error", err)
			resultMu.Lock()
			result.Failed++
			resultMu.Unlock()
			return
		}

		if err := e.manifest.Record(t.localPath, manifest.Entry{
			Hash:         t.hash,
			LastUploaded: time.Now(),
			Service:      t.backend.Name(),
			Destination:  t.remoteName,
		}); err != nil {
			slog.Error("manifest record failed", "path", t.localPath, "error", err)
		}

		slog.Info("uploaded", "path", t.localPath, "backend", t.backend.Name())
		resultMu.Lock()
		result.Uploaded++
		resultMu.Unlock()
	}

	workers := min(maxUploadWorkers, len(tasks))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-taskCh:
					if !ok {
						return
					}
					process(ctx, t)
				}
			}
		}()
	}

	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	wg.Wait()
}
