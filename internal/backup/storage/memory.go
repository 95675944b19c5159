package storage

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cloudkeep/cloudkeep/internal/utils"
)

// MemoryBackend is an in-memory Backend used as a test double. It supports
// injected upload failures and artificial delays to exercise the engine's
// failure isolation and concurrency behavior.
type MemoryBackend struct {
	name string

	mu          sync.Mutex
	objects     map[string][]byte
	failUploads map[string]bool
	uploadDelay time.Duration
	uploadCalls int
}

func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{
		name:        name,
		objects:     make(map[string][]byte),
		failUploads: make(map[string]bool),
	}
}

func (m *MemoryBackend) Name() string {
	return m.name
}

func (m *MemoryBackend) Upload(ctx context.Context, localPath, remoteName string) error {
	m.mu.Lock()
	delay := m.uploadDelay
	m.uploadCalls++
	fail := m.failUploads[remoteName]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if fail {
		return fmt.Errorf("injected upload failure for %q", remoteName)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[remoteName] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Exists(ctx context.Context, remoteName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[remoteName]
	return ok, nil
}

func (m *MemoryBackend) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryBackend) Download(ctx context.Context, remoteName, localPath string) error {
	m.mu.Lock()
	data, ok := m.objects[remoteName]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("object %q not found in %s", remoteName, m.name)
	}

	if err := utils.EnsureParent(localPath); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Put seeds an object directly, bypassing Upload bookkeeping.
func (m *MemoryBackend) Put(remoteName string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[remoteName] = data
}

// Get returns a stored object's content.
func (m *MemoryBackend) Get(remoteName string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[remoteName]
	return data, ok
}

// FailUpload makes every Upload of remoteName return an error.
func (m *MemoryBackend) FailUpload(remoteName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUploads[remoteName] = true
}

// AllowUpload clears an injected failure.
func (m *MemoryBackend) AllowUpload(remoteName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failUploads, remoteName)
}

// SetUploadDelay makes every Upload sleep before completing.
func (m *MemoryBackend) SetUploadDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadDelay = d
}

// UploadCalls reports how many times Upload was invoked.
func (m *MemoryBackend) UploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCalls
}

// Len reports the number of stored objects.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ Backend = (*MemoryBackend)(nil)
