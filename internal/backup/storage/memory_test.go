package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_UploadDownloadRoundTrip(t *testing.T) {
	b := NewMemoryBackend("Backend A")

	src := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	require.NoError(t, b.Upload(context.Background(), src, "src.txt"))

	ok, err := b.Exists(context.Background(), "src.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	dst := filepath.Join(t.TempDir(), "dst.txt")
	require.NoError(t, b.Download(context.Background(), "src.txt", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestMemoryBackend_ListIsSorted(t *testing.T) {
	b := NewMemoryBackend("Backend A")
	b.Put("zeta", nil)
	b.Put("alpha", nil)
	b.Put("mid", nil)

	names, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestMemoryBackend_InjectedFailure(t *testing.T) {
	b := NewMemoryBackend("Backend A")
	b.FailUpload("bad.txt")

	src := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	err := b.Upload(context.Background(), src, "bad.txt")
	assert.Error(t, err)
	assert.Equal(t, 1, b.UploadCalls())
	assert.Equal(t, 0, b.Len())

	b.AllowUpload("bad.txt")
	require.NoError(t, b.Upload(context.Background(), src, "bad.txt"))
	assert.Equal(t, 1, b.Len())
}

func TestMemoryBackend_DownloadMissing(t *testing.T) {
	b := NewMemoryBackend("Backend A")
	err := b.Download(context.Background(), "nope", filepath.Join(t.TempDir(), "out"))
	assert.Error(t, err)
}
