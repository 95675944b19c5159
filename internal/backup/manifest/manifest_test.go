package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "manifest.json"))
	assert.Equal(t, 0, store.Len())
}

func TestOpen_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := Open(path)
	assert.Equal(t, 0, store.Len())
}

func TestStore_RecordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	uploaded := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	entry := Entry{
		Hash:         "deadbeef",
		LastUploaded: uploaded,
		Service:      "AWS S3",
		Destination:  "notes.txt",
	}

	store := Open(path)
	require.NoError(t, store.Record("/home/alice/notes.txt", entry))

	reloaded := Open(path)
	got, ok := reloaded.Get("/home/alice/notes.txt")
	require.True(t, ok)
	assert.Equal(t, entry.Hash, got.Hash)
	assert.True(t, entry.LastUploaded.Equal(got.LastUploaded))
	assert.Equal(t, entry.Service, got.Service)
	assert.Equal(t, entry.Destination, got.Destination)
}

func TestStore_RecordOverwritesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	store := Open(path)

	require.NoError(t, store.Record("/f", Entry{Hash: "old", Service: "AWS S3"}))
	require.NoError(t, store.Record("/f", Entry{Hash: "new", Service: "AWS S3"}))

	got, ok := Open(path).Get("/f")
	require.True(t, ok)
	assert.Equal(t, "new", got.Hash)
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentRecordsLoseNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	store := Open(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Record(fmt.Sprintf("/file-%d", i), Entry{
				Hash:         fmt.Sprintf("hash-%d", i),
				LastUploaded: time.Now(),
				Service:      "AWS S3",
				Destination:  fmt.Sprintf("file-%d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
	assert.Equal(t, 20, Open(path).Len())
}

func TestStore_EntriesReturnsCopy(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "manifest.json"))
	require.NoError(t, store.Record("/f", Entry{Hash: "h"}))

	entries := store.Entries()
	entries["/g"] = Entry{Hash: "x"}

	assert.Equal(t, 1, store.Len())
}
