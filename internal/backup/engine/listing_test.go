package engine

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudkeep/cloudkeep/internal/backup/manifest"
	"github.com/cloudkeep/cloudkeep/internal/backup/storage"
)

func TestBuildListing_AfterFullSync(t *testing.T) {
	a := storage.NewMemoryBackend("Backend A")
	b := storage.NewMemoryBackend("Backend B")
	c := storage.NewMemoryBackend("Backend C")
	eng, _ := newTestEngine(t, a, b, c)

	dir := t.TempDir()
	var paths []string
	for i := 1; i <= 7; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("f%d", i), fmt.Sprintf("content %d", i)))
	}

	_, err := eng.Sync(context.Background(), paths)
	require.NoError(t, err)

	listing := eng.BuildListing(context.Background())
	require.Len(t, listing.Rows, 7)

	wantService := map[string]string{
		"f1": "Backend A", "f2": "Backend A", "f3": "Backend A",
		"f4": "Backend B", "f5": "Backend B",
		"f6": "Backend C", "f7": "Backend C",
	}
	for i, row := range listing.Rows {
		assert.Equal(t, i+1, row.Serial)
		assert.Equal(t, fmt.Sprintf("f%d", i+1), row.DisplayName)
		assert.Equal(t, wantService[row.DisplayName], row.Service)
	}
}

func TestBuildListing_TruncatesLongNames(t *testing.T) {
	b := storage.NewMemoryBackend("Backend A")
	eng, store := newTestEngine(t, b)

	require.NoError(t, store.Record("/data/quarterly_report_2026.pdf", manifest.Entry{
		Hash:         "h",
		LastUploaded: time.Now(),
		Service:      "Backend A",
		Destination:  "quarterly_report_2026.pdf",
	}))

	listing := eng.BuildListing(context.Background())
	require.Len(t, listing.Rows, 1)
	assert.Equal(t, "quarterly_", listing.Rows[0].DisplayName)
}

func TestBuildListing_MergesManifestFirstThenBackends(t *testing.T) {
	a := storage.NewMemoryBackend("Backend A")
	b := storage.NewMemoryBackend("Backend B")
	eng, store := newTestEngine(t, a, b)

	// Manifest knows one file; Backend A holds that same object plus an
	// orphan; Backend B holds another orphan.
	require.NoError(t, store.Record("/home/known.txt", manifest.Entry{
		Hash: "h", Service: "Backend A", Destination: "known.txt",
	}))
	a.Put("known.txt", []byte("x"))
	a.Put("orphan-a.txt", []byte("y"))
	b.Put("orphan-b.txt", []byte("z"))

	listing := eng.BuildListing(context.Background())
	require.Len(t, listing.Rows, 3)

	// Manifest entries come first; live listings follow in backend order,
	// skipping basenames already seen.
	assert.Equal(t, Row{Serial: 1, DisplayName: "known.txt", Service: "Backend A"}, listing.Rows[0])
	assert.Equal(t, Row{Serial: 2, DisplayName: "orphan-a.t", Service: "Backend A"}, listing.Rows[1])
	assert.Equal(t, Row{Serial: 3, DisplayName: "orphan-b.t", Service: "Backend B"}, listing.Rows[2])
}

func TestBuildListing_UnknownServiceForUnattributedEntries(t *testing.T) {
	eng, store := newTestEngine(t, storage.NewMemoryBackend("Backend A"))

	require.NoError(t, store.Record("/home/lost.txt", manifest.Entry{
		Hash: "h", Destination: "lost.txt",
	}))

	listing := eng.BuildListing(context.Background())
	require.Len(t, listing.Rows, 1)
	assert.Equal(t, UnknownService, listing.Rows[0].Service)
}

func TestListing_Render(t *testing.T) {
	listing := &Listing{Rows: []Row{
		{Serial: 1, DisplayName: "f1", Service: "Backend A"},
		{Serial: 2, DisplayName: "quarterly_", Service: "Backend B"},
	}}

	var buf bytes.Buffer
	require.NoError(t, listing.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "SR NO")
	assert.Contains(t, out, "quarterly_")
	assert.Contains(t, out, "Backend B")
}
