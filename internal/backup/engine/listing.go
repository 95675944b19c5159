package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
)

// displayNameLen is how many characters of a basename the listing shows.
const displayNameLen = 10

// Row is one line of a listing: an ephemeral 1-based serial, the truncated
// file name and the backend it was found on.
type Row struct {
	Serial      int
	DisplayName string
	Service     string
}

// Listing is a snapshot of everything stored across the manifest and the
// live backends. Serials are only valid for this snapshot; any
// download-by-serial call must be given the same Listing back.
type Listing struct {
	Rows []Row
}

// BuildListing merges manifest entries (first, deduplicated by basename)
// with each backend's live listing (skipping basenames already seen).
// Backend enumeration failures degrade to empty listings.
func (e *Engine) BuildListing(ctx context.Context) *Listing {
	listing := &Listing{}
	seen := make(map[string]bool)
	serial := 1

	// Manifest entries first, in sorted path order so serials are stable
	// for an unchanged manifest.
	entries := e.manifest.Entries()
	paths := make([]string, 0, len(entries))
	for path := range entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		name := filepath.Base(path)
		if seen[name] {
			continue
		}
		service := entries[path].Service
		if service == "" {
			service = UnknownService
		}
		listing.Rows = append(listing.Rows, Row{
			Serial:      serial,
			DisplayName: truncateName(name),
			Service:     service,
		})
		seen[name] = true
		serial++
	}

	// Then anything the backends hold that the manifest doesn't know about.
	for i, names := range e.listAll(ctx) {
		for _, name := range names {
			if seen[name] {
				continue
			}
			listing.Rows = append(listing.Rows, Row{
				Serial:      serial,
				DisplayName: truncateName(name),
				Service:     e.backends[i].Name(),
			})
			seen[name] = true
			serial++
		}
	}

	return listing
}

// listAll enumerates every backend concurrently and returns the results
// indexed by backend position, so callers can consume them in backend order.
// A failed enumeration yields an empty slice, never an error.
func (e *Engine) listAll(ctx context.Context) [][]string {
	results := make([][]string, len(e.backends))

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range e.backends {
		g.Go(func() error {
			names, err := b.List(ctx)
			if err != nil {
				slog.Error("listing failed", "backend", b.Name(), "error", err)
				return nil
			}
			results[i] = names
			return nil
		})
	}
	g.Wait()

	return results
}

// Render writes the listing as an aligned table.
func (l *Listing) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SR NO\tFILE NAME (FIRST 10)\tSOURCE SERVICE")
	for _, row := range l.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Serial, row.DisplayName, row.Service)
	}
	return tw.Flush()
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= displayNameLen {
		return name
	}
	return string(runes[:displayNameLen])
}
