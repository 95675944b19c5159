package engine

import (
	"errors"

	"github.com/cloudkeep/cloudkeep/internal/backup/storage"
)

var ErrNoBackends = errors.New("cannot distribute files across zero backends")

// Assignment pairs a backend with the contiguous slice of files it will
// receive.
type Assignment struct {
	Backend storage.Backend
	Files   []string
}

// Distribute partitions files evenly across backends, in order. With
// N files and K backends the first N mod K backends receive one extra file;
// assignment is contiguous and order-preserving, so the result is
// deterministic for a given input order.
func Distribute(files []string, backends []storage.Backend) ([]Assignment, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if len(files) == 0 {
		return nil, nil
	}

	base := len(files) / len(backends)
	remainder := len(files) % len(backends)

	assignments := make([]Assignment, 0, len(backends))
	start := 0
	for i, b := range backends {
		count := base
		if i < remainder {
			count++
		}
		assignments = append(assignments, Assignment{
			Backend: b,
			Files:   files[start : start+count],
		})
		start += count
	}

	return assignments, nil
}
