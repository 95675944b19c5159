package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/cloudkeep/cloudkeep/internal/backup/config"
	"github.com/cloudkeep/cloudkeep/internal/utils"
)

const gcsBackendName = "Google Cloud Storage"

type GCSBackend struct {
	bucket *gcstorage.BucketHandle
	name   string
}

// NewGCSBackend builds a Google Cloud Storage adapter. An empty credentials
// file falls back to application default credentials.
func NewGCSBackend(ctx context.Context, cfg *config.GCSConfig) (*GCSBackend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSBackend{
		bucket: client.Bucket(cfg.Bucket),
		name:   gcsBackendName,
	}, nil
}

func (g *GCSBackend) Name() string {
	return g.name
}

func (g *GCSBackend) Upload(ctx context.Context, localPath, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	w := g.bucket.Object(remoteName).NewWriter(ctx)
	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return err
	}
	// Close commits the object; errors here mean the upload did not happen.
	return w.Close()
}

func (g *GCSBackend) Exists(ctx context.Context, remoteName string) (bool, error) {
	_, err := g.bucket.Object(remoteName).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *GCSBackend) List(ctx context.Context) ([]string, error) {
	var names []string

	it := g.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

func (g *GCSBackend) Download(ctx context.Context, remoteName, localPath string) error {
	r, err := g.bucket.Object(remoteName).NewReader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	return utils.WriteStream(localPath, r)
}

var _ Backend = (*GCSBackend)(nil)
