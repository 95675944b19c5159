// Package config holds the explicit configuration passed to backend
// constructors. Credentials are loaded by the CLI (flags, env, .env file) and
// handed over as plain values so the core stays testable without real
// credentials.
package config

import (
	"errors"
	"path/filepath"
)

var (
	DefaultFileList = "backup_files.txt"
	DefaultManifest = "manifest.json"
	DefaultLogFile  = "cloudkeep.log"
)

type S3Config struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO etc).
	Endpoint string `json:"endpoint"`
}

func (c *S3Config) Configured() bool {
	return c != nil && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type GCSConfig struct {
	ProjectID string `json:"project_id"`
	Bucket    string `json:"bucket"`
	// CredentialsFile points at a service account key; empty falls back to
	// application default credentials.
	CredentialsFile string `json:"credentials_file"`
}

func (c *GCSConfig) Configured() bool {
	return c != nil && c.Bucket != "" && c.ProjectID != ""
}

type AzureConfig struct {
	ConnectionString string `json:"connection_string"`
	Container        string `json:"container"`
}

func (c *AzureConfig) Configured() bool {
	return c != nil && c.Container != "" && c.ConnectionString != ""
}

type Config struct {
	S3    *S3Config    `json:"s3"`
	GCS   *GCSConfig   `json:"gcs"`
	Azure *AzureConfig `json:"azure"`

	// FileList is the newline-separated list of local paths to back up.
	FileList string `json:"file_list"`
	// ManifestPath is the durable record of confirmed uploads.
	ManifestPath string `json:"manifest_path"`
	// LogFile receives the plain-text copy of the structured log.
	LogFile string `json:"log_file"`
}

// Validate normalizes paths and checks that at least one backend target is
// fully configured.
func (c *Config) Validate() error {
	if c.FileList == "" {
		c.FileList = DefaultFileList
	}
	if c.ManifestPath == "" {
		c.ManifestPath = DefaultManifest
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}

	if !c.S3.Configured() && !c.GCS.Configured() && !c.Azure.Configured() {
		return errors.New("no storage backend configured: set AWS, GCP or Azure credentials")
	}

	for _, p := range []*string{&c.FileList, &c.ManifestPath, &c.LogFile} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}

	return nil
}
