package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/cloudkeep/cloudkeep/internal/backup/config"
	"github.com/cloudkeep/cloudkeep/internal/utils"
)

const azureBackendName = "Azure Blob Storage"

type AzureBackend struct {
	client    *azblob.Client
	container string
}

// NewAzureBackend builds an Azure Blob Storage adapter from a connection
// string.
func NewAzureBackend(cfg *config.AzureConfig) (*AzureBackend, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure client: %w", err)
	}

	return &AzureBackend{
		client:    client,
		container: cfg.Container,
	}, nil
}

func (a *AzureBackend) Name() string {
	return azureBackendName
}

func (a *AzureBackend) Upload(ctx context.Context, localPath, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = a.client.UploadFile(ctx, a.container, remoteName, file, nil)
	if bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		// The blob is already there; treat as a confirmed upload.
		return nil
	}
	return err
}

func (a *AzureBackend) Exists(ctx context.Context, remoteName string) (bool, error) {
	_, err := a.blobClient(remoteName).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a *AzureBackend) List(ctx context.Context) ([]string, error) {
	var names []string

	pager := a.client.NewListBlobsFlatPager(a.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	return names, nil
}

func (a *AzureBackend) Download(ctx context.Context, remoteName, localPath string) error {
	resp, err := a.client.DownloadStream(ctx, a.container, remoteName, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return utils.WriteStream(localPath, resp.Body)
}

func (a *AzureBackend) blobClient(remoteName string) *blob.Client {
	return a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(remoteName)
}

var _ Backend = (*AzureBackend)(nil)
