package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/avast/retry-go/v4"
)

const (
	blobRetryAttempts = 4
	blobRetryDelay    = 500 * time.Millisecond
)

// BlobStore implements Store on top of Azure Blob Storage. Authentication
// is via a SAS account URL, so no credential object is needed.
type BlobStore struct {
	client    *azblob.Client
	container string
}

// BlobStoreConfig configures a new BlobStore.
type BlobStoreConfig struct {
	AccountURL string // SAS URL of the storage account
	Container  string
}

// NewBlobStore creates a Store backed by an Azure Blob container.
func NewBlobStore(cfg BlobStoreConfig) (*BlobStore, error) {
	if cfg.AccountURL == "" {
		return nil, fmt.Errorf("storage account URL is required")
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("storage container name is required")
	}

	client, err := azblob.NewClientWithNoCredential(cfg.AccountURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStore{client: client, container: cfg.Container}, nil
}

// List returns all blobs under the given prefix.
func (s *BlobStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var objects []ObjectInfo
	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs with prefix %q: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			info := ObjectInfo{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Exists reports whether the named blob exists.
func (s *BlobStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(name).
		GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blob %q: %w", name, err)
	}
	return true, nil
}

// Download returns the full contents of the named blob.
func (s *BlobStore) Download(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
			if err != nil {
				if bloberror.HasCode(err, bloberror.BlobNotFound) {
					return retry.Unrecoverable(ErrNotFound)
				}
				return err
			}
			defer resp.Body.Close()
			data, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(blobRetryAttempts),
		retry.Delay(blobRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %q: %w", name, err)
	}
	return data, nil
}

// Upload writes the blob, optionally refusing to overwrite.
func (s *BlobStore) Upload(ctx context.Context, name string, data []byte, overwrite bool) error {
	if !overwrite {
		exists, err := s.Exists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("blob %q: %w", name, ErrAlreadyExists)
		}
	}

	err := retry.Do(
		func() error {
			_, err := s.client.UploadStream(ctx, s.container, name, bytes.NewReader(data), nil)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(blobRetryAttempts),
		retry.Delay(blobRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upload blob %q: %w", name, err)
	}
	return nil
}

// Delete removes the named blob. Missing blobs are ignored.
func (s *BlobStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete blob %q: %w", name, err)
	}
	return nil
}
