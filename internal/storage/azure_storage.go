package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	apperrors "go-book-study/internal/errors"
	"go-book-study/internal/logger"
	"go-book-study/pkg/validation"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureSource reads page images from one Azure blob container, for
// batches scanned straight into cloud storage.
type AzureSource struct {
	client    *azblob.Client
	container string
}

// NewAzureSource builds a source over the named container using shared
// key credentials.
func NewAzureSource(accountName, accountKey, container string) (*AzureSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid Azure storage credentials", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, apperrors.NewNetworkError("cannot create Azure storage client", err)
	}

	return &AzureSource{client: client, container: container}, nil
}

// Load lists the container and downloads every image blob, sorted by
// blob name so page order follows the scan naming convention.
func (s *AzureSource) Load(ctx context.Context) ([]validation.RawUpload, error) {
	names, err := s.listImageBlobs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	uploads := make([]validation.RawUpload, 0, len(names))
	for _, name := range names {
		data, err := s.download(ctx, name)
		if err != nil {
			logger.WithError(err).WithField("blob", name).Warn("Skipping undownloadable blob")
			continue
		}
		uploads = append(uploads, validation.RawUpload{
			Filename: path.Base(name),
			Data:     data,
		})
	}

	return uploads, nil
}

func (s *AzureSource) listImageBlobs(ctx context.Context) ([]string, error) {
	var names []string

	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewNetworkError(
				fmt.Sprintf("cannot list container %s", s.container), err)
		}
		for _, blob := range page.Segment.BlobItems {
			if blob.Name == nil {
				continue
			}
			ext := strings.ToLower(path.Ext(*blob.Name))
			if imageExtensions[ext] {
				names = append(names, *blob.Name)
			}
		}
	}

	return names, nil
}

func (s *AzureSource) download(ctx context.Context, blobName string) ([]byte, error) {
	response, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	return io.ReadAll(response.Body)
}
