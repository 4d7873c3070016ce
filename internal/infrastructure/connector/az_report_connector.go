package connector

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// AzureReportConnector stores reports as blobs in one container
type AzureReportConnector struct {
	client        *azblob.Client
	containerName string
	logger        logger.Logger
}

// NewAzureReportConnector connects with a connection string and creates the container if it does not exist
func NewAzureReportConnector(ctx context.Context, settings *config.ReportConnectorSettings, logger logger.Logger) (*AzureReportConnector, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client, err := azblob.NewClientFromConnectionString(settings.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob client: %w", err)
	}

	_, err = client.CreateContainer(ctx, settings.ContainerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create Azure container %s: %w", settings.ContainerName, err)
	}

	return &AzureReportConnector{
		client:        client,
		containerName: settings.ContainerName,
		logger:        logger,
	}, nil
}

// Upload stores data as block blob name
func (c *AzureReportConnector) Upload(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	if _, err := c.client.UploadBuffer(ctx, c.containerName, name, data, nil); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", name, err)
	}

	c.logger.Info("Report blob ", name, " uploaded to container ", c.containerName)
	return nil
}

// Download reads blob name
func (c *AzureReportConnector) Download(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	resp, err := c.client.DownloadStream(ctx, c.containerName, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", reports.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to download blob %s: %w", name, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close blob stream ", name, ": ", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	return data, nil
}

// Delete removes blob name
func (c *AzureReportConnector) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if _, err := c.client.DeleteBlob(ctx, c.containerName, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("%w: %s", reports.ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete blob %s: %w", name, err)
	}

	c.logger.Info("Report blob ", name, " deleted from container ", c.containerName)
	return nil
}
