package connector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// LocalReportConnector stores reports as files under a root directory
type LocalReportConnector struct {
	root   string
	logger logger.Logger
}

// NewLocalReportConnector creates root if needed
func NewLocalReportConnector(root string, logger logger.Logger) (*LocalReportConnector, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", root, err)
	}
	return &LocalReportConnector{root: root, logger: logger}, nil
}

// Upload writes data to root/name, replacing an existing file
func (c *LocalReportConnector) Upload(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(c.root, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to store report %s: %w", name, err)
	}

	c.logger.Debug("Report ", name, " stored in ", c.root)
	return nil
}

// Download reads root/name
func (c *LocalReportConnector) Download(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(c.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", reports.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read report %s: %w", name, err)
	}
	return data, nil
}

// Delete removes root/name
func (c *LocalReportConnector) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(c.root, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", reports.ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete report %s: %w", name, err)
	}

	c.logger.Debug("Report ", name, " deleted from ", c.root)
	return nil
}
