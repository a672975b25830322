package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
	"github.com/gabriel-vasile/mimetype"
)

// FileHandle is a file chosen by the user, not yet read.
type FileHandle interface {
	Name() string                 // Base name used as label and pending-read key
	MIMEType() string             // Declared MIME type; empty when unknown
	Open() (io.ReadCloser, error) // Opens the content for one full read
}

// LocalFile is a file on disk.
type LocalFile struct {
	Path string
}

var _ FileHandle = LocalFile{}

func (f LocalFile) Name() string { return filepath.Base(f.Path) }

// MIMEType is left to content detection for files on disk.
func (f LocalFile) MIMEType() string { return "" }

func (f LocalFile) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// ReadFile reads the whole content of h exactly once.
//
// The declared MIME type wins; when it is missing or generic the type is detected from the
// content. An empty file is a read failure. Errors wrap [shared.ErrRead].
func ReadFile(ctx context.Context, h FileHandle) (*models.FileDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRead, err)
	}

	rc, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRead, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrRead, h.Name(), err)
	}
	details, err := models.NewFileDetails(h.Name(), resolveMIMEType(h.MIMEType(), data), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRead, err)
	}
	return details, nil
}

func resolveMIMEType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(data).String()
}
