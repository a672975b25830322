package web

import (
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/desertthunder/satseg/internal/tasks"
)

// uploadedFile is a browser-supplied file from a multipart form.
type uploadedFile struct {
	header *multipart.FileHeader
}

var _ tasks.FileHandle = uploadedFile{}

func (f uploadedFile) Name() string { return filepath.Base(f.header.Filename) }

func (f uploadedFile) MIMEType() string { return f.header.Header.Get("Content-Type") }

func (f uploadedFile) Open() (io.ReadCloser, error) { return f.header.Open() }
