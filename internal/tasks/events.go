package tasks

import (
	"context"

	"github.com/desertthunder/satseg/internal/models"
)

// Event is an input to [Controller.Dispatch].
type Event interface {
	event()
}

// Cmd is one asynchronous pipeline stage. It runs outside the controller's lock and
// reports its outcome as exactly one [Event].
type Cmd func(ctx context.Context) Event

var (
	_ Event = FilesSelected{}
	_ Event = ReadCompleted{}
	_ Event = SendRequested{}
	_ Event = SegmentCompleted{}
)

// FilesSelected is the user choosing files to upload.
type FilesSelected struct {
	Files []FileHandle
}

// ReadCompleted reports the outcome of a local file read.
type ReadCompleted struct {
	Seq      uint64
	FileName string
	Details  *models.FileDetails
	Err      error
}

// SendRequested moves a freshly read image on to the segmentation request.
type SendRequested struct {
	Seq uint64
}

// SegmentCompleted reports the outcome of the segmentation request.
type SegmentCompleted struct {
	Seq  uint64
	Mask *models.FileDetails
	Err  error
}

func (FilesSelected) event()    {}
func (ReadCompleted) event()    {}
func (SendRequested) event()    {}
func (SegmentCompleted) event() {}
