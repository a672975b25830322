// package tasks implements the upload controller and its pipeline stages.
//
// The core abstraction is Controller, a reducer over pipeline events that returns the next stage to run.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/satseg/internal/metrics"
	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/services"
	"github.com/desertthunder/satseg/internal/shared"
)

// Controller owns the upload state and applies pipeline events to it.
type Controller struct {
	mu        sync.Mutex
	state     State
	pending   *PendingReads
	segmenter services.Segmenter
	logger    *log.Logger
	progress  chan<- ProgressUpdate
}

// ControllerOpts contains the dependencies of a [Controller].
type ControllerOpts struct {
	Segmenter services.Segmenter
	Logger    *log.Logger
	Progress  chan<- ProgressUpdate // Optional; receives every transition without blocking
}

// NewController creates a controller in the [Idle] phase.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Controller{
		state:     State{Phase: Idle},
		pending:   NewPendingReads(),
		segmenter: opts.Segmenter,
		logger:    opts.Logger,
		progress:  opts.Progress,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Pending = c.pending.Names()
	return s
}

// PendingRead reports the in-flight read registered under name.
//
// The registry itself stays private; it changes only through [Controller.Dispatch].
func (c *Controller) PendingRead(name string) (ReadHandle, bool) {
	return c.pending.Get(name)
}

// Select dispatches a [FilesSelected] event.
func (c *Controller) Select(files ...FileHandle) Cmd {
	return c.Dispatch(FilesSelected{Files: files})
}

// Run executes cmd and every follow-up stage until the pipeline settles.
//
// Blocks; callers that must stay responsive run it on a goroutine.
func (c *Controller) Run(ctx context.Context, cmd Cmd) {
	for cmd != nil {
		cmd = c.Dispatch(cmd(ctx))
	}
}

// Dispatch applies ev to the state and returns the next stage to run, or nil.
func (c *Controller) Dispatch(ev Event) Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := ev.(type) {
	case FilesSelected:
		return c.onFilesSelected(ev)
	case ReadCompleted:
		return c.onReadCompleted(ev)
	case SendRequested:
		return c.onSendRequested(ev)
	case SegmentCompleted:
		return c.onSegmentCompleted(ev)
	default:
		c.logger.Warn("ignoring unknown event", "type", fmt.Sprintf("%T", ev))
		return nil
	}
}

func (c *Controller) onFilesSelected(ev FilesSelected) Cmd {
	if len(ev.Files) == 0 {
		return nil
	}

	names := make([]string, len(ev.Files))
	for i, f := range ev.Files {
		names[i] = f.Name()
	}
	c.logger.Info("New image", "files", names)

	file := ev.Files[0]
	if len(ev.Files) > 1 {
		c.logger.Warn("only the first file is processed", "using", file.Name(), "ignored", names[1:])
	}

	c.state.Seq++
	seq := c.state.Seq
	c.state.Satellite = nil
	c.state.Mask = nil
	c.state.Err = ""

	if prev, replaced := c.pending.Start(file.Name(), seq); replaced {
		c.logger.Debug("replacing pending read", "file", file.Name(), "previous_seq", prev.Seq)
	}

	c.transition(Reading, readingUpdate(seq, file.Name()))
	return readCmd(seq, file)
}

func (c *Controller) onReadCompleted(ev ReadCompleted) Cmd {
	c.pending.Finish(ev.FileName, ev.Seq)

	if c.stale(ev.Seq, "read") {
		return nil
	}

	if ev.Err != nil {
		msg := FailureMessage(ev.Err)
		c.logger.Error("read failed", "file", ev.FileName, "seq", ev.Seq, "error", ev.Err)
		c.state.Err = msg
		c.transition(Failed, failedUpdate(ev.Seq, ev.FileName, msg))
		return nil
	}

	if ev.Details == nil || len(ev.Details.Data) == 0 {
		msg := FailureMessage(fmt.Errorf("%w: %s produced no data", shared.ErrRead, ev.FileName))
		c.state.Err = msg
		c.transition(Failed, failedUpdate(ev.Seq, ev.FileName, msg))
		return nil
	}

	c.logger.Info("Finished reading", "file", ev.FileName, "type", ev.Details.FileType, "bytes", len(ev.Details.Data), "pending", c.pending.Len())
	c.state.Satellite = ev.Details
	c.transition(HasImage, hasImageUpdate(ev.Seq, ev.FileName, len(ev.Details.Data)))

	seq := ev.Seq
	return func(context.Context) Event { return SendRequested{Seq: seq} }
}

func (c *Controller) onSendRequested(ev SendRequested) Cmd {
	if c.stale(ev.Seq, "send") {
		return nil
	}
	if c.state.Phase != HasImage || c.state.Satellite == nil {
		c.logger.Debug("send requested outside has_image", "phase", c.state.Phase)
		return nil
	}

	image := c.state.Satellite
	if c.segmenter == nil {
		msg := FailureMessage(fmt.Errorf("%w: no segmenter", shared.ErrServiceUnavailable))
		c.state.Err = msg
		c.transition(Failed, failedUpdate(ev.Seq, image.FileName, msg))
		return nil
	}

	c.transition(Sending, sendingUpdate(ev.Seq, image.FileName))
	return c.sendCmd(ev.Seq, image)
}

func (c *Controller) onSegmentCompleted(ev SegmentCompleted) Cmd {
	if c.stale(ev.Seq, "segment") {
		return nil
	}
	if c.state.Phase != Sending {
		c.logger.Debug("segment result outside sending", "phase", c.state.Phase)
		return nil
	}

	name := c.state.Satellite.FileName
	if ev.Err == nil && (ev.Mask == nil || len(ev.Mask.Data) == 0) {
		ev.Err = fmt.Errorf("%w: empty mask", shared.ErrDecode)
	}

	if ev.Err != nil {
		msg := FailureMessage(ev.Err)
		c.logger.Error("segmentation failed", "file", name, "seq", ev.Seq, "error", ev.Err)
		c.state.Err = msg
		c.transition(Failed, failedUpdate(ev.Seq, name, msg))
		return nil
	}

	c.logger.Info("Received mask", "file", ev.Mask.FileName, "type", ev.Mask.FileType, "bytes", len(ev.Mask.Data))
	c.state.Mask = ev.Mask
	c.transition(HasMask, hasMaskUpdate(ev.Seq, ev.Mask.FileName))
	return nil
}

// stale reports (and logs) whether seq belongs to a superseded selection.
func (c *Controller) stale(seq uint64, stage string) bool {
	if seq == c.state.Seq {
		return false
	}
	c.logger.Debug("discarding stale completion", "stage", stage, "seq", seq, "current", c.state.Seq)
	metrics.RecordStaleEvent()
	return true
}

func (c *Controller) transition(to Phase, update ProgressUpdate) {
	from := c.state.Phase
	c.state.Phase = to
	c.logger.Debug("transition", "from", from, "to", to, "seq", c.state.Seq)
	metrics.RecordTransition(to.String())
	c.sendProgress(update)
}

// sendProgress sends a progress update through the channel without blocking.
func (c *Controller) sendProgress(update ProgressUpdate) {
	if c.progress == nil {
		return
	}
	select {
	case c.progress <- update:
	default:
	}
}

func readCmd(seq uint64, file FileHandle) Cmd {
	return func(ctx context.Context) Event {
		details, err := ReadFile(ctx, file)
		return ReadCompleted{Seq: seq, FileName: file.Name(), Details: details, Err: err}
	}
}

func (c *Controller) sendCmd(seq uint64, image *models.FileDetails) Cmd {
	segmenter := c.segmenter
	return func(ctx context.Context) Event {
		mask, err := segmenter.Segment(ctx, image)
		return SegmentCompleted{Seq: seq, Mask: mask, Err: err}
	}
}
