package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
	tu "github.com/desertthunder/satseg/internal/testing"
)

func testMask() *models.FileDetails {
	return &models.FileDetails{FileName: "mask.png", FileType: "image/png", Data: []byte{0, 0, 0}}
}

func pngFile(name string) *tu.MemFile {
	return &tu.MemFile{FileName: name, Type: "image/png", Content: tu.PNG}
}

func newTestController(seg *tu.MockSegmenter, progress chan<- ProgressUpdate) *Controller {
	opts := ControllerOpts{Logger: shared.NewLogger(io.Discard), Progress: progress}
	if seg != nil {
		opts.Segmenter = seg
	}
	return NewController(opts)
}

// step runs cmd and dispatches its event, returning the follow-up stage.
func step(t *testing.T, c *Controller, cmd Cmd) Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a pending stage")
	}
	return c.Dispatch(cmd(context.Background()))
}

func expectPhase(t *testing.T, c *Controller, want Phase) State {
	t.Helper()
	s := c.State()
	if s.Phase != want {
		t.Fatalf("expected phase %s, got %s (err %q)", want, s.Phase, s.Err)
	}
	return s
}

func TestController(t *testing.T) {
	t.Run("NewController", func(t *testing.T) {
		s := NewController(ControllerOpts{}).State()
		if s.Phase != Idle {
			t.Errorf("expected idle, got %s", s.Phase)
		}
		if s.Satellite != nil || s.Mask != nil {
			t.Error("expected empty image slots")
		}
		if s.Err != "" || len(s.Pending) != 0 {
			t.Errorf("expected no error and no pending reads, got %q %v", s.Err, s.Pending)
		}
	})

	t.Run("happy path", func(t *testing.T) {
		seg := &tu.MockSegmenter{Mask: testMask()}
		c := newTestController(seg, nil)

		cmd := c.Select(pngFile("tile.png"))
		s := expectPhase(t, c, Reading)
		if s.Seq != 1 {
			t.Errorf("expected seq 1, got %d", s.Seq)
		}
		if !slices.Equal(s.Pending, []string{"tile.png"}) {
			t.Errorf("expected tile.png pending, got %v", s.Pending)
		}

		cmd = step(t, c, cmd)
		s = expectPhase(t, c, HasImage)
		if len(s.Pending) != 0 {
			t.Errorf("expected no pending reads, got %v", s.Pending)
		}
		if s.Satellite == nil || !bytes.Equal(s.Satellite.Data, tu.PNG) {
			t.Fatal("expected satellite bytes to equal the file's bytes")
		}
		if s.Satellite.FileType != "image/png" {
			t.Errorf("expected image/png, got %s", s.Satellite.FileType)
		}
		if !s.MaskPending() {
			t.Error("expected mask to be pending")
		}

		cmd = step(t, c, cmd)
		if s = expectPhase(t, c, Sending); !s.MaskPending() {
			t.Error("expected mask to be pending while sending")
		}

		if cmd = step(t, c, cmd); cmd != nil {
			t.Error("expected pipeline to settle")
		}

		s = expectPhase(t, c, HasMask)
		if !reflect.DeepEqual(s.Mask, testMask()) {
			t.Errorf("unexpected mask %+v", s.Mask)
		}
		if !bytes.Equal(s.Satellite.Data, tu.PNG) {
			t.Error("expected satellite to be kept")
		}
		if s.MaskPending() {
			t.Error("expected mask not to be pending")
		}

		calls := seg.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected 1 segment call, got %d", len(calls))
		}
		if !bytes.Equal(calls[0].Data, tu.PNG) || calls[0].FileName != "tile.png" {
			t.Errorf("unexpected upload %s", calls[0].FileName)
		}
	})

	t.Run("Run drives the pipeline to completion", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		if s := expectPhase(t, c, HasMask); !reflect.DeepEqual(s.Mask, testMask()) {
			t.Errorf("unexpected mask %+v", s.Mask)
		}
	})

	t.Run("Run with nil command returns", func(t *testing.T) {
		c := newTestController(nil, nil)
		c.Run(context.Background(), nil)
		expectPhase(t, c, Idle)
	})

	t.Run("selecting no files is a no-op", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)
		c.Run(context.Background(), c.Select(pngFile("a.png")))
		before := c.State()

		if cmd := c.Select(); cmd != nil {
			t.Error("expected no stage for an empty selection")
		}
		if !reflect.DeepEqual(before, c.State()) {
			t.Error("expected state to be unchanged")
		}
	})

	t.Run("only the first file is processed", func(t *testing.T) {
		seg := &tu.MockSegmenter{Mask: testMask()}
		c := newTestController(seg, nil)
		first := &tu.MemFile{FileName: "first.png", Type: "image/png", Content: []byte("first")}
		second := &tu.MemFile{FileName: "second.png", Type: "image/png", Content: []byte("second")}

		cmd := c.Select(first, second)
		if got := c.State().Pending; !slices.Equal(got, []string{"first.png"}) {
			t.Errorf("expected only first.png pending, got %v", got)
		}

		c.Run(context.Background(), cmd)

		s := expectPhase(t, c, HasMask)
		if s.Satellite.FileName != "first.png" || string(s.Satellite.Data) != "first" {
			t.Errorf("expected first file as satellite, got %s", s.Satellite.FileName)
		}
		if len(seg.Calls()) != 1 {
			t.Errorf("expected 1 segment call, got %d", len(seg.Calls()))
		}
	})

	t.Run("new selection clears previous images", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)
		c.Run(context.Background(), c.Select(pngFile("a.png")))
		expectPhase(t, c, HasMask)

		c.Select(pngFile("b.png"))

		s := expectPhase(t, c, Reading)
		if s.Seq != 2 {
			t.Errorf("expected seq 2, got %d", s.Seq)
		}
		if s.Satellite != nil || s.Mask != nil {
			t.Error("expected both image slots to be cleared")
		}
	})

	t.Run("stale mask is discarded", func(t *testing.T) {
		first := &models.FileDetails{FileName: "mask-a.png", FileType: "image/png", Data: []byte("A")}
		second := &models.FileDetails{FileName: "mask-b.png", FileType: "image/png", Data: []byte("B")}
		seg := &tu.MockSegmenter{
			SegmentFn: func(_ context.Context, image *models.FileDetails) (*models.FileDetails, error) {
				if image.FileName == "a.png" {
					return first, nil
				}
				return second, nil
			},
		}
		c := newTestController(seg, nil)

		// Take selection A up to its in-flight request.
		sendA := step(t, c, step(t, c, c.Select(&tu.MemFile{FileName: "a.png", Type: "image/png", Content: []byte("a")})))
		expectPhase(t, c, Sending)

		// Selection B completes while A is still outstanding.
		c.Run(context.Background(), c.Select(&tu.MemFile{FileName: "b.png", Type: "image/png", Content: []byte("b")}))
		expectPhase(t, c, HasMask)

		// A's late response arrives.
		if next := step(t, c, sendA); next != nil {
			t.Error("expected stale completion to yield no stage")
		}

		s := expectPhase(t, c, HasMask)
		if s.Mask != second {
			t.Errorf("expected mask-b.png, got %s", s.Mask.FileName)
		}
		if s.Satellite.FileName != "b.png" {
			t.Errorf("expected b.png satellite, got %s", s.Satellite.FileName)
		}
	})

	t.Run("stale read is discarded", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)

		readA := c.Select(&tu.MemFile{FileName: "a.png", Type: "image/png", Content: []byte("a")})
		readB := c.Select(&tu.MemFile{FileName: "b.png", Type: "image/png", Content: []byte("b")})
		if got := c.State().Pending; !slices.Equal(got, []string{"a.png", "b.png"}) {
			t.Errorf("expected both reads pending, got %v", got)
		}

		if next := step(t, c, readA); next != nil {
			t.Error("expected stale read to yield no stage")
		}
		s := expectPhase(t, c, Reading)
		if s.Satellite != nil {
			t.Error("expected stale read not to set the satellite")
		}
		if !slices.Equal(s.Pending, []string{"b.png"}) {
			t.Errorf("expected b.png pending, got %v", s.Pending)
		}

		c.Run(context.Background(), readB)
		if s = expectPhase(t, c, HasMask); string(s.Satellite.Data) != "b" {
			t.Errorf("expected b content, got %q", s.Satellite.Data)
		}
	})

	t.Run("reselecting the same name replaces the pending read", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)

		old := c.Select(&tu.MemFile{FileName: "a.png", Type: "image/png", Content: []byte("old")})
		current := c.Select(&tu.MemFile{FileName: "a.png", Type: "image/png", Content: []byte("new")})

		h, ok := c.PendingRead("a.png")
		if !ok || h.Seq != 2 {
			t.Fatalf("expected seq 2 pending read, got %v %d", ok, h.Seq)
		}

		step(t, c, old)
		if _, ok := c.PendingRead("a.png"); !ok {
			t.Error("stale completion must not clear the newer entry")
		}

		c.Run(context.Background(), current)
		if _, ok := c.PendingRead("a.png"); ok {
			t.Error("expected entry to be cleared after the current read")
		}
		if s := expectPhase(t, c, HasMask); string(s.Satellite.Data) != "new" {
			t.Errorf("expected new content, got %q", s.Satellite.Data)
		}
	})

	t.Run("state snapshots do not alias pending reads", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)
		cmd := c.Select(pngFile("a.png"))

		s := c.State()
		s.Pending[0] = "tampered.png"

		if _, ok := c.PendingRead("a.png"); !ok {
			t.Error("expected registry to be unaffected by snapshot edits")
		}
		if got := c.State().Pending; !slices.Equal(got, []string{"a.png"}) {
			t.Errorf("expected a.png pending, got %v", got)
		}

		c.Run(context.Background(), cmd)
		if got := c.State().Pending; len(got) != 0 {
			t.Errorf("expected no pending reads, got %v", got)
		}
	})

	t.Run("server error keeps the satellite", func(t *testing.T) {
		seg := &tu.MockSegmenter{Err: fmt.Errorf("%w: HTTP status 500 Internal Server Error for url (http://x/segment)", shared.ErrStatus)}
		c := newTestController(seg, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		s := expectPhase(t, c, Failed)
		if s.Mask != nil {
			t.Error("expected no mask")
		}
		if s.Satellite == nil || !bytes.Equal(s.Satellite.Data, tu.PNG) {
			t.Error("expected satellite to be kept")
		}
		if !strings.HasPrefix(s.Err, "Error code in sending image to server") || !strings.Contains(s.Err, "500") {
			t.Errorf("unexpected message %q", s.Err)
		}
	})

	t.Run("malformed response fails", func(t *testing.T) {
		_, decodeErr := models.ParseFileDetails([]byte(`{"file_name":"m.png"`))
		if decodeErr == nil {
			t.Fatal("expected truncated JSON to fail")
		}
		c := newTestController(&tu.MockSegmenter{Err: decodeErr}, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		s := expectPhase(t, c, Failed)
		if !strings.HasPrefix(s.Err, "Error in receiving json") {
			t.Errorf("unexpected message %q", s.Err)
		}
		if s.Satellite == nil {
			t.Error("expected satellite to be kept")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Err: fmt.Errorf("%w: connection refused", shared.ErrTransport)}, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		if s := expectPhase(t, c, Failed); s.Err != "Error sending image to server: connection refused" {
			t.Errorf("unexpected message %q", s.Err)
		}
	})

	t.Run("empty mask fails", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{}, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		if s := expectPhase(t, c, Failed); !strings.HasPrefix(s.Err, "Error in receiving json") {
			t.Errorf("unexpected message %q", s.Err)
		}
	})

	t.Run("read failure is recoverable", func(t *testing.T) {
		seg := &tu.MockSegmenter{Mask: testMask()}
		c := newTestController(seg, nil)

		c.Run(context.Background(), c.Select(&tu.MemFile{FileName: "bad.png", OpenErr: errors.New("permission denied")}))

		s := expectPhase(t, c, Failed)
		if s.Satellite != nil {
			t.Error("expected no satellite")
		}
		if s.Err != "Failed to read file: permission denied" {
			t.Errorf("unexpected message %q", s.Err)
		}
		if len(s.Pending) != 0 || len(seg.Calls()) != 0 {
			t.Error("expected no pending reads and no request")
		}

		c.Run(context.Background(), c.Select(pngFile("good.png")))
		if s = expectPhase(t, c, HasMask); s.Err != "" {
			t.Errorf("expected error to be cleared, got %q", s.Err)
		}
	})

	t.Run("empty file is a read failure", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)

		c.Run(context.Background(), c.Select(&tu.MemFile{FileName: "empty.png", Type: "image/png"}))

		if s := expectPhase(t, c, Failed); !strings.HasPrefix(s.Err, "Failed to read file") {
			t.Errorf("unexpected message %q", s.Err)
		}
	})

	t.Run("missing segmenter fails the request", func(t *testing.T) {
		c := newTestController(nil, nil)

		c.Run(context.Background(), c.Select(pngFile("a.png")))

		s := expectPhase(t, c, Failed)
		if s.Err != "Segmentation service not configured: no segmenter" {
			t.Errorf("unexpected message %q", s.Err)
		}
		if s.Satellite == nil {
			t.Error("expected satellite to be kept")
		}
	})

	t.Run("events out of phase are ignored", func(t *testing.T) {
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, nil)

		if c.Dispatch(SendRequested{Seq: 0}) != nil {
			t.Error("expected no stage for SendRequested while idle")
		}
		if c.Dispatch(SegmentCompleted{Seq: 0, Mask: testMask()}) != nil {
			t.Error("expected no stage for SegmentCompleted while idle")
		}
		if s := expectPhase(t, c, Idle); s.Mask != nil {
			t.Error("expected no mask")
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 10)
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, progress)

		c.Run(context.Background(), c.Select(pngFile("a.png")))
		close(progress)

		var phases []Phase
		for u := range progress {
			if u.Seq != 1 {
				t.Errorf("expected seq 1, got %d", u.Seq)
			}
			if u.Phase == Sending && u.Message != "Processing image..." {
				t.Errorf("unexpected sending message %q", u.Message)
			}
			phases = append(phases, u.Phase)
		}

		if want := []Phase{Reading, HasImage, Sending, HasMask}; !slices.Equal(phases, want) {
			t.Errorf("expected %v, got %v", want, phases)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		c := newTestController(&tu.MockSegmenter{Mask: testMask()}, progress)

		c.Run(context.Background(), c.Select(pngFile("a.png")))
		expectPhase(t, c, HasMask)
	})
}

func TestPhase(t *testing.T) {
	tests := []struct {
		phase Phase
		name  string
		busy  bool
	}{
		{Idle, "idle", false},
		{Reading, "reading", true},
		{HasImage, "has_image", true},
		{Sending, "sending", true},
		{HasMask, "has_mask", false},
		{Failed, "failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.name {
				t.Errorf("expected %s, got %s", tt.name, got)
			}
			if got := tt.phase.Busy(); got != tt.busy {
				t.Errorf("expected busy %v, got %v", tt.busy, got)
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"read", fmt.Errorf("%w: boom", shared.ErrRead), "Failed to read file: boom"},
		{"bare sentinel", shared.ErrTransport, "Error sending image to server"},
		{"status", fmt.Errorf("%w: HTTP status 404", shared.ErrStatus), "Error code in sending image to server: HTTP status 404"},
		{"decode", fmt.Errorf("%w: missing field `data`", shared.ErrDecode), "Error in receiving json: missing field `data`"},
		{"unknown", errors.New("boom"), "Unexpected error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
