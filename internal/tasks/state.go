package tasks

import "github.com/desertthunder/satseg/internal/models"

// Phase is the controller's position in the pipeline.
type Phase int

const (
	Idle     Phase = iota // No image selected
	Reading               // Local file read in flight
	HasImage              // Satellite image ready, request not yet issued
	Sending               // Segmentation request in flight
	HasMask               // Satellite and mask images ready
	Failed                // Read or request failed; see State.Err
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Reading:
		return "reading"
	case HasImage:
		return "has_image"
	case Sending:
		return "sending"
	case HasMask:
		return "has_mask"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Busy reports whether a read or request is outstanding.
func (p Phase) Busy() bool {
	return p == Reading || p == HasImage || p == Sending
}

// State is a snapshot of the controller's application state.
type State struct {
	Phase     Phase
	Seq       uint64              // Sequence number of the current selection
	Satellite *models.FileDetails // Most recently read source image
	Mask      *models.FileDetails // Most recently received mask
	Err       string              // Failure message when Phase is Failed
	Pending   []string            // File names with reads in flight
}

// MaskPending reports whether the satellite image is shown and its mask is still on the way.
func (s State) MaskPending() bool {
	return s.Satellite != nil && (s.Phase == HasImage || s.Phase == Sending)
}
