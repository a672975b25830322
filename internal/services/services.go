// package services defines interface Segmenter for talking to the remote segmentation service
package services

import (
	"context"

	"github.com/desertthunder/satseg/internal/models"
)

// Segmenter turns a satellite image into a segmentation mask.
type Segmenter interface {
	// Segment uploads image and returns the mask produced by the service.
	//
	// Errors wrap one of [shared.ErrTransport], [shared.ErrStatus] or [shared.ErrDecode].
	Segment(ctx context.Context, image *models.FileDetails) (*models.FileDetails, error)
}

var _ Segmenter = (*SegmentService)(nil)
