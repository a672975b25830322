package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/desertthunder/satseg/internal/metrics"
	"github.com/desertthunder/satseg/internal/models"
	"github.com/desertthunder/satseg/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// SegmentPath is appended to the service base URL.
	SegmentPath = "/segment"
	// FilePartName is the multipart field the service reads the image from.
	FilePartName = "f[]"

	maxErrorBody = 512
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SegmentService uploads images to the segmentation service.
type SegmentService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSegmentService creates a client for the service at baseURL.
//
// A rateLimit of zero or less disables pacing. A nil client uses [http.DefaultClient].
func NewSegmentService(baseURL string, client *http.Client, rateLimit float64) *SegmentService {
	if client == nil {
		client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &SegmentService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		limiter:    limiter,
	}
}

// Endpoint returns the full URL requests are sent to.
func (s *SegmentService) Endpoint() string {
	return s.baseURL + SegmentPath
}

// Segment uploads image and decodes the returned mask.
func (s *SegmentService) Segment(ctx context.Context, image *models.FileDetails) (*models.FileDetails, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: no image to send", shared.ErrInvalidInput)
	}

	start := time.Now()
	mask, err := s.segment(ctx, image)
	metrics.ObserveSegment(err, time.Since(start), len(image.Data))
	return mask, err
}

func (s *SegmentService) segment(ctx context.Context, image *models.FileDetails) (*models.FileDetails, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
		}
	}

	body, contentType, err := buildMultipart(image)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request body: %v", shared.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("HTTP status %s for url (%s)", resp.Status, s.Endpoint())
		if text := strings.TrimSpace(string(snippet)); text != "" {
			msg = fmt.Sprintf("%s: %s", msg, text)
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrStatus, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrDecode, err)
	}

	return models.ParseFileDetails(raw)
}

// buildMultipart encodes image as the single "f[]" part of a multipart/form-data body.
func buildMultipart(image *models.FileDetails) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileType := image.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(FilePartName), quoteEscaper.Replace(image.FileName)))
	h.Set("Content-Type", fileType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
