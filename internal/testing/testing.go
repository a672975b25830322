// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/satseg/internal/models"
)

// MockSegmenter is a test double for [services.Segmenter].
//
// SegmentFn, when set, decides the result; otherwise Mask and Err are returned.
type MockSegmenter struct {
	SegmentFn func(ctx context.Context, image *models.FileDetails) (*models.FileDetails, error)
	Mask      *models.FileDetails
	Err       error

	mu    sync.Mutex
	calls []*models.FileDetails
}

func (m *MockSegmenter) Segment(ctx context.Context, image *models.FileDetails) (*models.FileDetails, error) {
	m.mu.Lock()
	m.calls = append(m.calls, image)
	m.mu.Unlock()

	if m.SegmentFn != nil {
		return m.SegmentFn(ctx, image)
	}
	return m.Mask, m.Err
}

// Calls returns the images passed to Segment, in call order.
func (m *MockSegmenter) Calls() []*models.FileDetails {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.FileDetails(nil), m.calls...)
}

// MemFile is an in-memory file handle for the read task.
type MemFile struct {
	FileName string
	Type     string
	Content  []byte
	OpenErr  error
	ReadErr  error
}

func (f *MemFile) Name() string     { return f.FileName }
func (f *MemFile) MIMEType() string { return f.Type }

func (f *MemFile) Open() (io.ReadCloser, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if f.ReadErr != nil {
		return &FCloser{}, nil
	}
	return io.NopCloser(bytes.NewReader(f.Content)), nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails once maxWrites writes have gone through to target
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// PNG is the smallest valid PNG (1x1 transparent pixel), for MIME detection tests.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func MustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
