// package models defines the data model for the segmentation client
package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/satseg/internal/shared"
)

// FileDetails is an image identified by name and MIME type.
type FileDetails struct {
	FileName string // Display label and pending-read key
	FileType string // MIME type, e.g. image/png
	Data     []byte // Raw image bytes
}

// wireFileDetails is the JSON shape exchanged with the segmentation service.
//
// Pointers distinguish a missing field from an empty one.
type wireFileDetails struct {
	FileName *string `json:"file_name"`
	FileType *string `json:"file_type"`
	Data     *string `json:"data"`
}

// NewFileDetails builds a [FileDetails], rejecting an empty payload.
func NewFileDetails(name, mimeType string, data []byte) (*FileDetails, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s has no content", shared.ErrInvalidInput, name)
	}
	return &FileDetails{FileName: name, FileType: mimeType, Data: data}, nil
}

// Size returns the payload length in bytes.
func (f *FileDetails) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// Base64 returns the payload as standard base64 text.
func (f *FileDetails) Base64() string {
	return EncodeData(f.Data)
}

// DataURI returns a data URI (data:<mime>;base64,<payload>) suitable for an img src attribute.
func (f *FileDetails) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", f.FileType, f.Base64())
}

// MarshalJSON encodes the details in the wire form with base64 data.
func (f FileDetails) MarshalJSON() ([]byte, error) {
	data := EncodeData(f.Data)
	return json.Marshal(wireFileDetails{FileName: &f.FileName, FileType: &f.FileType, Data: &data})
}

// UnmarshalJSON decodes the wire form. All three fields are required and data must be
// valid, non-empty base64.
func (f *FileDetails) UnmarshalJSON(b []byte) error {
	var w wireFileDetails
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}

	switch {
	case w.FileName == nil:
		return fmt.Errorf("%w: missing field `file_name`", shared.ErrDecode)
	case w.FileType == nil:
		return fmt.Errorf("%w: missing field `file_type`", shared.ErrDecode)
	case w.Data == nil:
		return fmt.Errorf("%w: missing field `data`", shared.ErrDecode)
	}

	data, err := DecodeData(*w.Data)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty `data` for %s", shared.ErrDecode, *w.FileName)
	}

	*f = FileDetails{FileName: *w.FileName, FileType: *w.FileType, Data: data}
	return nil
}

// ParseFileDetails decodes a JSON document into [FileDetails].
func ParseFileDetails(body []byte) (*FileDetails, error) {
	var details FileDetails
	if err := json.Unmarshal(body, &details); err != nil {
		if errors.Is(err, shared.ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	return &details, nil
}

// EncodeData encodes raw bytes as standard base64 text.
func EncodeData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeData decodes standard base64 text into raw bytes.
func DecodeData(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 data: %v", shared.ErrDecode, err)
	}
	return data, nil
}
