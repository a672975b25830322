package tasks

import (
	"errors"
	"strings"

	"github.com/desertthunder/satseg/internal/shared"
)

// failurePrefixes maps each pipeline sentinel to the text shown before its cause.
var failurePrefixes = []struct {
	sentinel error
	prefix   string
}{
	{shared.ErrRead, "Failed to read file"},
	{shared.ErrTransport, "Error sending image to server"},
	{shared.ErrStatus, "Error code in sending image to server"},
	{shared.ErrDecode, "Error in receiving json"},
	{shared.ErrServiceUnavailable, "Segmentation service not configured"},
}

// FailureMessage formats a pipeline error for display, keeping the underlying cause.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}

	text := err.Error()
	for _, fp := range failurePrefixes {
		if errors.Is(err, fp.sentinel) {
			cause := strings.TrimPrefix(text, fp.sentinel.Error())
			cause = strings.TrimPrefix(cause, ": ")
			if cause == "" {
				return fp.prefix
			}
			return fp.prefix + ": " + cause
		}
	}
	return "Unexpected error: " + text
}
