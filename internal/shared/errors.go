package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Pipeline failures, one per stage
	ErrRead      = fmt.Errorf("file read failed")
	ErrTransport = fmt.Errorf("request to segmentation service failed")
	ErrStatus    = fmt.Errorf("segmentation service returned an error status")
	ErrDecode    = fmt.Errorf("segmentation response could not be decoded")

	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
