// Package services implements the HTTP clients satseg uses to reach the segmentation service.
//
// # Segmentation
//
// [SegmentService] implements [Segmenter]. It sends one multipart/form-data POST to
// {base}/segment with a single part named "f[]" that carries the image bytes, the original
// file name and the image's MIME type as the part's Content-Type. A 2xx response body must be
// a JSON object of the form
//
//	{"file_name": "...", "file_type": "...", "data": "<base64>"}
//
// which is decoded into a [models.FileDetails].
//
// Requests are paced by an optional [rate.Limiter] configured from segmentation.rate_limit.
// No request is ever retried.
//
// # Error Handling
//
// Every failure wraps exactly one sentinel from the shared package:
//   - [shared.ErrTransport] : the request could not be completed (DNS, connection, timeout, cancelled context)
//   - [shared.ErrStatus] : the service answered with a non-2xx status; the message carries the status
//   - [shared.ErrDecode] : the body could not be read or parsed, or its base64 data was malformed
//
// # Health
//
// [APIService] performs raw GET requests against the service base URL and backs the
// `satseg health` command.
package services
