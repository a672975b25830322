package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/satseg/internal/shared"
	"github.com/urfave/cli/v3"
)

// HealthReport is the JSON output of the health command.
type HealthReport struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Health sends a GET to the segmentation service base URL.
//
// Any HTTP response counts as reachable; only transport failures are errors.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API service not initialized", shared.ErrServiceUnavailable)
	}

	report := HealthReport{URL: r.api.BaseURL()}
	resp, err := r.api.Get(ctx, "/")
	if err != nil {
		report.Error = err.Error()
	} else {
		report.Reachable = true
		report.StatusCode = resp.StatusCode
		report.LatencyMS = resp.Latency.Milliseconds()
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader("Segmentation service")
		r.writePlain("URL: %s\n", report.URL)
		if report.Reachable {
			r.writePlain("✓ reachable (HTTP %d, %d ms)\n", report.StatusCode, report.LatencyMS)
		} else {
			r.writePlain("✗ unreachable: %s\n", report.Error)
		}
	}

	if !report.Reachable {
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, report.Error)
	}
	return nil
}
