package checks

import (
	"context"
	"time"

	"customer-sync/core/directory"
)

// DirectoryReport is the result of a directory round trip.
type DirectoryReport struct {
	Reachable bool   `json:"reachable"`
	Customers int    `json:"customers"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckDirectory queries every customer and reports whether the directory answered.
func CheckDirectory(ctx context.Context, dir directory.Directory) *DirectoryReport {
	start := time.Now()
	all, err := dir.QueryAll(ctx)
	report := &DirectoryReport{LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Reachable = true
	report.Customers = len(all)
	return report
}
