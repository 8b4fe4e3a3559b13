package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// FileResult captures the outcome of one input document within a batch run.
// A failed load keeps its warning cause here so the run archive shows why a
// file contributed zero records.
type FileResult struct {
	Path        string `json:"path" yaml:"path"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Records     int    `json:"records" yaml:"records"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (f *FileResult) Failed() bool { return f.Error != "" }

type ParseStats struct {
	FilesTotal       int `json:"files_total" yaml:"files_total"`
	FilesParsed      int `json:"files_parsed" yaml:"files_parsed"`
	FilesFailed      int `json:"files_failed" yaml:"files_failed"`
	RecordsExtracted int `json:"records_extracted" yaml:"records_extracted"`
}

// StatsFromFiles derives the run totals from per-file outcomes.
func StatsFromFiles(files []FileResult) ParseStats {
	stats := ParseStats{FilesTotal: len(files)}
	for i := range files {
		if files[i].Failed() {
			stats.FilesFailed++
			continue
		}
		stats.FilesParsed++
		stats.RecordsExtracted += files[i].Records
	}
	return stats
}

// ParseResult is the envelope for one batch run: which documents were read,
// what they yielded, and the aggregated records in extraction order.
type ParseResult struct {
	RunID     string                `json:"run_id" yaml:"run_id"`
	StartTime time.Time             `json:"start_time" yaml:"start_time"`
	EndTime   time.Time             `json:"end_time" yaml:"end_time"`
	Status    string                `json:"status" yaml:"status"`
	Files     []FileResult          `json:"files" yaml:"files"`
	Records   []VulnerabilityRecord `json:"records" yaml:"records"`
	Exports   []string              `json:"exports,omitempty" yaml:"exports,omitempty"`
	Stats     ParseStats            `json:"stats" yaml:"stats"`
}

func (r *ParseResult) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

func (r *ParseResult) IsCompleted() bool { return r.Status == RunStatusCompleted }

// CountByProtocol tallies how many records carry each protocol label,
// counting a record once per label it matched.
func (r *ParseResult) CountByProtocol() map[string]int {
	counts := make(map[string]int)
	for i := range r.Records {
		for _, p := range r.Records[i].ProtocolList() {
			counts[p]++
		}
	}
	return counts
}

func (r *ParseResult) Validate() error {
	var problems []string

	if r.RunID == "" {
		problems = append(problems, "run ID is required")
	}
	if r.StartTime.IsZero() {
		problems = append(problems, "start time is required")
	}
	switch r.Status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	case "":
		problems = append(problems, "run status is required")
	default:
		problems = append(problems, fmt.Sprintf("invalid run status: %s", r.Status))
	}
	if r.Stats.RecordsExtracted != len(r.Records) {
		problems = append(problems, fmt.Sprintf("stats.records_extracted (%d) does not match record count (%d)",
			r.Stats.RecordsExtracted, len(r.Records)))
	}
	if r.Stats.FilesParsed+r.Stats.FilesFailed != r.Stats.FilesTotal {
		problems = append(problems, "stats file counts do not add up")
	}

	if len(problems) > 0 {
		return fmt.Errorf("run validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
