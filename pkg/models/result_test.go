package models

import (
	"testing"
	"time"
)

func TestStatsFromFiles(t *testing.T) {
	files := []FileResult{
		{Path: "a.xml", Records: 3},
		{Path: "b.xml", Error: "file b.xml does not exist"},
		{Path: "c.xml", Records: 0},
	}

	got := StatsFromFiles(files)
	want := ParseStats{FilesTotal: 3, FilesParsed: 2, FilesFailed: 1, RecordsExtracted: 3}
	if got != want {
		t.Errorf("StatsFromFiles() = %+v, want %+v", got, want)
	}
}

func TestParseResultValidate(t *testing.T) {
	start := time.Date(2025, 6, 25, 9, 30, 0, 0, time.UTC)
	result := &ParseResult{
		RunID:     "run_20250625_093000_1files",
		StartTime: start,
		EndTime:   start.Add(time.Second),
		Status:    RunStatusCompleted,
		Files:     []FileResult{{Path: "a.xml", Records: 1}},
		Records:   []VulnerabilityRecord{validRecord()},
		Stats:     ParseStats{FilesTotal: 1, FilesParsed: 1, RecordsExtracted: 1},
	}
	if err := result.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	result.Stats.RecordsExtracted = 5
	if err := result.Validate(); err == nil {
		t.Error("Validate() accepted stats that disagree with the record count")
	}

	result.Stats.RecordsExtracted = 1
	result.Status = "exploded"
	if err := result.Validate(); err == nil {
		t.Error("Validate() accepted unknown status")
	}
}

func TestCountByProtocol(t *testing.T) {
	result := &ParseResult{
		Records: []VulnerabilityRecord{
			{Protocols: ProtocolTLS10},
			{Protocols: ProtocolTLS10 + ProtocolSeparator + ProtocolTLS11},
			{Protocols: ProtocolTLS11},
		},
	}

	counts := result.CountByProtocol()
	if counts[ProtocolTLS10] != 2 {
		t.Errorf("count[%s] = %d, want 2", ProtocolTLS10, counts[ProtocolTLS10])
	}
	if counts[ProtocolTLS11] != 2 {
		t.Errorf("count[%s] = %d, want 2", ProtocolTLS11, counts[ProtocolTLS11])
	}
}

func TestDuration(t *testing.T) {
	start := time.Date(2025, 6, 25, 9, 30, 0, 0, time.UTC)
	result := &ParseResult{StartTime: start, EndTime: start.Add(3 * time.Second)}
	if got := result.Duration(); got != 3*time.Second {
		t.Errorf("Duration() = %v, want 3s", got)
	}

	// A still-running result measures against the clock.
	running := &ParseResult{StartTime: time.Now().Add(-time.Minute)}
	if got := running.Duration(); got < time.Minute {
		t.Errorf("Duration() = %v, want at least a minute", got)
	}
}
