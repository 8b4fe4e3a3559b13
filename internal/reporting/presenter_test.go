package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

func TestPresenterTableLayout(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf, false).Table(testRecords)

	lines := strings.Split(buf.String(), "\n")
	// leading blank line, header, rule, two rows, rule, trailing ""
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7: %q", len(lines), buf.String())
	}
	if lines[0] != "" {
		t.Errorf("output must start with a blank line, got %q", lines[0])
	}

	header := lines[1]
	if len(header) != 90 {
		t.Errorf("header width = %d, want 90", len(header))
	}
	for _, col := range []struct {
		offset int
		label  string
	}{
		{0, "ID"}, {6, "Host"}, {42, "IP"}, {62, "Port"}, {70, "Vulnerable Protocols"},
	} {
		if !strings.HasPrefix(header[col.offset:], col.label) {
			t.Errorf("column %q not at offset %d: %q", col.label, col.offset, header)
		}
	}

	if lines[2] != strings.Repeat("-", 90) {
		t.Errorf("separator rule = %q, want 90 dashes", lines[2])
	}
	if lines[5] != strings.Repeat("-", 90) {
		t.Errorf("closing rule = %q, want 90 dashes", lines[5])
	}

	row := lines[3]
	if !strings.HasPrefix(row, "1") {
		t.Errorf("first row must carry ordinal 1: %q", row)
	}
	if !strings.HasPrefix(row[6:], "web01") || !strings.HasPrefix(row[42:], "10.0.0.5") ||
		!strings.HasPrefix(row[62:], "443") || row[70:] != "TLSv1.0" {
		t.Errorf("row fields misaligned: %q", row)
	}

	if lines[4][70:] != "TLSv1.0 & TLSv1.1" {
		t.Errorf("second row protocols = %q, want %q", lines[4][70:], "TLSv1.0 & TLSv1.1")
	}
}

func TestPresenterTableTruncatesLongHost(t *testing.T) {
	long := strings.Repeat("a", 40) + ".example.com"
	records := []models.VulnerabilityRecord{
		{Host: long, IPAddr: "10.0.0.5", Port: "443", Protocols: "TLSv1.0"},
	}

	var buf bytes.Buffer
	NewPresenter(&buf, false).Table(records)

	lines := strings.Split(buf.String(), "\n")
	row := lines[3]
	wantHost := long[:34] + ".."
	if row[6:42] != wantHost {
		t.Errorf("host column = %q, want %q", row[6:42], wantHost)
	}
	if !strings.HasPrefix(row[42:], "10.0.0.5") {
		t.Errorf("ip column shifted after truncation: %q", row)
	}
}

func TestPresenterTableBoundaryHostWidths(t *testing.T) {
	tests := []struct {
		name    string
		hostLen int
		want    string
	}{
		{"34 chars untouched", 34, strings.Repeat("h", 34)},
		{"35 chars truncated", 35, strings.Repeat("h", 34) + ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []models.VulnerabilityRecord{
				{Host: strings.Repeat("h", tt.hostLen), IPAddr: "10.0.0.5", Port: "443", Protocols: "TLSv1.0"},
			}
			var buf bytes.Buffer
			NewPresenter(&buf, false).Table(records)

			row := strings.Split(buf.String(), "\n")[3]
			if got := strings.TrimRight(row[6:42], " "); got != tt.want {
				t.Errorf("host column = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPresenterTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf, false).Table(nil)

	want := "no hosts supporting deprecated protocols found\n"
	if buf.String() != want {
		t.Errorf("empty table output = %q, want %q", buf.String(), want)
	}
}

func TestPresenterSummary(t *testing.T) {
	start := time.Date(2025, 6, 25, 9, 30, 0, 0, time.UTC)
	result := &models.ParseResult{
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		Stats: models.ParseStats{
			FilesTotal:       3,
			FilesParsed:      2,
			FilesFailed:      1,
			RecordsExtracted: 42,
		},
	}

	var buf bytes.Buffer
	NewPresenter(&buf, false).Summary(result)

	out := buf.String()
	if !strings.Contains(out, "parsed 2/3 files, 42 records") {
		t.Errorf("summary output = %q", out)
	}
	if !strings.Contains(out, "1 file(s) could not be parsed") {
		t.Errorf("summary output missing failure note: %q", out)
	}
}

func TestPresenterSummaryProtocolCounts(t *testing.T) {
	start := time.Date(2025, 6, 25, 9, 30, 0, 0, time.UTC)
	result := &models.ParseResult{
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Stats:     models.ParseStats{FilesTotal: 1, FilesParsed: 1, RecordsExtracted: 3},
		Records: []models.VulnerabilityRecord{
			{Host: "web01", IPAddr: "10.0.0.1", Port: "443", Protocols: "TLSv1.0 & TLSv1.1"},
			{Host: "web02", IPAddr: "10.0.0.2", Port: "443", Protocols: "TLSv1.0"},
			{Host: "mail01", IPAddr: "10.0.0.3", Port: "8443", Protocols: "TLSv1.1"},
		},
	}

	var buf bytes.Buffer
	NewPresenter(&buf, false).Summary(result)

	if !strings.Contains(buf.String(), "(TLSv1.0: 2, TLSv1.1: 2)") {
		t.Errorf("summary output = %q", buf.String())
	}
}
