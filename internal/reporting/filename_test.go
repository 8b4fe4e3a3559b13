package reporting

import (
	"regexp"
	"testing"
	"time"
)

func TestExportFilenameAt(t *testing.T) {
	at := time.Date(2025, 6, 25, 9, 30, 52, 0, time.Local)

	tests := []struct {
		name string
		base string
		ext  string
		want string
	}{
		{"replaces extension", "ssl_0625.xml", "csv", "ssl_0625_20250625_093052.csv"},
		{"no original extension", "report", "json", "report_20250625_093052.json"},
		{"keeps directory", "out/scan.xml", "csv", "out/scan_20250625_093052.csv"},
		{"strips last extension only", "a.b.xml", "xlsx", "a.b_20250625_093052.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exportFilenameAt(tt.base, tt.ext, at); got != tt.want {
				t.Errorf("exportFilenameAt(%q, %q) = %q, want %q", tt.base, tt.ext, got, tt.want)
			}
		})
	}
}

func TestExportFilenameUsesCurrentTime(t *testing.T) {
	got := ExportFilename("scan.xml", "csv")
	matched, err := regexp.MatchString(`^scan_\d{8}_\d{6}\.csv$`, got)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Errorf("ExportFilename() = %q, want scan_YYYYMMDD_HHMMSS.csv shape", got)
	}
}
