package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

var testRecords = []models.VulnerabilityRecord{
	{Host: "web01", IPAddr: "10.0.0.5", Port: "443", Protocols: "TLSv1.0"},
	{Host: "mail01", IPAddr: "10.0.0.9", Port: "465", Protocols: "TLSv1.0 & TLSv1.1"},
}

func TestCSVFormat(t *testing.T) {
	data, err := (&CSVFormatter{}).Format(testRecords)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "ID,Host,IP,Port,Vulnerable Protocols\n" +
		"1,web01,10.0.0.5,443,TLSv1.0\n" +
		"2,mail01,10.0.0.9,465,TLSv1.0 & TLSv1.1\n"
	if string(data) != want {
		t.Errorf("csv output = %q, want %q", string(data), want)
	}
}

// Embedded commas are written raw. The shifted columns that result are
// an accepted limitation, so the writer must not start quoting.
func TestCSVFormatNoQuoting(t *testing.T) {
	records := []models.VulnerabilityRecord{
		{Host: "web01,internal", IPAddr: "10.0.0.5", Port: "443", Protocols: "TLSv1.0"},
	}
	data, err := (&CSVFormatter{}).Format(records)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "ID,Host,IP,Port,Vulnerable Protocols\n1,web01,internal,10.0.0.5,443,TLSv1.0\n"
	if string(data) != want {
		t.Errorf("csv output = %q, want %q", string(data), want)
	}
}

func TestCSVFormatBOM(t *testing.T) {
	data, err := (&CSVFormatter{BOM: true}).Format(testRecords[:1])
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "\ufeffID,") {
		t.Errorf("csv output missing BOM prefix: %q", string(data)[:8])
	}
}

func TestJSONFormat(t *testing.T) {
	data, err := (&JSONFormatter{}).Format(testRecords)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "[\n  {") {
		t.Errorf("json output not indented: %q", out[:10])
	}
	if strings.Contains(out, `\u0026`) {
		t.Error("json output escaped the protocol separator")
	}

	// Key order mirrors the record field order.
	for _, pair := range [][2]string{{`"host"`, `"ip_addr"`}, {`"ip_addr"`, `"port"`}, {`"port"`, `"protocols"`}} {
		if strings.Index(out, pair[0]) > strings.Index(out, pair[1]) {
			t.Errorf("key %s appears after %s", pair[0], pair[1])
		}
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := []map[string]string{
		{"host": "web01", "ip_addr": "10.0.0.5", "port": "443", "protocols": "TLSv1.0"},
		{"host": "mail01", "ip_addr": "10.0.0.9", "port": "465", "protocols": "TLSv1.0 & TLSv1.1"},
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("decoded = %v, want %v", decoded, want)
	}
}

func TestJSONFormatPreservesNonASCII(t *testing.T) {
	records := []models.VulnerabilityRecord{
		{Host: "café.example.com", IPAddr: "10.0.0.5", Port: "443", Protocols: "TLSv1.0"},
	}
	data, err := (&JSONFormatter{}).Format(records)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(data), "café.example.com") {
		t.Errorf("non-ASCII hostname was escaped: %q", string(data))
	}
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.csv")

	written, err := NewExporter(models.ExportConfig{}, nil).Export(testRecords, "csv", path)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if written != path {
		t.Errorf("Export() path = %q, want %q", written, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID,Host,IP,Port,Vulnerable Protocols\n") {
		t.Errorf("written file missing header: %q", string(data))
	}
}

func TestExportEmptyRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.csv")

	written, err := NewExporter(models.ExportConfig{}, nil).Export(nil, "csv", path)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if written != "" {
		t.Errorf("Export() path = %q, want empty for empty records", written)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Export() wrote a file for empty records")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := NewExporter(models.ExportConfig{}, nil).Export(testRecords, "parquet", "out.parquet")
	if err == nil {
		t.Fatal("Export() accepted unsupported format")
	}
}

func TestSupportedFormats(t *testing.T) {
	got := NewExporter(models.ExportConfig{}, nil).SupportedFormats()
	want := []string{"csv", "json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedFormats() = %v, want %v", got, want)
	}
}
