package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bl4ck0w1/tlslynx/internal/nmap"
)

func TestDumpDomains(t *testing.T) {
	dir := t.TempDir()
	report := writeReport(t, dir, "scan.xml", `<nmaprun>
  <host><hostnames><hostname name="web01.example.com"/></hostnames><address addr="10.0.0.5"/></host>
  <host><hostnames><hostname name="mail01.example.com"/></hostnames><address addr="10.0.0.9"/></host>
  <host><hostnames><hostname name="web01.example.com"/></hostnames><address addr="10.0.0.6"/></host>
</nmaprun>`)
	out := filepath.Join(dir, "domains.txt")

	if err := DumpDomains(report, out, nil); err != nil {
		t.Fatalf("DumpDomains() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// Duplicates are intentional: one line per host element.
	want := "web01.example.com\nmail01.example.com\nweb01.example.com\n"
	if string(data) != want {
		t.Errorf("domains file = %q, want %q", string(data), want)
	}
}

func TestDumpDomainsMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := DumpDomains(filepath.Join(dir, "nope.xml"), filepath.Join(dir, "out.txt"), nil)
	if !errors.Is(err, nmap.ErrNotFound) {
		t.Errorf("DumpDomains() error = %v, want ErrNotFound", err)
	}
}

func TestDumpDomainsMalformedInput(t *testing.T) {
	dir := t.TempDir()
	report := writeReport(t, dir, "bad.xml", "<nmaprun><host>")
	out := filepath.Join(dir, "out.txt")

	if err := DumpDomains(report, out, nil); err != nil {
		t.Errorf("DumpDomains() error = %v, want nil (warn and continue)", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file written for malformed input")
	}
}

func TestDumpDomainsHostWithoutHostname(t *testing.T) {
	dir := t.TempDir()
	report := writeReport(t, dir, "scan.xml", `<nmaprun>
  <host><hostnames><hostname name="web01"/></hostnames><address addr="10.0.0.5"/></host>
  <host><address addr="10.0.0.9"/></host>
</nmaprun>`)
	out := filepath.Join(dir, "out.txt")

	err := DumpDomains(report, out, nil)
	if !errors.Is(err, ErrHostnameMissing) {
		t.Fatalf("DumpDomains() error = %v, want ErrHostnameMissing", err)
	}

	// Hostnames seen before the broken host stay on disk.
	data, readErr := os.ReadFile(out)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(data) != "web01\n" {
		t.Errorf("partial output = %q, want %q", string(data), "web01\n")
	}
}

func TestDumpDomainsUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	report := writeReport(t, dir, "scan.xml", `<nmaprun>
  <host><hostnames><hostname name="web01"/></hostnames><address addr="10.0.0.5"/></host>
</nmaprun>`)

	// Output path points into a directory that does not exist.
	err := DumpDomains(report, filepath.Join(dir, "missing", "out.txt"), nil)
	if err != nil {
		t.Errorf("DumpDomains() error = %v, want nil (warn and continue)", err)
	}
}
