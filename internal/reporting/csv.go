package reporting

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

var csvHeader = []string{"ID", "Host", "IP", "Port", "Vulnerable Protocols"}

// CSVFormatter writes rows by plain comma join. Fields are not quoted
// or escaped, so an embedded comma shifts columns; the format is kept
// for output compatibility with existing consumers.
type CSVFormatter struct {
	// BOM prepends a UTF-8 byte order mark so older spreadsheet tools
	// pick up the encoding.
	BOM bool
}

func (f *CSVFormatter) Format(records []models.VulnerabilityRecord) ([]byte, error) {
	var buf bytes.Buffer
	if f.BOM {
		buf.WriteString("\ufeff")
	}

	buf.WriteString(strings.Join(csvHeader, ","))
	buf.WriteByte('\n')

	for i, r := range records {
		row := []string{strconv.Itoa(i + 1), r.Host, r.IPAddr, r.Port, r.Protocols}
		buf.WriteString(strings.Join(row, ","))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func (f *CSVFormatter) FileExtension() string { return "csv" }
