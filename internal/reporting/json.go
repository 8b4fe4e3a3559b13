package reporting

import (
	"bytes"
	"encoding/json"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

// JSONFormatter serializes the record sequence as an indented array.
// HTML escaping is off so the " & " protocol separator survives
// literally instead of becoming \u0026.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(records []models.VulnerabilityRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *JSONFormatter) FileExtension() string { return "json" }
