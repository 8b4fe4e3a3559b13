package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

// ExcelFromCSV reads a previously written CSV export back and re-emits
// it as an xlsx workbook, same columns and row order, one sheet, no
// extra index column. The csv and xlsx paths are both derived from
// baseName by swapping the extension. A missing CSV is a warn-and-skip,
// not an error; anything else comes back to the caller.
func (e *Exporter) ExcelFromCSV(baseName string) (string, error) {
	stem := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	csvPath := stem + ".csv"
	xlsxPath := stem + ".xlsx"
	log := e.logger.WithComponent("export")

	if !utils.FileExists(csvPath) {
		log.Warnf("file %s does not exist, skipping conversion", csvPath)
		return "", nil
	}

	rows, err := readCSVRows(csvPath, e.config.CSVEncoding)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", csvPath, err)
	}

	wb := excelize.NewFile()
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := wb.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &cells); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := wb.SaveAs(xlsxPath); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", xlsxPath, err)
	}

	log.Infof("converted %s to %s", csvPath, xlsxPath)
	return xlsxPath, nil
}

func readCSVRows(path, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown csv encoding %q: %w", encoding, err)
		}
		r = transform.NewReader(f, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
