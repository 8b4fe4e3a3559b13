package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

// Formatter turns a record sequence into one serialized export body.
type Formatter interface {
	Format(records []models.VulnerabilityRecord) ([]byte, error)
	FileExtension() string
}

type Exporter struct {
	formatters map[string]Formatter
	config     models.ExportConfig
	logger     *utils.Logger
}

func NewExporter(config models.ExportConfig, logger *utils.Logger) *Exporter {
	if logger == nil {
		logger = utils.DefaultLogger()
	}

	e := &Exporter{
		formatters: make(map[string]Formatter),
		config:     config,
		logger:     logger,
	}

	e.RegisterFormatter("csv", &CSVFormatter{BOM: config.BOM})
	e.RegisterFormatter("json", &JSONFormatter{})

	return e
}

// RegisterFormatter is called during construction only; the registry
// is read-only afterwards.
func (e *Exporter) RegisterFormatter(name string, formatter Formatter) {
	e.formatters[name] = formatter
}

func (e *Exporter) SupportedFormats() []string {
	names := make([]string, 0, len(e.formatters))
	for k := range e.formatters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Export writes the records to path in the named format and returns
// the written path. An empty record sequence writes nothing and
// returns an empty path, matching the "no data to export" contract.
func (e *Exporter) Export(records []models.VulnerabilityRecord, format, path string) (string, error) {
	formatter, ok := e.formatters[format]
	if !ok {
		return "", fmt.Errorf("unsupported export format: %s", format)
	}

	log := e.logger.WithComponent("export")
	if len(records) == 0 {
		log.Info("no data to export")
		return "", nil
	}

	data, err := formatter.Format(records)
	if err != nil {
		return "", fmt.Errorf("failed to format records as %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	log.Infof("data exported to %s", path)
	return path, nil
}

// ExportAll writes every requested format into the configured output
// directory and returns the paths that landed on disk. xlsx derives
// from a CSV already written, so a CSV is produced whenever either
// format is requested. Failures degrade to warnings; a broken format
// never takes the rest down with it.
func (e *Exporter) ExportAll(records []models.VulnerabilityRecord, formats []string) []string {
	if len(formats) == 0 {
		return nil
	}

	log := e.logger.WithComponent("export")
	var written []string

	wantCSV := utils.StringInSlice("csv", formats)
	wantXLSX := utils.StringInSlice("xlsx", formats)

	var csvPath string
	if wantCSV || wantXLSX {
		out, err := e.Export(records, "csv", e.targetPath("csv"))
		if err != nil {
			log.Warnf("csv export failed: %v", err)
		} else if out != "" {
			csvPath = out
			written = append(written, out)
		}
	}

	if utils.StringInSlice("json", formats) {
		out, err := e.Export(records, "json", e.targetPath("json"))
		if err != nil {
			log.Warnf("json export failed: %v", err)
		} else if out != "" {
			written = append(written, out)
		}
	}

	if wantXLSX && csvPath != "" {
		out, err := e.ExcelFromCSV(csvPath)
		if err != nil {
			log.Warnf("excel conversion failed: %v", err)
		} else if out != "" {
			written = append(written, out)
		}
	}

	return written
}

// targetPath builds the timestamped output path for a format, asking
// the registered formatter for its file extension.
func (e *Exporter) targetPath(format string) string {
	ext := format
	if f, ok := e.formatters[format]; ok {
		ext = f.FileExtension()
	}
	return filepath.Join(e.config.OutputDir, ExportFilename(e.config.BaseName, ext))
}
