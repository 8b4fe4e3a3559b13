package extract

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bl4ck0w1/tlslynx/internal/nmap"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

// Batch runs the loader and extractor over an ordered list of report
// files. One broken file never aborts the batch: its failure is logged,
// recorded on the per-file result, and contributes zero records.
type Batch struct {
	logger  *utils.Logger
	metrics *utils.MetricsCollector
}

func NewBatch(logger *utils.Logger, metrics *utils.MetricsCollector) *Batch {
	if logger == nil {
		logger = utils.DefaultLogger()
	}
	return &Batch{logger: logger, metrics: metrics}
}

// Run processes every path in input order and returns the per-file
// results plus the concatenated records, file order first, extraction
// order within each file.
func (b *Batch) Run(paths []string) ([]models.FileResult, []models.VulnerabilityRecord) {
	files := make([]models.FileResult, 0, len(paths))
	var all []models.VulnerabilityRecord

	for _, path := range paths {
		b.logger.WithComponent("batch").Infof("parsing %s", path)
		result, records := b.processFile(path)
		files = append(files, result)
		all = append(all, records...)
	}

	return files, all
}

func (b *Batch) processFile(path string) (models.FileResult, []models.VulnerabilityRecord) {
	log := b.logger.WithComponent("batch")
	result := models.FileResult{Path: path}

	root, err := nmap.Load(path)
	if err != nil {
		switch {
		case errors.Is(err, nmap.ErrNotFound):
			log.Warnf("file %s does not exist, skipping", path)
		case errors.Is(err, nmap.ErrMalformed):
			log.Warnf("file %s is not valid XML, skipping: %v", path, err)
		default:
			log.Warnf("cannot read %s, skipping: %v", path, err)
		}
		result.Error = err.Error()
		b.count("tlslynx_files_failed_total", 1)
		return result, nil
	}

	if fp, err := utils.FingerprintFile(path); err == nil {
		result.Fingerprint = fp
	}

	records := Extract(root)
	result.Records = len(records)
	b.count("tlslynx_files_parsed_total", 1)
	b.count("tlslynx_records_extracted_total", float64(len(records)))

	log.WithField("records", len(records)).WithField("fingerprint", result.Fingerprint).Debugf("parsed %s", path)
	return result, records
}

func (b *Batch) count(name string, delta float64) {
	if b.metrics != nil {
		b.metrics.IncCounter(name, delta, prometheus.Labels{})
	}
}
