package pipeline

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bl4ck0w1/tlslynx/internal/extract"
	"github.com/bl4ck0w1/tlslynx/internal/reporting"
	"github.com/bl4ck0w1/tlslynx/internal/storage"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

// Pipeline chains the batch extractor, the exporters, and the run
// archive into one synchronous parse run. Every stage runs on the
// calling goroutine; a failure in export or archival degrades to a
// warning and never aborts the run.
type Pipeline struct {
	config   *models.Config
	logger   *utils.Logger
	metrics  *utils.MetricsCollector
	batch    *extract.Batch
	exporter *reporting.Exporter
	store    *storage.RunStore
}

func New(config *models.Config, logger *utils.Logger, metrics *utils.MetricsCollector) (*Pipeline, error) {
	if config == nil {
		config = models.DefaultConfig()
	}
	if logger == nil {
		logger = utils.DefaultLogger()
	}

	p := &Pipeline{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		batch:    extract.NewBatch(logger, metrics),
		exporter: reporting.NewExporter(config.Export, logger),
	}

	if config.Storage.Path != "" {
		store, err := storage.NewRunStore(config.Storage.Path, config.Storage.Compression, config.Storage.Retention, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open run store: %w", err)
		}
		p.store = store
	}

	p.registerMetrics()
	return p, nil
}

func (p *Pipeline) registerMetrics() {
	if p.metrics == nil {
		return
	}
	_ = p.metrics.RegisterCounter("tlslynx_files_parsed_total", "Report files parsed successfully.")
	_ = p.metrics.RegisterCounter("tlslynx_files_failed_total", "Report files skipped because they were missing or malformed.")
	_ = p.metrics.RegisterCounter("tlslynx_records_extracted_total", "Vulnerability records extracted across all runs.")
	_ = p.metrics.RegisterHistogram("tlslynx_run_duration_seconds", "Wall time of one parse run.", nil)
	_ = p.metrics.RegisterGauge("tlslynx_last_run_records", "Records extracted by the most recent run.")
}

// Run parses every input file in order, exports the configured
// formats, and archives the run. The returned result is complete even
// when individual files failed; Run errors only when there is nothing
// to do.
func (p *Pipeline) Run(paths []string) (*models.ParseResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files provided")
	}

	log := p.logger.WithComponent("pipeline")
	result := &models.ParseResult{
		RunID:     generateRunID(time.Now(), len(paths)),
		StartTime: time.Now(),
		Status:    models.RunStatusRunning,
	}
	log.WithField("run_id", result.RunID).Infof("starting parse run over %d file(s)", len(paths))

	files, records := p.batch.Run(paths)
	result.Files = files
	result.Records = records
	result.Stats = models.StatsFromFiles(files)

	result.Exports = p.exporter.ExportAll(records, p.config.Export.Formats)

	result.EndTime = time.Now()
	if result.Stats.FilesTotal > 0 && result.Stats.FilesParsed == 0 {
		result.Status = models.RunStatusFailed
	} else {
		result.Status = models.RunStatusCompleted
	}

	p.observe(result)

	if p.store != nil {
		if err := p.store.SaveRun(result); err != nil {
			log.Warnf("failed to archive run: %v", err)
		}
	}

	log.WithField("run_id", result.RunID).Infof("run finished: %d/%d files, %d records in %s",
		result.Stats.FilesParsed, result.Stats.FilesTotal,
		result.Stats.RecordsExtracted, utils.HumanizeDuration(result.Duration()))

	return result, nil
}

func (p *Pipeline) observe(result *models.ParseResult) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveHistogram("tlslynx_run_duration_seconds", result.Duration().Seconds(), prometheus.Labels{})
	p.metrics.SetGauge("tlslynx_last_run_records", float64(result.Stats.RecordsExtracted), prometheus.Labels{})
}

func generateRunID(at time.Time, fileCount int) string {
	return fmt.Sprintf("run_%s_%dfiles", at.Format("20060102_150405"), fileCount)
}
