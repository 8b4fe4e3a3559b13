package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/tlslynx/internal/pipeline"
	"github.com/bl4ck0w1/tlslynx/internal/reporting"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <nmap-xml>...",
		Short: "Extract deprecated TLS findings from Nmap XML reports",
		Long: `Parse one or more Nmap XML reports, collect every service that still
accepts TLSv1.0 or TLSv1.1, and export the findings in the configured
formats. Missing or malformed files are skipped with a warning; the run
continues over the remaining reports.`,
		Args: cobra.ArbitraryArgs,
		RunE: runParse,
	}

	cmd.Flags().StringSliceP("formats", "f", []string{"csv"}, "Export formats (csv, json, xlsx)")
	cmd.Flags().StringP("output-dir", "o", "./reports", "Directory for exported files")
	cmd.Flags().StringP("base-name", "b", "ssl_scan", "Base name for exported files")
	cmd.Flags().String("csv-encoding", "utf-8", "Charset used when reading the CSV back for Excel conversion")
	cmd.Flags().Bool("bom", false, "Prefix CSV exports with a UTF-8 byte order mark")
	cmd.Flags().String("input-list", "", "File with one report path per line (# comments allowed)")
	cmd.Flags().Bool("no-archive", false, "Skip archiving the run result")
	cmd.Flags().Bool("metrics", false, "Serve Prometheus metrics until interrupted")

	_ = viper.BindPFlag("export.formats", cmd.Flags().Lookup("formats"))
	_ = viper.BindPFlag("export.output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("export.base_name", cmd.Flags().Lookup("base-name"))
	_ = viper.BindPFlag("export.csv_encoding", cmd.Flags().Lookup("csv-encoding"))
	_ = viper.BindPFlag("export.bom", cmd.Flags().Lookup("bom"))
	_ = viper.BindPFlag("parse.input_list", cmd.Flags().Lookup("input-list"))
	_ = viper.BindPFlag("parse.no_archive", cmd.Flags().Lookup("no-archive"))
	_ = viper.BindPFlag("metrics.enabled", cmd.Flags().Lookup("metrics"))

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	paths, err := collectInputPaths(args, viper.GetString("parse.input_list"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files provided")
	}
	logrus.Infof("Parsing %d report file(s)", len(paths))

	cfg := currentConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if viper.GetBool("parse.no_archive") {
		cfg.Storage.Path = ""
	}

	metrics := utils.DefaultMetricsCollector()

	p, err := pipeline.New(cfg, buildLogger(), metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	var srvDone chan error
	if cfg.Metrics.Enabled {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		srvDone = make(chan error, 1)
		go func() { srvDone <- metrics.StartServerWithContext(ctx, cfg.Metrics.Listen) }()
		logrus.Infof("Serving metrics on http://%s/metrics", cfg.Metrics.Listen)
	}

	result, err := p.Run(paths)
	if err != nil {
		return fmt.Errorf("parse run failed: %w", err)
	}

	presenter := reporting.NewPresenter(os.Stdout, cfg.Display.Pretty)
	if !cfg.Display.Quiet {
		presenter.Table(result.Records)
	}
	presenter.Summary(result)

	if srvDone != nil {
		logrus.Info("Metrics server still running, press Ctrl-C to stop")
		if err := <-srvDone; err != nil {
			logrus.Warnf("Metrics server: %v", err)
		}
	}
	return nil
}

// collectInputPaths merges positional arguments with an optional list
// file, keeping the order paths were given in.
func collectInputPaths(args []string, listPath string) ([]string, error) {
	paths := append([]string{}, args...)
	if listPath == "" {
		return paths, nil
	}

	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input list: %w", err)
	}
	return paths, nil
}

// currentConfig materializes the effective configuration from viper,
// which already layers defaults, the config file, environment
// variables, and bound flags.
func currentConfig() *models.Config {
	cfg := models.DefaultConfig()

	cfg.Global.LogLevel = viper.GetString("global.log_level")
	cfg.Global.LogFormat = viper.GetString("global.log_format")
	cfg.Global.LogFile = viper.GetString("global.log_file")
	cfg.Global.DataDir = viper.GetString("global.data_dir")

	cfg.Export.Formats = normalizeFormats(viper.GetStringSlice("export.formats"))
	cfg.Export.OutputDir = viper.GetString("export.output_dir")
	cfg.Export.BaseName = viper.GetString("export.base_name")
	cfg.Export.CSVEncoding = viper.GetString("export.csv_encoding")
	cfg.Export.BOM = viper.GetBool("export.bom")

	cfg.Display.Pretty = viper.GetBool("display.pretty")
	cfg.Display.Quiet = viper.GetBool("display.quiet")
	cfg.Display.NoBanner = viper.GetBool("display.no_banner")

	cfg.Storage.Path = viper.GetString("storage.path")
	cfg.Storage.Compression = viper.GetBool("storage.compression")
	if d, err := utils.ParseDurationExtended(viper.GetString("storage.retention")); err == nil {
		cfg.Storage.Retention = d
	}

	cfg.Metrics.Enabled = viper.GetBool("metrics.enabled")
	cfg.Metrics.Listen = viper.GetString("metrics.listen")

	return cfg
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "":
			continue
		case "excel":
			f = "xlsx"
		}
		out = append(out, f)
	}
	return out
}

// buildLogger mirrors the root logging setup for components that take
// a structured logger instead of the global logrus instance.
func buildLogger() *utils.Logger {
	logConfig := utils.LogConfig{
		Level:        viper.GetString("global.log_level"),
		Format:       viper.GetString("global.log_format"),
		FileLocation: viper.GetString("global.log_file"),
	}
	logger, err := utils.NewLogger(logConfig, "tlslynx", "dev")
	if err != nil {
		return utils.DefaultLogger()
	}
	return logger
}
