package commands

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/tlslynx/internal/reporting"
	"github.com/bl4ck0w1/tlslynx/internal/storage"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
)

func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export an archived run",
		Long: `Re-export the records of an archived parse run without re-parsing the
source reports. Runs are addressed by ID, or --latest picks the most
recent one.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("run", "r", "", "Run ID to export (see `tlslynx runs list`)")
	cmd.Flags().Bool("latest", false, "Export the most recent archived run")
	cmd.Flags().StringP("format", "f", "csv", "Format to export (csv, json, xlsx, all)")
	cmd.Flags().StringP("output-dir", "o", "", "Directory for exported files (defaults to export.output_dir)")

	_ = viper.BindPFlag("export.run", cmd.Flags().Lookup("run"))
	_ = viper.BindPFlag("export.latest", cmd.Flags().Lookup("latest"))
	_ = viper.BindPFlag("export.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("output-dir"))

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	result, err := resolveRun(store)
	if err != nil {
		return err
	}
	logrus.Infof("Re-exporting run %s (%d records)", result.RunID, len(result.Records))

	formats := resolveExportFormats(viper.GetString("export.format"))
	if len(formats) == 0 {
		return fmt.Errorf("no export format given")
	}

	exportCfg := currentConfig().Export
	if dir := viper.GetString("export.dir"); dir != "" {
		exportCfg.OutputDir = dir
	}

	exporter := reporting.NewExporter(exportCfg, buildLogger())
	written := exporter.ExportAll(result.Records, formats)
	if len(written) == 0 {
		logrus.Warn("Nothing was exported")
		return nil
	}

	logrus.Infof("Re-export completed: %d file(s)", len(written))
	return nil
}

func resolveRun(store *storage.RunStore) (*models.ParseResult, error) {
	runID := strings.TrimSpace(viper.GetString("export.run"))
	if runID != "" {
		result, err := store.LoadRun(runID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
		}
		return result, nil
	}

	if !viper.GetBool("export.latest") {
		return nil, fmt.Errorf("provide --run <id> or --latest")
	}

	runs, err := store.ListRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no archived runs found")
	}

	// ListRuns sorts oldest first.
	return runs[len(runs)-1], nil
}

func resolveExportFormats(format string) []string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "all" {
		return []string{"csv", "json", "xlsx"}
	}
	return normalizeFormats([]string{format})
}
