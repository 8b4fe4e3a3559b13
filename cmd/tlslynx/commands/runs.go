package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/tlslynx/internal/reporting"
	"github.com/bl4ck0w1/tlslynx/internal/storage"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage archived parse runs",
		Long: `Inspect, replay, and clean up archived parse runs stored under the
configured storage path.`,
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsViewCommand())
	cmd.AddCommand(newRunsDeleteCommand())
	cmd.AddCommand(newRunsCleanupCommand())
	cmd.AddCommand(newRunsStatsCommand())

	return cmd
}

func newRunsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		Long:  `List all archived parse runs, oldest first.`,
		RunE:  runRunsList,
	}
}

func newRunsViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <run-id>",
		Short: "Show one archived run in detail",
		Long:  `Show the files, findings, and exports of one archived parse run.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsView,
	}
}

func newRunsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete one archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsDelete,
	}
}

func newRunsCleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove runs older than the retention period",
		Long: `Remove archived runs whose files are older than the retention period
(storage.retention unless --older-than is given).`,
		RunE: runRunsCleanup,
	}

	cmd.Flags().StringP("older-than", "o", "", "Override the retention period (e.g. 720h, 30d)")
	_ = viper.BindPFlag("runs.older_than", cmd.Flags().Lookup("older-than"))

	return cmd
}

func newRunsStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		RunE:  runRunsStats,
	}
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		logrus.Info("No archived runs found")
		return nil
	}

	fmt.Printf("Archived runs in %s:\n", viper.GetString("storage.path"))
	fmt.Println("═══════════════════════════════════════════════════════════════")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTATUS\tFILES\tRECORDS\tSTARTED\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%s\t%s\n",
			run.RunID,
			run.Status,
			run.Stats.FilesParsed, run.Stats.FilesTotal,
			run.Stats.RecordsExtracted,
			run.StartTime.Format("2006-01-02 15:04"),
			utils.HumanizeDuration(run.Duration()),
		)
	}

	_ = w.Flush()
	return nil
}

func runRunsView(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	result, err := store.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Println("═══════════════════════════════════════════════════════════════")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Status:\t%s\n", result.Status)
	fmt.Fprintf(w, "Started:\t%s\n", result.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Duration:\t%s\n", utils.HumanizeDuration(result.Duration()))
	fmt.Fprintf(w, "Files:\t%d parsed, %d failed\n", result.Stats.FilesParsed, result.Stats.FilesFailed)
	fmt.Fprintf(w, "Records:\t%d\n", result.Stats.RecordsExtracted)
	counts := result.CountByProtocol()
	for _, protocol := range []string{models.ProtocolTLS10, models.ProtocolTLS11} {
		if n, ok := counts[protocol]; ok {
			fmt.Fprintf(w, "  %s:\t%d\n", protocol, n)
		}
	}
	_ = w.Flush()

	for _, file := range result.Files {
		if file.Failed() {
			fmt.Printf("failed: %s (%s)\n", file.Path, file.Error)
		}
	}
	if len(result.Exports) > 0 {
		fmt.Println("Exports:")
		for _, path := range result.Exports {
			fmt.Printf("  • %s\n", path)
		}
	}
	if !result.IsCompleted() {
		fmt.Println("note: this run did not complete cleanly")
	}

	presenter := reporting.NewPresenter(os.Stdout, viper.GetBool("display.pretty"))
	presenter.Table(result.Records)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	if err := store.DeleteRun(args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	logrus.Infof("Deleted run %s", args[0])
	return nil
}

func runRunsCleanup(cmd *cobra.Command, args []string) error {
	retentionStr := viper.GetString("runs.older_than")
	if retentionStr == "" {
		retentionStr = viper.GetString("storage.retention")
	}
	retention, err := utils.ParseDurationExtended(retentionStr)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	store, err := storage.NewRunStore(
		viper.GetString("storage.path"),
		viper.GetBool("storage.compression"),
		retention,
		buildLogger(),
	)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	removed, err := store.Cleanup()
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	logrus.Infof("Removed %d archived run(s) older than %s", removed, retention)
	return nil
}

func runRunsStats(cmd *cobra.Command, args []string) error {
	store, err := openRunStore()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	stats, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to get archive statistics: %w", err)
	}

	fmt.Println("Archive Statistics:")
	fmt.Println("═══════════════════════════════════════════════════════════════")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Path:\t%v\n", stats["path"])
	fmt.Fprintf(w, "Runs:\t%v\n", stats["runs"])
	fmt.Fprintf(w, "Total Size:\t%v\n", stats["total_size_human"])
	fmt.Fprintf(w, "Compression:\t%v\n", stats["compression_enabled"])
	fmt.Fprintf(w, "Retention:\t%v\n", stats["retention_period"])
	_ = w.Flush()
	return nil
}

func openRunStore() (*storage.RunStore, error) {
	retention, err := utils.ParseDurationExtended(viper.GetString("storage.retention"))
	if err != nil {
		retention = 0
	}
	return storage.NewRunStore(
		viper.GetString("storage.path"),
		viper.GetBool("storage.compression"),
		retention,
		buildLogger(),
	)
}
