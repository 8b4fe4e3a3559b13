package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bl4ck0w1/tlslynx/cmd/tlslynx/commands"
	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

var (
	version   = "1.0.0"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "tlslynx",
	Short:         "TLSLynx - Nmap SSL/TLS Report Analyzer",
	Long:          "TLSLynx digs through Nmap XML reports and pulls out every service still answering on deprecated TLS protocols, ready for export to CSV, JSON, or Excel.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := initLogging(); err != nil {
			return err
		}

		if err := ensureDirs(); err != nil {
			logrus.Warnf("Failed to ensure directories: %v", err)
		}

		if !viper.GetBool("display.quiet") && !viper.GetBool("display.no_banner") {
			printBanner()
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.tlslynx/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet mode (no banner or result table)")
	rootCmd.PersistentFlags().Bool("no-banner", false, "suppress the startup banner")
	rootCmd.PersistentFlags().Bool("pretty", false, "render tables and summaries with terminal styling")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("display.quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("display.no_banner", rootCmd.PersistentFlags().Lookup("no-banner"))
	_ = viper.BindPFlag("display.pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	_ = viper.BindPFlag("global.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("global.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("global.log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewDomainsCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewConfigureCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, buildDate))

	rootCmd.InitDefaultCompletionCmd()
	installConsolidatedHelp(rootCmd)

	rootCmd.SetVersionTemplate(fmt.Sprintf("TLSLynx %s (commit %s, built %s)\n", version, commit, buildDate))
}

func initConfig() error {
	setDefaults()
	viper.SetEnvPrefix("TLSLYNX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home dir: %w", err)
		}
		if dir := utils.GetEnv("TLSLYNX_CONFIG_DIR", ""); dir != "" {
			viper.AddConfigPath(dir)
		}
		viper.AddConfigPath(filepath.Join(home, ".tlslynx"))
		viper.AddConfigPath("/etc/tlslynx/")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logrus.Warnf("Failed reading config file: %v", err)
		}
	} else {
		logrus.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}

	return nil
}

func setDefaults() {
	def := models.DefaultConfig()

	viper.SetDefault("global.log_level", def.Global.LogLevel)
	viper.SetDefault("global.log_format", def.Global.LogFormat)
	viper.SetDefault("global.log_file", def.Global.LogFile)
	viper.SetDefault("global.data_dir", def.Global.DataDir)

	viper.SetDefault("export.formats", def.Export.Formats)
	viper.SetDefault("export.output_dir", def.Export.OutputDir)
	viper.SetDefault("export.base_name", def.Export.BaseName)
	viper.SetDefault("export.csv_encoding", def.Export.CSVEncoding)
	viper.SetDefault("export.bom", def.Export.BOM)

	viper.SetDefault("display.pretty", def.Display.Pretty)
	viper.SetDefault("display.quiet", def.Display.Quiet)
	viper.SetDefault("display.no_banner", def.Display.NoBanner)

	viper.SetDefault("storage.path", def.Storage.Path)
	viper.SetDefault("storage.compression", def.Storage.Compression)
	viper.SetDefault("storage.retention", def.Storage.Retention.String())

	viper.SetDefault("metrics.enabled", def.Metrics.Enabled)
	viper.SetDefault("metrics.listen", def.Metrics.Listen)
}

func initLogging() error {
	logConfig := utils.LogConfig{
		Level:        viper.GetString("global.log_level"),
		Format:       viper.GetString("global.log_format"),
		FileLocation: viper.GetString("global.log_file"),
	}

	logger, err := utils.NewLogger(logConfig, "tlslynx", version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize structured logger, falling back: %v\n", err)
		basic := logrus.New()
		basic.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetOutput(basic.Out)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(basic.Formatter)
		return nil
	}

	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.Level)
	logrus.SetFormatter(logger.Formatter)
	logrus.StandardLogger().ReplaceHooks(logger.Hooks)
	return nil
}

func ensureDirs() error {
	dirs := []string{
		viper.GetString("export.output_dir"),
		viper.GetString("global.data_dir"),
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := utils.EnsureDir(d); err != nil {
			return fmt.Errorf("ensure dir %s: %w", d, err)
		}
	}
	return nil
}

func printBanner() {
	const banner = `
████████╗██╗     ███████╗██╗     ██╗   ██╗███╗   ██╗██╗  ██╗
╚══██╔══╝██║     ██╔════╝██║     ╚██╗ ██╔╝████╗  ██║╚██╗██╔╝
   ██║   ██║     ███████╗██║      ╚████╔╝ ██╔██╗ ██║ ╚███╔╝
   ██║   ██║     ╚════██║██║       ╚██╔╝  ██║╚██╗██║ ██╔██╗
   ██║   ███████╗███████║███████╗   ██║   ██║ ╚████║██╔╝ ██╗
   ╚═╝   ╚══════╝╚══════╝╚══════╝   ╚═╝   ╚═╝  ╚═══╝╚═╝  ╚═╝

                Nmap SSL/TLS Report Analyzer v%s
     ________________________________________________________
`
	fmt.Printf(banner, version)
	fmt.Printf("Build: %s (%s) | %s/%s\n\n", commit, buildDate, runtime.GOOS, runtime.GOARCH)
}

func installConsolidatedHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}

		if !viper.GetBool("display.quiet") && !viper.GetBool("display.no_banner") {
			printBanner()
		}

		fmt.Println("USAGE:")
		fmt.Print("  tlslynx [command] [global flags]\n\n")
		fmt.Println("GLOBAL FLAGS:")
		home, _ := os.UserHomeDir()
		fmt.Printf("  -c, --config string      config file (default is %s)\n", filepath.Join(home, ".tlslynx", "config.yaml"))
		fmt.Printf("  -q, --quiet              quiet mode (no banner or result table)\n")
		fmt.Printf("      --no-banner          suppress the startup banner\n")
		fmt.Printf("      --pretty             render tables and summaries with terminal styling\n")
		fmt.Printf("  -l, --log-level string   log level (debug, info, warn, error, fatal) (default %q)\n", viper.GetString("global.log_level"))
		fmt.Printf("      --log-format string  log format (text, json) (default %q)\n", viper.GetString("global.log_format"))
		fmt.Printf("      --log-file string    log file path\n")
		fmt.Printf("  -v, --version            version for tlslynx\n\n")

		cmds := []*cobra.Command{}
		for _, c := range root.Commands() {
			if c.IsAvailableCommand() && !c.Hidden {
				cmds = append(cmds, c)
			}
		}
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		fmt.Println("COMMANDS OVERVIEW:")
		for _, c := range cmds {
			fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
		}
		fmt.Println()

		fmt.Println("DETAILED COMMAND HELP")
		fmt.Println("─────────────────")

		for _, c := range cmds {
			fmt.Printf("\n%s\n", c.Name())
			fmt.Println(strings.Repeat("-", len(c.Name())))

			switch {
			case c.Long != "":
				fmt.Println(c.Long)
			case c.Short != "":
				fmt.Println(c.Short)
			}

			fmt.Println("\nUsage:")
			fmt.Printf("  tlslynx %s\n\n", c.UseLine())

			if c.Flags().HasAvailableFlags() {
				fmt.Println("Flags:")
				c.Flags().PrintDefaults()
				fmt.Println()
			}

			subs := []*cobra.Command{}
			for _, sc := range c.Commands() {
				if sc.IsAvailableCommand() && !sc.Hidden {
					subs = append(subs, sc)
				}
			}
			if len(subs) > 0 {
				fmt.Println("Subcommands:")
				for _, sc := range subs {
					title := c.Name() + " " + sc.Name()
					fmt.Printf("\n%s\n", title)
					fmt.Println(strings.Repeat("-", len(title)))

					if sc.Short != "" {
						fmt.Println(sc.Short)
						fmt.Println()
					}

					fmt.Println("Usage:")
					fmt.Printf("  tlslynx %s %s\n\n", c.Name(), sc.UseLine())

					if sc.Flags().HasAvailableFlags() {
						fmt.Println("Flags:")
						sc.Flags().PrintDefaults()
						fmt.Println()
					}
				}
			}
		}

		fmt.Println("NOTES:")
		fmt.Println("  • Use \"tlslynx [command] --help\" for focused help on any command.")
		fmt.Println("  • Autocomplete instructions are printed by `tlslynx completion --help`.")
	})
}

func main() {
	startTime := time.Now()
	Execute()
	if strings.EqualFold(viper.GetString("global.log_level"), "debug") {
		logrus.Debugf("Execution completed in %v", time.Since(startTime))
	}
}
