package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bl4ck0w1/tlslynx/pkg/models"
	"github.com/bl4ck0w1/tlslynx/pkg/utils"
)

func NewConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Manage TLSLynx configuration",
		Long: `Manage TLSLynx configuration profiles, view current settings,
and initialize configuration files.`,
	}

	cmd.AddCommand(newConfigureInitCommand())
	cmd.AddCommand(newConfigureShowCommand())
	cmd.AddCommand(newConfigureListCommand())
	cmd.AddCommand(newConfigureSetCommand())
	cmd.AddCommand(newConfigureGetCommand())
	return cmd
}

func newConfigureInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [profile]",
		Short: "Initialize a new configuration profile",
		Long:  `Initialize a new configuration profile with default values (YAML).`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigureInit,
	}
}

func newConfigureShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [profile]",
		Short: "Show current configuration",
		Long:  `Show the current configuration values for the specified profile.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigureShow,
	}
	cmd.Flags().StringP("profile", "p", "default", "Configuration profile")
	return cmd
}

func newConfigureListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available configuration profiles",
		Long:  `List all available configuration profiles (YAML files).`,
		RunE:  runConfigureList,
	}
}

func newConfigureSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value for the selected profile.
Supports dotted keys (e.g. "export.formats") and basic type parsing:
- booleans: true/false
- integers/floats: 10, 3.14
- durations (for keys containing "retention"): "90d", "720h"
- string lists: "csv,json" -> ["csv","json"]`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigureSet,
	}
	cmd.Flags().StringP("profile", "p", "default", "Configuration profile")
	return cmd
}

func newConfigureGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Get a configuration value from the selected profile.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigureGet,
	}
	cmd.Flags().StringP("profile", "p", "default", "Configuration profile")
	return cmd
}

func runConfigureInit(cmd *cobra.Command, args []string) error {
	profile := "default"
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		profile = strings.TrimSpace(args[0])
	}

	configFile, err := profilePath(profile)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configFile); err == nil {
		logrus.Warnf("Configuration file already exists: %s", configFile)
		ok, ierr := confirmOverwrite()
		if ierr != nil {
			return ierr
		}
		if !ok {
			logrus.Info("Configuration initialization cancelled")
			return nil
		}
	}

	if err := models.DefaultConfig().Save(configFile); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	logrus.Infof("Configuration initialized: %s", configFile)
	logrus.Info("Edit this file to customize defaults. Run `tlslynx configure show -p " + profile + "` to view.")
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	profile, _ := cmd.Flags().GetString("profile")
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		profile = strings.TrimSpace(args[0])
	}

	if err := loadProfileIntoViper(profile); err != nil {
		return fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	fmt.Printf("Configuration for profile: %s\n", profile)
	fmt.Println("═══════════════════════════════════════════════════════════════")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "GENERAL SETTINGS:\t")
	fmt.Fprintf(w, "  Log Level:\t%s\n", viper.GetString("global.log_level"))
	fmt.Fprintf(w, "  Log Format:\t%s\n", viper.GetString("global.log_format"))
	fmt.Fprintf(w, "  Log File:\t%s\n", viper.GetString("global.log_file"))
	fmt.Fprintf(w, "  Data Directory:\t%s\n", viper.GetString("global.data_dir"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EXPORT SETTINGS:\t")
	fmt.Fprintf(w, "  Formats:\t%v\n", viper.GetStringSlice("export.formats"))
	fmt.Fprintf(w, "  Output Directory:\t%s\n", viper.GetString("export.output_dir"))
	fmt.Fprintf(w, "  Base Name:\t%s\n", viper.GetString("export.base_name"))
	fmt.Fprintf(w, "  CSV Encoding:\t%s\n", viper.GetString("export.csv_encoding"))
	fmt.Fprintf(w, "  BOM:\t%t\n", viper.GetBool("export.bom"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DISPLAY SETTINGS:\t")
	fmt.Fprintf(w, "  Pretty:\t%t\n", viper.GetBool("display.pretty"))
	fmt.Fprintf(w, "  Quiet:\t%t\n", viper.GetBool("display.quiet"))
	fmt.Fprintf(w, "  No Banner:\t%t\n", viper.GetBool("display.no_banner"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STORAGE SETTINGS:\t")
	fmt.Fprintf(w, "  Path:\t%s\n", viper.GetString("storage.path"))
	fmt.Fprintf(w, "  Compression:\t%t\n", viper.GetBool("storage.compression"))
	fmt.Fprintf(w, "  Retention:\t%s\n", viper.GetString("storage.retention"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "METRICS SETTINGS:\t")
	fmt.Fprintf(w, "  Enabled:\t%t\n", viper.GetBool("metrics.enabled"))
	fmt.Fprintf(w, "  Listen:\t%s\n", viper.GetString("metrics.listen"))
	fmt.Fprintln(w)

	_ = w.Flush()
	return nil
}

func runConfigureList(cmd *cobra.Command, args []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logrus.Info("No configuration profiles found.")
		logrus.Info("Run 'tlslynx configure init' to create a default profile.")
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to list configuration files: %w", err)
	}

	if len(files) == 0 {
		logrus.Info("No configuration profiles found.")
		return nil
	}

	fmt.Println("Available configuration profiles:")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	for _, file := range files {
		base := filepath.Base(file)
		fmt.Printf("  • %s\n", strings.TrimSuffix(base, ".yaml"))
	}
	return nil
}

func runConfigureSet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	rawVal := args[1]
	profile, _ := cmd.Flags().GetString("profile")

	cfg, cfgPath, err := loadConfigFile(profile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	val := parseValueForKey(key, rawVal)
	setNested(cfg, strings.Split(key, "."), val)

	if err := writeYAMLFile(cfgPath, cfg); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	logrus.Infof("Set %s = %v in profile %s", key, val, profile)
	return nil
}

func runConfigureGet(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	profile, _ := cmd.Flags().GetString("profile")

	if err := loadProfileIntoViper(profile); err != nil {
		return fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	val := viper.Get(key)
	if val == nil {
		fmt.Printf("%s = <nil>\n", key)
		return nil
	}
	fmt.Printf("%s = %v\n", key, val)
	return nil
}

// configDir is where profiles live. TLSLYNX_CONFIG_DIR overrides the
// default so profiles can be kept away from $HOME.
func configDir() (string, error) {
	if dir := utils.GetEnv("TLSLYNX_CONFIG_DIR", ""); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".tlslynx"), nil
}

func profilePath(profile string) (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profile+".yaml"), nil
}

func loadProfileIntoViper(profile string) error {
	cfg, err := profilePath(profile)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg); os.IsNotExist(err) {
		return fmt.Errorf("profile %s does not exist", profile)
	}
	viper.SetConfigFile(cfg)
	return viper.ReadInConfig()
}

func loadConfigFile(profile string) (map[string]interface{}, string, error) {
	configFile, err := profilePath(profile)
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := map[string]interface{}{}
	if _, err := os.Stat(configFile); err == nil {
		b, rerr := os.ReadFile(configFile)
		if rerr != nil {
			return nil, "", fmt.Errorf("failed to read configuration: %w", rerr)
		}
		if uerr := yaml.Unmarshal(b, &cfg); uerr != nil {
			return nil, "", fmt.Errorf("failed to parse YAML: %w", uerr)
		}
	}
	return cfg, configFile, nil
}

func writeYAMLFile(path string, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, out, 0o644)
}

func setNested(dst map[string]interface{}, keys []string, val interface{}) {
	if len(keys) == 0 {
		return
	}
	if len(keys) == 1 {
		dst[keys[0]] = val
		return
	}
	k := keys[0]
	child, ok := dst[k].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
	}
	setNested(child, keys[1:], val)
	dst[k] = child
}

func parseValueForKey(key, s string) interface{} {
	trim := strings.TrimSpace(s)

	if strings.Contains(trim, ",") {
		return utils.SplitTrim(trim, ",")
	}

	if b, err := strconv.ParseBool(trim); err == nil {
		return b
	}

	if i, err := strconv.Atoi(trim); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(trim, 64); err == nil {
		return f
	}

	if strings.Contains(strings.ToLower(key), "retention") {
		if d, err := utils.ParseDurationExtended(trim); err == nil {
			return d.String()
		}
	}
	return trim
}

func confirmOverwrite() (bool, error) {
	fmt.Print("Configuration file already exists. Overwrite? (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	resp = strings.TrimSpace(resp)
	return resp == "y" || resp == "Y", nil
}
