package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Global  GlobalConfig  `yaml:"global" json:"global"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Display DisplayConfig `yaml:"display" json:"display"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

type GlobalConfig struct {
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
	LogFile   string `yaml:"log_file" json:"log_file"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	Debug     bool   `yaml:"debug" json:"debug"`
}

type ExportConfig struct {
	Formats     []string `yaml:"formats" json:"formats"`
	OutputDir   string   `yaml:"output_dir" json:"output_dir"`
	BaseName    string   `yaml:"base_name" json:"base_name"`
	CSVEncoding string   `yaml:"csv_encoding" json:"csv_encoding"`
	BOM         bool     `yaml:"bom" json:"bom"`
}

type DisplayConfig struct {
	Pretty   bool `yaml:"pretty" json:"pretty"`
	Quiet    bool `yaml:"quiet" json:"quiet"`
	NoBanner bool `yaml:"no_banner" json:"no_banner"`
}

type StorageConfig struct {
	Path        string        `yaml:"path" json:"path"`
	Compression bool          `yaml:"compression" json:"compression"`
	Retention   time.Duration `yaml:"retention" json:"retention"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Listen  string `yaml:"listen" json:"listen"`
}

func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:  "info",
			LogFormat: "text",
			LogFile:   "",
			DataDir:   "./data",
			Debug:     false,
		},
		Export: ExportConfig{
			Formats:     []string{"csv"},
			OutputDir:   "./reports",
			BaseName:    "ssl_scan",
			CSVEncoding: "utf-8",
			BOM:         false,
		},
		Display: DisplayConfig{
			Pretty:   false,
			Quiet:    false,
			NoBanner: false,
		},
		Storage: StorageConfig{
			Path:        "./data/runs",
			Compression: false,
			Retention:   90 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9309",
		},
	}
}

func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Global.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		errs = append(errs, "global.log_level must be one of trace|debug|info|warn|error|fatal|panic")
	}
	switch strings.ToLower(c.Global.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, "global.log_format must be text or json")
	}
	if c.Global.DataDir == "" {
		errs = append(errs, "global.data_dir must not be empty")
	}

	if c.Export.OutputDir == "" {
		errs = append(errs, "export.output_dir must not be empty")
	}
	if c.Export.BaseName == "" {
		errs = append(errs, "export.base_name must not be empty")
	}
	if c.Export.CSVEncoding == "" {
		errs = append(errs, "export.csv_encoding must not be empty")
	}
	for _, f := range c.Export.Formats {
		switch f {
		case "csv", "json", "xlsx":
		default:
			errs = append(errs, fmt.Sprintf("export.format %q is not supported", f))
		}
	}

	if c.Storage.Path == "" {
		errs = append(errs, "storage.path must not be empty")
	}
	if c.Storage.Retention < 0 {
		errs = append(errs, "storage.retention must be >= 0")
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen must be set when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var (
		data []byte
		err  error
	)
	switch ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomically write config: %w", err)
	}
	return nil
}

func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	}

	return c.Validate()
}

// WantsFormat reports whether the export format list includes the given one.
func (c *Config) WantsFormat(format string) bool {
	for _, f := range c.Export.Formats {
		if f == format {
			return true
		}
	}
	return false
}
