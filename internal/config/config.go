package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
)

// Global configuration structure.
type Global struct {
	// Quality thresholds
	MinMissingShare          float64 `mapstructure:"min_missing_share" yaml:"min_missing_share"`
	HighCardinalityThreshold int     `mapstructure:"high_cardinality_threshold" yaml:"high_cardinality_threshold"`

	// Report
	MaxHistColumns int    `mapstructure:"max_hist_columns" yaml:"max_hist_columns"`
	TopKCategories int    `mapstructure:"top_k_categories" yaml:"top_k_categories"`
	ReportTitle    string `mapstructure:"report_title" yaml:"report_title"`
	OutDir         string `mapstructure:"out_dir" yaml:"out_dir"`

	// Loading
	Delimiter  string   `mapstructure:"delimiter" yaml:"delimiter"`
	NullValues []string `mapstructure:"null_values" yaml:"null_values,omitempty"`
	MaxRows    int      `mapstructure:"max_rows" yaml:"max_rows"`

	// API server
	HTTPAddr    string `mapstructure:"http_addr" yaml:"http_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	// Path is the config file the values were read from, if any.
	Path string `mapstructure:"-" yaml:"-"`
}

// AnalysisOptions returns the quality thresholds as analysis options.
func (c *Global) AnalysisOptions() analysis.Options {
	return analysis.Options{
		MinMissingShare:          c.MinMissingShare,
		HighCardinalityThreshold: c.HighCardinalityThreshold,
	}
}

// Validate checks values that would make commands fail later.
func (c *Global) Validate() error {
	if err := c.AnalysisOptions().Validate(); err != nil {
		return err
	}
	if c.MaxHistColumns < 0 {
		return fmt.Errorf("max_hist_columns must not be negative, got %d", c.MaxHistColumns)
	}
	if c.TopKCategories <= 0 {
		return fmt.Errorf("top_k_categories must be positive, got %d", c.TopKCategories)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// Dir returns ~/.eda-cli.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".eda-cli"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.eda-cli/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	c.Path = path
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.eda-cli/config.yaml) > defaults.
// A missing file is fine; a malformed one is an error.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDA")
	v.AutomaticEnv()

	v.SetDefault("min_missing_share", 0.3)
	v.SetDefault("high_cardinality_threshold", 50)
	v.SetDefault("max_hist_columns", 5)
	v.SetDefault("top_k_categories", 10)
	v.SetDefault("report_title", "EDA Report")
	v.SetDefault("out_dir", "reports")
	v.SetDefault("delimiter", "")
	v.SetDefault("null_values", []string{})
	v.SetDefault("max_rows", 0)
	v.SetDefault("http_addr", ":8000")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.NullValues) == 0 {
		c.NullValues = nil
	}
	c.Path = v.ConfigFileUsed()
	if c.Path == "" && cfgFile != "" {
		c.Path = cfgFile
	}
	return &c, nil
}
