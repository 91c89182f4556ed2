package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "eda",
	Short: "eda: data-quality diagnostics for tabular files",
	Long: `eda inspects CSV, TSV and XLSX datasets for missing values, duplicate rows,
constant and high-cardinality columns and duplicated identifiers, and rolls them
into a single quality score. Results are printed, written as a Markdown report
with histograms, or served as a JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.eda-cli/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	if debug && cfg.Path != "" {
		fmt.Fprintf(os.Stderr, "[debug] config: %s\n", cfg.Path)
	}
}

// currentConfig returns the loaded configuration, loading it on demand so
// commands also work when OnInitialize did not run.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}
