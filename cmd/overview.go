package cmd

import (
	"fmt"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/spf13/cobra"
)

var ovLoad loadFlags

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Print a short data-quality overview of a CSV/TSV/XLSX file",
	Long: `Print size, missing share, duplicate rows, the quality score and the problem
columns of a dataset. Thresholds come from the config file (min_missing_share,
high_cardinality_threshold).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if err := opt.Validate(); err != nil {
			return err
		}
		t, err := ovLoad.load(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), analysis.FormatOverview(analysis.ComputeQualityFlags(t, opt)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	ovLoad.register(overviewCmd)
}
