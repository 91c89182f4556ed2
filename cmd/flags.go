package cmd

import (
	"fmt"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	flOutput          string
	flMinMissingShare float64
	flHighCardinality int
	flLoad            loadFlags
)

var flagsCmd = &cobra.Command{
	Use:   "flags <file>",
	Short: "Print the quality flags of a dataset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if cmd.Flags().Changed("min-missing-share") {
			opt.MinMissingShare = flMinMissingShare
		}
		if cmd.Flags().Changed("high-cardinality-threshold") {
			opt.HighCardinalityThreshold = flHighCardinality
		}
		if err := opt.Validate(); err != nil {
			return err
		}
		t, err := flLoad.load(cmd, args[0])
		if err != nil {
			return err
		}
		flags := analysis.ComputeQualityFlags(t, opt)
		if flOutput != "" {
			if err := utils.WriteJSON(flOutput, flags); err != nil {
				return fmt.Errorf("write flags: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Flags written to %s\n", utils.DisplayPath(flOutput))
			return nil
		}
		b, err := utils.PrettyJSON(flags)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flagsCmd.Flags().StringVarP(&flOutput, "output", "o", "", "write JSON to this file instead of stdout")
	flagsCmd.Flags().Float64Var(&flMinMissingShare, "min-missing-share", 0.3, "flag columns whose missing share exceeds this value")
	flagsCmd.Flags().IntVar(&flHighCardinality, "high-cardinality-threshold", 50, "flag categorical columns with more distinct values than this")
	flLoad.register(flagsCmd)
}
