package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/eda-cli/internal/report"
	"github.com/KaramelBytes/eda-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	repOutDir          string
	repTitle           string
	repMaxHistColumns  int
	repTopKCategories  int
	repMinMissingShare float64
	repHighCardinality int
	repQuiet           bool
	repLoad            loadFlags
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Write a Markdown data-quality report with histograms and summary.json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := report.Options{
			OutDir:         c.OutDir,
			Title:          c.ReportTitle,
			MaxHistColumns: c.MaxHistColumns,
			TopKCategories: c.TopKCategories,
			Analysis:       c.AnalysisOptions(),
			SourcePath:     path,
		}
		f := cmd.Flags()
		if f.Changed("out-dir") {
			opt.OutDir = repOutDir
		}
		if f.Changed("title") {
			opt.Title = repTitle
		}
		if f.Changed("max-hist-columns") {
			opt.MaxHistColumns = repMaxHistColumns
		}
		if f.Changed("top-k-categories") {
			opt.TopKCategories = repTopKCategories
		}
		if f.Changed("min-missing-share") {
			opt.Analysis.MinMissingShare = repMinMissingShare
		}
		if f.Changed("high-cardinality-threshold") {
			opt.Analysis.HighCardinalityThreshold = repHighCardinality
		}
		if !repQuiet {
			opt.Progress = os.Stderr
		}

		t, err := repLoad.load(cmd, path)
		if err != nil {
			return err
		}
		res, err := report.Generate(t, opt)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Report saved to %s/\n", utils.DisplayPath(filepath.Clean(opt.OutDir)))
		fmt.Fprintf(out, "  Main file: %s\n", utils.DisplayPath(res.ReportPath))
		fmt.Fprintf(out, "  Summary: %s\n", utils.DisplayPath(res.SummaryPath))
		fmt.Fprintf(out, "  Quality score: %.2f/1.00 (%s)\n", res.Flags.QualityScore, report.Verdict(res.Flags.QualityScore))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutDir, "out-dir", "o", "reports", "directory for report.md, summary.json and images")
	reportCmd.Flags().StringVar(&repTitle, "title", "EDA Report", "report title")
	reportCmd.Flags().IntVar(&repMaxHistColumns, "max-hist-columns", 5, "maximum numeric columns to plot (0 disables histograms)")
	reportCmd.Flags().IntVar(&repTopKCategories, "top-k-categories", 10, "top values listed per categorical column")
	reportCmd.Flags().Float64Var(&repMinMissingShare, "min-missing-share", 0.3, "flag columns whose missing share exceeds this value")
	reportCmd.Flags().IntVar(&repHighCardinality, "high-cardinality-threshold", 50, "flag categorical columns with more distinct values than this")
	reportCmd.Flags().BoolVar(&repQuiet, "quiet", false, "hide the progress bar")
	repLoad.register(reportCmd)
}
