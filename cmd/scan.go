package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/report"
	"github.com/KaramelBytes/eda-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scJSON     bool
	scMinScore float64
	scQuiet    bool
	scLoad     loadFlags
)

// scanResult is one line of `eda scan --json`.
type scanResult struct {
	File  string                 `json:"file"`
	Flags *analysis.QualityFlags `json:"flags,omitempty"`
	Error string                 `json:"error,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <files...>",
	Short: "Score several CSV/TSV/XLSX files (globs allowed)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		opt := c.AnalysisOptions()
		if err := opt.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		results := make([]scanResult, 0, len(files))
		failed, below := 0, 0
		total := len(files)
		for i, path := range files {
			r := scanResult{File: path}
			t, err := scLoad.load(cmd, path)
			if err != nil {
				failed++
				r.Error = err.Error()
				if !scJSON {
					fmt.Fprintf(out, "[%d/%d] %s: ✗ %v\n", i+1, total, filepath.Base(path), err)
				}
				results = append(results, r)
				continue
			}
			flags := analysis.ComputeQualityFlags(t, opt)
			r.Flags = &flags
			if flags.QualityScore < scMinScore {
				below++
			}
			if !scJSON && !scQuiet {
				fmt.Fprintf(out, "[%d/%d] %s: %.2f (%s)\n", i+1, total, filepath.Base(path), flags.QualityScore, report.Verdict(flags.QualityScore))
			}
			results = append(results, r)
		}
		if scJSON {
			b, err := utils.PrettyJSON(results)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be analyzed", failed, total)
		}
		if below > 0 {
			return fmt.Errorf("%d of %d files scored below %.2f", below, total, scMinScore)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// repeats. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scJSON, "json", false, "print all flags as a JSON array")
	scanCmd.Flags().Float64Var(&scMinScore, "min-score", 0, "fail when any file scores below this value")
	scanCmd.Flags().BoolVar(&scQuiet, "quiet", false, "suppress per-file lines")
	scLoad.register(scanCmd)
}
