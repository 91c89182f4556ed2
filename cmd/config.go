package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/eda-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set eda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if c.Path != "" {
			fmt.Fprintf(out, "# %s\n", c.Path)
		}
		fmt.Fprintf(out, "min_missing_share: %g\n", c.MinMissingShare)
		fmt.Fprintf(out, "high_cardinality_threshold: %d\n", c.HighCardinalityThreshold)
		fmt.Fprintf(out, "max_hist_columns: %d\n", c.MaxHistColumns)
		fmt.Fprintf(out, "top_k_categories: %d\n", c.TopKCategories)
		fmt.Fprintf(out, "report_title: %s\n", c.ReportTitle)
		fmt.Fprintf(out, "out_dir: %s\n", c.OutDir)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.NullValues != nil {
			fmt.Fprintf(out, "null_values: %s\n", strings.Join(c.NullValues, ","))
		}
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "http_addr: %s\n", c.HTTPAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := currentConfig()
		if err != nil {
			return err
		}
		next := *c
		switch key {
		case "min_missing_share":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for min_missing_share: %w", err)
			}
			next.MinMissingShare = f
		case "high_cardinality_threshold":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for high_cardinality_threshold: %w", err)
			}
			next.HighCardinalityThreshold = i
		case "max_hist_columns":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_hist_columns: %w", err)
			}
			next.MaxHistColumns = i
		case "top_k_categories":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for top_k_categories: %w", err)
			}
			next.TopKCategories = i
		case "report_title":
			next.ReportTitle = val
		case "out_dir":
			next.OutDir = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			next.Delimiter = val
		case "null_values":
			next.NullValues = nil
			for _, v := range strings.Split(val, ",") {
				next.NullValues = append(next.NullValues, strings.TrimSpace(v))
			}
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_rows: %w", err)
			}
			next.MaxRows = i
		case "http_addr":
			next.HTTPAddr = val
		case "max_upload_mb":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_upload_mb: %w", err)
			}
			next.MaxUploadMB = i
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				next.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
