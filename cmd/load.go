package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/spf13/cobra"
)

// loadFlags are the table loading options shared by every command that reads
// a dataset.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
	nullValues []string
}

func (l *loadFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',', ';', '|' or 'tab' (default: by extension)")
	f.StringVar(&l.decimal, "decimal", "", "decimal separator for numbers: '.' or 'comma'")
	f.StringVar(&l.thousands, "thousands", "", "thousands separator to strip: ',', '.' or 'space'")
	f.StringVar(&l.sheetName, "sheet-name", "", "XLSX sheet name")
	f.IntVar(&l.sheetIndex, "sheet-index", 0, "XLSX sheet index, 1-based (used when --sheet-name is empty)")
	f.IntVar(&l.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	f.StringSliceVar(&l.nullValues, "na-values", nil, "cell values treated as missing (replaces the default list)")
}

// options merges config values with flags; flags win when set.
func (l *loadFlags) options(cmd *cobra.Command) (table.Options, error) {
	c, err := currentConfig()
	if err != nil {
		return table.Options{}, err
	}
	opt := table.Options{
		MaxRows:    c.MaxRows,
		NullValues: c.NullValues,
		SheetName:  l.sheetName,
		SheetIndex: l.sheetIndex,
	}
	delim := c.Delimiter
	if cmd.Flags().Changed("delimiter") {
		delim = l.delimiter
	}
	if opt.Delimiter, err = parseDelimiter(delim); err != nil {
		return opt, err
	}
	if cmd.Flags().Changed("max-rows") {
		if l.maxRows < 0 {
			return opt, fmt.Errorf("--max-rows must not be negative")
		}
		opt.MaxRows = l.maxRows
	}
	if cmd.Flags().Changed("na-values") {
		opt.NullValues = l.nullValues
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(l.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	return opt, nil
}

// load reads path with the merged loading options.
func (l *loadFlags) load(cmd *cobra.Command, path string) (*table.Table, error) {
	opt, err := l.options(cmd)
	if err != nil {
		return nil, err
	}
	t, err := table.ReadFile(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] loaded %s: %d rows (%d in source), %d columns\n", path, t.NumRows(), t.SourceRows(), t.NumCols())
	}
	if t.Truncated() {
		fmt.Fprintf(os.Stderr, "⚠ Warning: loaded only %d of %d rows (--max-rows)\n", t.NumRows(), t.SourceRows())
	}
	return t, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}
