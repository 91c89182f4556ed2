package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/table"
)

// GenerateOverview computes flags with DefaultOptions and renders them as a
// short plain-text block.
func GenerateOverview(t *table.Table) string {
	return FormatOverview(ComputeQualityFlags(t, DefaultOptions()))
}

// FormatOverview renders flags as plain text. Problem sections with nothing
// to report are left out.
func FormatOverview(f QualityFlags) string {
	lines := []string{
		"📊 DATA OVERVIEW",
		strings.Repeat("=", 50),
		fmt.Sprintf("Size: %d rows × %d columns", f.NRows, f.NCols),
		fmt.Sprintf("Missing: %s", percent(f.MissingShare)),
		fmt.Sprintf("Duplicate rows: %d", f.DuplicateRows),
		fmt.Sprintf("Data quality (score): %.2f/1.00", f.QualityScore),
		"",
		"PROBLEM COLUMNS:",
	}
	if len(f.ProblematicMissingCols) > 0 {
		threshold := strconv.FormatFloat(f.MinMissingShare*100, 'g', 4, 64)
		lines = append(lines, fmt.Sprintf("  • High missing share (>%s%%):", threshold))
		for _, c := range f.ProblematicMissingCols {
			lines = append(lines, fmt.Sprintf("    - %s: %s", c.Column, percent(c.MissingRatio)))
		}
	}
	if f.HasConstantColumns {
		lines = append(lines, "  • Constant: "+strings.Join(f.ConstantColumnsList, ", "))
	}
	if f.HasHighCardinalityCategoricals {
		lines = append(lines, "  • High cardinality:")
		for _, c := range f.HighCardinalityColumns {
			lines = append(lines, fmt.Sprintf("    - %s: %d unique values", c.Column, c.Count))
		}
	}
	return strings.Join(lines, "\n")
}

func percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
