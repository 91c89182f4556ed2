package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/KaramelBytes/eda-cli/internal/utils"
)

type document struct {
	opt     Options
	table   *table.Table
	flags   analysis.QualityFlags
	summary *analysis.DatasetSummary
	images  []string
}

// Markdown renders the full report.
func (d *document) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n", d.opt.Title))
	b.WriteString("*Generated by eda-cli*\n\n")
	d.writeParameters(&b)
	d.writeGeneral(&b)
	d.writeQuality(&b)
	d.writeMissing(&b)
	d.writeCategories(&b)
	d.writeHistograms(&b)
	d.writeNumericStats(&b)
	d.writeConclusion(&b)
	return b.String()
}

func (d *document) writeParameters(b *strings.Builder) {
	b.WriteString("## ⚙️ Analysis parameters\n")
	b.WriteString(fmt.Sprintf("- **Max histograms:** %d\n", d.opt.MaxHistColumns))
	b.WriteString(fmt.Sprintf("- **Top-K categories:** %d\n", d.opt.TopKCategories))
	b.WriteString(fmt.Sprintf("- **Problematic missing threshold:** %s\n", wholePercent(d.flags.MinMissingShare)))
	b.WriteString(fmt.Sprintf("- **High cardinality threshold:** %d\n\n", d.flags.HighCardinalityThreshold))
}

func (d *document) writeGeneral(b *strings.Builder) {
	f := d.flags
	b.WriteString("## 📊 General information\n")
	source := fmt.Sprintf("- **Source:** `%s`", d.table.Name())
	if d.opt.SourcePath != "" {
		if size := utils.FileSize(d.opt.SourcePath); size >= 0 {
			source += fmt.Sprintf(" (%s)", humanize.Bytes(uint64(size)))
		}
	}
	b.WriteString(source + "\n")
	b.WriteString(fmt.Sprintf("- **Size:** %s rows × %d columns\n", humanize.Comma(int64(f.NRows)), f.NCols))
	if d.table.Truncated() {
		b.WriteString(fmt.Sprintf("- **Loaded rows:** %s of %s (limited by max_rows)\n",
			humanize.Comma(int64(d.table.NumRows())), humanize.Comma(int64(d.table.SourceRows()))))
	}
	b.WriteString(fmt.Sprintf("- **Numeric columns:** %d\n", f.NumericColumnsCount))
	b.WriteString(fmt.Sprintf("- **Categorical columns:** %d\n", f.CategoricalColumnsCount))
	b.WriteString(fmt.Sprintf("- **Date columns:** %d\n\n", f.DateColumnsCount))
}

func (d *document) writeQuality(b *strings.Builder) {
	f := d.flags
	threshold := wholePercent(f.MinMissingShare)
	b.WriteString("## 🔍 Data quality\n")
	b.WriteString(fmt.Sprintf("- **Quality score:** `%.2f/1.00`\n", f.QualityScore))
	b.WriteString(fmt.Sprintf("- **Missing cells:** %.1f%%\n", f.MissingShare*100))

	if n := len(f.ProblematicMissingCols); n > 0 {
		b.WriteString(fmt.Sprintf("- **⚠️ Columns with >%s missing:**\n", threshold))
		for i, c := range f.ProblematicMissingCols {
			if i == maxMissingListed {
				b.WriteString(fmt.Sprintf("  *... and %d more columns*\n", n-maxMissingListed))
				break
			}
			b.WriteString(fmt.Sprintf("  - `%s`: %.1f%%\n", c.Column, c.MissingRatio*100))
		}
	} else {
		b.WriteString(fmt.Sprintf("- **✓ No columns with >%s missing**\n", threshold))
	}
	b.WriteString("\n")

	if f.HasDuplicates {
		b.WriteString(fmt.Sprintf("- **⚠️ Duplicate rows found:** %s\n", humanize.Comma(int64(f.DuplicateRows))))
	} else {
		b.WriteString("- **✓ No duplicate rows**\n")
	}
	b.WriteString("\n")

	if f.HasConstantColumns {
		b.WriteString("- **⚠️ Constant columns:**\n")
		for _, c := range f.ConstantColumnsList {
			b.WriteString(fmt.Sprintf("  - `%s`\n", c))
		}
	} else {
		b.WriteString("- **✓ No constant columns**\n")
	}
	b.WriteString("\n")

	if f.HasHighCardinalityCategoricals {
		b.WriteString(fmt.Sprintf("- **⚠️ High cardinality (> %d unique values):**\n", f.HighCardinalityThreshold))
		for _, c := range f.HighCardinalityColumns {
			b.WriteString(fmt.Sprintf("  - `%s`: %d unique values\n", c.Column, c.Count))
		}
	} else {
		b.WriteString("- **✓ No high-cardinality categorical columns**\n")
	}
	b.WriteString("\n")

	if f.HasSuspiciousIDDuplicates {
		b.WriteString("- **⚠️ Possible identifier uniqueness problems:**\n")
		for _, c := range f.SuspiciousIDDuplicates {
			b.WriteString(fmt.Sprintf("  - `%s`: %d duplicates\n", c.Column, c.Count))
		}
		b.WriteString("\n")
	}

	p := f.Penalties
	b.WriteString(fmt.Sprintf("*Penalties: missing %.3f, duplicates %.3f, constant %.2f, high cardinality %.2f, id duplicates %.2f*\n\n",
		p.Missing, p.Duplicates, p.Constant, p.HighCardinality, p.IDDuplicates))
}

func (d *document) writeMissing(b *strings.Builder) {
	var rows []analysis.MissingRow
	for _, r := range analysis.MissingTable(d.table) {
		if r.MissingCount > 0 {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return
	}
	b.WriteString("## 🕳️ Missing values\n")
	b.WriteString("| Column | Missing | Share |\n")
	b.WriteString("|--------|---------|-------|\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("| `%s` | %d | %.1f%% |\n", cell(r.Column), r.MissingCount, r.MissingShare*100))
	}
	b.WriteString("\n")
}

func (d *document) writeCategories(b *strings.Builder) {
	k := d.opt.TopKCategories
	b.WriteString(fmt.Sprintf("## 📈 Top-%d values of categorical columns\n", k))
	cols := d.table.ColumnsOfKind(table.KindCategorical)
	if len(cols) == 0 {
		b.WriteString("No categorical columns.\n\n")
		return
	}
	if len(cols) > maxCategoricalColumns {
		cols = cols[:maxCategoricalColumns]
	}
	for _, c := range cols {
		total := c.NonNullCount()
		if total == 0 {
			continue
		}
		top, others := analysis.TopCategories(c, k)
		unique := c.DistinctCount()
		b.WriteString(fmt.Sprintf("### `%s`\n", c.Name()))
		b.WriteString(fmt.Sprintf("Total values: %d | Unique: %d\n", total, unique))
		for _, vc := range top {
			b.WriteString(fmt.Sprintf("- `%s`: %d (%.1f%%)\n", cell(vc.Value), vc.Count, float64(vc.Count)*100/float64(total)))
		}
		if unique > len(top) {
			b.WriteString(fmt.Sprintf("- *... and %d more values: %d (%.1f%%)*\n", unique-len(top), others, float64(others)*100/float64(total)))
		}
		b.WriteString("\n")
	}
}

func (d *document) writeHistograms(b *strings.Builder) {
	b.WriteString("## 📊 Histograms of numeric columns\n")
	b.WriteString(fmt.Sprintf("*Plotted histograms: %d of %d numeric columns*\n", len(d.images), d.flags.NumericColumnsCount))
	if len(d.images) == 0 {
		b.WriteString("No numeric columns to plot.\n\n")
		return
	}
	for _, img := range d.images {
		b.WriteString(fmt.Sprintf("![%s](%s)\n", img, img))
	}
	b.WriteString("\n")
}

func (d *document) writeNumericStats(b *strings.Builder) {
	cols := d.summary.NumericColumns()
	if len(cols) == 0 {
		return
	}
	b.WriteString("## 📐 Numeric column statistics\n")
	b.WriteString("| Column | Mean | Median | Std | Min | Max |\n")
	b.WriteString("|--------|------|--------|-----|-----|-----|\n")
	for i, c := range cols {
		if i == maxStatsColumns {
			b.WriteString(fmt.Sprintf("| *... and %d more columns* |\n", len(cols)-maxStatsColumns))
			break
		}
		s := c.Numeric
		b.WriteString(fmt.Sprintf("| `%s` | %.2f | %.2f | %.2f | %.2f | %.2f |\n", cell(c.Name), s.Mean, s.Median, s.Std, s.Min, s.Max))
	}
	b.WriteString("\n")
}

func (d *document) writeConclusion(b *strings.Builder) {
	b.WriteString("## 🎯 Conclusions\n")
	b.WriteString(Verdict(d.flags.QualityScore) + "\n\n")
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("*Report generated with parameters: max_hist_columns=%d, top_k_categories=%d, min_missing_share=%s, high_cardinality_threshold=%d*\n",
		d.opt.MaxHistColumns, d.opt.TopKCategories, wholePercent(d.flags.MinMissingShare), d.flags.HighCardinalityThreshold))
}

// Verdict maps a quality score to the conclusion line of the report.
func Verdict(score float64) string {
	switch {
	case score > 0.8:
		return "✅ **Excellent data quality.** Ready for modeling."
	case score > 0.6:
		return "⚠️ **Moderate data quality.** Cleaning is recommended."
	case score > 0.4:
		return "⚠️ **Low data quality.** Substantial preprocessing is required."
	default:
		return "❌ **Critical data quality.** Consider finding another dataset."
	}
}

func wholePercent(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}

// cell keeps a value from breaking a Markdown table row.
func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
