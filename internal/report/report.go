// Package report writes the Markdown and JSON data-quality report of a table,
// together with histogram images of its numeric columns.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/KaramelBytes/eda-cli/internal/utils"
)

const (
	ReportFile  = "report.md"
	SummaryFile = "summary.json"

	maxCategoricalColumns = 10
	maxStatsColumns       = 15
	maxMissingListed      = 10
)

// Options controls report generation.
type Options struct {
	OutDir         string
	Title          string
	MaxHistColumns int
	TopKCategories int
	Analysis       analysis.Options
	// Renderer draws histograms; GonumRenderer when nil.
	Renderer HistogramRenderer
	// Progress receives a progress bar while histograms render; nil hides it.
	Progress io.Writer
	// SourcePath is shown in the report header with its size when set.
	SourcePath string
}

// DefaultOptions returns the defaults used by the report command.
func DefaultOptions() Options {
	return Options{
		OutDir:         "reports",
		Title:          "EDA Report",
		MaxHistColumns: 5,
		TopKCategories: 10,
		Analysis:       analysis.DefaultOptions(),
	}
}

func (o Options) validate() error {
	if o.OutDir == "" {
		return errors.New("output directory is required")
	}
	if o.MaxHistColumns < 0 {
		return fmt.Errorf("max_hist_columns must not be negative, got %d", o.MaxHistColumns)
	}
	if o.TopKCategories <= 0 {
		return fmt.Errorf("top_k_categories must be positive, got %d", o.TopKCategories)
	}
	return o.Analysis.Validate()
}

// Result describes the files written by Generate.
type Result struct {
	RunID       string
	ReportPath  string
	SummaryPath string
	// Histograms are image file names relative to the output directory.
	Histograms []string
	Warnings   []string
	Flags      analysis.QualityFlags
}

// Summary is the content of summary.json.
type Summary struct {
	RunID              string             `json:"run_id"`
	Title              string             `json:"title"`
	Source             string             `json:"source"`
	GeneratedAt        string             `json:"generated_at"`
	Parameters         Parameters         `json:"parameters"`
	BasicMetrics       BasicMetrics       `json:"basic_metrics"`
	ProblematicColumns ProblematicColumns `json:"problematic_columns"`
	Penalties          analysis.Penalties `json:"penalties"`
	Histograms         []string           `json:"histograms"`
	Warnings           []string           `json:"warnings,omitempty"`
}

type Parameters struct {
	MaxHistColumns           int     `json:"max_hist_columns"`
	TopKCategories           int     `json:"top_k_categories"`
	MinMissingShare          float64 `json:"min_missing_share"`
	HighCardinalityThreshold int     `json:"high_cardinality_threshold"`
}

type BasicMetrics struct {
	NRows         int     `json:"n_rows"`
	NCols         int     `json:"n_cols"`
	MissingShare  float64 `json:"missing_share"`
	DuplicateRows int     `json:"duplicate_rows"`
	QualityScore  float64 `json:"quality_score"`
}

type ProblematicColumns struct {
	HighMissing     []string `json:"high_missing"`
	Constant        []string `json:"constant"`
	HighCardinality []string `json:"high_cardinality"`
	IDDuplicates    []string `json:"id_duplicates"`
}

// Generate computes quality flags for t and writes report.md, summary.json
// and histogram images into opt.OutDir.
func Generate(t *table.Table, opt Options) (*Result, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	if opt.Title == "" {
		opt.Title = DefaultOptions().Title
	}
	if opt.Renderer == nil {
		opt.Renderer = GonumRenderer{}
	}
	if err := utils.EnsureDir(opt.OutDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	res := &Result{
		RunID:       uuid.NewString(),
		ReportPath:  filepath.Join(opt.OutDir, ReportFile),
		SummaryPath: filepath.Join(opt.OutDir, SummaryFile),
		Flags:       analysis.ComputeQualityFlags(t, opt.Analysis),
	}
	res.Histograms, res.Warnings = saveHistograms(t, opt)

	doc := &document{
		opt:     opt,
		table:   t,
		flags:   res.Flags,
		summary: analysis.Summarize(t),
		images:  res.Histograms,
	}
	if err := utils.SafeWriteFile(res.ReportPath, []byte(doc.Markdown())); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := utils.WriteJSON(res.SummaryPath, buildSummary(t, opt, res)); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	return res, nil
}

func buildSummary(t *table.Table, opt Options, res *Result) Summary {
	f := res.Flags
	s := Summary{
		RunID:       res.RunID,
		Title:       opt.Title,
		Source:      t.Name(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Parameters: Parameters{
			MaxHistColumns:           opt.MaxHistColumns,
			TopKCategories:           opt.TopKCategories,
			MinMissingShare:          f.MinMissingShare,
			HighCardinalityThreshold: f.HighCardinalityThreshold,
		},
		BasicMetrics: BasicMetrics{
			NRows:         f.NRows,
			NCols:         f.NCols,
			MissingShare:  f.MissingShare,
			DuplicateRows: f.DuplicateRows,
			QualityScore:  f.QualityScore,
		},
		ProblematicColumns: ProblematicColumns{
			HighMissing:     []string{},
			Constant:        f.ConstantColumnsList,
			HighCardinality: []string{},
			IDDuplicates:    []string{},
		},
		Penalties:  f.Penalties,
		Histograms: res.Histograms,
		Warnings:   res.Warnings,
	}
	for _, c := range f.ProblematicMissingCols {
		s.ProblematicColumns.HighMissing = append(s.ProblematicColumns.HighMissing, c.Column)
	}
	for _, c := range f.HighCardinalityColumns {
		s.ProblematicColumns.HighCardinality = append(s.ProblematicColumns.HighCardinality, c.Column)
	}
	for _, c := range f.SuspiciousIDDuplicates {
		s.ProblematicColumns.IDDuplicates = append(s.ProblematicColumns.IDDuplicates, c.Column)
	}
	return s
}

// saveHistograms renders the first MaxHistColumns numeric columns. Failures
// are reported as warnings so the rest of the report is still written.
func saveHistograms(t *table.Table, opt Options) ([]string, []string) {
	numeric := t.ColumnsOfKind(table.KindNumeric)
	cols := numeric
	if len(cols) > opt.MaxHistColumns {
		cols = cols[:opt.MaxHistColumns]
	}
	images := []string{}
	var warnings []string
	if len(numeric) > len(cols) {
		warnings = append(warnings, fmt.Sprintf("plotted only %d of %d numeric columns; use --max-hist-columns to raise the limit", len(cols), len(numeric)))
	}
	if len(cols) == 0 {
		return images, warnings
	}

	out := opt.Progress
	if out == nil {
		out = io.Discard
	}
	bar := progressbar.NewOptions(len(cols),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan][reset] Plotting histograms..."),
		progressbar.OptionSetWidth(20),
	)
	used := map[string]int{}
	for _, c := range cols {
		vals := c.Floats()
		name := histogramName(c.Name(), used)
		if err := opt.Renderer.Render(filepath.Join(opt.OutDir, name), c.Name(), vals, histogramBins(len(vals))); err != nil {
			warnings = append(warnings, fmt.Sprintf("histogram for %q skipped: %v", c.Name(), err))
		} else {
			images = append(images, name)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return images, warnings
}

func histogramName(column string, used map[string]int) string {
	base := "hist_" + utils.SafeFileName(column)
	used[base]++
	if n := used[base]; n > 1 {
		base += "_" + strconv.Itoa(n)
	}
	return base + ".png"
}
