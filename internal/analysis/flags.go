package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/table"
)

// Options holds the thresholds used by ComputeQualityFlags.
type Options struct {
	// MinMissingShare flags a column whose null ratio strictly exceeds it.
	MinMissingShare float64
	// HighCardinalityThreshold flags a categorical column whose distinct
	// count strictly exceeds it.
	HighCardinalityThreshold int
}

// DefaultOptions returns the thresholds used by the overview.
func DefaultOptions() Options {
	return Options{MinMissingShare: 0.3, HighCardinalityThreshold: 50}
}

// Validate reports thresholds outside their domain.
func (o Options) Validate() error {
	if o.MinMissingShare < 0 || o.MinMissingShare > 1 {
		return fmt.Errorf("min_missing_share must be within [0, 1], got %g", o.MinMissingShare)
	}
	if o.HighCardinalityThreshold <= 0 {
		return fmt.Errorf("high_cardinality_threshold must be positive, got %d", o.HighCardinalityThreshold)
	}
	return nil
}

// Penalty weights subtracted from a perfect score of 1.
const (
	missingWeight          = 0.5
	duplicateWeight        = 0.5
	duplicatePenaltyCap    = 0.2
	constantColumnPenalty  = 0.1
	highCardinalityPenalty = 0.05
	idDuplicatePenalty     = 0.15
)

// ColumnRatio is a column paired with its null ratio.
type ColumnRatio struct {
	Column       string  `json:"column"`
	MissingRatio float64 `json:"missing_ratio"`
}

// ColumnCount is a column paired with a count.
type ColumnCount struct {
	Column string
	Count  int
}

// ColumnCounts keeps column order and serializes as a JSON object.
type ColumnCounts []ColumnCount

// Get returns the count recorded for column.
func (cc ColumnCounts) Get(column string) (int, bool) {
	for _, c := range cc {
		if c.Column == column {
			return c.Count, true
		}
	}
	return 0, false
}

func (cc ColumnCounts) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range cc {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		fmt.Fprintf(&b, ":%d", c.Count)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (cc *ColumnCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*cc = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("column counts: expected object, got %v", tok)
	}
	out := ColumnCounts{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("column counts %q: %w", key, err)
		}
		out = append(out, ColumnCount{Column: key, Count: n})
	}
	*cc = out
	return nil
}

// Penalties are the individual terms subtracted from the quality score.
type Penalties struct {
	Missing         float64 `json:"missing"`
	Duplicates      float64 `json:"duplicates"`
	Constant        float64 `json:"constant"`
	HighCardinality float64 `json:"high_cardinality"`
	IDDuplicates    float64 `json:"id_duplicates"`
}

// Total sums every penalty.
func (p Penalties) Total() float64 {
	return p.Missing + p.Duplicates + p.Constant + p.HighCardinality + p.IDDuplicates
}

// QualityFlags is the data-quality diagnostic of one table.
type QualityFlags struct {
	NRows         int     `json:"n_rows"`
	NCols         int     `json:"n_cols"`
	MissingShare  float64 `json:"missing_share"`
	HasMissing    bool    `json:"has_missing"`
	DuplicateRows int     `json:"duplicate_rows"`
	HasDuplicates bool    `json:"has_duplicates"`
	QualityScore  float64 `json:"quality_score"`

	MinMissingShare          float64 `json:"min_missing_share"`
	HighCardinalityThreshold int     `json:"high_cardinality_threshold"`

	ProblematicMissingCols []ColumnRatio `json:"problematic_missing_cols"`

	HasConstantColumns  bool     `json:"has_constant_columns"`
	ConstantColumnsList []string `json:"constant_columns_list"`

	HasHighCardinalityCategoricals bool         `json:"has_high_cardinality_categoricals"`
	HighCardinalityColumns         ColumnCounts `json:"high_cardinality_columns"`

	HasSuspiciousIDDuplicates bool         `json:"has_suspicious_id_duplicates"`
	SuspiciousIDDuplicates    ColumnCounts `json:"suspicious_id_duplicates"`

	NumericColumnsCount     int `json:"numeric_columns_count"`
	CategoricalColumnsCount int `json:"categorical_columns_count"`
	DateColumnsCount        int `json:"date_columns_count"`

	Penalties Penalties `json:"penalties"`
}

// IsIdentifierName reports whether a column name looks like an identifier:
// it contains "id" or is exactly "index" or "key", ignoring case.
func IsIdentifierName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "id") || n == "index" || n == "key"
}

// ComputeQualityFlags derives quality flags and a composite score in [0, 1]
// from t. It does not modify t and keeps no state between calls.
func ComputeQualityFlags(t *table.Table, opt Options) QualityFlags {
	rows, cols := t.NumRows(), t.NumCols()
	f := QualityFlags{
		NRows:                    rows,
		NCols:                    cols,
		MinMissingShare:          opt.MinMissingShare,
		HighCardinalityThreshold: opt.HighCardinalityThreshold,
		ProblematicMissingCols:   []ColumnRatio{},
		ConstantColumnsList:      []string{},
		HighCardinalityColumns:   ColumnCounts{},
		SuspiciousIDDuplicates:   ColumnCounts{},
	}

	nulls := t.NullCount()
	if cells := rows * cols; cells > 0 {
		f.MissingShare = float64(nulls) / float64(cells)
	}
	f.HasMissing = nulls > 0
	f.DuplicateRows = t.DuplicateRowCount()
	f.HasDuplicates = f.DuplicateRows > 0

	for _, c := range t.Columns() {
		if rows > 0 {
			if ratio := float64(c.NullCount()) / float64(rows); ratio > opt.MinMissingShare {
				f.ProblematicMissingCols = append(f.ProblematicMissingCols, ColumnRatio{Column: c.Name(), MissingRatio: ratio})
			}
		}

		distinct := c.DistinctCount()
		if distinct == 1 {
			f.ConstantColumnsList = append(f.ConstantColumnsList, c.Name())
		}

		switch c.Kind() {
		case table.KindNumeric:
			f.NumericColumnsCount++
		case table.KindCategorical:
			f.CategoricalColumnsCount++
			if distinct > opt.HighCardinalityThreshold {
				f.HighCardinalityColumns = append(f.HighCardinalityColumns, ColumnCount{Column: c.Name(), Count: distinct})
			}
		case table.KindDatetime:
			f.DateColumnsCount++
		}

		if IsIdentifierName(c.Name()) {
			if dups := c.DuplicateCount(); dups > 0 {
				f.SuspiciousIDDuplicates = append(f.SuspiciousIDDuplicates, ColumnCount{Column: c.Name(), Count: dups})
			}
		}
	}
	f.HasConstantColumns = len(f.ConstantColumnsList) > 0
	f.HasHighCardinalityCategoricals = len(f.HighCardinalityColumns) > 0
	f.HasSuspiciousIDDuplicates = len(f.SuspiciousIDDuplicates) > 0

	f.Penalties = Penalties{
		Missing:         f.MissingShare * missingWeight,
		Constant:        float64(len(f.ConstantColumnsList)) * constantColumnPenalty,
		HighCardinality: float64(len(f.HighCardinalityColumns)) * highCardinalityPenalty,
		IDDuplicates:    float64(len(f.SuspiciousIDDuplicates)) * idDuplicatePenalty,
	}
	if rows > 0 {
		f.Penalties.Duplicates = minf(duplicatePenaltyCap, float64(f.DuplicateRows)/float64(rows)*duplicateWeight)
	}
	f.QualityScore = clamp01(1 - f.Penalties.Total())
	return f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
