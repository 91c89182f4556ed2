package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/eda-cli/internal/table"
)

// exampleValues is how many distinct sample values a ColumnSummary keeps.
const exampleValues = 3

// DatasetSummary describes every column of a table.
type DatasetSummary struct {
	Name       string          `json:"name"`
	NRows      int             `json:"n_rows"`
	NCols      int             `json:"n_cols"`
	SourceRows int             `json:"source_rows"`
	Truncated  bool            `json:"truncated"`
	Columns    []ColumnSummary `json:"columns"`
}

// ColumnSummary captures the inferred kind and statistics of one column.
type ColumnSummary struct {
	Name         string        `json:"name"`
	Kind         table.Kind    `json:"kind"`
	NonNull      int           `json:"non_null"`
	Missing      int           `json:"missing"`
	MissingShare float64       `json:"missing_share"`
	Unique       int           `json:"unique"`
	Examples     []string      `json:"example_values"`
	Numeric      *NumericStats `json:"numeric,omitempty"`
}

// NumericStats are describe-style statistics over the non-null values of a
// numeric column. Std is the sample standard deviation, 0 below two values.
type NumericStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
}

// Summarize builds a DatasetSummary for t.
func Summarize(t *table.Table) *DatasetSummary {
	s := &DatasetSummary{
		Name:       t.Name(),
		NRows:      t.NumRows(),
		NCols:      t.NumCols(),
		SourceRows: t.SourceRows(),
		Truncated:  t.Truncated(),
		Columns:    make([]ColumnSummary, 0, t.NumCols()),
	}
	for _, c := range t.Columns() {
		cs := ColumnSummary{
			Name:     c.Name(),
			Kind:     c.Kind(),
			NonNull:  c.NonNullCount(),
			Missing:  c.NullCount(),
			Unique:   c.DistinctCount(),
			Examples: examples(c),
		}
		if c.Len() > 0 {
			cs.MissingShare = float64(cs.Missing) / float64(c.Len())
		}
		if c.Kind() == table.KindNumeric {
			cs.Numeric = describe(c.Floats())
		}
		s.Columns = append(s.Columns, cs)
	}
	return s
}

// NumericColumns returns the summaries of numeric columns in table order.
func (s *DatasetSummary) NumericColumns() []ColumnSummary {
	var out []ColumnSummary
	for _, c := range s.Columns {
		if c.Numeric != nil {
			out = append(out, c)
		}
	}
	return out
}

func examples(c *table.Column) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for i := 0; i < c.Len() && len(out) < exampleValues; i++ {
		v, ok := c.Value(i)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func describe(vals []float64) *NumericStats {
	st := &NumericStats{Count: len(vals)}
	if len(vals) == 0 {
		return st
	}
	// Welford's online mean/variance
	var mean, m2 float64
	st.Min, st.Max = vals[0], vals[0]
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
		if x < st.Min {
			st.Min = x
		}
		if x > st.Max {
			st.Max = x
		}
	}
	st.Mean = mean
	if len(vals) > 1 {
		st.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	st.Q25 = quantile(sorted, 0.25)
	st.Median = quantile(sorted, 0.5)
	st.Q75 = quantile(sorted, 0.75)
	return st
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MissingRow is one line of the missing-value table.
type MissingRow struct {
	Column       string  `json:"column"`
	MissingCount int     `json:"missing_count"`
	MissingShare float64 `json:"missing_share"`
}

// MissingTable lists per-column missing counts, highest share first. Ties
// keep table order.
func MissingTable(t *table.Table) []MissingRow {
	rows := make([]MissingRow, 0, t.NumCols())
	for _, c := range t.Columns() {
		r := MissingRow{Column: c.Name(), MissingCount: c.NullCount()}
		if c.Len() > 0 {
			r.MissingShare = float64(r.MissingCount) / float64(c.Len())
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].MissingShare > rows[j].MissingShare })
	return rows
}

// TopCategories returns the k most frequent non-null values of c and the
// number of non-null cells outside them.
func TopCategories(c *table.Column, k int) ([]table.ValueCount, int) {
	counts := c.ValueCounts()
	if k <= 0 || k >= len(counts) {
		return counts, 0
	}
	others := 0
	for _, vc := range counts[k:] {
		others += vc.Count
	}
	return counts[:k], others
}
