package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
	// KindEmpty marks a column where every cell is null.
	KindEmpty Kind = "empty"
)

// nullKey stands in for a missing cell when building equality keys.
const nullKey = "\x00"

// Column is a single named, typed column. It is immutable once built.
type Column struct {
	name   string
	kind   Kind
	values []string // trimmed raw text; "" where null
	null   []bool
	nums   []float64 // parsed values, only populated for KindNumeric
	nulls  int
}

// Name returns the (possibly de-duplicated) column name.
func (c *Column) Name() string { return c.name }

// Kind returns the inferred column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.values) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.null[i] }

// Value returns the raw text of row i and false when it is null.
func (c *Column) Value(i int) (string, bool) {
	if c.null[i] {
		return "", false
	}
	return c.values[i], true
}

// Float returns the parsed number of row i for numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != KindNumeric || c.null[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Floats returns the non-null numeric values in row order.
func (c *Column) Floats() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums)-c.nulls)
	for i, v := range c.nums {
		if !c.null[i] {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int { return c.nulls }

// NonNullCount returns the number of present cells.
func (c *Column) NonNullCount() int { return len(c.values) - c.nulls }

// key returns the equality key of row i. Numeric cells compare by value so
// "1" and "1.0" are the same.
func (c *Column) key(i int) string {
	if c.null[i] {
		return nullKey
	}
	if c.kind == KindNumeric {
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	}
	if c.kind == KindBoolean {
		return strings.ToLower(c.values[i])
	}
	return c.values[i]
}

// DistinctCount returns the number of distinct non-null values.
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for i := range c.values {
		if c.null[i] {
			continue
		}
		seen[c.key(i)] = struct{}{}
	}
	return len(seen)
}

// DuplicateCount returns how many cells repeat a value seen earlier in the
// column. Nulls are treated as a value of their own.
func (c *Column) DuplicateCount() int {
	seen := make(map[string]struct{}, len(c.values))
	dups := 0
	for i := range c.values {
		k := c.key(i)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts returns non-null value frequencies ordered by count descending,
// then by value.
func (c *Column) ValueCounts() []ValueCount {
	idx := map[string]int{}
	var out []ValueCount
	for i := range c.values {
		if c.null[i] {
			continue
		}
		k := c.key(i)
		if j, ok := idx[k]; ok {
			out[j].Count++
			continue
		}
		idx[k] = len(out)
		out = append(out, ValueCount{Value: c.values[i], Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Table is an immutable in-memory dataset with named columns.
type Table struct {
	name       string
	cols       []*Column
	rows       int
	sourceRows int
}

// Name returns the display name of the table, usually the source file name.
func (t *Table) Name() string { return t.name }

// NumRows returns the number of loaded records.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// SourceRows returns the number of records in the source, which exceeds
// NumRows when the loader was capped by MaxRows.
func (t *Table) SourceRows() int { return t.sourceRows }

// Truncated reports whether fewer rows were loaded than the source holds.
func (t *Table) Truncated() bool { return t.sourceRows > t.rows }

// Columns returns the columns in source order.
func (t *Table) Columns() []*Column { return t.cols }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.cols {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnsOfKind returns the columns with the given kind in source order.
func (t *Table) ColumnsOfKind(k Kind) []*Column {
	var out []*Column
	for _, c := range t.cols {
		if c.kind == k {
			out = append(out, c)
		}
	}
	return out
}

// NullCount returns the number of missing cells across the table.
func (t *Table) NullCount() int {
	n := 0
	for _, c := range t.cols {
		n += c.nulls
	}
	return n
}

// DuplicateRowCount returns the number of rows that exactly repeat an
// earlier row. The first occurrence is not counted.
func (t *Table) DuplicateRowCount() int {
	if len(t.cols) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, t.rows)
	dups := 0
	var b strings.Builder
	for i := 0; i < t.rows; i++ {
		b.Reset()
		for j, c := range t.cols {
			if j > 0 {
				b.WriteByte('\x1f')
			}
			b.WriteString(c.key(i))
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// FromRecords builds a table from a header and data records. Records shorter
// than the header are padded with nulls; longer records are rejected.
func FromRecords(name string, header []string, records [][]string, opt Options) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrEmptyData
	}
	b := newBuilder(name, header, opt)
	for i, rec := range records {
		if err := b.add(rec); err != nil {
			return nil, &ParseError{Line: i + 2, Err: err}
		}
	}
	return b.build(len(records)), nil
}

// builder accumulates rows column-wise before kinds are inferred.
type builder struct {
	name  string
	names []string
	cells [][]string
	null  [][]bool
	opt   Options
	nulls map[string]struct{}
}

func newBuilder(name string, header []string, opt Options) *builder {
	names := mangleHeader(header)
	return &builder{
		name:  name,
		names: names,
		cells: make([][]string, len(names)),
		null:  make([][]bool, len(names)),
		opt:   opt,
		nulls: opt.nullSet(),
	}
}

func (b *builder) add(rec []string) error {
	if len(rec) > len(b.names) {
		return fmt.Errorf("expected %d fields, saw %d", len(b.names), len(rec))
	}
	for j := range b.names {
		v := ""
		if j < len(rec) {
			v = strings.TrimSpace(rec[j])
		}
		_, isNull := b.nulls[v]
		if isNull {
			v = ""
		}
		b.cells[j] = append(b.cells[j], v)
		b.null[j] = append(b.null[j], isNull)
	}
	return nil
}

func (b *builder) build(sourceRows int) *Table {
	t := &Table{name: b.name, cols: make([]*Column, len(b.names)), sourceRows: sourceRows}
	for j, n := range b.names {
		c := &Column{name: n, values: b.cells[j], null: b.null[j]}
		if c.values == nil {
			c.values = []string{}
			c.null = []bool{}
		}
		for _, isNull := range c.null {
			if isNull {
				c.nulls++
			}
		}
		inferKind(c, b.opt)
		t.cols[j] = c
	}
	if len(t.cols) > 0 {
		t.rows = len(t.cols[0].values)
	}
	if t.sourceRows < t.rows {
		t.sourceRows = t.rows
	}
	return t
}

// inferKind picks the narrowest kind every non-null cell satisfies.
func inferKind(c *Column, opt Options) {
	if c.nulls == len(c.values) {
		c.kind = KindEmpty
		return
	}
	nums := make([]float64, len(c.values))
	numeric := true
	for i, v := range c.values {
		if c.null[i] {
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			numeric = false
			break
		}
		nums[i] = x
	}
	if numeric {
		c.kind = KindNumeric
		c.nums = nums
		return
	}
	if allCells(c, isBool) {
		c.kind = KindBoolean
		return
	}
	if allCells(c, isDatetime) {
		c.kind = KindDatetime
		return
	}
	c.kind = KindCategorical
}

func allCells(c *Column, pred func(string) bool) bool {
	for i, v := range c.values {
		if c.null[i] {
			continue
		}
		if !pred(v) {
			return false
		}
	}
	return true
}

// mangleHeader fills blank names and suffixes repeats so every column name
// is unique: "a", "a" becomes "a", "a.1".
func mangleHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	suffix := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for {
			if _, ok := used[name]; !ok {
				break
			}
			suffix[base]++
			name = fmt.Sprintf("%s.%d", base, suffix[base])
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}
