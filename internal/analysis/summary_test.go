package analysis

import (
	"reflect"
	"testing"

	"github.com/KaramelBytes/eda-cli/internal/table"
)

func TestSummarize(t *testing.T) {
	tbl := build(t, []string{"x", "cat", "empty"},
		[]string{"1", "a", ""},
		[]string{"2", "b", ""},
		[]string{"3", "a", ""},
		[]string{"4", "", ""})
	s := Summarize(tbl)
	if s.NRows != 4 || s.NCols != 3 || s.Truncated {
		t.Fatalf("summary header = %+v", s)
	}

	x := s.Columns[0]
	if x.Kind != table.KindNumeric || x.Numeric == nil {
		t.Fatalf("x = %+v", x)
	}
	st := x.Numeric
	if st.Count != 4 || st.Min != 1 || st.Max != 4 || st.Mean != 2.5 {
		t.Fatalf("stats = %+v", st)
	}
	if !almostEqual(st.Std, 1.2909944487, 1e-9) {
		t.Fatalf("std = %v", st.Std)
	}
	if st.Q25 != 1.75 || st.Median != 2.5 || st.Q75 != 3.25 {
		t.Fatalf("quantiles = %v %v %v", st.Q25, st.Median, st.Q75)
	}

	cat := s.Columns[1]
	if cat.Numeric != nil || cat.Missing != 1 || cat.Unique != 2 || cat.MissingShare != 0.25 {
		t.Fatalf("cat = %+v", cat)
	}
	if !reflect.DeepEqual(cat.Examples, []string{"a", "b"}) {
		t.Fatalf("examples = %v", cat.Examples)
	}

	if s.Columns[2].Kind != table.KindEmpty || len(s.Columns[2].Examples) != 0 {
		t.Fatalf("empty column = %+v", s.Columns[2])
	}
	if got := len(s.NumericColumns()); got != 1 {
		t.Fatalf("numeric columns = %d", got)
	}
}

func TestDescribeSingleValue(t *testing.T) {
	st := describe([]float64{7})
	if st.Std != 0 || st.Median != 7 || st.Min != 7 || st.Max != 7 {
		t.Fatalf("stats = %+v", st)
	}
	if st := describe(nil); st.Count != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
}

func TestMissingTable(t *testing.T) {
	tbl := build(t, []string{"a", "b", "c"},
		[]string{"1", "", ""},
		[]string{"2", "", "x"},
		[]string{"3", "y", "x"},
		[]string{"4", "", "x"})
	got := MissingTable(tbl)
	want := []MissingRow{
		{Column: "b", MissingCount: 3, MissingShare: 0.75},
		{Column: "c", MissingCount: 1, MissingShare: 0.25},
		{Column: "a", MissingCount: 0, MissingShare: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MissingTable = %+v", got)
	}
}

func TestTopCategories(t *testing.T) {
	tbl := build(t, []string{"c"},
		[]string{"a"}, []string{"a"}, []string{"a"}, []string{"b"}, []string{"b"}, []string{"c"}, []string{"d"})
	col := tbl.Columns()[0]

	top, others := TopCategories(col, 2)
	want := []table.ValueCount{{Value: "a", Count: 3}, {Value: "b", Count: 2}}
	if !reflect.DeepEqual(top, want) || others != 2 {
		t.Fatalf("top = %+v others = %d", top, others)
	}

	top, others = TopCategories(col, 10)
	if len(top) != 4 || others != 0 {
		t.Fatalf("top = %+v others = %d", top, others)
	}
}
