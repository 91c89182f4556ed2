package analysis

import (
	"strings"
	"testing"
)

func TestGenerateOverview(t *testing.T) {
	tbl := build(t, []string{"id", "status", "const"},
		[]string{"1", "ok", "x"},
		[]string{"2", "", "x"},
		[]string{"3", "", "x"},
		[]string{"4", "bad", "x"})

	want := strings.Join([]string{
		"📊 DATA OVERVIEW",
		"==================================================",
		"Size: 4 rows × 3 columns",
		"Missing: 16.7%",
		"Duplicate rows: 0",
		"Data quality (score): 0.82/1.00",
		"",
		"PROBLEM COLUMNS:",
		"  • High missing share (>30%):",
		"    - status: 50.0%",
		"  • Constant: const",
	}, "\n")
	if got := GenerateOverview(tbl); got != want {
		t.Fatalf("overview mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateOverviewOmitsEmptySections(t *testing.T) {
	tbl := build(t, []string{"name", "value"}, []string{"a", "1"}, []string{"b", "2"})
	got := GenerateOverview(tbl)
	if !strings.HasSuffix(got, "PROBLEM COLUMNS:") {
		t.Fatalf("expected no problem sections, got:\n%s", got)
	}
	if !strings.Contains(got, "Data quality (score): 1.00/1.00") {
		t.Fatalf("missing score line:\n%s", got)
	}
	if GenerateOverview(tbl) != got {
		t.Fatalf("overview is not deterministic")
	}
}

func TestFormatOverviewHighCardinality(t *testing.T) {
	f := ComputeQualityFlags(categoricalTable(t, 4), Options{MinMissingShare: 0.25, HighCardinalityThreshold: 3})
	got := FormatOverview(f)
	if !strings.Contains(got, "  • High cardinality:\n    - city: 4 unique values") {
		t.Fatalf("high cardinality section missing:\n%s", got)
	}
	if strings.Contains(got, "High missing share") {
		t.Fatalf("unexpected missing section:\n%s", got)
	}

	f = ComputeQualityFlags(build(t, []string{"a"}, []string{""}, []string{"1"}), Options{MinMissingShare: 0.25, HighCardinalityThreshold: 3})
	if !strings.Contains(FormatOverview(f), "(>25%)") {
		t.Fatalf("threshold not rendered:\n%s", FormatOverview(f))
	}
}
