package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
)

const sampleCSV = "id,status,const,value\n1,ok,x,1.5\n2,ok,x,2.5\n3,,x,\n4,bad,x,4\n"

// resetFlags restores every flag to its default so Changed state and bound
// variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// tempHome isolates config under a fresh HOME and returns it.
func tempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_Overview(t *testing.T) {
	home := tempHome(t)
	data := writeFile(t, filepath.Join(home, "data.csv"), sampleCSV)

	out := runCmd(t, "overview", data)
	for _, want := range []string{
		"📊 DATA OVERVIEW",
		"Size: 4 rows × 4 columns",
		"Missing: 12.5%",
		"Duplicate rows: 0",
		"Data quality (score): 0.84/1.00",
		"  • Constant: const",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "High missing share") {
		t.Errorf("25%% missing should stay under the default threshold:\n%s", out)
	}
}

func TestCLI_OverviewUsesConfiguredThreshold(t *testing.T) {
	home := tempHome(t)
	data := writeFile(t, filepath.Join(home, "data.csv"), sampleCSV)

	runCmd(t, "config", "set", "min_missing_share", "0.1")
	if _, err := os.Stat(filepath.Join(home, ".eda-cli", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "overview", data)
	if !strings.Contains(out, "  • High missing share (>10%):") {
		t.Fatalf("expected configured threshold in overview:\n%s", out)
	}
	if !strings.Contains(out, "    - status: 25.0%") || !strings.Contains(out, "    - value: 25.0%") {
		t.Fatalf("expected both sparse columns listed:\n%s", out)
	}
}

func TestCLI_OverviewDelimiter(t *testing.T) {
	home := tempHome(t)
	data := writeFile(t, filepath.Join(home, "semi.csv"), "a;b\n1;x\n2;y\n")

	out := runCmd(t, "overview", data, "--delimiter", ";")
	if !strings.Contains(out, "Size: 2 rows × 2 columns") {
		t.Fatalf("semicolon file not split:\n%s", out)
	}
	if _, err := execute(t, "overview", data, "--delimiter", "x"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	if _, err := execute(t, "overview", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCLI_FlagsJSON(t *testing.T) {
	home := tempHome(t)
	data := writeFile(t, filepath.Join(home, "data.csv"), sampleCSV)

	out := runCmd(t, "flags", data, "--min-missing-share", "0.2")
	var f analysis.QualityFlags
	if err := json.Unmarshal([]byte(out), &f); err != nil {
		t.Fatalf("flags output is not JSON: %v\n%s", err, out)
	}
	if f.NRows != 4 || f.NCols != 4 {
		t.Fatalf("unexpected shape: %d x %d", f.NRows, f.NCols)
	}
	if f.MinMissingShare != 0.2 {
		t.Fatalf("flag override not applied: %v", f.MinMissingShare)
	}
	if len(f.ProblematicMissingCols) != 2 {
		t.Fatalf("expected 2 problematic columns, got %+v", f.ProblematicMissingCols)
	}
	if len(f.ConstantColumnsList) != 1 || f.ConstantColumnsList[0] != "const" {
		t.Fatalf("unexpected constant columns: %v", f.ConstantColumnsList)
	}

	// flags reset between runs: the override must not stick
	out = runCmd(t, "flags", data)
	f = analysis.QualityFlags{}
	if err := json.Unmarshal([]byte(out), &f); err != nil {
		t.Fatalf("flags output is not JSON: %v", err)
	}
	if f.MinMissingShare != 0.3 {
		t.Fatalf("expected default threshold, got %v", f.MinMissingShare)
	}

	dest := filepath.Join(home, "flags.json")
	runCmd(t, "flags", data, "-o", dest)
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read flags file: %v", err)
	}
	if !strings.Contains(string(b), `"quality_score"`) {
		t.Fatalf("flags file missing quality_score:\n%s", b)
	}

	if _, err := execute(t, "flags", data, "--min-missing-share", "1.5"); err == nil {
		t.Fatalf("expected error for out of range threshold")
	}
}

func TestCLI_Report(t *testing.T) {
	home := tempHome(t)
	data := writeFile(t, filepath.Join(home, "data.csv"), sampleCSV)
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "report", data, "--out-dir", outDir, "--title", "Smoke", "--max-hist-columns", "0", "--quiet")
	if !strings.Contains(out, "✓ Report saved to") || !strings.Contains(out, "Main file:") {
		t.Fatalf("unexpected report output:\n%s", out)
	}
	md, err := os.ReadFile(filepath.Join(outDir, "report.md"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Smoke") {
		t.Fatalf("title not applied:\n%s", md)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var s struct {
		Title        string `json:"title"`
		BasicMetrics struct {
			NRows int `json:"n_rows"`
		} `json:"basic_metrics"`
		Parameters struct {
			MaxHistColumns int `json:"max_hist_columns"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if s.Title != "Smoke" || s.BasicMetrics.NRows != 4 || s.Parameters.MaxHistColumns != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	if _, err := execute(t, "report", data, "--out-dir", outDir, "--top-k-categories", "0"); err == nil {
		t.Fatalf("expected error for top-k 0")
	}
}

func TestCLI_Scan(t *testing.T) {
	home := tempHome(t)
	dir := filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "a.csv"), sampleCSV)
	writeFile(t, filepath.Join(dir, "b.csv"), "k,v\n1,2\n2,3\n")

	out := runCmd(t, "scan", filepath.Join(dir, "*.csv"))
	if !strings.Contains(out, "[1/2] a.csv: 0.84") || !strings.Contains(out, "[2/2] b.csv: 1.00") {
		t.Fatalf("unexpected scan output:\n%s", out)
	}

	out = runCmd(t, "scan", filepath.Join(dir, "*.csv"), "--json")
	var results []scanResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("scan --json is not JSON: %v\n%s", err, out)
	}
	if len(results) != 2 || results[0].Flags == nil || results[1].Flags.QualityScore != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}

	if _, err := execute(t, "scan", filepath.Join(dir, "*.csv"), "--min-score", "0.9"); err == nil {
		t.Fatalf("expected error when a file scores below --min-score")
	}
	if _, err := execute(t, "scan", filepath.Join(dir, "*.parquet")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	tempHome(t)

	runCmd(t, "config", "set", "high_cardinality_threshold", "7")
	runCmd(t, "config", "set", "null_values", "-, missing")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "high_cardinality_threshold: 7") {
		t.Fatalf("saved value not shown:\n%s", out)
	}
	if !strings.Contains(out, "null_values: -,missing") {
		t.Fatalf("null values not shown:\n%s", out)
	}

	for _, args := range [][]string{
		{"config", "set", "nope", "1"},
		{"config", "set", "min_missing_share", "abc"},
		{"config", "set", "min_missing_share", "2"},
		{"config", "set", "log_level", "loud"},
		{"config", "set", "delimiter", "x"},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
	out = runCmd(t, "config", "show")
	if !strings.Contains(out, "min_missing_share: 0.3") {
		t.Fatalf("rejected value must not be saved:\n%s", out)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.csv"), "x\n1\n")
	b := writeFile(t, filepath.Join(dir, "b.csv"), "x\n1\n")
	got := expandInputs([]string{filepath.Join(dir, "*.csv"), a, filepath.Join(dir, "none.csv")})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected files: %v", got)
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', "tab": '\t', "\t": '\t', ";": ';', "|": '|', "pipe": '|'}
	for in, want := range cases {
		got, err := parseDelimiter(in)
		if err != nil || got != want {
			t.Errorf("parseDelimiter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseDelimiter("::"); err == nil {
		t.Errorf("expected error for unknown delimiter")
	}
}
