package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinMissingShare != 0.3 || cfg.HighCardinalityThreshold != 50 {
		t.Errorf("thresholds: got %v/%d", cfg.MinMissingShare, cfg.HighCardinalityThreshold)
	}
	if cfg.MaxHistColumns != 5 || cfg.TopKCategories != 10 || cfg.ReportTitle != "EDA Report" || cfg.OutDir != "reports" {
		t.Errorf("report defaults: got %+v", cfg)
	}
	if cfg.HTTPAddr != ":8000" || cfg.MaxUploadMB != 32 {
		t.Errorf("server defaults: got %q/%d", cfg.HTTPAddr, cfg.MaxUploadMB)
	}
	if cfg.NullValues != nil {
		t.Errorf("null_values: got %v, want nil", cfg.NullValues)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
min_missing_share: 0.1
high_cardinality_threshold: 20
report_title: Nightly
null_values: ["-", "?"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinMissingShare != 0.1 || cfg.HighCardinalityThreshold != 20 {
		t.Errorf("thresholds: got %v/%d", cfg.MinMissingShare, cfg.HighCardinalityThreshold)
	}
	if cfg.ReportTitle != "Nightly" || len(cfg.NullValues) != 2 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("path: got %q, want %q", cfg.Path, path)
	}
	opt := cfg.AnalysisOptions()
	if opt.MinMissingShare != 0.1 || opt.HighCardinalityThreshold != 20 {
		t.Errorf("analysis options: got %+v", opt)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "high_cardinality_threshold: 20\n")
	t.Setenv("EDA_HIGH_CARDINALITY_THRESHOLD", "75")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HighCardinalityThreshold != 75 {
		t.Errorf("high_cardinality_threshold: got %d, want 75", cfg.HighCardinalityThreshold)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "min_missing_share: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopKCategories != 10 {
		t.Errorf("top_k_categories: got %d", cfg.TopKCategories)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.MinMissingShare = 0.45
	cfg.ReportTitle = "Saved"
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dir, _ := Dir()
	if cfg.Path != filepath.Join(dir, "config.yaml") {
		t.Errorf("path after save: %q", cfg.Path)
	}
	back, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if back.MinMissingShare != 0.45 || back.ReportTitle != "Saved" {
		t.Errorf("reloaded: got %+v", back)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Global {
		return &Global{MinMissingShare: 0.3, HighCardinalityThreshold: 50, MaxHistColumns: 5, TopKCategories: 10, MaxUploadMB: 1}
	}
	cases := map[string]func(*Global){
		"share":    func(g *Global) { g.MinMissingShare = 1.2 },
		"card":     func(g *Global) { g.HighCardinalityThreshold = 0 },
		"hist":     func(g *Global) { g.MaxHistColumns = -1 },
		"topk":     func(g *Global) { g.TopKCategories = 0 },
		"max_rows": func(g *Global) { g.MaxRows = -5 },
		"upload":   func(g *Global) { g.MaxUploadMB = 0 },
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for name, mutate := range cases {
		g := base()
		mutate(g)
		if err := g.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWatch_Reloads(t *testing.T) {
	path := writeConfig(t, "high_cardinality_threshold: 20\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Global, 64)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(c *Global) { changes <- c }) }()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changes:
			// a write can be observed after truncation, before the new content
			if c.HighCardinalityThreshold != 99 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte("high_cardinality_threshold: 99\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), func(*Global) {})
	if err == nil {
		t.Fatal("expected error watching a missing file")
	}
}
