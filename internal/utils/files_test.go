package utils_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/eda-cli/internal/utils"
)

func TestWriteJSONAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := utils.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	path := filepath.Join(dir, "summary.json")
	if err := utils.WriteJSON(path, map[string]int{"n_rows": 3}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(b, &got); err != nil || got["n_rows"] != 3 {
		t.Fatalf("content = %s (%v)", b, err)
	}
	if utils.FileSize(path) != int64(len(b)) {
		t.Fatalf("FileSize = %d, want %d", utils.FileSize(path), len(b))
	}
	if utils.FileSize(dir) != -1 || utils.FileSize(filepath.Join(dir, "missing")) != -1 {
		t.Fatalf("FileSize should be -1 for directories and missing files")
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"price":          "price",
		"unit price":     "unit_price",
		" a / b ":        "a_b",
		"Temp (°F)":      "Temp_(°F)",
		"..":             "unnamed",
		"":               "unnamed",
		`c:\x*y?`:        "c_x_y_",
		"tab\tseparated": "tab_separated",
	}
	for in, want := range cases {
		if got := utils.SafeFileName(in); got != want {
			t.Errorf("SafeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
