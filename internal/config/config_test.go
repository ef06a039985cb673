package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/san-kum/extrema/internal/calculus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Function != DefaultFunction {
		t.Errorf("expected function %q, got %q", DefaultFunction, cfg.Function)
	}
	if cfg.Interval() != calculus.DefaultInterval() {
		t.Errorf("expected default interval, got %s", cfg.Interval())
	}
	if cfg.Search.Step <= 0 {
		t.Error("step should be positive")
	}
	fc := cfg.FinderConfig()
	if fc.Step != calculus.DefaultStep || fc.Tolerance != calculus.DefaultTolerance || fc.MaxIterations != calculus.DefaultMaxIterations {
		t.Errorf("expected finder defaults, got %+v", fc)
	}
	// convergence follows the detection tolerance unless set
	if fc.ConvergenceTolerance != 0 {
		t.Errorf("expected unset convergence tolerance, got %v", fc.ConvergenceTolerance)
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrema.yaml")
	data := []byte("function: sin(x)\nrange:\n  lo: -3\n  hi: 3\nsearch:\n  tolerance: 0.01\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Function != "sin(x)" {
		t.Errorf("expected sin(x), got %q", cfg.Function)
	}
	if cfg.Interval() != (calculus.Interval{Lo: -3, Hi: 3}) {
		t.Errorf("expected [-3, 3], got %s", cfg.Interval())
	}
	if cfg.Search.Tolerance != 0.01 {
		t.Errorf("expected tolerance 0.01, got %v", cfg.Search.Tolerance)
	}
	// untouched keys keep their defaults
	if cfg.Search.MaxIterations != DefaultMaxIter {
		t.Errorf("expected max iterations %d, got %d", DefaultMaxIter, cfg.Search.MaxIterations)
	}
	if cfg.Plot.Width != DefaultPlotWidth {
		t.Errorf("expected plot width %d, got %d", DefaultPlotWidth, cfg.Plot.Width)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrema.yaml")
	cfg := DefaultConfig()
	cfg.Scope = map[string]float64{"a": 2}
	cfg.SetInterval(calculus.Interval{Lo: -1, Hi: 4})

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Scope["a"] != 2 {
		t.Errorf("expected scope a = 2, got %v", got.Scope)
	}
	if got.Range.Hi != 4 {
		t.Errorf("expected hi 4, got %v", got.Range.Hi)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("quadratic")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Function != "x^2 - 4x" {
		t.Errorf("expected x^2 - 4x, got %s", p.Function)
	}

	cfg := DefaultConfig()
	cfg.Apply(GetPreset("quartic"))
	if cfg.Range.Lo != -3 || cfg.Function != "x^4 - 4x^2" {
		t.Errorf("preset not applied: %+v", cfg)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if p := GetPreset("nonexistent"); p != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestLoadInto_KeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrema.yaml")
	if err := os.WriteFile(path, []byte("search:\n  max_iterations: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Apply(GetPreset("wave"))
	if err := LoadInto(path, cfg); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Function != "sin(x) + cos(x)" {
		t.Errorf("expected preset function to survive, got %q", cfg.Function)
	}
	if cfg.Search.MaxIterations != 5 {
		t.Errorf("expected max iterations 5, got %d", cfg.Search.MaxIterations)
	}
}
