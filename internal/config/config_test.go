package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dualx/internal/chain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Seed != 1 {
		t.Errorf("expected seed 1, got %v", cfg.Seed)
	}
	if cfg.Sweep.Samples < 2 {
		t.Error("samples should be at least 2")
	}
	if cfg.Sweep.Mode != ModeArray {
		t.Errorf("expected mode array, got %s", cfg.Sweep.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("trig", "cubic-sine")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	c, err := cfg.Chain()
	if err != nil {
		t.Fatalf("compile preset: %v", err)
	}
	if c.String() != "pow(sin(x), 3)" {
		t.Errorf("unexpected chain %s", c)
	}

	// callers may modify the returned copy
	*cfg.Steps[1].Exponent = 9
	again := GetPreset("trig", "cubic-sine")
	if *again.Steps[1].Exponent != 3 {
		t.Error("GetPreset returned shared state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("trig", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "cubic-sine"); cfg != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("log")
	if len(presets) != 2 || presets[0] != "near-zero" {
		t.Errorf("unexpected presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestAllPresetsValid(t *testing.T) {
	for _, g := range Groups() {
		for _, name := range ListPresets(g) {
			if err := GetPreset(g, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", g, name, err)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	if _, err := Resolve("exp/growth"); err != nil {
		t.Errorf("Resolve: %v", err)
	}
	if _, err := Resolve("growth"); err == nil {
		t.Error("expected error without a group")
	}
	if _, err := Resolve("exp/nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown op", func(c *Config) { c.Steps = []chain.Step{chain.Unary("sinh")} }},
		{"empty range", func(c *Config) { c.Sweep.From, c.Sweep.To = 1, 1 }},
		{"too few samples", func(c *Config) { c.Sweep.Samples = 1 }},
		{"bad mode", func(c *Config) { c.Sweep.Mode = "grid" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := `name: cubic
steps:
  - op: sin
  - op: pow
    exponent: 3
  - op: mul
    operand: x
points: [0.5, 1.0]
strict: true
sweep:
  samples: 50
  mode: points
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "cubic" || len(cfg.Steps) != 3 || !cfg.Strict {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Steps[1].Exponent == nil || *cfg.Steps[1].Exponent != 3 {
		t.Error("exponent not decoded")
	}
	if cfg.Steps[2].Operand != chain.OperandX {
		t.Errorf("operand = %q", cfg.Steps[2].Operand)
	}
	// unset fields keep their defaults
	if cfg.Sweep.From != DefaultFrom || cfg.Seed != DefaultSeed || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Sweep.Samples != 50 || cfg.Sweep.Mode != ModePoints {
		t.Errorf("sweep = %+v", cfg.Sweep)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("log", "quadratic")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if chain.Format(got.Steps) != chain.Format(cfg.Steps) {
		t.Errorf("steps = %s, want %s", chain.Format(got.Steps), chain.Format(cfg.Steps))
	}
}

func TestLoadOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("seed: 2\nsweep:\n  samples: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("trig", "cubic-sine")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatalf("LoadOver: %v", err)
	}
	if cfg.Name != "cubic-sine" || len(cfg.Steps) != 2 {
		t.Errorf("preset fields lost: %+v", cfg)
	}
	if cfg.Seed != 2 || cfg.Sweep.Samples != 10 || cfg.Sweep.From != base.Sweep.From {
		t.Errorf("unexpected merge %+v", cfg)
	}
	if base.Seed != DefaultSeed {
		t.Error("LoadOver modified its base")
	}
}
