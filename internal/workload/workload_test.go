// internal/workload/workload_test.go
package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative ops", func(c *Config) { c.Ops = -1 }},
		{"zero key range", func(c *Config) { c.KeyRange = 0 }},
		{"mix over 100", func(c *Config) { c.AddPercent = 80; c.RemovePercent = 30 }},
		{"negative mix", func(c *Config) { c.AddPercent = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workload.yaml")
	data := []byte("workers: 8\nops: 500\nkey_range: 1024\nadd_percent: 50\nremove_percent: 25\nseed: 42\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 8 || cfg.Ops != 500 || cfg.KeyRange != 1024 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed: got %d, want 42", cfg.Seed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	cfg := Default()
	cfg.Ops = 100

	g1 := NewGenerator(cfg, 3)
	g2 := NewGenerator(cfg, 3)
	for i := 0; i < cfg.Ops; i++ {
		op1, k1 := g1.Next()
		op2, k2 := g2.Next()
		if op1 != op2 || k1 != k2 {
			t.Fatalf("streams diverge at op %d", i)
		}
	}
}

func TestGeneratorWorkersDiffer(t *testing.T) {
	cfg := Default()

	g1 := NewGenerator(cfg, 0)
	g2 := NewGenerator(cfg, 1)
	same := 0
	for i := 0; i < 100; i++ {
		_, k1 := g1.Next()
		_, k2 := g2.Next()
		if k1 == k2 {
			same++
		}
	}
	if same == 100 {
		t.Error("distinct workers produced identical streams")
	}
}

func TestGeneratorRespectsKeyRange(t *testing.T) {
	cfg := Default()
	cfg.KeyRange = 16

	g := NewGenerator(cfg, 0)
	for i := 0; i < 1000; i++ {
		_, k := g.Next()
		if k < 0 || k >= cfg.KeyRange {
			t.Fatalf("key %d outside [0, %d)", k, cfg.KeyRange)
		}
	}
}
