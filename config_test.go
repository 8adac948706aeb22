package roadgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate, but got %v", err)
	}
	if cfg.SegsPerHighway() != 8 {
		t.Errorf("SegsPerHighway must be 8, but got %d", cfg.SegsPerHighway())
	}
	if cfg.HighwayStart != [2]float64{-10, 100} {
		t.Errorf("HighwayStart must be [-10 100], but got %v", cfg.HighwayStart)
	}
}

func TestSegsPerHighway(t *testing.T) {
	cases := []struct {
		grid, length float64
		want         int
	}{
		{50, 400, 8},
		{100, 400, 4},
		{150, 400, 2},
		{400, 400, 1},
		{500, 400, 0},
	}
	for _, tt := range cases {
		cfg := DefaultConfig()
		cfg.GridSize = tt.grid
		cfg.HighwayLength = tt.length
		if got := cfg.SegsPerHighway(); got != tt.want {
			t.Errorf("SegsPerHighway(%v, %v) must be %d, but got %d", tt.grid, tt.length, tt.want, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		fn   func(c *GenerationConfig)
	}{
		{"no rays", func(c *GenerationConfig) { c.NumRays = 0 }},
		{"zero grid", func(c *GenerationConfig) { c.GridSize = 0 }},
		{"negative grid", func(c *GenerationConfig) { c.GridSize = -50 }},
		{"zero highway", func(c *GenerationConfig) { c.HighwayLength = 0 }},
		{"no steps", func(c *GenerationConfig) { c.MaxHighwaySteps = 0 }},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.fn(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Error must be %v, but got %v", ErrInvalidConfig, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	fpath := filepath.Join(dir, "roads.toml")
	data := "population_threshold = 0.3\nnum_rays = 6\ngrid_size = 100.0\n"
	if err := os.WriteFile(fpath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PopulationThreshold != 0.3 || cfg.NumRays != 6 || cfg.GridSize != 100 {
		t.Errorf("Config must have threshold 0.3, 6 rays & grid 100, but got %+v", cfg)
	}
	if cfg.HighwayLength != defaultHighwayLength || cfg.LandThreshold != defaultLandThreshold {
		t.Errorf("Unset keys must keep their defaults, but got %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("num_rays = 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Error must be %v, but got %v", ErrInvalidConfig, err)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Loading a missing file must fail")
	}
}
