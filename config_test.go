package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultWorldConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*WorldConfig){
		"zero width":       func(c *WorldConfig) { c.WorldWidth = 0 },
		"negative height":  func(c *WorldConfig) { c.WorldHeight = -1 },
		"zero cell size":   func(c *WorldConfig) { c.CellSize = 0 },
		"zero max":         func(c *WorldConfig) { c.MaxOrganisms = 0 },
		"negative initial": func(c *WorldConfig) { c.InitialOrganismCount = -5 },
		"unknown organism": func(c *WorldConfig) { c.OrganismRatios["wyvern"] = 1 },
		"negative ratio":   func(c *WorldConfig) { c.OrganismRatios["plant"] = -0.1 },
		"unknown biome":    func(c *WorldConfig) { c.BiomeRatios["moonscape"] = 1 },
		"sea level high":   func(c *WorldConfig) { c.Climate.SeaLevel = 0.3 },
		"sea level low":    func(c *WorldConfig) { c.Climate.SeaLevel = -0.3 },
	}
	for name, corrupt := range cases {
		cfg := DefaultWorldConfig()
		corrupt(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}

func TestOrganismRatiosNormalize(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.OrganismRatios = map[string]float64{"plant": 3, "herbivore": 1}

	weights := cfg.normalizedOrganismRatios()
	var total float64
	for _, weight := range weights {
		total += weight
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("weights sum to %f, expected 1", total)
	}
	if math.Abs(weights[TypePlant]-0.75) > 1e-9 {
		t.Errorf("plant weight %f, expected 0.75", weights[TypePlant])
	}
	if weights[TypeCarnivore] != 0 {
		t.Errorf("unlisted type got weight %f", weights[TypeCarnivore])
	}
}

func TestOrganismRatiosZeroSumFallsBackToEqual(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.OrganismRatios = map[string]float64{}

	weights := cfg.normalizedOrganismRatios()
	expected := 1.0 / float64(organismTypeCount)
	for i, weight := range weights {
		if math.Abs(weight-expected) > 1e-9 {
			t.Errorf("type %d weight %f, expected equal share %f", i, weight, expected)
		}
	}
}

func TestLoadWorldConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	content := []byte(`
world_width: 64
world_height: 48
cell_size: 25
max_organisms: 5000
organism_ratios:
  plant: 0.5
  herbivore: 0.5
climate_params:
  temperature: 1.2
  humidity: 0.9
  variability: 1.0
  sea_level: 0.1
  resources: 1.0
simulation_params:
  mutation_rate: 1.5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWorldConfig(path)
	if err != nil {
		t.Fatalf("LoadWorldConfig: %v", err)
	}
	if cfg.WorldWidth != 64 || cfg.WorldHeight != 48 || cfg.CellSize != 25 {
		t.Errorf("dimensions not loaded: %+v", cfg)
	}
	if cfg.Climate.Temperature != 1.2 {
		t.Errorf("climate temperature %f, expected 1.2", cfg.Climate.Temperature)
	}
	if cfg.Simulation.MutationRate != 1.5 {
		t.Errorf("mutation rate %f, expected 1.5", cfg.Simulation.MutationRate)
	}
}

func TestLoadWorldConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world_width: -4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWorldConfig(path); err == nil {
		t.Error("invalid config file accepted")
	}
	if _, err := LoadWorldConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config file accepted")
	}
}
