package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Time constants, in seconds of simulated time.
const (
	DayLength    = 1200.0
	YearLength   = 43200.0
	SeasonsCount = 4
)

// ClimateParams are global multipliers applied during world generation and
// the climate cycle.
type ClimateParams struct {
	Temperature float64 `json:"temperature" yaml:"temperature"` // multiplier around 1.0
	Humidity    float64 `json:"humidity" yaml:"humidity"`       // multiplier around 1.0
	Variability float64 `json:"variability" yaml:"variability"` // multiplier around 1.0
	SeaLevel    float64 `json:"sea_level" yaml:"sea_level"`     // altitude offset in [-0.2, 0.2]
	Resources   float64 `json:"resources" yaml:"resources"`     // capacity multiplier
}

// SimulationParams tune the evolutionary forces, each a multiplier around 1.0.
type SimulationParams struct {
	MutationRate      float64 `json:"mutation_rate" yaml:"mutation_rate"`
	SelectionPressure float64 `json:"selection_pressure" yaml:"selection_pressure"`
	Competition       float64 `json:"competition" yaml:"competition"`
	Predation         float64 `json:"predation" yaml:"predation"`
	Reproduction      float64 `json:"reproduction" yaml:"reproduction"`
}

// WorldConfig holds every world-creation option.
type WorldConfig struct {
	WorldWidth  int `json:"world_width" yaml:"world_width"`   // grid cells
	WorldHeight int `json:"world_height" yaml:"world_height"` // grid cells
	CellSize    int `json:"cell_size" yaml:"cell_size"`       // world units per grid cell

	InitialOrganismCount int `json:"initial_organism_count" yaml:"initial_organism_count"`
	MaxOrganisms         int `json:"max_organisms" yaml:"max_organisms"`

	// OrganismRatios are relative spawn weights keyed by organism type name.
	OrganismRatios map[string]float64 `json:"organism_ratios" yaml:"organism_ratios"`
	// BiomeRatios bias world generation toward the named biomes.
	BiomeRatios map[string]float64 `json:"biome_ratios" yaml:"biome_ratios"`

	Climate    ClimateParams    `json:"climate_params" yaml:"climate_params"`
	Simulation SimulationParams `json:"simulation_params" yaml:"simulation_params"`

	// RegistryPath is the species registry JSON document; empty keeps the
	// registry in memory only.
	RegistryPath string `json:"registry_path" yaml:"registry_path"`

	// Seed fixes the world RNG; zero draws a seed from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultWorldConfig returns a playable default configuration.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		WorldWidth:           100,
		WorldHeight:          100,
		CellSize:             50,
		InitialOrganismCount: 200,
		MaxOrganisms:         20000,
		OrganismRatios: map[string]float64{
			"unicellular": 0.3,
			"plant":       0.35,
			"herbivore":   0.2,
			"carnivore":   0.05,
			"omnivore":    0.1,
		},
		BiomeRatios: map[string]float64{},
		Climate: ClimateParams{
			Temperature: 1.0,
			Humidity:    1.0,
			Variability: 1.0,
			SeaLevel:    0.0,
			Resources:   1.0,
		},
		Simulation: SimulationParams{
			MutationRate:      1.0,
			SelectionPressure: 1.0,
			Competition:       1.0,
			Predation:         1.0,
			Reproduction:      1.0,
		},
		RegistryPath: "species_registry.json",
	}
}

// Validate fails fast on configurations the engine cannot run.
func (cfg WorldConfig) Validate() error {
	if cfg.WorldWidth <= 0 || cfg.WorldHeight <= 0 {
		return errors.Errorf("world dimensions must be positive, got %dx%d", cfg.WorldWidth, cfg.WorldHeight)
	}
	if cfg.CellSize <= 0 {
		return errors.Errorf("cell size must be positive, got %d", cfg.CellSize)
	}
	if cfg.InitialOrganismCount < 0 {
		return errors.Errorf("initial organism count must be nonnegative, got %d", cfg.InitialOrganismCount)
	}
	if cfg.MaxOrganisms <= 0 {
		return errors.Errorf("max organisms must be positive, got %d", cfg.MaxOrganisms)
	}
	for name, weight := range cfg.OrganismRatios {
		if _, ok := OrganismTypeByName(name); !ok {
			return errors.Errorf("unknown organism type %q in organism ratios", name)
		}
		if weight < 0 {
			return errors.Errorf("organism ratio for %q must be nonnegative, got %f", name, weight)
		}
	}
	for name, weight := range cfg.BiomeRatios {
		if _, ok := BiomeByName(name); !ok {
			return errors.Errorf("unknown biome %q in biome ratios", name)
		}
		if weight < 0 {
			return errors.Errorf("biome ratio for %q must be nonnegative, got %f", name, weight)
		}
	}
	if cfg.Climate.SeaLevel < -0.2 || cfg.Climate.SeaLevel > 0.2 {
		return errors.Errorf("sea level offset must be within [-0.2, 0.2], got %f", cfg.Climate.SeaLevel)
	}
	return nil
}

// normalizedOrganismRatios converts the named ratio map into per-type weights
// summing to 1. A zero or empty map falls back to equal weights.
func (cfg WorldConfig) normalizedOrganismRatios() [organismTypeCount]float64 {
	var weights [organismTypeCount]float64
	var total float64
	for name, weight := range cfg.OrganismRatios {
		if t, ok := OrganismTypeByName(name); ok {
			weights[t] = weight
			total += weight
		}
	}
	if total <= 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(organismTypeCount)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// LoadWorldConfig reads a YAML configuration file on top of the defaults.
func LoadWorldConfig(path string) (WorldConfig, error) {
	cfg := DefaultWorldConfig()
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading world config")
	}
	if err = yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing world config")
	}
	if err = cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "validating world config")
	}
	return cfg, nil
}
