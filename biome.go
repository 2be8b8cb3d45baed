package main

// BiomeType represents the climate/terrain category assigned to a world cell.
type BiomeType int

const (
	BiomeDeepOcean BiomeType = iota
	BiomeOcean
	BiomeShallowWater
	BiomeCoralReef
	BiomeBeach
	BiomeGrassland
	BiomeSavanna
	BiomeForest
	BiomeRainforest
	BiomeSwamp
	BiomeMountain
	BiomeMountainForest
	BiomeDesert
	BiomeDesertHills
	BiomeTundra
	BiomeIce
	BiomeVolcanic
	BiomeRiver
	BiomeLake
	biomeTypeCount
)

var biomeNames = map[BiomeType]string{
	BiomeDeepOcean:      "deep_ocean",
	BiomeOcean:          "ocean",
	BiomeShallowWater:   "shallow_water",
	BiomeCoralReef:      "coral_reef",
	BiomeBeach:          "beach",
	BiomeGrassland:      "grassland",
	BiomeSavanna:        "savanna",
	BiomeForest:         "forest",
	BiomeRainforest:     "rainforest",
	BiomeSwamp:          "swamp",
	BiomeMountain:       "mountain",
	BiomeMountainForest: "mountain_forest",
	BiomeDesert:         "desert",
	BiomeDesertHills:    "desert_hills",
	BiomeTundra:         "tundra",
	BiomeIce:            "ice",
	BiomeVolcanic:       "volcanic",
	BiomeRiver:          "river",
	BiomeLake:           "lake",
}

func (b BiomeType) String() string {
	if name, ok := biomeNames[b]; ok {
		return name
	}
	return "unknown"
}

// BiomeByName resolves a biome from its configuration name.
func BiomeByName(name string) (BiomeType, bool) {
	for b, n := range biomeNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

// AllBiomes lists every biome in declaration order.
func AllBiomes() []BiomeType {
	biomes := make([]BiomeType, biomeTypeCount)
	for i := range biomes {
		biomes[i] = BiomeType(i)
	}
	return biomes
}

// IsAquatic reports whether the biome is water-covered.
func (b BiomeType) IsAquatic() bool {
	switch b {
	case BiomeDeepOcean, BiomeOcean, BiomeShallowWater, BiomeCoralReef, BiomeRiver, BiomeLake:
		return true
	}
	return false
}

// biomeProfile holds the static per-biome environment parameters used for
// cell initialization and the per-tick resource update.
type biomeProfile struct {
	BaseTemperature float64
	BaseHumidity    float64
	// Resource modifiers scale the default capacities, one per ResourceKind.
	ResourceModifiers [resourceKindCount]float64
	// OrganicGrowth scales organic matter regrowth in this biome.
	OrganicGrowth float64
	// Stability in [0,1]; unstable biomes see larger random swings.
	Stability float64
}

// biomeProfiles is indexed by BiomeType. Resource modifier order:
// sunlight, water, minerals, oxygen, co2, organic matter.
var biomeProfiles = [biomeTypeCount]biomeProfile{
	BiomeDeepOcean:      {4, 1.0, [resourceKindCount]float64{0.2, 2.0, 0.6, 0.7, 0.9, 0.3}, 0.2, 0.95},
	BiomeOcean:          {10, 1.0, [resourceKindCount]float64{0.5, 2.0, 0.5, 0.9, 0.9, 0.4}, 0.4, 0.9},
	BiomeShallowWater:   {16, 1.0, [resourceKindCount]float64{0.9, 2.0, 0.6, 1.0, 1.0, 0.7}, 0.8, 0.85},
	BiomeCoralReef:      {24, 1.0, [resourceKindCount]float64{1.0, 2.0, 0.8, 1.2, 1.0, 1.0}, 1.1, 0.8},
	BiomeBeach:          {20, 0.7, [resourceKindCount]float64{1.1, 0.8, 0.5, 1.0, 1.0, 0.4}, 0.4, 0.8},
	BiomeGrassland:      {16, 0.5, [resourceKindCount]float64{1.0, 0.7, 0.8, 1.0, 1.0, 1.0}, 1.0, 0.85},
	BiomeSavanna:        {25, 0.35, [resourceKindCount]float64{1.2, 0.4, 0.7, 1.0, 1.0, 0.8}, 0.7, 0.75},
	BiomeForest:         {13, 0.65, [resourceKindCount]float64{0.8, 0.9, 0.9, 1.2, 1.1, 1.2}, 1.2, 0.9},
	BiomeRainforest:     {26, 0.95, [resourceKindCount]float64{0.9, 1.3, 1.0, 1.4, 1.2, 1.5}, 1.5, 0.9},
	BiomeSwamp:          {20, 0.9, [resourceKindCount]float64{0.7, 1.5, 0.9, 0.9, 1.2, 1.3}, 1.2, 0.8},
	BiomeMountain:       {0, 0.4, [resourceKindCount]float64{1.1, 0.5, 1.4, 0.8, 0.9, 0.3}, 0.3, 0.9},
	BiomeMountainForest: {5, 0.55, [resourceKindCount]float64{0.9, 0.7, 1.2, 1.0, 1.0, 0.9}, 0.8, 0.85},
	BiomeDesert:         {32, 0.1, [resourceKindCount]float64{1.4, 0.1, 0.9, 0.9, 1.0, 0.2}, 0.15, 0.7},
	BiomeDesertHills:    {28, 0.15, [resourceKindCount]float64{1.3, 0.15, 1.1, 0.9, 1.0, 0.25}, 0.2, 0.7},
	BiomeTundra:         {-8, 0.3, [resourceKindCount]float64{0.7, 0.5, 0.8, 1.0, 1.0, 0.3}, 0.25, 0.85},
	BiomeIce:            {-20, 0.4, [resourceKindCount]float64{0.8, 0.6, 0.4, 1.0, 0.9, 0.1}, 0.05, 0.9},
	BiomeVolcanic:       {40, 0.2, [resourceKindCount]float64{0.9, 0.2, 2.0, 0.6, 1.5, 0.2}, 0.2, 0.4},
	BiomeRiver:          {14, 1.0, [resourceKindCount]float64{1.0, 2.0, 0.9, 1.1, 1.0, 0.8}, 0.9, 0.8},
	BiomeLake:           {14, 1.0, [resourceKindCount]float64{1.0, 2.0, 0.7, 1.1, 1.0, 0.8}, 0.9, 0.85},
}

// biomeAdaptationBase is the fixed (organism type, biome) suitability lookup
// in [0.2, 1.0].
var biomeAdaptationBase = map[OrganismType][biomeTypeCount]float64{
	TypeUnicellular: {
		BiomeDeepOcean: 0.9, BiomeOcean: 1.0, BiomeShallowWater: 1.0, BiomeCoralReef: 0.9,
		BiomeBeach: 0.7, BiomeGrassland: 0.6, BiomeSavanna: 0.5, BiomeForest: 0.6,
		BiomeRainforest: 0.7, BiomeSwamp: 0.9, BiomeMountain: 0.4, BiomeMountainForest: 0.5,
		BiomeDesert: 0.3, BiomeDesertHills: 0.3, BiomeTundra: 0.4, BiomeIce: 0.3,
		BiomeVolcanic: 0.5, BiomeRiver: 0.9, BiomeLake: 0.9,
	},
	TypePlant: {
		BiomeDeepOcean: 0.2, BiomeOcean: 0.3, BiomeShallowWater: 0.7, BiomeCoralReef: 0.8,
		BiomeBeach: 0.5, BiomeGrassland: 1.0, BiomeSavanna: 0.8, BiomeForest: 1.0,
		BiomeRainforest: 1.0, BiomeSwamp: 0.9, BiomeMountain: 0.4, BiomeMountainForest: 0.8,
		BiomeDesert: 0.25, BiomeDesertHills: 0.3, BiomeTundra: 0.35, BiomeIce: 0.2,
		BiomeVolcanic: 0.25, BiomeRiver: 0.8, BiomeLake: 0.7,
	},
	TypeHerbivore: {
		BiomeDeepOcean: 0.2, BiomeOcean: 0.25, BiomeShallowWater: 0.5, BiomeCoralReef: 0.5,
		BiomeBeach: 0.6, BiomeGrassland: 1.0, BiomeSavanna: 0.9, BiomeForest: 0.9,
		BiomeRainforest: 0.8, BiomeSwamp: 0.6, BiomeMountain: 0.4, BiomeMountainForest: 0.7,
		BiomeDesert: 0.3, BiomeDesertHills: 0.35, BiomeTundra: 0.4, BiomeIce: 0.25,
		BiomeVolcanic: 0.2, BiomeRiver: 0.6, BiomeLake: 0.55,
	},
	TypeCarnivore: {
		BiomeDeepOcean: 0.3, BiomeOcean: 0.4, BiomeShallowWater: 0.5, BiomeCoralReef: 0.5,
		BiomeBeach: 0.6, BiomeGrassland: 0.9, BiomeSavanna: 1.0, BiomeForest: 0.9,
		BiomeRainforest: 0.8, BiomeSwamp: 0.6, BiomeMountain: 0.6, BiomeMountainForest: 0.8,
		BiomeDesert: 0.4, BiomeDesertHills: 0.45, BiomeTundra: 0.5, BiomeIce: 0.35,
		BiomeVolcanic: 0.25, BiomeRiver: 0.55, BiomeLake: 0.5,
	},
	TypeOmnivore: {
		BiomeDeepOcean: 0.25, BiomeOcean: 0.3, BiomeShallowWater: 0.5, BiomeCoralReef: 0.5,
		BiomeBeach: 0.7, BiomeGrassland: 0.95, BiomeSavanna: 0.85, BiomeForest: 1.0,
		BiomeRainforest: 0.9, BiomeSwamp: 0.7, BiomeMountain: 0.5, BiomeMountainForest: 0.8,
		BiomeDesert: 0.35, BiomeDesertHills: 0.4, BiomeTundra: 0.45, BiomeIce: 0.3,
		BiomeVolcanic: 0.25, BiomeRiver: 0.6, BiomeLake: 0.6,
	},
}

// BiomeAdaptationBase returns the fixed suitability of an organism type in a
// biome, always within [0.2, 1.0].
func BiomeAdaptationBase(t OrganismType, biome BiomeType) float64 {
	table, ok := biomeAdaptationBase[t]
	if !ok || biome < 0 || biome >= biomeTypeCount {
		return 0.2
	}
	return clampRange(table[biome], 0.2, 1.0)
}
