package main

import "math"

// RGB is an 8-bit color triple derived from three dedicated genes.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Phenotype holds the scalar traits derived from a genome. It is a pure
// function of the genome: identical genomes always produce identical
// phenotypes.
type Phenotype struct {
	Size               float64 `json:"size"`
	MaxSpeed           float64 `json:"max_speed"`
	Strength           float64 `json:"strength"`
	MetabolismRate     float64 `json:"metabolism_rate"`
	EnergyCapacity     float64 `json:"energy_capacity"`
	VisionRange        float64 `json:"vision_range"`
	Smell              float64 `json:"smell"`
	Hearing            float64 `json:"hearing"`
	Fertility          float64 `json:"fertility"`
	MaturationTime     float64 `json:"maturation_time"`
	MaxOffspring       int     `json:"max_offspring"`
	ImmuneStrength     float64 `json:"immune_strength"`
	ToxinResistance    float64 `json:"toxin_resistance"`
	AttackPower        float64 `json:"attack_power"`
	DefensePower       float64 `json:"defense_power"`
	LearningRate       float64 `json:"learning_rate"`
	Memory             float64 `json:"memory"`
	ProblemSolving     float64 `json:"problem_solving"`
	OptimalTemperature float64 `json:"optimal_temperature"`
	TemperatureRange   float64 `json:"temperature_range"`
	WasteTolerance     float64 `json:"waste_tolerance"`
	Lifespan           float64 `json:"lifespan"`
	Color              RGB     `json:"color"`
}

// traitSpec describes how a scalar trait is derived: which genes feed it,
// their weights, and the range the normalized value maps into.
type traitSpec struct {
	name    string
	genes   []string
	weights []float64
	min     float64
	max     float64
}

// traitSpecs is the fixed, compile-time trait table. Gene names refer to the
// fundamental genes of the first chromosome; missing genes read as 0.5.
var traitSpecs = []traitSpec{
	{"size", []string{"size", "energy_storage"}, []float64{0.8, 0.2}, 0.2, 5.0},
	{"max_speed", []string{"speed", "size"}, []float64{0.9, -0.1}, 0.0, 10.0},
	{"strength", []string{"strength", "size"}, []float64{0.7, 0.3}, 0.0, 1.0},
	{"metabolism_rate", []string{"metabolism_efficiency", "speed"}, []float64{0.7, 0.3}, 0.1, 2.0},
	{"energy_capacity", []string{"energy_storage", "size"}, []float64{0.7, 0.3}, 50.0, 500.0},
	{"vision_range", []string{"vision"}, []float64{1.0}, 5.0, 50.0},
	{"smell", []string{"vision", "cognition"}, []float64{0.6, 0.4}, 0.0, 1.0},
	{"hearing", []string{"vision", "survival_instinct"}, []float64{0.5, 0.5}, 0.0, 1.0},
	{"fertility", []string{"fertility", "reproduction_rate"}, []float64{0.6, 0.4}, 0.0, 1.0},
	{"maturation_time", []string{"longevity", "reproduction_rate"}, []float64{0.7, -0.3}, 20.0, 200.0},
	{"max_offspring", []string{"reproduction_rate", "fertility"}, []float64{0.6, 0.4}, 1.0, 12.0},
	{"immune_strength", []string{"immune_system"}, []float64{1.0}, 0.0, 5.0},
	{"toxin_resistance", []string{"toxin_resistance", "immune_system"}, []float64{0.7, 0.3}, 0.0, 1.0},
	{"attack_power", []string{"aggression", "strength"}, []float64{0.6, 0.4}, 0.0, 15.0},
	{"defense_power", []string{"survival_instinct", "size"}, []float64{0.6, 0.4}, 0.0, 15.0},
	{"learning_rate", []string{"cognition"}, []float64{1.0}, 0.0, 1.0},
	{"memory", []string{"cognition", "longevity"}, []float64{0.7, 0.3}, 0.0, 1.0},
	{"problem_solving", []string{"cognition", "vision"}, []float64{0.8, 0.2}, 0.0, 1.0},
	{"optimal_temperature", []string{"temperature_tolerance"}, []float64{1.0}, -10.0, 40.0},
	{"temperature_range", []string{"temperature_tolerance", "immune_system"}, []float64{0.5, 0.5}, 5.0, 30.0},
	{"waste_tolerance", []string{"toxin_resistance", "metabolism_efficiency"}, []float64{0.6, 0.4}, 0.0, 1.0},
}

// colorGenes drive the three color channels. The first chromosome does not
// carry them by default, so color typically derives from the 0.5 fallback
// until mutations introduce the genes.
var colorGenes = [3]string{"g1_0", "g1_1", "g1_2"}

// DerivePhenotype computes the phenotype for a genome.
func DerivePhenotype(genome Genome) Phenotype {
	values := make(map[string]float64, len(traitSpecs))
	for _, spec := range traitSpecs {
		values[spec.name] = deriveTrait(genome, spec)
	}

	p := Phenotype{
		Size:               values["size"],
		MaxSpeed:           values["max_speed"],
		Strength:           values["strength"],
		MetabolismRate:     values["metabolism_rate"],
		EnergyCapacity:     values["energy_capacity"],
		VisionRange:        values["vision_range"],
		Smell:              values["smell"],
		Hearing:            values["hearing"],
		Fertility:          values["fertility"],
		MaturationTime:     values["maturation_time"],
		MaxOffspring:       int(math.Round(values["max_offspring"])),
		ImmuneStrength:     values["immune_strength"],
		ToxinResistance:    values["toxin_resistance"],
		AttackPower:        values["attack_power"],
		DefensePower:       values["defense_power"],
		LearningRate:       values["learning_rate"],
		Memory:             values["memory"],
		ProblemSolving:     values["problem_solving"],
		OptimalTemperature: values["optimal_temperature"],
		TemperatureRange:   values["temperature_range"],
		WasteTolerance:     values["waste_tolerance"],
	}
	if p.MaxOffspring < 1 {
		p.MaxOffspring = 1
	}

	// Lifespan shortens for large, fast-burning bodies.
	lifeBase := deriveTrait(genome, traitSpec{
		name: "lifespan", genes: []string{"longevity"}, weights: []float64{1.0}, min: 0, max: 1,
	})
	sizeFactor := (p.Size - 0.2) / 4.8
	metabolismFactor := (p.MetabolismRate - 0.1) / 1.9
	lifeBase = clamp01(lifeBase - 0.25*sizeFactor - 0.25*metabolismFactor)
	p.Lifespan = 50 + lifeBase*950

	p.Color = RGB{
		R: uint8(math.Round(genome.GeneValue(colorGenes[0]) * 255)),
		G: uint8(math.Round(genome.GeneValue(colorGenes[1]) * 255)),
		B: uint8(math.Round(genome.GeneValue(colorGenes[2]) * 255)),
	}
	return p
}

// deriveTrait combines the weighted gene values for one trait, applies
// epistatic and pleiotropic adjustments, and maps the result into the trait
// range.
func deriveTrait(genome Genome, spec traitSpec) float64 {
	var value, weightSum float64
	for i, id := range spec.genes {
		w := spec.weights[i]
		value += genome.GeneValue(id) * w
		weightSum += math.Abs(w)
	}
	if weightSum == 0 {
		// Degenerate spec: fall back to equal weights over the listed genes.
		for _, id := range spec.genes {
			value += genome.GeneValue(id)
		}
		weightSum = math.Max(1e-9, float64(len(spec.genes)))
	}
	value = clamp01(value / weightSum)

	value = clamp01(value + epistasisAdjustment(genome, spec.genes))
	value = clamp01(value + pleiotropyAdjustment(genome, spec.name))

	return spec.min + value*(spec.max-spec.min)
}

// epistasisAdjustment sums value*value*coefficient over gene pairs where one
// of the trait's source genes appears as an epistatic target of another gene.
func epistasisAdjustment(genome Genome, sourceGenes []string) float64 {
	sources := make(map[string]bool, len(sourceGenes))
	for _, id := range sourceGenes {
		sources[id] = true
	}

	var sum float64
	for _, c := range genome.Chromosomes {
		for _, gene := range c.Genes {
			for target, coeff := range gene.Epistasis {
				if sources[target] {
					sum += gene.Value * genome.GeneValue(target) * coeff * gene.ExpressionLevel
				}
			}
		}
	}
	return clampRange(sum, -0.3, 0.3)
}

// pleiotropyAdjustment sums the contributions of pleiotropic links matching
// the trait name.
func pleiotropyAdjustment(genome Genome, trait string) float64 {
	var sum float64
	for _, c := range genome.Chromosomes {
		for _, gene := range c.Genes {
			for _, link := range gene.Pleiotropy {
				if link.Trait == trait {
					sum += gene.Value * link.Coefficient * gene.ExpressionLevel
				}
			}
		}
	}
	return clampRange(sum, -0.2, 0.2)
}
