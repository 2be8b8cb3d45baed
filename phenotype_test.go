package main

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestPhenotypeDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	genome := RandomGenome(rng)

	first := DerivePhenotype(genome)
	second := DerivePhenotype(genome)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("phenotype derivation is not deterministic:\n%s\n%s", a, b)
	}
}

func TestPhenotypeTraitRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for trial := 0; trial < 50; trial++ {
		p := DerivePhenotype(RandomGenome(rng))

		checks := []struct {
			name     string
			value    float64
			min, max float64
		}{
			{"size", p.Size, 0.2, 5},
			{"max_speed", p.MaxSpeed, 0, 10},
			{"strength", p.Strength, 0, 1},
			{"metabolism_rate", p.MetabolismRate, 0.1, 2},
			{"energy_capacity", p.EnergyCapacity, 50, 500},
			{"vision_range", p.VisionRange, 5, 50},
			{"fertility", p.Fertility, 0, 1},
			{"maturation_time", p.MaturationTime, 20, 200},
			{"immune_strength", p.ImmuneStrength, 0, 5},
			{"attack_power", p.AttackPower, 0, 15},
			{"defense_power", p.DefensePower, 0, 15},
			{"optimal_temperature", p.OptimalTemperature, -10, 40},
			{"temperature_range", p.TemperatureRange, 5, 30},
			{"waste_tolerance", p.WasteTolerance, 0, 1},
			{"lifespan", p.Lifespan, 50, 1000},
		}
		for _, c := range checks {
			if c.value < c.min || c.value > c.max {
				t.Errorf("%s out of range [%g, %g]: %g", c.name, c.min, c.max, c.value)
			}
		}
		if p.MaxOffspring < 1 || p.MaxOffspring > 12 {
			t.Errorf("max_offspring out of range: %d", p.MaxOffspring)
		}
	}
}

func TestPhenotypeChangesWithGenome(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	genome := RandomGenome(rng)
	base := DerivePhenotype(genome)

	// Push the speed gene to the extremes and expect max_speed to follow.
	idx := genome.Chromosomes[0].geneIndex("speed")
	if idx < 0 {
		t.Fatal("speed gene missing")
	}
	genome.Chromosomes[0].Genes[idx].Value = 1
	fast := DerivePhenotype(genome)
	genome.Chromosomes[0].Genes[idx].Value = 0
	slow := DerivePhenotype(genome)

	if fast.MaxSpeed <= slow.MaxSpeed {
		t.Errorf("speed gene had no effect: fast=%f slow=%f base=%f", fast.MaxSpeed, slow.MaxSpeed, base.MaxSpeed)
	}
}

func TestPleiotropyAdjustmentIsBounded(t *testing.T) {
	genome := Genome{Chromosomes: []Chromosome{{Genes: []Gene{
		{ID: "a", Value: 1, ExpressionLevel: 1, Pleiotropy: []PleiotropyLink{{Trait: "size", Coefficient: 1}}},
		{ID: "b", Value: 1, ExpressionLevel: 1, Pleiotropy: []PleiotropyLink{{Trait: "size", Coefficient: 1}}},
		{ID: "c", Value: 1, ExpressionLevel: 1, Pleiotropy: []PleiotropyLink{{Trait: "size", Coefficient: 1}}},
	}}}}
	if adj := pleiotropyAdjustment(genome, "size"); adj > 0.2 {
		t.Errorf("pleiotropy adjustment exceeds clamp: %f", adj)
	}
	if adj := epistasisAdjustment(genome, []string{"a"}); adj > 0.3 || adj < -0.3 {
		t.Errorf("epistasis adjustment exceeds clamp: %f", adj)
	}
}
