package main

import (
	"math/rand"
	"testing"
)

func zeroRateGenome(rng *rand.Rand) Genome {
	genome := RandomGenome(rng)
	for i := range genome.Chromosomes {
		for j := range genome.Chromosomes[i].Genes {
			genome.Chromosomes[i].Genes[j].MutationRate = 0
		}
	}
	return genome
}

// genomesValueEqual compares two genomes by gene-ID set and effective gene
// values, which is invariant under order-only rearrangements.
func genomesValueEqual(t *testing.T, a, b Genome) {
	t.Helper()
	aIDs, bIDs := a.GeneIDs(), b.GeneIDs()
	if len(aIDs) != len(bIDs) {
		t.Fatalf("gene id sets differ in size: %d vs %d", len(aIDs), len(bIDs))
	}
	for i, id := range aIDs {
		if bIDs[i] != id {
			t.Fatalf("gene id sets differ: %q vs %q", id, bIDs[i])
		}
		if av, bv := a.GeneValue(id), b.GeneValue(id); av != bv {
			t.Errorf("gene %q value differs: %f vs %f", id, av, bv)
		}
	}
}

func TestRandomGenomeShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	genome := RandomGenome(rng)

	if len(genome.Chromosomes) != genomeChromosomeCount {
		t.Errorf("expected %d chromosomes, got %d", genomeChromosomeCount, len(genome.Chromosomes))
	}
	if got := len(genome.Chromosomes[0].Genes); got != len(fundamentalGenes) {
		t.Errorf("expected %d fundamental genes, got %d", len(fundamentalGenes), got)
	}
	for _, id := range fundamentalGenes {
		if !genome.Chromosomes[0].HasGene(id) {
			t.Errorf("first chromosome missing fundamental gene %q", id)
		}
	}
	total := genome.GeneCount()
	if total < 90 || total > 120 {
		t.Errorf("expected roughly 100 genes, got %d", total)
	}
}

func TestGeneMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		gene := RandomGene("speed", rng)
		gene.MutationRate = 0
		mutated := gene.Mutate(rng)
		if !gene.Equal(mutated) {
			t.Fatalf("zero-rate mutation changed the gene: %+v vs %+v", gene, mutated)
		}
	}
}

func TestGeneMutateStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	gene := RandomGene("size", rng)
	gene.MutationRate = 1
	for i := 0; i < 1000; i++ {
		gene = gene.Mutate(rng)
		if gene.Value < 0 || gene.Value > 1 {
			t.Fatalf("gene value out of range: %f", gene.Value)
		}
		if gene.MutationRate < 0.0001 || gene.MutationRate > 1 {
			t.Fatalf("mutation rate out of range: %f", gene.MutationRate)
		}
		if gene.Dominance < 0 || gene.Dominance > 1 {
			t.Fatalf("dominance out of range: %f", gene.Dominance)
		}
		for id, coeff := range gene.Epistasis {
			if coeff < -1 || coeff > 1 {
				t.Fatalf("epistasis coefficient for %s out of range: %f", id, coeff)
			}
		}
	}
}

func TestGeneValueAbsentDefaultsToHalf(t *testing.T) {
	genome := Genome{Chromosomes: []Chromosome{{}}}
	if v := genome.GeneValue("nope"); v != 0.5 {
		t.Errorf("expected 0.5 for an absent gene, got %f", v)
	}
}

func TestGeneValueDominanceWeighted(t *testing.T) {
	genome := Genome{Chromosomes: []Chromosome{
		{Genes: []Gene{{ID: "x", Value: 1.0, Dominance: 3}}},
		{Genes: []Gene{{ID: "x", Value: 0.0, Dominance: 1}}},
	}}
	if v := genome.GeneValue("x"); v < 0.74 || v > 0.76 {
		t.Errorf("expected dominance-weighted 0.75, got %f", v)
	}
}

func TestReproduceSelfWithZeroRatesIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	genome := zeroRateGenome(rng)

	// Anomalies are stochastic; run with a source that avoids the 2%/0.5%
	// windows by repeating until a clean draw, then verify equality.
	for attempt := 0; attempt < 20; attempt++ {
		child := ReproduceGenomes(genome, genome, rng)
		if len(child.Chromosomes) != len(genome.Chromosomes) {
			continue // chromosomal anomaly fired; try another draw
		}
		sameGeneCount := true
		for i := range child.Chromosomes {
			if len(child.Chromosomes[i].Genes) != len(genome.Chromosomes[i].Genes) {
				sameGeneCount = false
			}
		}
		if !sameGeneCount {
			continue
		}
		genomesValueEqual(t, genome, child)
		return
	}
	t.Fatal("anomalies fired on every attempt; expected most draws clean")
}

func TestCombineChromosomesTakesUnionOfGeneIDs(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := Chromosome{Genes: []Gene{
		{ID: "shared", Value: 0.2},
		{ID: "only_a", Value: 0.4},
	}}
	b := Chromosome{Genes: []Gene{
		{ID: "shared", Value: 0.8},
		{ID: "only_b", Value: 0.6},
	}}

	child := CombineChromosomes(a, b, rng)
	if len(child.Genes) != 3 {
		t.Fatalf("expected union of 3 gene ids, got %d", len(child.Genes))
	}
	for _, id := range []string{"shared", "only_a", "only_b"} {
		if !child.HasGene(id) {
			t.Errorf("missing gene %q after crossover", id)
		}
	}
}

func TestReproduceGenomesKeepsLongerParentExtras(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	short := zeroRateGenome(rng)
	short.Chromosomes = short.Chromosomes[:10]
	long := zeroRateGenome(rng)

	sawExtras := false
	for attempt := 0; attempt < 20; attempt++ {
		child := ReproduceGenomes(short, long, rng)
		if len(child.Chromosomes) == len(long.Chromosomes) {
			sawExtras = true
			break
		}
	}
	if !sawExtras {
		t.Error("extra chromosomes of the longer parent never carried over")
	}
}

func TestFissionMutationsProtectEssentialGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		genome := RandomGenome(rng)
		applyFissionMutations(&genome, rng)
		for _, id := range []string{"metabolism_efficiency", "energy_storage", "reproduction_rate", "survival_instinct"} {
			found := false
			for _, c := range genome.Chromosomes {
				if c.HasGene(id) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("essential gene %q was deleted by fission mutations", id)
			}
		}
	}
}

func TestAnomalyFusionReducesChromosomeCount(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	sawFusion := false
	for trial := 0; trial < 200 && !sawFusion; trial++ {
		genome := RandomGenome(rng)
		before := len(genome.Chromosomes)
		genome.applyAnomaly(rng)
		if len(genome.Chromosomes) == before-1 {
			sawFusion = true
		} else if len(genome.Chromosomes) != before {
			t.Fatalf("anomaly changed chromosome count unexpectedly: %d -> %d", before, len(genome.Chromosomes))
		}
	}
	if !sawFusion {
		t.Error("fusion never observed across 200 anomalies")
	}
}
