package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// PleiotropyLink records a secondary trait influenced by a gene.
type PleiotropyLink struct {
	Trait       string  `json:"trait"`
	Coefficient float64 `json:"coefficient"` // -1 to 1
}

// Gene represents a functional unit of heredity
type Gene struct {
	ID              string             `json:"id"`               // Gene name (e.g., "metabolism_efficiency")
	Value           float64            `json:"value"`            // Allele value (0-1)
	MutationRate    float64            `json:"mutation_rate"`    // Per-reproduction mutation probability (0-1)
	Dominance       float64            `json:"dominance"`        // Weight against other copies of the same gene (0-1)
	ExpressionLevel float64            `json:"expression_level"` // How strongly the gene is expressed (0-1)
	Epistasis       map[string]float64 `json:"epistasis"`        // Gene ID -> interaction coefficient (-1 to 1)
	Pleiotropy      []PleiotropyLink   `json:"pleiotropy"`       // Secondary traits this gene influences
}

// mutationKind enumerates the ways a single gene can mutate.
type mutationKind int

const (
	mutationPoint mutationKind = iota
	mutationRegulatory
	mutationDominance
	mutationEpistatic
	mutationPleiotropic
	mutationMeta
	mutationKindCount
)

// pleiotropyTraits is the fixed trait set new pleiotropic links are drawn from.
var pleiotropyTraits = []string{
	"size", "max_speed", "strength", "metabolism_rate", "energy_capacity",
	"vision_range", "fertility", "immune_strength", "attack_power",
	"defense_power", "lifespan", "memory",
}

// Copy returns a deep copy of the gene.
func (g Gene) Copy() Gene {
	c := g
	if g.Epistasis != nil {
		c.Epistasis = make(map[string]float64, len(g.Epistasis))
		for id, coeff := range g.Epistasis {
			c.Epistasis[id] = coeff
		}
	}
	if g.Pleiotropy != nil {
		c.Pleiotropy = make([]PleiotropyLink, len(g.Pleiotropy))
		copy(c.Pleiotropy, g.Pleiotropy)
	}
	return c
}

// Equal reports whether two genes match on every heritable field.
func (g Gene) Equal(other Gene) bool {
	if g.ID != other.ID || g.Value != other.Value || g.MutationRate != other.MutationRate ||
		g.Dominance != other.Dominance || g.ExpressionLevel != other.ExpressionLevel {
		return false
	}
	if len(g.Epistasis) != len(other.Epistasis) || len(g.Pleiotropy) != len(other.Pleiotropy) {
		return false
	}
	for id, coeff := range g.Epistasis {
		if other.Epistasis[id] != coeff {
			return false
		}
	}
	for i, link := range g.Pleiotropy {
		if other.Pleiotropy[i] != link {
			return false
		}
	}
	return true
}

// Mutate returns a copy of the gene, possibly altered. A Bernoulli draw on the
// gene's own mutation rate decides whether anything changes at all; on
// mutation, between one and three mutation kinds are applied.
func (g Gene) Mutate(rng *rand.Rand) Gene {
	child := g.Copy()
	if rng.Float64() >= g.MutationRate {
		return child
	}

	kindCount := 1
	roll := rng.Float64()
	switch {
	case roll < 0.85:
		kindCount = 1
	case roll < 0.98:
		kindCount = 2
	default:
		kindCount = 3
	}

	kinds := rng.Perm(int(mutationKindCount))[:kindCount]
	for _, k := range kinds {
		child.applyMutation(mutationKind(k), rng)
	}
	return child
}

// applyMutation performs a single mutation of the given kind in place.
func (g *Gene) applyMutation(kind mutationKind, rng *rand.Rand) {
	switch kind {
	case mutationPoint:
		// Mixture of normals: mostly small steps, rare large jumps.
		sigma := 0.02
		roll := rng.Float64()
		switch {
		case roll < 0.7:
			sigma = 0.02
		case roll < 0.95:
			sigma = 0.1
		default:
			sigma = 0.3
		}
		g.Value = clamp01(g.Value + rng.NormFloat64()*sigma)

	case mutationRegulatory:
		g.ExpressionLevel = clamp01(g.ExpressionLevel + rng.NormFloat64()*0.1)

	case mutationDominance:
		g.Dominance = clamp01(g.Dominance + rng.NormFloat64()*0.1)

	case mutationEpistatic:
		if len(g.Epistasis) > 0 && rng.Float64() < 0.5 {
			target := randomMapKey(g.Epistasis, rng)
			g.Epistasis[target] = clampRange(g.Epistasis[target]+rng.NormFloat64()*0.2, -1, 1)
		} else {
			if g.Epistasis == nil {
				g.Epistasis = make(map[string]float64)
			}
			target := fmt.Sprintf("g%d_%d", rng.Intn(genomeChromosomeCount), rng.Intn(anonymousGenesPerChromosome))
			g.Epistasis[target] = rng.Float64() - 0.5
		}

	case mutationPleiotropic:
		if len(g.Pleiotropy) > 0 && rng.Float64() < 0.5 {
			idx := rng.Intn(len(g.Pleiotropy))
			g.Pleiotropy[idx].Coefficient = clampRange(g.Pleiotropy[idx].Coefficient+rng.NormFloat64()*0.2, -1, 1)
		} else {
			trait := pleiotropyTraits[rng.Intn(len(pleiotropyTraits))]
			g.Pleiotropy = append(g.Pleiotropy, PleiotropyLink{
				Trait:       trait,
				Coefficient: clampRange(rng.NormFloat64()*0.3, -1, 1),
			})
		}

	case mutationMeta:
		delta := rng.NormFloat64() * 0.005
		// High mutation rates drift back down most of the time.
		if g.MutationRate > 0.1 && delta > 0 && rng.Float64() < 0.8 {
			delta = -delta
		}
		g.MutationRate = clampRange(g.MutationRate+delta, 0.0001, 0.2)
	}
}

// Chromosome represents a set of genes that recombines as a unit. Gene IDs are
// unique within a chromosome; slice order is the physical gene order used by
// segment rearrangements.
type Chromosome struct {
	Genes []Gene `json:"genes"`
}

// Copy returns a deep copy of the chromosome.
func (c Chromosome) Copy() Chromosome {
	genes := make([]Gene, len(c.Genes))
	for i, g := range c.Genes {
		genes[i] = g.Copy()
	}
	return Chromosome{Genes: genes}
}

// Mutate returns a copy of the chromosome with every gene mutated
// independently.
func (c Chromosome) Mutate(rng *rand.Rand) Chromosome {
	genes := make([]Gene, len(c.Genes))
	for i, g := range c.Genes {
		genes[i] = g.Mutate(rng)
	}
	return Chromosome{Genes: genes}
}

// geneIndex returns the position of a gene by ID, or -1.
func (c Chromosome) geneIndex(id string) int {
	for i, g := range c.Genes {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// HasGene reports whether the chromosome carries a gene with the given ID.
func (c Chromosome) HasGene(id string) bool {
	return c.geneIndex(id) >= 0
}

// CombineChromosomes performs uniform crossover per gene ID: for IDs present
// in both parents one copy is chosen at random, for IDs present in one parent
// that copy is taken. Every inherited gene is mutated on the way through.
func CombineChromosomes(a, b Chromosome, rng *rand.Rand) Chromosome {
	child := Chromosome{Genes: make([]Gene, 0, maxInt(len(a.Genes), len(b.Genes)))}
	seen := make(map[string]bool, len(a.Genes)+len(b.Genes))

	for _, ga := range a.Genes {
		seen[ga.ID] = true
		if j := b.geneIndex(ga.ID); j >= 0 {
			if rng.Float64() < 0.5 {
				child.Genes = append(child.Genes, ga.Mutate(rng))
			} else {
				child.Genes = append(child.Genes, b.Genes[j].Mutate(rng))
			}
		} else {
			child.Genes = append(child.Genes, ga.Mutate(rng))
		}
	}
	for _, gb := range b.Genes {
		if !seen[gb.ID] {
			child.Genes = append(child.Genes, gb.Mutate(rng))
		}
	}
	return child
}

// Genome is an ordered sequence of chromosomes.
type Genome struct {
	Chromosomes []Chromosome `json:"chromosomes"`
}

const (
	genomeChromosomeCount       = 23
	anonymousGenesPerChromosome = 4
)

// fundamentalGenes are the named genes carried by the first chromosome. They
// map directly onto phenotype traits and are protected from deletion.
var fundamentalGenes = []string{
	"metabolism_efficiency",
	"energy_storage",
	"speed",
	"vision",
	"immune_system",
	"fertility",
	"size",
	"strength",
	"reproduction_rate",
	"survival_instinct",
	"temperature_tolerance",
	"toxin_resistance",
	"longevity",
	"aggression",
	"cognition",
}

// essentialGenePrefixes guard genes from deletion during fission mutations.
var essentialGenePrefixes = []string{"metabolism", "energy", "reproduction", "survival"}

func isEssentialGene(id string) bool {
	for _, prefix := range essentialGenePrefixes {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// RandomGene creates a gene with the given ID and random heritable values.
func RandomGene(id string, rng *rand.Rand) Gene {
	g := Gene{
		ID:              id,
		Value:           rng.Float64(),
		MutationRate:    0.001 + rng.Float64()*0.009,
		Dominance:       rng.Float64(),
		ExpressionLevel: 0.2 + rng.Float64()*0.8,
	}
	// A minority of genes start with interactions already in place.
	if rng.Float64() < 0.2 {
		g.Epistasis = map[string]float64{
			fundamentalGenes[rng.Intn(len(fundamentalGenes))]: rng.Float64() - 0.5,
		}
	}
	if rng.Float64() < 0.15 {
		g.Pleiotropy = []PleiotropyLink{{
			Trait:       pleiotropyTraits[rng.Intn(len(pleiotropyTraits))],
			Coefficient: clampRange(rng.NormFloat64()*0.3, -1, 1),
		}}
	}
	return g
}

// RandomGenome creates the default genome: a first chromosome carrying the
// fundamental genes followed by chromosomes of anonymous genes, 23
// chromosomes and roughly a hundred genes in total.
func RandomGenome(rng *rand.Rand) Genome {
	genome := Genome{Chromosomes: make([]Chromosome, 0, genomeChromosomeCount)}

	first := Chromosome{Genes: make([]Gene, 0, len(fundamentalGenes))}
	for _, id := range fundamentalGenes {
		first.Genes = append(first.Genes, RandomGene(id, rng))
	}
	genome.Chromosomes = append(genome.Chromosomes, first)

	for chrom := 1; chrom < genomeChromosomeCount; chrom++ {
		c := Chromosome{Genes: make([]Gene, 0, anonymousGenesPerChromosome)}
		for idx := 0; idx < anonymousGenesPerChromosome; idx++ {
			c.Genes = append(c.Genes, RandomGene(fmt.Sprintf("g%d_%d", chrom, idx), rng))
		}
		genome.Chromosomes = append(genome.Chromosomes, c)
	}
	return genome
}

// Copy returns a deep copy of the genome.
func (g Genome) Copy() Genome {
	chromosomes := make([]Chromosome, len(g.Chromosomes))
	for i, c := range g.Chromosomes {
		chromosomes[i] = c.Copy()
	}
	return Genome{Chromosomes: chromosomes}
}

// Mutate returns a copy of the genome with every chromosome mutated.
func (g Genome) Mutate(rng *rand.Rand) Genome {
	chromosomes := make([]Chromosome, len(g.Chromosomes))
	for i, c := range g.Chromosomes {
		chromosomes[i] = c.Mutate(rng)
	}
	return Genome{Chromosomes: chromosomes}
}

// GeneValue returns the dominance-weighted average value of every copy of the
// gene across all chromosomes, or 0.5 when the gene is absent.
func (g Genome) GeneValue(id string) float64 {
	var total, weight float64
	for _, c := range g.Chromosomes {
		for _, gene := range c.Genes {
			if gene.ID == id {
				w := math.Max(1e-9, gene.Dominance)
				total += gene.Value * w
				weight += w
			}
		}
	}
	if weight == 0 {
		return 0.5
	}
	return total / weight
}

// GeneCount returns the total number of genes in the genome.
func (g Genome) GeneCount() int {
	count := 0
	for _, c := range g.Chromosomes {
		count += len(c.Genes)
	}
	return count
}

// GeneIDs returns the sorted set of gene IDs present anywhere in the genome.
func (g Genome) GeneIDs() []string {
	seen := make(map[string]bool)
	for _, c := range g.Chromosomes {
		for _, gene := range c.Genes {
			seen[gene.ID] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReproduceGenomes recombines two parent genomes chromosome by chromosome,
// carries over the longer parent's extra chromosomes, then applies rare
// chromosomal anomalies.
func ReproduceGenomes(a, b Genome, rng *rand.Rand) Genome {
	short, long := a, b
	if len(b.Chromosomes) < len(a.Chromosomes) {
		short, long = b, a
	}

	child := Genome{Chromosomes: make([]Chromosome, 0, len(long.Chromosomes))}
	for i := range short.Chromosomes {
		child.Chromosomes = append(child.Chromosomes, CombineChromosomes(short.Chromosomes[i], long.Chromosomes[i], rng))
	}
	for i := len(short.Chromosomes); i < len(long.Chromosomes); i++ {
		extra := long.Chromosomes[i]
		if rng.Float64() < 0.2 {
			extra = extra.withDoubledMutationRate().Mutate(rng)
		} else {
			extra = extra.Mutate(rng)
		}
		child.Chromosomes = append(child.Chromosomes, extra)
	}

	if rng.Float64() < 0.02 {
		child.applyAnomaly(rng)
	}
	if rng.Float64() < 0.005 {
		child.applyDuplication(rng)
	}
	if rng.Float64() < 0.005 && len(child.Chromosomes) >= 2 {
		child.applyDeletion(rng)
	}
	return child
}

// withDoubledMutationRate returns a copy whose gene mutation rates are
// temporarily doubled, used for extra chromosomes carried over unpaired.
func (c Chromosome) withDoubledMutationRate() Chromosome {
	doubled := c.Copy()
	for i := range doubled.Genes {
		doubled.Genes[i].MutationRate = math.Min(1, doubled.Genes[i].MutationRate*2)
	}
	return doubled
}

// applyAnomaly applies one of translocation, inversion or fusion to the
// genome in place.
func (g *Genome) applyAnomaly(rng *rand.Rand) {
	if len(g.Chromosomes) < 2 {
		return
	}
	i := rng.Intn(len(g.Chromosomes))
	j := rng.Intn(len(g.Chromosomes))
	for j == i {
		j = rng.Intn(len(g.Chromosomes))
	}

	switch rng.Intn(3) {
	case 0: // translocation: swap a few random genes between two chromosomes
		count := 1 + rng.Intn(3)
		for n := 0; n < count; n++ {
			ci, cj := &g.Chromosomes[i], &g.Chromosomes[j]
			if len(ci.Genes) == 0 || len(cj.Genes) == 0 {
				break
			}
			gi, gj := rng.Intn(len(ci.Genes)), rng.Intn(len(cj.Genes))
			ci.Genes[gi], cj.Genes[gj] = cj.Genes[gj], ci.Genes[gi]
		}

	case 1: // inversion: reverse a short segment of gene order
		c := &g.Chromosomes[i]
		if len(c.Genes) < 2 {
			return
		}
		segment := 2 + rng.Intn(4)
		if segment > len(c.Genes) {
			segment = len(c.Genes)
		}
		start := rng.Intn(len(c.Genes) - segment + 1)
		for lo, hi := start, start+segment-1; lo < hi; lo, hi = lo+1, hi-1 {
			c.Genes[lo], c.Genes[hi] = c.Genes[hi], c.Genes[lo]
		}

	case 2: // fusion: merge two chromosomes keeping the union of genes
		if i > j {
			i, j = j, i
		}
		merged := g.Chromosomes[i].Copy()
		for _, gene := range g.Chromosomes[j].Genes {
			if !merged.HasGene(gene.ID) {
				merged.Genes = append(merged.Genes, gene.Copy())
			}
		}
		g.Chromosomes[i] = merged
		g.Chromosomes = append(g.Chromosomes[:j], g.Chromosomes[j+1:]...)
	}
}

// applyDuplication duplicates a random chromosome; the second copy mutates
// further, drifting away from the original.
func (g *Genome) applyDuplication(rng *rand.Rand) {
	if len(g.Chromosomes) == 0 {
		return
	}
	idx := rng.Intn(len(g.Chromosomes))
	g.Chromosomes = append(g.Chromosomes, g.Chromosomes[idx].Mutate(rng))
}

// applyDeletion drops one chromosome. Callers guard the minimum count.
func (g *Genome) applyDeletion(rng *rand.Rand) {
	idx := rng.Intn(len(g.Chromosomes))
	g.Chromosomes = append(g.Chromosomes[:idx], g.Chromosomes[idx+1:]...)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// randomMapKey picks a uniformly random key from a non-empty map. Iteration
// order is randomized by the runtime but not uniformly, so the index draw
// comes from the supplied RNG.
func randomMapKey(m map[string]float64, rng *rand.Rand) string {
	idx := rng.Intn(len(m))
	for k := range m {
		if idx == 0 {
			return k
		}
		idx--
	}
	return ""
}
