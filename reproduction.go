package main

import (
	"math"
	"math/rand"
)

// ReproductionMode identifies which reproduction path produced an offspring.
type ReproductionMode int

const (
	ModeConjugation ReproductionMode = iota
	ModeFission
	ModeSelfPollination
	ModeCrossPollination
	ModeSexual
)

func (m ReproductionMode) String() string {
	switch m {
	case ModeConjugation:
		return "conjugation"
	case ModeFission:
		return "fission"
	case ModeSelfPollination:
		return "self_pollination"
	case ModeCrossPollination:
		return "cross_pollination"
	case ModeSexual:
		return "sexual"
	}
	return "unknown"
}

// seedDispersal identifies how a plant offspring's position is chosen.
type seedDispersal int

const (
	dispersalGravity seedDispersal = iota
	dispersalWind
	dispersalExplosion
)

// baseSpeciationProbability is the floor of the speciation formula.
const baseSpeciationProbability = 0.05

// reproductionBaseCost is the type-specific energy cost before size and
// genome-complexity factors.
var reproductionBaseCost = [organismTypeCount]float64{
	TypeUnicellular: 10,
	TypePlant:       15,
	TypeHerbivore:   25,
	TypeCarnivore:   30,
	TypeOmnivore:    28,
}

// reproductionCost scales the base cost by body size and genome complexity.
func reproductionCost(o *Organism) float64 {
	sizeFactor := 0.5 + o.Phenotype.Size/5
	complexity := 0.5 + float64(len(o.Genome.Chromosomes))/float64(genomeChromosomeCount)
	return reproductionBaseCost[o.Type] * sizeFactor * complexity
}

// incompatibilityThreshold is the genetic similarity below which sexual
// reproduction starts failing stochastically, per organism type.
var incompatibilityThreshold = [organismTypeCount]float64{
	TypeUnicellular: 0.35,
	TypePlant:       0.35,
	TypeHerbivore:   0.40,
	TypeCarnivore:   0.45,
	TypeOmnivore:    0.40,
}

// GeneticSimilarity computes the [0,1] compatibility metric between two
// organisms: a species-membership base adjusted per chromosome by gene-ID
// overlap (60%) and shared-gene value closeness (40%), attenuated by
// generation distance.
func GeneticSimilarity(a, b *Organism) float64 {
	if a.Type != b.Type {
		return 0.1
	}
	base := 0.5
	if a.SpeciesID == b.SpeciesID {
		base = 0.8
	}

	matched := minInt(len(a.Genome.Chromosomes), len(b.Genome.Chromosomes))
	if matched == 0 {
		return base
	}

	var chromScore float64
	for i := 0; i < matched; i++ {
		ca, cb := a.Genome.Chromosomes[i], b.Genome.Chromosomes[i]
		union := make(map[string]bool, len(ca.Genes)+len(cb.Genes))
		shared := 0
		var closeness float64
		for _, g := range ca.Genes {
			union[g.ID] = true
		}
		for _, g := range cb.Genes {
			if union[g.ID] {
				shared++
				if j := ca.geneIndex(g.ID); j >= 0 {
					closeness += 1 - math.Abs(ca.Genes[j].Value-g.Value)
				}
			}
			union[g.ID] = true
		}
		overlap := float64(shared) / math.Max(1e-9, float64(len(union)))
		meanCloseness := 0.0
		if shared > 0 {
			meanCloseness = closeness / float64(shared)
		}
		chromScore += 0.6*overlap + 0.4*meanCloseness
	}
	chromScore /= float64(matched)

	similarity := (base + chromScore) / 2

	// Distant generations drift apart even with similar genomes.
	genGap := math.Abs(float64(a.Generation - b.Generation))
	similarity *= 1 - clamp01(genGap/50)*0.3

	return clamp01(similarity)
}

// environmentalMutationFactor scales the base mutation rate by accumulated
// stress: temperature mismatch, resource shortage, crowding, mutagens, global
// selection pressure and geographic isolation.
func (w *World) environmentalMutationFactor(o *Organism) float64 {
	factor := 1.0

	cell := w.CellAt(o.Position)
	if cell != nil {
		tempMismatch := math.Abs(cell.Temperature-o.Phenotype.OptimalTemperature) /
			math.Max(1e-9, o.Phenotype.TemperatureRange)
		factor += clamp01(tempMismatch) * 0.5

		if cell.Resources[ResourceWater] < cell.Capacity[ResourceWater]*0.1 ||
			cell.Resources[ResourceOrganicMatter] < cell.Capacity[ResourceOrganicMatter]*0.1 {
			factor += 0.2
		}
		factor += cell.Radiation*0.5 + cell.Toxicity*0.3*(1-o.Phenotype.ToxinResistance)
	}

	// Age pushes mutation load up late in life.
	factor += clamp01(o.Age/math.Max(1e-9, o.Phenotype.Lifespan)) * 0.2

	// Local crowding above a threshold stresses the population.
	crowd := w.localDensity(o.Position, 20, o.Type)
	if crowd > 15 {
		factor += math.Min(0.3, float64(crowd-15)*0.02)
	} else if crowd < 3 {
		// Isolated pockets accumulate variants faster.
		factor += 0.1
	}

	factor += (w.cfg.Simulation.SelectionPressure - 1) * 0.2

	return clampRange(factor*w.cfg.Simulation.MutationRate, 0.05, 0.5)
}

// geneCategory classifies a gene for speciation significance weighting.
type geneCategory int

const (
	categoryCore geneCategory = iota
	categoryMorphological
	categoryBehavioral
	categoryAdaptive
	categoryReproductive
)

var categoryWeights = [...]float64{
	categoryCore:          1.0,
	categoryMorphological: 2.0,
	categoryBehavioral:    1.5,
	categoryAdaptive:      1.2,
	categoryReproductive:  2.5,
}

// significanceThreshold is the minimum value difference that counts as a
// significant mutation, stricter for fundamental genes and strictest for
// reproductive ones.
func significanceThreshold(category geneCategory, fundamental bool) float64 {
	if category == categoryReproductive {
		return 0.05
	}
	if fundamental {
		return 0.1
	}
	return 0.15
}

func categorizeGene(id string) geneCategory {
	switch id {
	case "fertility", "reproduction_rate":
		return categoryReproductive
	case "size", "strength", "speed":
		return categoryMorphological
	case "aggression", "cognition", "survival_instinct":
		return categoryBehavioral
	case "immune_system", "toxin_resistance", "temperature_tolerance":
		return categoryAdaptive
	}
	return categoryCore
}

var fundamentalGeneSet = func() map[string]bool {
	set := make(map[string]bool, len(fundamentalGenes))
	for _, id := range fundamentalGenes {
		set[id] = true
	}
	return set
}()

// mutationSignificance compares a child genome to its parent and returns the
// count of significant mutations and a normalized significance in [0,1].
func mutationSignificance(parent, child Genome) (int, float64) {
	parentValues := make(map[string]float64)
	for _, id := range parent.GeneIDs() {
		parentValues[id] = parent.GeneValue(id)
	}
	childValues := make(map[string]float64)
	for _, id := range child.GeneIDs() {
		childValues[id] = child.GeneValue(id)
	}

	count := 0
	var weighted float64

	for id, pv := range parentValues {
		cv, exists := childValues[id]
		category := categorizeGene(id)
		if !exists {
			// Gene deletions count heavily.
			count++
			weighted += categoryWeights[category] * 2
			continue
		}
		diff := math.Abs(pv - cv)
		if diff > significanceThreshold(category, fundamentalGeneSet[id]) {
			count++
			weighted += categoryWeights[category] * diff
		}
	}
	for id := range childValues {
		if _, exists := parentValues[id]; !exists {
			count++
			weighted += categoryWeights[categorizeGene(id)] * 2
		}
	}

	chromDelta := math.Abs(float64(len(parent.Chromosomes) - len(child.Chromosomes)))
	if chromDelta > 0 {
		count += int(chromDelta)
		weighted += chromDelta * 3
	}

	// Normalize against the genome scale: a handful of heavy mutations is
	// already highly significant.
	significance := clamp01(weighted / 10)
	return count, significance
}

// speciationContext carries the per-reproduction inputs of the speciation
// probability formula.
type speciationContext struct {
	mutationFactor        float64 // from mutationSignificance, [0,1]
	geographicIsolation   float64 // [0,1]
	environmentalPressure float64 // [0,1]
	generationFactor      float64 // [0,1]
	populationFactor      float64 // [0,1]
	boost                 float64 // additive (hybridization, conjugation)
}

// speciationProbability combines the weighted stress terms, clamped to a 0.8
// ceiling so no lineage speciates every generation.
func speciationProbability(ctx speciationContext) float64 {
	p := baseSpeciationProbability +
		0.4*ctx.mutationFactor +
		0.2*ctx.geographicIsolation +
		0.3*ctx.environmentalPressure +
		0.1*ctx.generationFactor +
		0.1*ctx.populationFactor +
		ctx.boost
	return clampRange(p, 0, 0.8)
}

// speciationInputs derives the stress terms for an offspring of the given
// parent at the given position.
func (w *World) speciationInputs(parent *Organism, significance float64) speciationContext {
	ctx := speciationContext{mutationFactor: significance}

	// Geographic isolation: few same-species organisms nearby.
	sameSpecies := 0
	for _, n := range w.grid.QueryRadius(parent.Position, 40) {
		if n.IsAlive && n.SpeciesID == parent.SpeciesID {
			sameSpecies++
		}
	}
	ctx.geographicIsolation = clamp01(1 - float64(sameSpecies)/20)

	if cell := w.CellAt(parent.Position); cell != nil {
		adaptation := w.biomeAdaptation(parent, cell)
		ctx.environmentalPressure = clamp01(1 - adaptation)
	}

	ctx.generationFactor = clamp01(float64(parent.Generation) / 100)

	if rec := w.registry.Get(parent.SpeciesID); rec != nil {
		ctx.populationFactor = clamp01(float64(rec.PopulationCount) / 500)
	}
	return ctx
}

// ReproduceAsexual clones the parent with mutation: bacterial fission with an
// elevated per-chromosome mutation schedule.
func (w *World) ReproduceAsexual(parent *Organism) *Organism {
	cost := reproductionCost(parent)
	if parent.Energy < cost*1.5 {
		return nil
	}
	parent.Energy -= cost

	child := parent.Genome.Mutate(w.rng)
	applyFissionMutations(&child, w.rng)

	offspring := w.buildOffspring(parent, nil, child, ModeFission, 0)
	offspring.Position = w.jitteredPosition(parent.Position, 2)
	parent.ReproductionCooldown = 10
	parent.OffspringCount++
	// Fission splits the body: parent and offspring share the remaining energy.
	offspring.Energy = math.Min(offspring.Phenotype.EnergyCapacity, parent.Energy*0.5)
	parent.Energy *= 0.5
	return offspring
}

// applyFissionMutations draws an expected mutation count per chromosome and
// applies structural mutations with fixed weights. Essential gene prefixes
// are protected from deletion.
func applyFissionMutations(g *Genome, rng *rand.Rand) {
	for i := range g.Chromosomes {
		c := &g.Chromosomes[i]
		if len(c.Genes) == 0 {
			continue
		}
		meanRate := 0.0
		for _, gene := range c.Genes {
			meanRate += gene.MutationRate
		}
		meanRate /= float64(len(c.Genes))
		if meanRate <= 0 {
			continue
		}

		upper := minInt(int(math.Ceil(float64(len(c.Genes))*meanRate*2)), 5)
		if upper < 1 {
			upper = 1
		}
		count := 1 + rng.Intn(upper)

		for n := 0; n < count; n++ {
			roll := rng.Float64()
			idx := rng.Intn(len(c.Genes))
			switch {
			case roll < 0.65: // point
				c.Genes[idx].applyMutation(mutationPoint, rng)
			case roll < 0.77: // duplication
				dup := c.Genes[idx].Copy()
				dup.ID = dup.ID + "+"
				c.Genes = append(c.Genes, dup)
			case roll < 0.87: // deletion
				if len(c.Genes) > 1 && !isEssentialGene(c.Genes[idx].ID) {
					c.Genes = append(c.Genes[:idx], c.Genes[idx+1:]...)
				}
			case roll < 0.95: // insertion
				c.Genes = append(c.Genes, RandomGene(c.Genes[idx].ID+"'", rng))
			default: // rearrangement
				j := rng.Intn(len(c.Genes))
				c.Genes[idx], c.Genes[j] = c.Genes[j], c.Genes[idx]
			}
		}
	}
}

// ReproduceConjugation clones the parent and transfers a few of the partner's
// genes onto a random child chromosome. Offspring of conjugation speciate
// much more readily than plain clones.
func (w *World) ReproduceConjugation(parent, donor *Organism) *Organism {
	cost := reproductionCost(parent)
	if parent.Energy < cost*1.5 {
		return nil
	}
	parent.Energy -= cost * 0.7
	donor.Energy = math.Max(0, donor.Energy-cost*0.3)
	donor.ReproductionCooldown = math.Max(donor.ReproductionCooldown, 5)

	child := parent.Genome.Mutate(w.rng)
	transferGenes(&child, donor.Genome, w.rng)

	offspring := w.buildOffspring(parent, donor, child, ModeConjugation, baseSpeciationProbability*1.5)
	offspring.Position = w.jitteredPosition(parent.Position, 2)
	parent.ReproductionCooldown = 10
	parent.OffspringCount++
	return offspring
}

// transferGenes copies 1-5 random donor genes onto a random chromosome of the
// child genome, each re-mutated on arrival.
func transferGenes(child *Genome, donor Genome, rng *rand.Rand) {
	if len(child.Chromosomes) == 0 || len(donor.Chromosomes) == 0 {
		return
	}
	target := &child.Chromosomes[rng.Intn(len(child.Chromosomes))]
	count := 1 + rng.Intn(5)
	for n := 0; n < count; n++ {
		dc := donor.Chromosomes[rng.Intn(len(donor.Chromosomes))]
		if len(dc.Genes) == 0 {
			continue
		}
		gene := dc.Genes[rng.Intn(len(dc.Genes))].Mutate(rng)
		if idx := target.geneIndex(gene.ID); idx >= 0 {
			target.Genes[idx] = gene
		} else {
			target.Genes = append(target.Genes, gene)
		}
	}
}

// ReproduceSelfPollination recombines a plant's genome with itself: a few
// genes swap chromosomes, extra mutations apply, and inbreeding depression
// taxes the offspring's health and vigor.
func (w *World) ReproduceSelfPollination(parent *Organism) *Organism {
	cost := reproductionCost(parent)
	if parent.Energy < cost*1.5 {
		return nil
	}
	parent.Energy -= cost

	child := parent.Genome.Mutate(w.rng)
	deleterious := 0
	if len(child.Chromosomes) >= 2 {
		swaps := 1 + w.rng.Intn(3)
		for n := 0; n < swaps; n++ {
			i, j := w.rng.Intn(len(child.Chromosomes)), w.rng.Intn(len(child.Chromosomes))
			if i == j {
				continue
			}
			ci, cj := &child.Chromosomes[i], &child.Chromosomes[j]
			if len(ci.Genes) == 0 || len(cj.Genes) == 0 {
				continue
			}
			gi, gj := w.rng.Intn(len(ci.Genes)), w.rng.Intn(len(cj.Genes))
			ci.Genes[gi], cj.Genes[gj] = cj.Genes[gj], ci.Genes[gi]
		}
	}
	// Extra mutation sweep; deleterious hits feed inbreeding depression.
	for i := range child.Chromosomes {
		for j := range child.Chromosomes[i].Genes {
			if w.rng.Float64() < 0.05 {
				before := child.Chromosomes[i].Genes[j].Value
				child.Chromosomes[i].Genes[j].applyMutation(mutationPoint, w.rng)
				if child.Chromosomes[i].Genes[j].Value < before {
					deleterious++
				}
			}
		}
	}

	offspring := w.buildOffspring(parent, nil, child, ModeSelfPollination, 0)
	offspring.Position = w.disperseSeed(parent.Position)

	depression := clamp01(float64(deleterious) * 0.05)
	offspring.Health = clampRange(offspring.Health*(1-depression), 0, 100)
	offspring.Phenotype.Strength *= 1 - depression*0.5
	offspring.Phenotype.Fertility *= 1 - depression*0.5

	parent.ReproductionCooldown = 20
	parent.OffspringCount++
	return offspring
}

// disperseSeed places a plant offspring by gravity, wind or explosive
// dispersal.
func (w *World) disperseSeed(origin Vec2) Vec2 {
	roll := w.rng.Float64()
	var mode seedDispersal
	switch {
	case roll < 0.6:
		mode = dispersalGravity
	case roll < 0.9:
		mode = dispersalWind
	default:
		mode = dispersalExplosion
	}

	switch mode {
	case dispersalGravity:
		return w.jitteredPosition(origin, 3)
	case dispersalWind:
		angle := w.Weather.WindDirection + (w.rng.Float64()-0.5)*0.5
		dist := w.Weather.WindSpeed * (2 + w.rng.Float64()*6)
		pos := Vec2{X: origin.X + math.Cos(angle)*dist, Y: origin.Y + math.Sin(angle)*dist}
		w.clampIntoBounds(&pos)
		return pos
	default:
		return w.jitteredPosition(origin, 15)
	}
}

// mateQuality scores a candidate partner with type-specific weights over
// health, size, strength, and one extra trait.
func mateQuality(t OrganismType, mate *Organism) float64 {
	health := mate.Health / 100
	size := (mate.Phenotype.Size - 0.2) / 4.8
	strength := mate.Phenotype.Strength

	var extra float64
	switch t {
	case TypeHerbivore:
		extra = mate.Phenotype.MaxSpeed / 10
	case TypeCarnivore:
		extra = (mate.Phenotype.VisionRange - 5) / 45
	case TypeOmnivore:
		extra = (mate.Phenotype.MetabolismRate - 0.1) / 1.9
	default:
		extra = mate.Phenotype.Fertility
	}
	return clamp01(0.4*health + 0.2*size + 0.2*strength + 0.2*extra)
}

// ReproduceSexual recombines two parents. Similarity gates compatibility,
// mate quality and distance from the optimal similarity of ~0.7 set the
// success probability, and hybrid pairings carry a speciation boost.
func (w *World) ReproduceSexual(a, b *Organism) *Organism {
	cost := reproductionCost(a)
	if a.Energy < cost*1.5 || b.Energy < reproductionCost(b)*0.5 {
		return nil
	}

	similarity := GeneticSimilarity(a, b)
	hybrid := a.SpeciesID != b.SpeciesID

	threshold := incompatibilityThreshold[a.Type]
	if hybrid {
		// Cross-species pairs need clearly compatible genomes.
		if similarity <= threshold*1.5 && w.rng.Float64() < 0.8 {
			return nil
		}
	} else if similarity < threshold && w.rng.Float64() < (threshold-similarity)/threshold {
		return nil
	}

	quality := mateQuality(a.Type, b)
	optimalDeviation := math.Abs(similarity - 0.7)
	success := w.cfg.Simulation.Reproduction * (0.5 + 0.4*quality - 0.5*optimalDeviation)
	if w.rng.Float64() >= clampRange(success, 0.05, 0.95) {
		return nil
	}

	a.Energy -= cost
	b.Energy = math.Max(0, b.Energy-reproductionCost(b)*0.5)

	child := ReproduceGenomes(a.Genome, b.Genome, w.rng)

	// Extra mutations at the environmentally adjusted rate.
	extraRate := w.environmentalMutationFactor(a)
	for i := range child.Chromosomes {
		for j := range child.Chromosomes[i].Genes {
			if w.rng.Float64() < extraRate*0.1 {
				child.Chromosomes[i].Genes[j].applyMutation(mutationPoint, w.rng)
			}
		}
	}

	boost := 0.0
	if hybrid {
		boost = 0.2
	}
	mode := ModeSexual
	if a.Type == TypePlant {
		mode = ModeCrossPollination
	}

	offspring := w.buildOffspring(a, b, child, mode, boost)
	if a.Type == TypePlant {
		offspring.Position = w.disperseSeed(a.Position)
	} else {
		offspring.Position = w.jitteredPosition(a.Position, 3)
	}

	a.ReproductionCooldown = 30
	b.ReproductionCooldown = math.Max(b.ReproductionCooldown, 15)
	a.OffspringCount++
	b.OffspringCount++
	return offspring
}

// geneticDominance ranks a parent for hybrid species inheritance.
func geneticDominance(o *Organism) float64 {
	return o.Genome.GeneValue("immune_system")*0.2 +
		o.Genome.GeneValue("metabolism_efficiency")*0.2 +
		(o.Phenotype.Size-0.2)/4.8*0.15 +
		o.Phenotype.Strength*0.15 +
		clamp01(o.AdaptationScore)*0.15 +
		clamp01(float64(o.OffspringCount)/6)*0.05 +
		clamp01(float64(o.Generation)/100)*0.1
}

// buildOffspring assembles an organism from a formed genome, runs the
// speciation decision, and wires lineage and registry bookkeeping.
func (w *World) buildOffspring(parent, partner *Organism, genome Genome, mode ReproductionMode, boost float64) *Organism {
	mutations, significance := mutationSignificance(parent.Genome, genome)
	ctx := w.speciationInputs(parent, significance)
	ctx.boost += boost

	// A genome identical to the parent's can never found a new species.
	speciated := mutations > 0 && w.rng.Float64() < speciationProbability(ctx)
	speciesID := parent.SpeciesID
	parentSpecies := parent.SpeciesID
	if speciated {
		speciesID = newSpeciesID()
	} else if partner != nil && partner.SpeciesID != parent.SpeciesID {
		// Hybrid without speciation: the genetically dominant parent's
		// species carries the child.
		if geneticDominance(partner) > geneticDominance(parent) {
			speciesID = partner.SpeciesID
		}
	}

	offspring := NewOrganism(w.nextOrganismID(), parent.Type, genome, parent.Position)
	offspring.SpeciesID = speciesID
	offspring.Generation = parent.Generation + 1
	offspring.ParentIDs = []int{parent.ID}
	if partner != nil {
		offspring.ParentIDs = append(offspring.ParentIDs, partner.ID)
		offspring.Generation = maxInt(parent.Generation, partner.Generation) + 1
	}
	offspring.Hydration = parent.Hydration
	offspring.Energy = math.Min(offspring.Phenotype.EnergyCapacity, reproductionCost(parent)*2)

	if speciated {
		offspring.TaxonomyID = w.taxonomy.Classify(parent.Type, parent.TaxonomyID, mutations, significance)
		w.recordSpeciation(offspring, parentSpecies, mode)
	} else {
		offspring.TaxonomyID = parent.TaxonomyID
	}
	return offspring
}

// tryReproduce runs the gatekeeping checks and dispatches to the reproduction
// path for the organism's type. Returns nil when no offspring results.
func (w *World) tryReproduce(o *Organism, neighbors []*Organism) *Organism {
	if !o.ReadyToMate() {
		return nil
	}

	switch o.Type {
	case TypeUnicellular:
		if partner := o.nearestMate(neighbors); partner != nil && w.rng.Float64() < 0.2 {
			return w.ReproduceConjugation(o, partner)
		}
		return w.ReproduceAsexual(o)

	case TypePlant:
		if partner := o.nearestMate(neighbors); partner != nil {
			return w.ReproduceSexual(o, partner)
		}
		// Self-pollination is seasonal: strongest in spring and summer.
		chance := 0.15
		if w.Season == 0 || w.Season == 1 {
			chance = 0.3
		}
		if w.rng.Float64() < chance*w.cfg.Simulation.Reproduction {
			return w.ReproduceSelfPollination(o)
		}
		return nil

	default:
		partner := o.nearestMate(neighbors)
		if partner == nil {
			// Hybridization: a ready same-type neighbor of another species
			// can still qualify when no conspecific is in range.
			partner = o.nearestHybridMate(neighbors)
		}
		if partner == nil {
			return nil
		}
		return w.ReproduceSexual(o, partner)
	}
}

// nearestHybridMate finds the closest ready same-type organism regardless of
// species.
func (o *Organism) nearestHybridMate(neighbors []*Organism) *Organism {
	var nearest *Organism
	bestDist := math.Inf(1)
	for _, n := range neighbors {
		if n == o || !n.IsAlive || n.Type != o.Type || !n.ReadyToMate() {
			continue
		}
		if d := o.Position.DistanceTo(n.Position); d < bestDist {
			nearest, bestDist = n, d
		}
	}
	return nearest
}
