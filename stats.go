package main

import (
	"gonum.org/v1/gonum/stat"
)

// SpeciesTypeStats aggregates the live population of one organism type.
type SpeciesTypeStats struct {
	Count         int     `json:"count"`
	SpeciesCount  int     `json:"species_count"`
	MeanEnergy    float64 `json:"mean_energy"`
	MeanHealth    float64 `json:"mean_health"`
	MeanAge       float64 `json:"mean_age"`
	MaxGeneration int     `json:"max_generation"`
}

// DominantSpecies identifies the leading species of one organism type: the
// highest population weighted by mean adaptation.
type DominantSpecies struct {
	SpeciesID      string  `json:"species_id"`
	ScientificName string  `json:"scientific_name"`
	Population     int     `json:"population"`
	MeanAdaptation float64 `json:"mean_adaptation"`
	Score          float64 `json:"score"`
}

// EvolutionStats is the slower, heavier statistics pass.
type EvolutionStats struct {
	DominantByType        map[string]DominantSpecies `json:"dominant_by_type"`
	MeanAdaptationByBiome map[string]float64         `json:"mean_adaptation_by_biome"`
	AdaptationStdDev      float64                    `json:"adaptation_stddev"`
}

// computeSpeciesStats refreshes the per-type aggregates and the per-species
// population counts in the registry from the authoritative organism list.
func (w *World) computeSpeciesStats() {
	byType := make(map[OrganismType]*SpeciesTypeStats)
	for _, t := range AllOrganismTypes() {
		byType[t] = &SpeciesTypeStats{}
	}
	populations := make(map[string]int)
	generations := make(map[string]int)
	speciesByType := make(map[OrganismType]map[string]bool)

	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		s := byType[o.Type]
		s.Count++
		s.MeanEnergy += o.Energy
		s.MeanHealth += o.Health
		s.MeanAge += o.Age
		if o.Generation > s.MaxGeneration {
			s.MaxGeneration = o.Generation
		}
		populations[o.SpeciesID]++
		if o.Generation > generations[o.SpeciesID] {
			generations[o.SpeciesID] = o.Generation
		}
		if speciesByType[o.Type] == nil {
			speciesByType[o.Type] = make(map[string]bool)
		}
		speciesByType[o.Type][o.SpeciesID] = true
	}

	for t, s := range byType {
		if s.Count > 0 {
			s.MeanEnergy /= float64(s.Count)
			s.MeanHealth /= float64(s.Count)
			s.MeanAge /= float64(s.Count)
		}
		s.SpeciesCount = len(speciesByType[t])
	}
	w.speciesStats = byType

	// Push live counts into the registry; a species dropping to zero is
	// marked extinct there exactly once.
	for _, record := range w.registry.All() {
		if record.Extinct {
			continue
		}
		count := populations[record.SpeciesID]
		w.registry.Update(record.SpeciesID, count, generations[record.SpeciesID], "")
		if record.Extinct {
			w.ExtinctionCount++
			w.events.Emit(Milestone{
				Tick:        w.TickCount,
				Year:        w.Year,
				Kind:        MilestoneExtinction,
				SpeciesID:   record.SpeciesID,
				Description: record.ScientificName + " went extinct",
			})
		}
	}
}

// computeEvolutionStats runs the heavier pass: dominant species per type and
// mean adaptation per biome.
func (w *World) computeEvolutionStats() {
	type speciesAgg struct {
		population int
		adaptation []float64
		t          OrganismType
	}
	bySpecies := make(map[string]*speciesAgg)
	adaptationByBiome := make(map[string][]float64)
	var allAdaptation []float64

	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		agg := bySpecies[o.SpeciesID]
		if agg == nil {
			agg = &speciesAgg{t: o.Type}
			bySpecies[o.SpeciesID] = agg
		}
		agg.population++
		agg.adaptation = append(agg.adaptation, o.AdaptationScore)
		allAdaptation = append(allAdaptation, o.AdaptationScore)

		if cell := w.CellAt(o.Position); cell != nil {
			name := cell.Biome.String()
			adaptationByBiome[name] = append(adaptationByBiome[name], o.AdaptationScore)
		}
	}

	stats := EvolutionStats{
		DominantByType:        make(map[string]DominantSpecies),
		MeanAdaptationByBiome: make(map[string]float64),
	}
	for id, agg := range bySpecies {
		mean := stat.Mean(agg.adaptation, nil)
		score := float64(agg.population) * mean
		current, exists := stats.DominantByType[agg.t.String()]
		if !exists || score > current.Score {
			name := ""
			if record := w.registry.Get(id); record != nil {
				name = record.ScientificName
			}
			stats.DominantByType[agg.t.String()] = DominantSpecies{
				SpeciesID:      id,
				ScientificName: name,
				Population:     agg.population,
				MeanAdaptation: mean,
				Score:          score,
			}
		}
	}
	for biome, values := range adaptationByBiome {
		stats.MeanAdaptationByBiome[biome] = stat.Mean(values, nil)
	}
	if len(allAdaptation) > 1 {
		stats.AdaptationStdDev = stat.StdDev(allAdaptation, nil)
	}
	w.evolutionStats = stats
}
