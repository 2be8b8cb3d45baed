package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// adaptationCacheKey caches biome adaptation per organism and cell.
type adaptationCacheKey struct {
	organismID int
	cellX      int
	cellY      int
}

// ratioCacheKey caches prey/predator population ratios per type pair.
type ratioCacheKey struct {
	predator OrganismType
	prey     OrganismType
}

// WorldStatus surfaces recoverable failures without interrupting the run.
type WorldStatus struct {
	LastPersistenceError error `json:"-"`
	Inconsistencies      int   `json:"inconsistencies"`
	TickErrors           int   `json:"tick_errors"`
}

// World owns the cell grid, the organism collection, the spatial index, the
// climate state and all evolutionary bookkeeping. Tick drives everything.
type World struct {
	cfg WorldConfig

	Cells     [][]*WorldCell
	Organisms []*Organism
	byID      map[int]*Organism
	grid      *SpatialGrid

	rng      *rand.Rand
	seed     int64
	taxonomy *Taxonomy
	registry *SpeciesRegistry
	events   *EventBus

	// Cycles and climate.
	TickCount         int
	DayNightCycle     float64 // [0,1)
	YearCycle         float64 // [0,1)
	Season            int     // 0..3
	Year              int
	Day               int
	GlobalTemperature float64
	climateCycle      float64
	Weather           WeatherState
	Disasters         []*Disaster

	// Bookkeeping.
	ExtinctionCount  int
	SpeciationEvents int
	speciesStats     map[OrganismType]*SpeciesTypeStats
	evolutionStats   EvolutionStats

	// Caches, owned by the world and purged on a periodic schedule.
	adaptationCache map[adaptationCacheKey]float64
	ratioCache      map[ratioCacheKey]float64

	status WorldStatus
	nextID int
}

// NewWorld validates the configuration, generates the terrain, and opens the
// species registry.
func NewWorld(cfg WorldConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info().Int64("seed", seed).Msg("world seed")

	w := &World{
		cfg:               cfg,
		byID:              make(map[int]*Organism),
		grid:              NewSpatialGrid(float64(cfg.CellSize)),
		rng:               rng,
		seed:              seed,
		taxonomy:          NewTaxonomy(rng),
		registry:          NewSpeciesRegistry(cfg.RegistryPath),
		events:            NewEventBus(2000),
		GlobalTemperature: 15,
		speciesStats:      make(map[OrganismType]*SpeciesTypeStats),
		adaptationCache:   make(map[adaptationCacheKey]float64),
		ratioCache:        make(map[ratioCacheKey]float64),
		Weather: WeatherState{
			Precipitation: 0.3,
			CloudCover:    0.4,
			WindSpeed:     3,
			WindDirection: rng.Float64() * 2 * math.Pi,
		},
	}

	w.Cells = newWorldGenerator(cfg, seed, rng).Generate()

	if cfg.InitialOrganismCount > 0 {
		w.SpawnRandomOrganisms(cfg.InitialOrganismCount, cfg.normalizedOrganismRatios())
	}
	return w, nil
}

// Bounds returns the world extent in world units.
func (w *World) Bounds() Vec2 {
	return Vec2{
		X: float64(w.cfg.WorldWidth * w.cfg.CellSize),
		Y: float64(w.cfg.WorldHeight * w.cfg.CellSize),
	}
}

// Seed returns the seed the world was generated with.
func (w *World) Seed() int64 {
	return w.seed
}

// Registry exposes the species registry for read access between ticks.
func (w *World) Registry() *SpeciesRegistry {
	return w.registry
}

// Events exposes the milestone stream.
func (w *World) Events() *EventBus {
	return w.events
}

// Status reports recoverable failure counters.
func (w *World) Status() WorldStatus {
	w.status.LastPersistenceError = w.registry.LastError()
	return w.status
}

// CellAt returns the cell under a world position, or nil outside the grid.
func (w *World) CellAt(pos Vec2) *WorldCell {
	x := int(pos.X) / w.cfg.CellSize
	y := int(pos.Y) / w.cfg.CellSize
	if x < 0 || y < 0 || x >= w.cfg.WorldWidth || y >= w.cfg.WorldHeight {
		return nil
	}
	return w.Cells[x][y]
}

// cellCenter returns the world position of a cell's center.
func (w *World) cellCenter(cell *WorldCell) Vec2 {
	size := float64(w.cfg.CellSize)
	return Vec2{X: (float64(cell.X) + 0.5) * size, Y: (float64(cell.Y) + 0.5) * size}
}

// clampIntoBounds keeps a position inside the world.
func (w *World) clampIntoBounds(pos *Vec2) {
	bounds := w.Bounds()
	pos.X = clampRange(pos.X, 0, bounds.X-1e-6)
	pos.Y = clampRange(pos.Y, 0, bounds.Y-1e-6)
}

// jitteredPosition offsets a position by up to radius in each axis, clamped
// into bounds.
func (w *World) jitteredPosition(origin Vec2, radius float64) Vec2 {
	pos := Vec2{
		X: origin.X + (w.rng.Float64()*2-1)*radius,
		Y: origin.Y + (w.rng.Float64()*2-1)*radius,
	}
	w.clampIntoBounds(&pos)
	return pos
}

// richestCellNear scans the cells within radius of pos for the largest stock
// of the target resource. Grids smaller than the radius are handled by bound
// clamping.
func (w *World) richestCellNear(pos Vec2, radius float64, r ResourceKind) *WorldCell {
	size := float64(w.cfg.CellSize)
	minX := maxInt(0, int((pos.X-radius)/size))
	maxX := minInt(w.cfg.WorldWidth-1, int((pos.X+radius)/size))
	minY := maxInt(0, int((pos.Y-radius)/size))
	maxY := minInt(w.cfg.WorldHeight-1, int((pos.Y+radius)/size))

	var best *WorldCell
	bestValue := 0.0
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			if w.Cells[x][y].Resources[r] > bestValue {
				best = w.Cells[x][y]
				bestValue = best.Resources[r]
			}
		}
	}
	return best
}

// localDensity counts live organisms of one type within radius.
func (w *World) localDensity(pos Vec2, radius float64, t OrganismType) int {
	count := 0
	for _, o := range w.grid.QueryRadius(pos, radius) {
		if o.IsAlive && o.Type == t {
			count++
		}
	}
	return count
}

func (w *World) nextOrganismID() int {
	w.nextID++
	return w.nextID
}

// SpawnRandomOrganisms seeds the population with founders distributed by the
// given type weights. Each founder gets its own species record.
func (w *World) SpawnRandomOrganisms(count int, typeWeights [organismTypeCount]float64) {
	bounds := w.Bounds()
	for i := 0; i < count; i++ {
		t := w.sampleOrganismType(typeWeights)
		pos := Vec2{X: w.rng.Float64() * bounds.X, Y: w.rng.Float64() * bounds.Y}

		// Founders prefer survivable ground: land types retry water
		// placements a few times.
		for attempt := 0; attempt < 5 && t != TypeUnicellular; attempt++ {
			cell := w.CellAt(pos)
			if cell == nil || !cell.Biome.IsAquatic() {
				break
			}
			pos = Vec2{X: w.rng.Float64() * bounds.X, Y: w.rng.Float64() * bounds.Y}
		}

		o := RandomOrganism(w.nextOrganismID(), t, pos, w.rng)
		o.SpeciesID = newSpeciesID()
		o.TaxonomyID = w.taxonomy.Classify(t, "", 0, 0)
		w.AddOrganism(o)
	}
}

func (w *World) sampleOrganismType(weights [organismTypeCount]float64) OrganismType {
	var total float64
	for _, weight := range weights {
		total += weight
	}
	if total <= 0 {
		return OrganismType(w.rng.Intn(int(organismTypeCount)))
	}
	roll := w.rng.Float64() * total
	for t, weight := range weights {
		roll -= weight
		if roll <= 0 {
			return OrganismType(t)
		}
	}
	return TypeUnicellular
}

// AddOrganism inserts an organism into the collection, the spatial index and
// the species bookkeeping, enforcing the population cap by culling the
// weakest first.
func (w *World) AddOrganism(o *Organism) {
	if len(w.Organisms) >= w.cfg.MaxOrganisms {
		w.cullWeakest(len(w.Organisms) - w.cfg.MaxOrganisms + 1)
	}

	w.Organisms = append(w.Organisms, o)
	w.byID[o.ID] = o
	w.grid.Add(o)
	w.registerSpecies(o)
}

// registerSpecies makes sure the organism's species exists in the registry,
// generating names and first-appearance metadata for new species.
func (w *World) registerSpecies(o *Organism) {
	if record := w.registry.Get(o.SpeciesID); record != nil {
		w.registry.Register(o.SpeciesID, record.ScientificName, record.CommonName, o.Type, record.ParentSpeciesID, record.Traits)
		return
	}

	taxonomyRecord, ok := w.taxonomy.Get(o.TaxonomyID)
	if !ok {
		o.TaxonomyID = w.taxonomy.Classify(o.Type, "", 0, 0)
		taxonomyRecord, _ = w.taxonomy.Get(o.TaxonomyID)
	}
	scientific := taxonomyRecord.ScientificName()
	common := fmt.Sprintf("%s %s", taxonomyRecord.Ranks[RankGenus], shortID(o.SpeciesID))
	w.registry.Register(o.SpeciesID, scientific, common, o.Type, "", RandomSpeciesTraits(o.Type, w.rng))
}

// recordSpeciation wires a freshly speciated offspring into the registry and
// milestone stream. Called by buildOffspring before the offspring is added.
func (w *World) recordSpeciation(offspring *Organism, parentSpeciesID string, mode ReproductionMode) {
	taxonomyRecord, _ := w.taxonomy.Get(offspring.TaxonomyID)
	scientific := taxonomyRecord.ScientificName()
	common := fmt.Sprintf("%s %s", taxonomyRecord.Ranks[RankGenus], shortID(offspring.SpeciesID))
	record := w.registry.Register(offspring.SpeciesID, scientific, common, offspring.Type, parentSpeciesID, RandomSpeciesTraits(offspring.Type, w.rng))
	// The founder itself is counted when it enters the world via AddOrganism.
	record.PopulationCount = 0

	w.SpeciationEvents++
	pos := offspring.Position
	w.events.Emit(Milestone{
		Tick:        w.TickCount,
		Year:        w.Year,
		Kind:        MilestoneSpeciation,
		SpeciesID:   offspring.SpeciesID,
		Position:    &pos,
		Description: fmt.Sprintf("%s branched from %s via %s", scientific, shortID(parentSpeciesID), mode),
	})
}

// Tick advances the world by dt seconds of simulated time. The method is
// synchronous: callers observe the whole tick atomically.
func (w *World) Tick(dt float64) {
	w.TickCount++

	w.advanceCycles(dt)
	w.updateWeather(dt)
	w.updateDisasters(dt)
	w.updateGlobalTemperature()
	w.updateActiveCells(dt)

	// Spatial maintenance. Rebuild cadence stretches as population grows.
	rebuildEvery := 50 + len(w.Organisms)/200
	if w.TickCount%rebuildEvery == 0 {
		if corrected := w.grid.Rebuild(w.Organisms); corrected > 0 {
			w.status.Inconsistencies += corrected
			log.Debug().Int("corrected", corrected).Msg("spatial grid rebuild corrected stale buckets")
		}
		w.purgeCaches()
	}

	w.updateOrganisms(dt)

	if len(w.Organisms) > w.cfg.MaxOrganisms {
		w.cullWeakest(len(w.Organisms) - w.cfg.MaxOrganisms)
	}

	// Statistics cadence stretches with population; the heavy evolutionary
	// pass runs at a tenth of that rate.
	statsEvery := 10 + len(w.Organisms)/1000
	if w.TickCount%statsEvery == 0 {
		w.computeSpeciesStats()
	}
	if w.TickCount%(statsEvery*10) == 0 {
		w.computeEvolutionStats()
	}
}

// advanceCycles moves the day/night and year cycles, emitting day, year and
// season transitions.
func (w *World) advanceCycles(dt float64) {
	w.DayNightCycle += dt / DayLength
	for w.DayNightCycle >= 1 {
		w.DayNightCycle -= 1
		w.Day++
		w.computeSpeciesStats() // daily snapshot
	}

	w.YearCycle += dt / YearLength
	for w.YearCycle >= 1 {
		w.YearCycle -= 1
		w.Year++
	}

	season := int(w.YearCycle * SeasonsCount)
	if season >= SeasonsCount {
		season = SeasonsCount - 1
	}
	if season != w.Season {
		w.Season = season
		w.events.Emit(Milestone{
			Tick:        w.TickCount,
			Year:        w.Year,
			Kind:        MilestoneSeasonChange,
			Description: fmt.Sprintf("%s begins in year %d", seasonNames[season], w.Year),
		})
		w.applySeasonChange(season)
	}
}

// seasonResourceMultipliers are the one-shot adjustments applied to stored
// resource levels when a season turns.
var seasonResourceMultipliers = [SeasonsCount]ResourceVector{
	{ResourceSunlight: 1.1, ResourceWater: 1.2, ResourceOrganicMatter: 1.15}, // spring
	{ResourceSunlight: 1.2, ResourceWater: 0.85, ResourceOrganicMatter: 1},   // summer
	{ResourceSunlight: 0.9, ResourceWater: 1.05, ResourceOrganicMatter: 0.9}, // autumn
	{ResourceSunlight: 0.75, ResourceWater: 1, ResourceOrganicMatter: 0.7},   // winter
}

func (w *World) applySeasonChange(season int) {
	multipliers := seasonResourceMultipliers[season%SeasonsCount]
	for x := 0; x < w.cfg.WorldWidth; x++ {
		for y := 0; y < w.cfg.WorldHeight; y++ {
			w.Cells[x][y].ApplySeasonMultipliers(multipliers)
		}
	}
}

func (w *World) updateWeather(dt float64) {
	w.Weather.Update(w.Season, w.cfg.Climate.Variability, w.rng)
	if d := maybeSpawnDisaster(w.Season, w.Bounds(), w.cfg.Climate.Variability, w.rng); d != nil {
		w.Disasters = append(w.Disasters, d)
		pos := d.Center
		w.events.Emit(Milestone{
			Tick:        w.TickCount,
			Year:        w.Year,
			Kind:        MilestoneDisaster,
			Position:    &pos,
			Description: d.String(),
		})
		log.Info().Str("disaster", d.Kind.String()).Msg("extreme weather event")
	}
}

func (w *World) updateDisasters(dt float64) {
	size := float64(w.cfg.CellSize)
	active := w.Disasters[:0]
	for _, d := range w.Disasters {
		d.Remaining -= dt
		if d.Remaining <= 0 {
			continue
		}
		active = append(active, d)

		minX := maxInt(0, int((d.Center.X-d.Radius)/size))
		maxX := minInt(w.cfg.WorldWidth-1, int((d.Center.X+d.Radius)/size))
		minY := maxInt(0, int((d.Center.Y-d.Radius)/size))
		maxY := minInt(w.cfg.WorldHeight-1, int((d.Center.Y+d.Radius)/size))
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				cell := w.Cells[x][y]
				if w.cellCenter(cell).DistanceTo(d.Center) <= d.Radius {
					d.applyToCell(cell, dt)
				}
			}
		}
	}
	w.Disasters = active
}

// updateGlobalTemperature combines a long-period climate sinusoid with the
// annual cycle around a 15°C baseline.
func (w *World) updateGlobalTemperature() {
	w.climateCycle += 1.0 / (YearLength * 40)
	longPeriod := math.Sin(w.climateCycle*2*math.Pi) * 3
	annual := math.Sin(w.YearCycle*2*math.Pi) * 5
	w.GlobalTemperature = (15 + longPeriod + annual) * w.cfg.Climate.Temperature
}

// activeCellCap bounds the per-tick cell work regardless of population
// spread.
const activeCellCap = 4096

// updateActiveCells updates sunlight, temperature and resources for cells in
// the one-step neighborhood of any live organism.
func (w *World) updateActiveCells(dt float64) {
	active := make(map[*WorldCell]bool)
	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		cx := int(o.Position.X) / w.cfg.CellSize
		cy := int(o.Position.Y) / w.cfg.CellSize
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				x, y := cx+dx, cy+dy
				if x >= 0 && y >= 0 && x < w.cfg.WorldWidth && y < w.cfg.WorldHeight {
					active[w.Cells[x][y]] = true
				}
			}
		}
		if len(active) >= activeCellCap {
			break
		}
	}

	daylight := math.Max(0, math.Sin(w.DayNightCycle*2*math.Pi))
	seasonSun := seasonResourceMultipliers[w.Season][ResourceSunlight]
	sunFactor := daylight * seasonSun * (1 - 0.5*w.Weather.CloudCover)

	for cell := range active {
		cell.SetResource(ResourceSunlight, cell.Capacity[ResourceSunlight]*sunFactor)
		profile := biomeProfiles[cell.Biome]
		cell.Temperature = profile.BaseTemperature + (w.GlobalTemperature - 15) - cell.Altitude*8
		cell.UpdateResources(dt, w.neighborsOf(cell), w.Weather.Precipitation, w.rng)
	}
}

// neighborsOf returns the up-to-eight adjacent cells.
func (w *World) neighborsOf(cell *WorldCell) []*WorldCell {
	neighbors := make([]*WorldCell, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := cell.X+dx, cell.Y+dy
			if x >= 0 && y >= 0 && x < w.cfg.WorldWidth && y < w.cfg.WorldHeight {
				neighbors = append(neighbors, w.Cells[x][y])
			}
		}
	}
	return neighbors
}

// updateRatio selects the level-of-detail fraction of organisms updated this
// tick based on total population.
func updateRatio(count int) float64 {
	switch {
	case count <= 5000:
		return 1.0
	case count <= 10000:
		return 0.5
	case count <= 15000:
		return 0.25
	default:
		return 0.1
	}
}

// reproductionLimit bounds offspring per tick, shrinking as the population
// grows.
func reproductionLimit(count int) int {
	if count <= 0 {
		return 100
	}
	limit := 2000 / math.Pow(float64(count), 0.7)
	return int(clampRange(limit, 10, 100))
}

// updateOrganisms runs the per-organism phase: decomposition of the dead,
// decision and physiology for the living, selection pressure, reproduction
// under the tick budget, and predation.
func (w *World) updateOrganisms(dt float64) {
	ratio := updateRatio(len(w.Organisms))
	selected := w.Organisms
	if ratio < 1 {
		selected = make([]*Organism, 0, int(float64(len(w.Organisms))*ratio)+1)
		for _, o := range w.Organisms {
			if w.rng.Float64() < ratio {
				selected = append(selected, o)
			}
		}
	}

	reproBudget := reproductionLimit(len(w.Organisms))
	var offspring []*Organism
	var decomposed []*Organism

	for _, o := range selected {
		if !o.IsAlive {
			if w.rng.Float64() < 0.1*dt {
				if cell := w.CellAt(o.Position); cell != nil {
					cell.DepositBiomass(o.Biomass())
				}
				decomposed = append(decomposed, o)
			}
			continue
		}

		// A fault in one organism is counted and skipped, never raised
		// through the tick boundary.
		func() {
			defer func() {
				if r := recover(); r != nil {
					w.status.TickErrors++
					log.Error().Interface("panic", r).Int("organism", o.ID).Msg("organism update failed, skipped for this tick")
				}
			}()

			w.grid.UpdatePosition(o)
			neighbors := w.grid.QueryRadius(o.Position, o.Phenotype.VisionRange)

			o.Decide(w, neighbors)
			o.UpdatePhysiology(dt, w)
			if !o.IsAlive {
				return
			}

			w.applySelectionPressure(o, dt)

			if reproBudget > 0 && o.ReadyToMate() {
				if child := w.tryReproduce(o, neighbors); child != nil {
					offspring = append(offspring, child)
					reproBudget--
				}
			}

			w.applyPredation(o, neighbors, dt)
		}()
	}

	for _, o := range decomposed {
		w.removeOrganism(o)
	}
	for _, child := range offspring {
		w.AddOrganism(child)
	}
}

// removeOrganism deletes a decomposed organism from the collection and index.
func (w *World) removeOrganism(o *Organism) {
	w.grid.Remove(o)
	delete(w.byID, o.ID)
	for i, other := range w.Organisms {
		if other == o {
			w.Organisms[i] = w.Organisms[len(w.Organisms)-1]
			w.Organisms = w.Organisms[:len(w.Organisms)-1]
			return
		}
	}
}

// biomeAdaptation scores how well an organism fits its current cell,
// combining the fixed type/biome base, a generation bonus, temperature match
// and resource availability. Cached per organism and cell until the next
// cache purge.
func (w *World) biomeAdaptation(o *Organism, cell *WorldCell) float64 {
	key := adaptationCacheKey{organismID: o.ID, cellX: cell.X, cellY: cell.Y}
	if cached, ok := w.adaptationCache[key]; ok {
		return cached
	}

	base := BiomeAdaptationBase(o.Type, cell.Biome)
	generationBonus := math.Max(0.2, clamp01(float64(o.Generation)/50)*0.5)
	tempMatch := clamp01(1 - math.Abs(cell.Temperature-o.Phenotype.OptimalTemperature)/
		math.Max(1e-9, o.Phenotype.TemperatureRange))

	var resourceTerm float64
	switch o.Type {
	case TypePlant, TypeUnicellular:
		sun := cell.Resources[ResourceSunlight] / math.Max(1e-9, cell.Capacity[ResourceSunlight])
		water := cell.Resources[ResourceWater] / math.Max(1e-9, cell.Capacity[ResourceWater])
		resourceTerm = (sun + water) / 2
	case TypeHerbivore:
		resourceTerm = cell.Resources[ResourceOrganicMatter] / math.Max(1e-9, cell.Capacity[ResourceOrganicMatter])
	default:
		resourceTerm = 0.6
	}

	score := base*0.5 + generationBonus*0.15 + tempMatch*0.2 + clamp01(resourceTerm)*0.15
	score = clamp01(score)

	w.adaptationCache[key] = score
	return score
}

// applySelectionPressure taxes poorly adapted or crowded organisms and
// rewards well-adapted or rare ones.
func (w *World) applySelectionPressure(o *Organism, dt float64) {
	cell := w.CellAt(o.Position)
	if cell == nil {
		return
	}
	adaptation := w.biomeAdaptation(o, cell)
	o.AdaptationScore = adaptation

	pressure := w.cfg.Simulation.SelectionPressure
	if adaptation < 0.2 {
		o.Health = clampRange(o.Health-(0.2-adaptation)*5*pressure*dt, 0, 100)
	} else if adaptation > 0.7 {
		o.Health = clampRange(o.Health+(adaptation-0.7)*2*dt, 0, 100)
	}

	sameType := w.localDensity(o.Position, 20, o.Type)
	if sameType > 15 {
		excess := float64(sameType-15) / 15
		o.Energy = math.Max(0, o.Energy-excess*1*w.cfg.Simulation.Competition*dt)
	} else if sameType < 5 && o.Energy < o.Phenotype.EnergyCapacity*0.8 {
		o.Energy = math.Min(o.Phenotype.EnergyCapacity, o.Energy+0.5*dt)
	}

	if o.Health <= 0 {
		o.Die()
	}
}

// preyPredatorRatio returns the cached global prey/predator count ratio for a
// type pair. The cache refreshes every 10 ticks and fully every 100: an
// intentional approximation.
func (w *World) preyPredatorRatio(predator, prey OrganismType) float64 {
	key := ratioCacheKey{predator: predator, prey: prey}
	if w.TickCount%10 != 0 {
		if cached, ok := w.ratioCache[key]; ok {
			return cached
		}
	}

	var predators, preyCount int
	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		switch o.Type {
		case predator:
			predators++
		case prey:
			preyCount++
		}
	}
	ratio := float64(preyCount) / math.Max(1, float64(predators))
	w.ratioCache[key] = ratio
	return ratio
}

// idealPreyRatio is the prey-per-predator ratio attacks are balanced around.
const idealPreyRatio = 4.0

// applyPredation lets predators strike prey within close range, modulated by
// the global prey/predator balance. In prey-starved regimes nearby prey get a
// small health boost instead.
func (w *World) applyPredation(o *Organism, neighbors []*Organism, dt float64) {
	if o.Type != TypeCarnivore && o.Type != TypeOmnivore {
		return
	}
	for _, target := range neighbors {
		if !target.IsAlive || !isPreyOf(o.Type, target.Type) {
			continue
		}
		if o.Position.DistanceTo(target.Position) > 2 {
			continue
		}

		ratio := w.preyPredatorRatio(o.Type, target.Type)
		if ratio < idealPreyRatio*0.5 {
			// Prey are scarce: ease off and let stocks recover.
			for _, ally := range neighbors {
				if ally.IsAlive && ally.Type == target.Type {
					ally.Health = clampRange(ally.Health+0.5*dt, 0, 100)
				}
			}
			return
		}

		chance := clamp01(ratio/idealPreyRatio*0.5) * w.cfg.Simulation.Predation
		if w.rng.Float64() < chance {
			o.Attack(target)
		}
		return
	}
}

// cullWeakest removes the count lowest-adaptation organisms.
func (w *World) cullWeakest(count int) {
	if count <= 0 || len(w.Organisms) == 0 {
		return
	}
	// Partial selection: find the weakest repeatedly; cull counts are small
	// relative to the population.
	for n := 0; n < count && len(w.Organisms) > 0; n++ {
		weakest := 0
		for i, o := range w.Organisms {
			if o.AdaptationScore < w.Organisms[weakest].AdaptationScore {
				weakest = i
			}
		}
		o := w.Organisms[weakest]
		w.grid.Remove(o)
		delete(w.byID, o.ID)
		w.Organisms[weakest] = w.Organisms[len(w.Organisms)-1]
		w.Organisms = w.Organisms[:len(w.Organisms)-1]
	}
}

// purgeCaches empties the per-window caches.
func (w *World) purgeCaches() {
	w.adaptationCache = make(map[adaptationCacheKey]float64)
	w.ratioCache = make(map[ratioCacheKey]float64)
}

// --- Snapshot accessors (read-only, for hosts between ticks) ---

// CellsInRect returns the cells overlapping a world-unit rectangle.
func (w *World) CellsInRect(minX, minY, maxX, maxY float64) []*WorldCell {
	size := float64(w.cfg.CellSize)
	x0 := maxInt(0, int(minX/size))
	x1 := minInt(w.cfg.WorldWidth-1, int(maxX/size))
	y0 := maxInt(0, int(minY/size))
	y1 := minInt(w.cfg.WorldHeight-1, int(maxY/size))

	var cells []*WorldCell
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			cells = append(cells, w.Cells[x][y])
		}
	}
	return cells
}

// OrganismsInRect lists live organisms inside a world-unit rectangle.
func (w *World) OrganismsInRect(minX, minY, maxX, maxY float64) []*Organism {
	var result []*Organism
	for _, o := range w.Organisms {
		if o.IsAlive &&
			o.Position.X >= minX && o.Position.X <= maxX &&
			o.Position.Y >= minY && o.Position.Y <= maxY {
			result = append(result, o)
		}
	}
	return result
}

// OrganismsInRadius lists live organisms within radius of a point.
func (w *World) OrganismsInRadius(pos Vec2, radius float64) []*Organism {
	var result []*Organism
	for _, o := range w.grid.QueryRadius(pos, radius) {
		if o.IsAlive {
			result = append(result, o)
		}
	}
	return result
}

// OrganismByID returns the organism with the given ID, or nil.
func (w *World) OrganismByID(id int) *Organism {
	return w.byID[id]
}

// SpeciesStats returns the per-type aggregates from the latest statistics
// pass.
func (w *World) SpeciesStats() map[OrganismType]*SpeciesTypeStats {
	return w.speciesStats
}

// EvolutionStats returns the latest heavy statistics pass.
func (w *World) EvolutionStats() EvolutionStats {
	return w.evolutionStats
}

// LiveCount returns the number of live organisms.
func (w *World) LiveCount() int {
	count := 0
	for _, o := range w.Organisms {
		if o.IsAlive {
			count++
		}
	}
	return count
}
