package main

import (
	"testing"
)

func TestNewWorldValidatesConfig(t *testing.T) {
	bad := []func(*WorldConfig){
		func(c *WorldConfig) { c.WorldWidth = 0 },
		func(c *WorldConfig) { c.WorldHeight = -3 },
		func(c *WorldConfig) { c.CellSize = 0 },
		func(c *WorldConfig) { c.MaxOrganisms = 0 },
		func(c *WorldConfig) { c.InitialOrganismCount = -1 },
		func(c *WorldConfig) { c.OrganismRatios = map[string]float64{"dragon": 1} },
		func(c *WorldConfig) { c.OrganismRatios = map[string]float64{"plant": -1} },
		func(c *WorldConfig) { c.BiomeRatios = map[string]float64{"lava": 1} },
		func(c *WorldConfig) { c.Climate.SeaLevel = 0.5 },
	}
	for i, corrupt := range bad {
		cfg := DefaultWorldConfig()
		cfg.RegistryPath = ""
		corrupt(&cfg)
		if _, err := NewWorld(cfg); err == nil {
			t.Errorf("case %d: invalid config accepted", i)
		}
	}
}

func TestWorldGeneratesFullGrid(t *testing.T) {
	w := newTestWorld(t, 30, 20, 50)
	if len(w.Cells) != 30 || len(w.Cells[0]) != 20 {
		t.Fatalf("grid is %dx%d, expected 30x20", len(w.Cells), len(w.Cells[0]))
	}
	for x := range w.Cells {
		for y := range w.Cells[x] {
			cell := w.Cells[x][y]
			if cell == nil {
				t.Fatalf("nil cell at %d,%d", x, y)
			}
			if cell.Altitude < -1 || cell.Altitude > 1 {
				t.Errorf("altitude out of range at %d,%d: %f", x, y, cell.Altitude)
			}
			for r := ResourceKind(0); r < resourceKindCount; r++ {
				if cell.Resources[r] < 0 || cell.Resources[r] > cell.Capacity[r] {
					t.Errorf("resource %s out of range at %d,%d", r, x, y)
				}
			}
		}
	}
}

func TestMaxOrganismsEnforcedAfterTick(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize = 10, 10, 20
	cfg.InitialOrganismCount = 60
	cfg.MaxOrganisms = 50
	cfg.RegistryPath = ""
	cfg.Seed = 7
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for tick := 0; tick < 50; tick++ {
		w.Tick(1)
		if len(w.Organisms) > cfg.MaxOrganisms {
			t.Fatalf("tick %d: %d organisms over cap %d", tick, len(w.Organisms), cfg.MaxOrganisms)
		}
	}
}

func TestEveryLiveOrganismIndexedAtItsPosition(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize = 10, 10, 20
	cfg.InitialOrganismCount = 40
	cfg.RegistryPath = ""
	cfg.Seed = 8
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for tick := 0; tick < 30; tick++ {
		w.Tick(1)
	}
	w.grid.Rebuild(w.Organisms)

	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		found := false
		for _, f := range w.grid.QueryRadius(o.Position, 0) {
			if f == o {
				found = true
			}
		}
		if !found {
			t.Errorf("live organism %d not indexed at its own position", o.ID)
		}
	}
}

func TestVisionLargerThanGridStaysInBounds(t *testing.T) {
	// A 2x2 world is far smaller than any vision range; queries and resource
	// scans must clamp instead of indexing out of bounds.
	w := newTestWorld(t, 2, 2, 20)
	o := spawnTestOrganism(w, TypeHerbivore, Vec2{X: 10, Y: 10})
	o.Phenotype.VisionRange = 500

	if best := w.richestCellNear(o.Position, o.Phenotype.VisionRange, ResourceWater); best == nil {
		t.Error("resource scan found nothing on a tiny grid")
	}
	w.Tick(1) // must not panic
}

func TestOffspringGenerationIsMonotone(t *testing.T) {
	w := newTestWorld(t, 5, 5, 20)
	parent := spawnTestOrganism(w, TypeUnicellular, Vec2{X: 50, Y: 50})
	parent.Generation = 7
	parent.Energy = parent.Phenotype.EnergyCapacity
	parent.Maturity = 1
	parent.Health = 100

	child := w.ReproduceAsexual(parent)
	if child == nil {
		t.Fatal("asexual reproduction failed with full energy")
	}
	if child.Generation != 8 {
		t.Errorf("offspring generation %d, expected 8", child.Generation)
	}

	mother := spawnTestOrganism(w, TypeHerbivore, Vec2{X: 50, Y: 50})
	partner := spawnTestOrganism(w, TypeHerbivore, Vec2{X: 50, Y: 50})
	partner.SpeciesID = mother.SpeciesID
	partner.Genome = mother.Genome.Copy() // closely related pair
	partner.Generation = 3
	mother.Generation = 11

	var sexualChild *Organism
	for attempt := 0; attempt < 200 && sexualChild == nil; attempt++ {
		for _, o := range []*Organism{mother, partner} {
			o.Energy = o.Phenotype.EnergyCapacity
			o.Maturity = 1
			o.Health = 100
			o.ReproductionCooldown = 0
			o.OffspringCount = 0
		}
		sexualChild = w.ReproduceSexual(mother, partner)
	}
	if sexualChild == nil {
		t.Fatal("sexual reproduction never succeeded across 200 attempts")
	}
	if sexualChild.Generation != 12 {
		t.Errorf("offspring generation %d, expected max(3,11)+1 = 12", sexualChild.Generation)
	}
}

func TestRegistryPopulationMatchesLiveCounts(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize = 10, 10, 20
	cfg.InitialOrganismCount = 30
	cfg.RegistryPath = ""
	cfg.Seed = 9
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for tick := 0; tick < 60; tick++ {
		w.Tick(1)
	}
	w.computeSpeciesStats()

	live := make(map[string]int)
	for _, o := range w.Organisms {
		if o.IsAlive {
			live[o.SpeciesID]++
		}
	}
	for _, record := range w.registry.All() {
		if record.Extinct {
			continue
		}
		if record.PopulationCount != live[record.SpeciesID] {
			t.Errorf("species %s registry population %d, live count %d",
				shortID(record.SpeciesID), record.PopulationCount, live[record.SpeciesID])
		}
	}
}

func TestSeasonChangeEmitsMilestoneAndMultipliers(t *testing.T) {
	w := newTestWorld(t, 5, 5, 20)
	spawnTestOrganism(w, TypeUnicellular, Vec2{X: 50, Y: 50})

	ticks := int(YearLength/SeasonsCount/10) + 2
	for i := 0; i < ticks; i++ {
		w.Tick(10)
	}
	if len(w.events.ByKind(MilestoneSeasonChange)) == 0 {
		t.Error("no season-change milestone after a quarter year")
	}
	if w.Season == 0 {
		t.Errorf("season did not advance: still %d", w.Season)
	}
}

func TestUpdateRatioSchedule(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{100, 1.0}, {5000, 1.0}, {5001, 0.5}, {10000, 0.5},
		{10001, 0.25}, {15000, 0.25}, {15001, 0.1}, {80000, 0.1},
	}
	for _, c := range cases {
		if got := updateRatio(c.count); got != c.want {
			t.Errorf("updateRatio(%d) = %f, want %f", c.count, got, c.want)
		}
	}
}

func TestReproductionLimitBounds(t *testing.T) {
	for _, count := range []int{0, 1, 10, 100, 1000, 10000, 100000} {
		limit := reproductionLimit(count)
		if limit < 10 || limit > 100 {
			t.Errorf("reproductionLimit(%d) = %d outside [10, 100]", count, limit)
		}
	}
}

func TestSnapshotAccessors(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize = 10, 10, 20
	cfg.InitialOrganismCount = 20
	cfg.RegistryPath = ""
	cfg.Seed = 10
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}

	cells := w.CellsInRect(0, 0, 60, 60)
	if len(cells) == 0 {
		t.Error("CellsInRect returned nothing for a valid rectangle")
	}
	bounds := w.Bounds()
	all := w.OrganismsInRect(0, 0, bounds.X, bounds.Y)
	if len(all) != w.LiveCount() {
		t.Errorf("OrganismsInRect over the full world returned %d of %d", len(all), w.LiveCount())
	}
	for _, o := range all {
		if w.OrganismByID(o.ID) != o {
			t.Errorf("OrganismByID(%d) mismatch", o.ID)
		}
	}
}

func TestBiomeAdaptationScoreClamped(t *testing.T) {
	w := newTestWorld(t, 10, 10, 20)
	for _, orgType := range AllOrganismTypes() {
		o := spawnTestOrganism(w, orgType, Vec2{X: 100, Y: 100})
		for x := 0; x < 10; x++ {
			for y := 0; y < 10; y++ {
				score := w.biomeAdaptation(o, w.Cells[x][y])
				if score < 0 || score > 1 {
					t.Fatalf("adaptation score out of range for %s in %s: %f",
						orgType, w.Cells[x][y].Biome, score)
				}
			}
		}
		w.purgeCaches()
	}
}

func TestFreshWorldReportsCleanStatus(t *testing.T) {
	w := newTestWorld(t, 5, 5, 20)
	status := w.Status()
	if status.LastPersistenceError != nil {
		t.Errorf("fresh in-memory world reports a persistence error: %v", status.LastPersistenceError)
	}
	if status.TickErrors != 0 {
		t.Errorf("fresh world reports %d tick errors", status.TickErrors)
	}
}
