package main

import (
	"math"
	"math/rand"
)

// ResourceKind indexes the per-cell resource vector.
type ResourceKind int

const (
	ResourceSunlight ResourceKind = iota
	ResourceWater
	ResourceMinerals
	ResourceOxygen
	ResourceCO2
	ResourceOrganicMatter
	resourceKindCount
)

var resourceNames = [resourceKindCount]string{
	"sunlight", "water", "minerals", "oxygen", "co2", "organic_matter",
}

func (r ResourceKind) String() string {
	if r < 0 || r >= resourceKindCount {
		return "unknown"
	}
	return resourceNames[r]
}

// ResourceVector holds one value per resource kind.
type ResourceVector [resourceKindCount]float64

// diffusionRates gives the per-tick fraction of a concentration difference
// that flows between neighbors. Sunlight and minerals do not diffuse:
// sunlight is imposed from above, minerals move only through decomposition.
var diffusionRates = ResourceVector{
	ResourceSunlight:      0,
	ResourceWater:         0.05,
	ResourceMinerals:      0,
	ResourceOxygen:        0.08,
	ResourceCO2:           0.08,
	ResourceOrganicMatter: 0,
}

// defaultResourceCapacity is the baseline capacity before biome modifiers.
const defaultResourceCapacity = 100.0

// WorldCell is one tile of the world grid.
type WorldCell struct {
	X int `json:"x"` // grid coordinates
	Y int `json:"y"`

	Biome       BiomeType `json:"biome"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Altitude    float64   `json:"altitude"`  // -1 (ocean floor) to 1 (peaks)
	RiverLevel  float64   `json:"river"`     // >0.5 river, >0.8 main river
	Stability   float64   `json:"stability"` // 0-1, lower means larger random swings
	Radiation   float64   `json:"radiation"` // mutagen exposure, usually 0
	Toxicity    float64   `json:"toxicity"`

	Resources ResourceVector `json:"resources"`
	Capacity  ResourceVector `json:"capacity"`

	regenRate float64
}

// NewWorldCell creates a cell with capacities and starting resources drawn
// from the biome profile, with a small noise band so identical biomes do not
// start identical.
func NewWorldCell(x, y int, biome BiomeType, altitude, humidity, temperature float64, rng *rand.Rand) *WorldCell {
	profile := biomeProfiles[biome]
	cell := &WorldCell{
		X:           x,
		Y:           y,
		Biome:       biome,
		Temperature: temperature,
		Humidity:    humidity,
		Altitude:    altitude,
		Stability:   profile.Stability,
		regenRate:   0.5 + 0.5*profile.OrganicGrowth,
	}
	for r := ResourceKind(0); r < resourceKindCount; r++ {
		noise := 1 + (rng.Float64()*0.3 - 0.15)
		cell.Capacity[r] = defaultResourceCapacity * profile.ResourceModifiers[r] * noise
		cell.Resources[r] = cell.Capacity[r] * (0.4 + rng.Float64()*0.4)
	}
	if biome == BiomeVolcanic {
		cell.Radiation = 0.2 + rng.Float64()*0.3
		cell.Toxicity = 0.3 + rng.Float64()*0.3
	}
	return cell
}

// SetResource clamps a resource into [0, capacity] and stores it.
func (c *WorldCell) SetResource(r ResourceKind, v float64) {
	c.Resources[r] = clampRange(v, 0, c.Capacity[r])
}

// AddResource adds (or removes, for negative amounts) a resource, clamped to
// the legal range. It returns the amount actually applied.
func (c *WorldCell) AddResource(r ResourceKind, amount float64) float64 {
	before := c.Resources[r]
	c.SetResource(r, before+amount)
	return c.Resources[r] - before
}

// TakeResource removes up to amount of a resource and returns what was taken.
func (c *WorldCell) TakeResource(r ResourceKind, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	taken := math.Min(amount, c.Resources[r])
	c.Resources[r] -= taken
	return taken
}

// UpdateResources runs one resource step for the cell against its neighbors:
// regeneration, precipitation/evaporation, organic growth, respiration, and
// diffusion. Sunlight is imposed by the world before this is called.
func (c *WorldCell) UpdateResources(dt float64, neighbors []*WorldCell, precipitation float64, rng *rand.Rand) {
	profile := biomeProfiles[c.Biome]

	// Minerals regenerate slowly toward capacity.
	if c.Resources[ResourceMinerals] < c.Capacity[ResourceMinerals] {
		c.AddResource(ResourceMinerals, c.regenRate*0.1*dt)
	}

	c.updateWater(dt, neighbors, precipitation, rng)
	c.growOrganicMatter(dt, profile)

	// Respiration slowly converts oxygen back to CO2.
	respired := c.TakeResource(ResourceOxygen, c.Resources[ResourceOxygen]*0.001*dt)
	c.AddResource(ResourceCO2, respired)

	c.diffuse(dt, neighbors)
}

// updateWater applies groundwater replenishment, precipitation and
// evaporation.
func (c *WorldCell) updateWater(dt float64, neighbors []*WorldCell, precipitation float64, rng *rand.Rand) {
	// Water-covered biomes refill themselves; land cells seep groundwater in
	// proportion to their humidity.
	if c.Biome.IsAquatic() {
		if c.Resources[ResourceWater] < c.Capacity[ResourceWater]*0.8 {
			c.AddResource(ResourceWater, c.Capacity[ResourceWater]*0.05*dt)
		}
	} else {
		c.AddResource(ResourceWater, c.Humidity*2*dt)
	}

	// Precipitation favors low altitude and cells surrounded by water.
	wetNeighbors := 0
	for _, n := range neighbors {
		if n.Biome.IsAquatic() {
			wetNeighbors++
		}
	}
	rainChance := precipitation * (0.3 + 0.1*float64(wetNeighbors)) * (1 - 0.3*math.Max(0, c.Altitude))
	if rng.Float64() < rainChance*dt {
		c.AddResource(ResourceWater, (2+rng.Float64()*3)*dt)
	}

	// Evaporation above 25°C; part of the lost water lands on neighbors.
	if c.Temperature > 25 && c.Resources[ResourceWater] > 0 {
		lost := c.TakeResource(ResourceWater, c.Resources[ResourceWater]*0.002*(c.Temperature-25)*dt)
		if len(neighbors) > 0 {
			share := lost * 0.5 / float64(len(neighbors))
			for _, n := range neighbors {
				n.AddResource(ResourceWater, share)
			}
		}
	}
}

// growOrganicMatter regrows biomass when water, sunlight and CO2 allow,
// consuming CO2 and releasing oxygen. A trickle of growth applies even under
// poor conditions.
func (c *WorldCell) growOrganicMatter(dt float64, profile biomeProfile) {
	water := c.Resources[ResourceWater]
	sun := c.Resources[ResourceSunlight]
	co2 := c.Resources[ResourceCO2]

	tempFactor := clamp01(1 - math.Abs(c.Temperature-20)/40)
	growth := 0.01 * dt // minimum growth
	if water > 5 && sun > 10 && co2 > 1 {
		growth += 0.03 * math.Min(water/20, 1) * math.Min(sun/40, 1) * tempFactor * profile.OrganicGrowth * dt
		used := c.TakeResource(ResourceCO2, growth*0.3)
		c.AddResource(ResourceOxygen, used)
		c.TakeResource(ResourceWater, growth*0.2)
	}
	c.AddResource(ResourceOrganicMatter, growth*c.Capacity[ResourceOrganicMatter]*0.01)
}

// diffuse moves diffusing resources toward the concentration gradient, with a
// gravity-assisted term for water flowing downhill. Outflow is capped by the
// current stock, inflow by the receiving cell's capacity.
func (c *WorldCell) diffuse(dt float64, neighbors []*WorldCell) {
	for _, n := range neighbors {
		for r := ResourceKind(0); r < resourceKindCount; r++ {
			rate := diffusionRates[r]
			if rate == 0 {
				continue
			}
			flow := (c.Resources[r] - n.Resources[r]) * rate * dt
			if r == ResourceWater {
				if drop := c.Altitude - n.Altitude; drop > 0 {
					flow += drop * 20 * rate * dt
				}
			}
			if flow <= 0 {
				continue
			}
			flow = math.Min(flow, c.Resources[r])
			applied := n.AddResource(r, flow)
			c.Resources[r] -= applied
		}
	}
}

// DepositBiomass deposits decomposing biomass into the cell: half becomes
// organic matter, a fifth minerals, a tenth CO2.
func (c *WorldCell) DepositBiomass(biomass float64) {
	if biomass <= 0 {
		return
	}
	c.AddResource(ResourceOrganicMatter, biomass*0.5)
	c.AddResource(ResourceMinerals, biomass*0.2)
	c.AddResource(ResourceCO2, biomass*0.1)
}

// ApplySeasonMultipliers applies one-shot multiplicative adjustments to the
// stored resource levels on a season change.
func (c *WorldCell) ApplySeasonMultipliers(m ResourceVector) {
	for r := ResourceKind(0); r < resourceKindCount; r++ {
		if m[r] != 0 && m[r] != 1 {
			c.SetResource(r, c.Resources[r]*m[r])
		}
	}
}
