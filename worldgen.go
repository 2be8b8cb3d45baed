package main

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/rs/zerolog/log"
)

// continent is one landmass seed used by the generation pass.
type continent struct {
	center     Vec2
	size       float64
	elongation float64 // anisotropic shape factor
	angle      float64
}

// worldGenerator produces the cell grid from layered noise fields:
// continental influence, altitude, humidity, temperature and rivers.
type worldGenerator struct {
	cfg        WorldConfig
	rng        *rand.Rand
	altitude   *perlin.Perlin
	humidity   *perlin.Perlin
	climate    *perlin.Perlin
	continents []continent
	mountains  []Vec2 // mountain chain anchor points at imagined plate borders
}

// newWorldGenerator seeds the noise fields and places 3-6 continents.
func newWorldGenerator(cfg WorldConfig, seed int64, rng *rand.Rand) *worldGenerator {
	g := &worldGenerator{
		cfg: cfg,
		rng: rng,
		// alpha 2, beta 2, 3 octaves: the standard smooth terrain setup.
		altitude: perlin.NewPerlin(2, 2, 3, seed),
		humidity: perlin.NewPerlin(2, 2, 3, seed+1),
		climate:  perlin.NewPerlin(2, 2, 2, seed+2),
	}

	count := 3 + rng.Intn(4)
	maxDim := float64(maxInt(cfg.WorldWidth, cfg.WorldHeight))
	for i := 0; i < count; i++ {
		g.continents = append(g.continents, continent{
			center: Vec2{
				X: rng.Float64() * float64(cfg.WorldWidth),
				Y: rng.Float64() * float64(cfg.WorldHeight),
			},
			size:       maxDim * (0.15 + rng.Float64()*0.2),
			elongation: 0.6 + rng.Float64()*0.8,
			angle:      rng.Float64() * math.Pi,
		})
	}

	// Mountain chains rise along borders between continent pairs.
	for i := 0; i < len(g.continents); i++ {
		for j := i + 1; j < len(g.continents); j++ {
			a, b := g.continents[i], g.continents[j]
			if a.center.DistanceTo(b.center) < (a.size+b.size)*1.3 {
				mid := Vec2{X: (a.center.X + b.center.X) / 2, Y: (a.center.Y + b.center.Y) / 2}
				g.mountains = append(g.mountains, mid)
			}
		}
	}
	return g
}

// continentalInfluence is ~1 deep inside a landmass and ~0 in open ocean,
// with sigmoid edges roughened by noise.
func (g *worldGenerator) continentalInfluence(x, y float64) float64 {
	influence := 0.0
	for _, c := range g.continents {
		dx, dy := x-c.center.X, y-c.center.Y
		// Rotate into the continent frame and squash one axis.
		rx := dx*math.Cos(c.angle) + dy*math.Sin(c.angle)
		ry := (-dx*math.Sin(c.angle) + dy*math.Cos(c.angle)) / c.elongation
		dist := math.Sqrt(rx*rx + ry*ry)
		edge := (c.size - dist) / (c.size * 0.25)
		influence = math.Max(influence, 1/(1+math.Exp(-edge)))
	}
	// Roughen the coastlines.
	influence += g.altitude.Noise2D(x*0.08, y*0.08) * 0.15
	return clamp01(influence)
}

// mountainInfluence raises altitude near plate-border chains.
func (g *worldGenerator) mountainInfluence(x, y float64) float64 {
	best := 0.0
	for _, m := range g.mountains {
		d := m.DistanceTo(Vec2{X: x, Y: y})
		reach := float64(maxInt(g.cfg.WorldWidth, g.cfg.WorldHeight)) * 0.08
		if d < reach {
			best = math.Max(best, (1-d/reach)*0.6)
		}
	}
	return best
}

// fieldAt computes the four generation fields for a cell.
func (g *worldGenerator) fieldAt(x, y int) (altitude, humidity, temperature float64) {
	fx, fy := float64(x), float64(y)

	continental := g.continentalInfluence(fx, fy)
	noise := g.altitude.Noise2D(fx*0.03, fy*0.03)*0.5 +
		g.altitude.Noise2D(fx*0.09, fy*0.09)*0.3 +
		g.altitude.Noise2D(fx*0.2, fy*0.2)*0.2

	altitude = clampRange(continental*1.2-0.7+noise*0.4+g.mountainInfluence(fx, fy)-g.cfg.Climate.SeaLevel, -1, 1)

	humidity = clamp01((g.humidity.Noise2D(fx*0.04, fy*0.04)+1)/2) * g.cfg.Climate.Humidity
	humidity = clamp01(humidity)

	// Latitude baseline: warm equator at mid-height, cold poles at the edges.
	latitude := math.Abs(fy/float64(g.cfg.WorldHeight)-0.5) * 2
	temperature = (30 - latitude*45 - 0.3*math.Max(0, altitude)*30 +
		g.climate.Noise2D(fx*0.05, fy*0.05)*8) * g.cfg.Climate.Temperature

	return altitude, humidity, temperature
}

// Generate builds the full cell grid.
func (g *worldGenerator) Generate() [][]*WorldCell {
	w, h := g.cfg.WorldWidth, g.cfg.WorldHeight

	altitudes := make([][]float64, w)
	humidities := make([][]float64, w)
	temperatures := make([][]float64, w)
	for x := 0; x < w; x++ {
		altitudes[x] = make([]float64, h)
		humidities[x] = make([]float64, h)
		temperatures[x] = make([]float64, h)
		for y := 0; y < h; y++ {
			altitudes[x][y], humidities[x][y], temperatures[x][y] = g.fieldAt(x, y)
		}
	}

	rivers := g.traceRivers(altitudes)

	cells := make([][]*WorldCell, w)
	for x := 0; x < w; x++ {
		cells[x] = make([]*WorldCell, h)
		for y := 0; y < h; y++ {
			biome := g.classifyBiome(altitudes[x][y], humidities[x][y], temperatures[x][y], rivers[x][y])
			cell := NewWorldCell(x, y, biome, altitudes[x][y], humidities[x][y], temperatures[x][y], g.rng)
			cell.RiverLevel = rivers[x][y]
			for r := ResourceKind(0); r < resourceKindCount; r++ {
				cell.Capacity[r] *= g.cfg.Climate.Resources
				cell.Resources[r] = math.Min(cell.Resources[r]*g.cfg.Climate.Resources, cell.Capacity[r])
			}
			cells[x][y] = cell
		}
	}

	log.Info().
		Int("width", w).Int("height", h).
		Int("continents", len(g.continents)).
		Int("mountain_chains", len(g.mountains)).
		Msg("world generated")

	return cells
}

// traceRivers seeds rivers at local altitude maxima and follows the steepest
// descent toward the ocean, accumulating flow along the way.
func (g *worldGenerator) traceRivers(altitudes [][]float64) [][]float64 {
	w, h := g.cfg.WorldWidth, g.cfg.WorldHeight
	rivers := make([][]float64, w)
	for x := range rivers {
		rivers[x] = make([]float64, h)
	}

	isLocalMax := func(x, y int) bool {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h || (dx == 0 && dy == 0) {
					continue
				}
				if altitudes[nx][ny] > altitudes[x][y] {
					return false
				}
			}
		}
		return true
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if altitudes[x][y] < 0.45 || !isLocalMax(x, y) || g.rng.Float64() > 0.3 {
				continue
			}
			// Trace downhill until the sea or a dead end.
			cx, cy := x, y
			for steps := 0; steps < w+h; steps++ {
				rivers[cx][cy] = math.Min(1, rivers[cx][cy]+0.6)
				if altitudes[cx][cy] <= 0 {
					break
				}
				bx, by, best := cx, cy, altitudes[cx][cy]
				for dx := -1; dx <= 1; dx++ {
					for dy := -1; dy <= 1; dy++ {
						nx, ny := cx+dx, cy+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h || (dx == 0 && dy == 0) {
							continue
						}
						if altitudes[nx][ny] < best {
							bx, by, best = nx, ny, altitudes[nx][ny]
						}
					}
				}
				if bx == cx && by == cy {
					break // basin: becomes a lake
				}
				cx, cy = bx, by
			}
			rivers[cx][cy] = 1 // delta or lake endpoint
		}
	}
	return rivers
}

// classifyBiome runs the biome decision tree over the generation fields, with
// a small random jitter creating ecotone transitions, then applies any
// configured biome bias.
func (g *worldGenerator) classifyBiome(altitude, humidity, temperature, river float64) BiomeType {
	// Ecotone jitter blurs the thresholds.
	jitter := (g.rng.Float64() - 0.5) * 0.08
	altitude += jitter
	humidity = clamp01(humidity + jitter)

	biome := g.baseBiome(altitude, humidity, temperature, river)

	// Biome ratios bias ambiguous land cells toward requested biomes.
	if len(g.cfg.BiomeRatios) > 0 && !biome.IsAquatic() && g.rng.Float64() < 0.15 {
		if picked, ok := g.pickBiasedBiome(); ok && !picked.IsAquatic() {
			biome = picked
		}
	}
	return biome
}

func (g *worldGenerator) baseBiome(altitude, humidity, temperature, river float64) BiomeType {
	switch {
	case altitude < -0.6:
		return BiomeDeepOcean
	case altitude < -0.15:
		return BiomeOcean
	case altitude < 0:
		if temperature > 22 && humidity > 0.6 {
			return BiomeCoralReef
		}
		return BiomeShallowWater
	}

	if river > 0.8 {
		return BiomeRiver
	}
	if river > 0.5 {
		if altitude < 0.1 {
			return BiomeShallowWater // delta
		}
		return BiomeRiver
	}

	switch {
	case altitude < 0.06:
		return BiomeBeach
	case altitude > 0.75:
		if temperature < -5 {
			return BiomeIce
		}
		if temperature > 30 {
			return BiomeVolcanic
		}
		return BiomeMountain
	case altitude > 0.55:
		if humidity > 0.55 && temperature > 0 {
			return BiomeMountainForest
		}
		if humidity < 0.25 && temperature > 15 {
			return BiomeDesertHills
		}
		return BiomeMountain
	}

	switch {
	case temperature < -10:
		return BiomeIce
	case temperature < 0:
		return BiomeTundra
	case humidity < 0.15:
		return BiomeDesert
	case humidity < 0.3:
		if temperature > 22 {
			return BiomeSavanna
		}
		return BiomeGrassland
	case humidity > 0.85 && temperature < 25:
		return BiomeSwamp
	case humidity > 0.7:
		if temperature > 20 {
			return BiomeRainforest
		}
		return BiomeForest
	case humidity > 0.45:
		return BiomeForest
	default:
		return BiomeGrassland
	}
}

// pickBiasedBiome samples the configured biome ratio map; a zero total falls
// back to no bias.
func (g *worldGenerator) pickBiasedBiome() (BiomeType, bool) {
	var total float64
	for _, weight := range g.cfg.BiomeRatios {
		total += weight
	}
	if total <= 0 {
		return 0, false
	}
	roll := g.rng.Float64() * total
	for name, weight := range g.cfg.BiomeRatios {
		roll -= weight
		if roll <= 0 {
			if biome, ok := BiomeByName(name); ok {
				return biome, true
			}
		}
	}
	return 0, false
}
