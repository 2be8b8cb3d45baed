package main

import (
	"fmt"
	"math"
	"math/rand"
)

// WeatherState is the global weather, updated each tick with inertia toward
// season-dependent targets.
type WeatherState struct {
	Precipitation float64 `json:"precipitation"`  // 0-1
	CloudCover    float64 `json:"cloud_cover"`    // 0-1
	WindSpeed     float64 `json:"wind_speed"`     // world units per second
	WindDirection float64 `json:"wind_direction"` // radians
}

// weatherInertia controls how slowly weather drifts toward its target.
const weatherInertia = 0.95

// seasonWeatherTargets indexes precipitation/cloud/wind targets by season
// (0 spring, 1 summer, 2 autumn, 3 winter).
var seasonWeatherTargets = [SeasonsCount]WeatherState{
	{Precipitation: 0.35, CloudCover: 0.45, WindSpeed: 3.0},
	{Precipitation: 0.15, CloudCover: 0.25, WindSpeed: 2.0},
	{Precipitation: 0.4, CloudCover: 0.55, WindSpeed: 4.0},
	{Precipitation: 0.3, CloudCover: 0.6, WindSpeed: 5.0},
}

// seasonNames maps the season index to its display name.
var seasonNames = [SeasonsCount]string{"spring", "summer", "autumn", "winter"}

// Update drifts the weather toward the season's target with inertia plus a
// variability-scaled random walk.
func (ws *WeatherState) Update(season int, variability float64, rng *rand.Rand) {
	target := seasonWeatherTargets[season%SeasonsCount]
	noise := func() float64 { return (rng.Float64() - 0.5) * 0.1 * variability }

	ws.Precipitation = clamp01(ws.Precipitation*weatherInertia + (target.Precipitation+noise())*(1-weatherInertia))
	ws.CloudCover = clamp01(ws.CloudCover*weatherInertia + (target.CloudCover+noise())*(1-weatherInertia))
	ws.WindSpeed = math.Max(0, ws.WindSpeed*weatherInertia+(target.WindSpeed+noise()*10)*(1-weatherInertia))
	ws.WindDirection += (rng.Float64() - 0.5) * 0.2 * variability
	if ws.WindDirection > 2*math.Pi {
		ws.WindDirection -= 2 * math.Pi
	} else if ws.WindDirection < 0 {
		ws.WindDirection += 2 * math.Pi
	}
}

// DisasterKind enumerates the extreme weather events.
type DisasterKind int

const (
	DisasterHurricane DisasterKind = iota
	DisasterTornado
	DisasterDrought
	DisasterFlood
	DisasterBlizzard
	DisasterHeatwave
	disasterKindCount
)

func (k DisasterKind) String() string {
	switch k {
	case DisasterHurricane:
		return "hurricane"
	case DisasterTornado:
		return "tornado"
	case DisasterDrought:
		return "drought"
	case DisasterFlood:
		return "flood"
	case DisasterBlizzard:
		return "blizzard"
	case DisasterHeatwave:
		return "heatwave"
	}
	return "unknown"
}

// seasonDisasterBias scales the trigger probability of each disaster kind per
// season.
var seasonDisasterBias = [SeasonsCount][disasterKindCount]float64{
	{0.8, 1.5, 0.3, 1.5, 0.2, 0.3}, // spring: tornadoes, floods
	{1.5, 1.0, 1.8, 0.5, 0.0, 2.0}, // summer: hurricanes, droughts, heatwaves
	{1.2, 0.8, 0.5, 1.0, 0.3, 0.3}, // autumn
	{0.3, 0.2, 0.2, 0.5, 2.0, 0.0}, // winter: blizzards
}

// Disaster is an active extreme event applying its effect to cells within its
// radius each tick until it expires.
type Disaster struct {
	Kind      DisasterKind `json:"kind"`
	Center    Vec2         `json:"center"`
	Radius    float64      `json:"radius"`
	Intensity float64      `json:"intensity"` // 0-1
	Remaining float64      `json:"remaining"` // seconds of simulated time
}

func (d Disaster) String() string {
	return fmt.Sprintf("%s at (%.0f,%.0f) r=%.0f intensity=%.2f", d.Kind, d.Center.X, d.Center.Y, d.Radius, d.Intensity)
}

// baseDisasterProbability is the per-tick trigger chance before seasonal bias.
const baseDisasterProbability = 1e-4

// maybeSpawnDisaster rolls for a new extreme event.
func maybeSpawnDisaster(season int, bounds Vec2, variability float64, rng *rand.Rand) *Disaster {
	if rng.Float64() >= baseDisasterProbability*variability {
		return nil
	}
	// Pick a kind weighted by the season bias.
	var total float64
	for k := 0; k < int(disasterKindCount); k++ {
		total += seasonDisasterBias[season%SeasonsCount][k]
	}
	if total <= 0 {
		return nil
	}
	roll := rng.Float64() * total
	kind := DisasterHurricane
	for k := 0; k < int(disasterKindCount); k++ {
		roll -= seasonDisasterBias[season%SeasonsCount][k]
		if roll <= 0 {
			kind = DisasterKind(k)
			break
		}
	}

	return &Disaster{
		Kind:      kind,
		Center:    Vec2{X: rng.Float64() * bounds.X, Y: rng.Float64() * bounds.Y},
		Radius:    bounds.X * (0.05 + rng.Float64()*0.15),
		Intensity: 0.4 + rng.Float64()*0.6,
		Remaining: DayLength * (0.5 + rng.Float64()*3),
	}
}

// applyToCell applies one tick of the disaster's effect to a cell inside its
// radius.
func (d *Disaster) applyToCell(cell *WorldCell, dt float64) {
	scale := d.Intensity * dt
	switch d.Kind {
	case DisasterHurricane:
		cell.AddResource(ResourceWater, 4*scale)
		cell.Temperature -= 1 * scale
		cell.TakeResource(ResourceOrganicMatter, cell.Resources[ResourceOrganicMatter]*0.01*scale)
	case DisasterTornado:
		cell.TakeResource(ResourceOrganicMatter, cell.Resources[ResourceOrganicMatter]*0.03*scale)
	case DisasterDrought:
		cell.TakeResource(ResourceWater, cell.Resources[ResourceWater]*0.02*scale)
		cell.Humidity = clamp01(cell.Humidity - 0.01*scale)
		cell.Temperature += 0.5 * scale
	case DisasterFlood:
		cell.AddResource(ResourceWater, 8*scale)
		cell.TakeResource(ResourceMinerals, cell.Resources[ResourceMinerals]*0.01*scale)
	case DisasterBlizzard:
		cell.Temperature -= 3 * scale
		cell.TakeResource(ResourceSunlight, cell.Resources[ResourceSunlight]*0.5*scale)
	case DisasterHeatwave:
		cell.Temperature += 3 * scale
		cell.TakeResource(ResourceWater, cell.Resources[ResourceWater]*0.015*scale)
	}
}
