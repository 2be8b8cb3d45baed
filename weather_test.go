package main

import (
	"math/rand"
	"testing"
)

func TestWeatherDriftsTowardSeasonTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(60))
	ws := WeatherState{Precipitation: 1, CloudCover: 1, WindSpeed: 20}

	for i := 0; i < 500; i++ {
		ws.Update(1, 0, rng) // summer, no variability noise
	}
	target := seasonWeatherTargets[1]
	if diff := ws.Precipitation - target.Precipitation; diff > 0.05 || diff < -0.05 {
		t.Errorf("precipitation %f did not converge to %f", ws.Precipitation, target.Precipitation)
	}
	if ws.Precipitation < 0 || ws.Precipitation > 1 || ws.CloudCover < 0 || ws.CloudCover > 1 {
		t.Errorf("weather fields out of range: %+v", ws)
	}
}

func TestDisasterSpawnRespectsBaseProbability(t *testing.T) {
	rng := rand.New(rand.NewSource(61))
	bounds := Vec2{X: 1000, Y: 1000}

	spawned := 0
	for i := 0; i < 200000; i++ {
		if d := maybeSpawnDisaster(1, bounds, 1, rng); d != nil {
			spawned++
			if d.Radius <= 0 || d.Intensity <= 0 || d.Remaining <= 0 {
				t.Fatalf("malformed disaster: %+v", d)
			}
			if d.Center.X < 0 || d.Center.X > bounds.X || d.Center.Y < 0 || d.Center.Y > bounds.Y {
				t.Fatalf("disaster spawned out of bounds: %+v", d.Center)
			}
		}
	}
	// Expectation ~20 for p=1e-4 over 200k draws.
	if spawned == 0 || spawned > 100 {
		t.Errorf("disaster frequency implausible: %d in 200k draws", spawned)
	}
}

func TestBlizzardsNeverSpawnInSummer(t *testing.T) {
	rng := rand.New(rand.NewSource(62))
	for i := 0; i < 500000; i++ {
		if d := maybeSpawnDisaster(1, Vec2{X: 100, Y: 100}, 1, rng); d != nil && d.Kind == DisasterBlizzard {
			t.Fatal("blizzard spawned in summer despite a zero seasonal bias")
		}
	}
}

func TestDisasterEffectsKeepResourceBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(63))
	cell := NewWorldCell(0, 0, BiomeGrassland, 0.2, 0.5, 18, rng)

	for kind := DisasterKind(0); kind < disasterKindCount; kind++ {
		d := Disaster{Kind: kind, Intensity: 1, Radius: 10, Remaining: 100}
		for i := 0; i < 200; i++ {
			d.applyToCell(cell, 1)
		}
		for r := ResourceKind(0); r < resourceKindCount; r++ {
			if cell.Resources[r] < 0 || cell.Resources[r] > cell.Capacity[r] {
				t.Errorf("%s drove %s out of range: %f", kind, r, cell.Resources[r])
			}
		}
	}
}
