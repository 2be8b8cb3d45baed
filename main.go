package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		width      = flag.Int("width", 100, "World width in grid cells")
		height     = flag.Int("height", 100, "World height in grid cells")
		cellSize   = flag.Int("cell-size", 50, "World units per grid cell")
		popSize    = flag.Int("pop-size", 200, "Initial organism count")
		maxPop     = flag.Int("max-pop", 20000, "Maximum organism count")
		seed       = flag.Int64("seed", 0, "Random seed (0 for current time)")
		configPath = flag.String("config", "", "YAML world configuration file")
		registry   = flag.String("registry", "species_registry.json", "Species registry JSON path")
		headless   = flag.Int("headless", 0, "Run N ticks without UI and exit")
		dt         = flag.Float64("dt", 1.0, "Simulated seconds per tick")
		webMode    = flag.Bool("web", false, "Serve the web snapshot interface instead of the TUI")
		webPort    = flag.Int("web-port", 8080, "Port for the web snapshot interface")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *help {
		fmt.Println("BioEvolve — agent-based evolutionary simulator")
		fmt.Println()
		fmt.Println("A population of organisms with heritable genomes living on a")
		fmt.Println("procedurally generated world grid: resources diffuse between cells,")
		fmt.Println("seasons and weather cycle, organisms feed, reproduce, speciate and")
		fmt.Println("go extinct. The species registry persists across runs.")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Printf("  %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	var cfg WorldConfig
	if *configPath != "" {
		loaded, err := LoadWorldConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("loading configuration")
		}
		cfg = loaded
	} else {
		cfg = DefaultWorldConfig()
		cfg.WorldWidth = *width
		cfg.WorldHeight = *height
		cfg.CellSize = *cellSize
		cfg.InitialOrganismCount = *popSize
		cfg.MaxOrganisms = *maxPop
		cfg.RegistryPath = *registry
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	world, err := NewWorld(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("creating world")
	}

	switch {
	case *headless > 0:
		start := time.Now()
		for i := 0; i < *headless; i++ {
			world.Tick(*dt)
		}
		elapsed := time.Since(start)
		log.Info().
			Int("ticks", *headless).
			Dur("elapsed", elapsed).
			Int("organisms", world.LiveCount()).
			Int("species", world.Registry().Counts()["total"]).
			Int("speciations", world.SpeciationEvents).
			Int("extinctions", world.ExtinctionCount).
			Msg("headless run complete")

	case *webMode:
		if err := NewWebInterface(world, 250*time.Millisecond).Serve(*webPort, *dt); err != nil {
			log.Fatal().Err(err).Msg("web interface")
		}

	default:
		if err := RunCLI(world); err != nil {
			log.Fatal().Err(err).Msg("terminal interface")
		}
	}
}
