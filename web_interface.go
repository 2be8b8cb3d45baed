package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"
)

// WorldSnapshot is the read-only JSON view pushed to web clients between
// ticks.
type WorldSnapshot struct {
	Tick          int                          `json:"tick"`
	Year          int                          `json:"year"`
	Season        string                       `json:"season"`
	Day           int                          `json:"day"`
	Temperature   float64                      `json:"temperature"`
	Weather       WeatherState                 `json:"weather"`
	OrganismCount int                          `json:"organism_count"`
	Organisms     []OrganismSnapshot           `json:"organisms"`
	SpeciesStats  map[string]*SpeciesTypeStats `json:"species_stats"`
	Milestones    []Milestone                  `json:"milestones"`
	Status        struct {
		Inconsistencies int    `json:"inconsistencies"`
		LastSaveError   string `json:"last_save_error,omitempty"`
	} `json:"status"`
}

// OrganismSnapshot is the wire form of one organism.
type OrganismSnapshot struct {
	ID        int     `json:"id"`
	Type      string  `json:"type"`
	SpeciesID string  `json:"species_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Health    float64 `json:"health"`
	Energy    float64 `json:"energy"`
	Color     RGB     `json:"color"`
}

// WebInterface pushes periodic world snapshots to websocket clients. It
// never writes world state; the tick loop runs on its own goroutine and
// snapshots are taken between ticks under the interface mutex.
type WebInterface struct {
	world    *World
	interval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewWebInterface creates a snapshot server over a world.
func NewWebInterface(world *World, interval time.Duration) *WebInterface {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &WebInterface{
		world:    world,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// Serve runs the tick loop and the websocket endpoint until the listener
// fails. dt is the simulated seconds advanced per real interval.
func (wi *WebInterface) Serve(port int, dt float64) error {
	go wi.runLoop(dt)

	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(wi.handleClient))
	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("web snapshot interface listening")
	return http.ListenAndServe(addr, mux)
}

func (wi *WebInterface) runLoop(dt float64) {
	ticker := time.NewTicker(wi.interval)
	defer ticker.Stop()
	for range ticker.C {
		wi.mu.Lock()
		wi.world.Tick(dt)
		snapshot := wi.snapshot()
		clients := make([]*websocket.Conn, 0, len(wi.clients))
		for c := range wi.clients {
			clients = append(clients, c)
		}
		wi.mu.Unlock()

		for _, c := range clients {
			if err := websocket.JSON.Send(c, snapshot); err != nil {
				wi.dropClient(c)
			}
		}
	}
}

func (wi *WebInterface) handleClient(ws *websocket.Conn) {
	wi.mu.Lock()
	wi.clients[ws] = true
	wi.mu.Unlock()
	log.Debug().Msg("web client connected")

	// Hold the connection open; clients only receive.
	var discard string
	for {
		if err := websocket.Message.Receive(ws, &discard); err != nil {
			break
		}
	}
	wi.dropClient(ws)
}

func (wi *WebInterface) dropClient(ws *websocket.Conn) {
	wi.mu.Lock()
	delete(wi.clients, ws)
	wi.mu.Unlock()
	ws.Close()
}

// snapshot captures the world state. Callers hold the interface mutex so the
// capture never interleaves with a tick.
func (wi *WebInterface) snapshot() WorldSnapshot {
	w := wi.world
	snap := WorldSnapshot{
		Tick:          w.TickCount,
		Year:          w.Year,
		Season:        seasonNames[w.Season],
		Day:           w.Day,
		Temperature:   w.GlobalTemperature,
		Weather:       w.Weather,
		OrganismCount: w.LiveCount(),
		SpeciesStats:  make(map[string]*SpeciesTypeStats),
		Milestones:    w.Events().Recent(20),
	}
	for t, s := range w.SpeciesStats() {
		snap.SpeciesStats[t.String()] = s
	}
	status := w.Status()
	snap.Status.Inconsistencies = status.Inconsistencies
	if status.LastPersistenceError != nil {
		snap.Status.LastSaveError = status.LastPersistenceError.Error()
	}

	for _, o := range w.Organisms {
		if !o.IsAlive {
			continue
		}
		snap.Organisms = append(snap.Organisms, OrganismSnapshot{
			ID:        o.ID,
			Type:      o.Type.String(),
			SpeciesID: o.SpeciesID,
			X:         o.Position.X,
			Y:         o.Position.Y,
			Health:    o.Health,
			Energy:    o.Energy,
			Color:     o.Phenotype.Color,
		})
		if len(snap.Organisms) >= 5000 {
			break // keep frames bounded for large worlds
		}
	}
	return snap
}
