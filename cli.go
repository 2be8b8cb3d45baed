package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CLIModel is the terminal viewer: a live map of the world with stats and
// milestone panels. It only reads world state between ticks.
type CLIModel struct {
	world       *World
	width       int
	height      int
	paused      bool
	showHelp    bool
	showSpecies bool
	dt          float64
	printer     *message.Printer
}

// tickMsg drives the auto-advance loop.
type tickMsg time.Time

// cliKeys are the viewer key bindings.
var cliKeys = struct {
	quit    key.Binding
	pause   key.Binding
	faster  key.Binding
	slower  key.Binding
	help    key.Binding
	species key.Binding
}{
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	slower:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
	help:    key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h", "help")),
	species: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "species panel")),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("22")).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	extinctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Strikethrough(true)
)

// biomeColors maps each biome onto a terminal color for the map view.
var biomeColors = map[BiomeType]string{
	BiomeDeepOcean:      "17",
	BiomeOcean:          "18",
	BiomeShallowWater:   "27",
	BiomeCoralReef:      "43",
	BiomeBeach:          "180",
	BiomeGrassland:      "70",
	BiomeSavanna:        "143",
	BiomeForest:         "22",
	BiomeRainforest:     "28",
	BiomeSwamp:          "58",
	BiomeMountain:       "244",
	BiomeMountainForest: "65",
	BiomeDesert:         "221",
	BiomeDesertHills:    "179",
	BiomeTundra:         "152",
	BiomeIce:            "255",
	BiomeVolcanic:       "88",
	BiomeRiver:          "33",
	BiomeLake:           "39",
}

// organismSymbols maps each type onto its map glyph.
var organismSymbols = [organismTypeCount]rune{'·', '♣', 'h', 'C', 'o'}

// NewCLIModel creates the viewer around a world.
func NewCLIModel(world *World) CLIModel {
	return CLIModel{
		world:   world,
		dt:      1.0,
		printer: message.NewPrinter(language.English),
	}
}

func (m CLIModel) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m CLIModel) scheduleTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m CLIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, cliKeys.quit):
			return m, tea.Quit
		case key.Matches(msg, cliKeys.pause):
			m.paused = !m.paused
		case key.Matches(msg, cliKeys.faster):
			m.dt = clampRange(m.dt*2, 0.25, 32)
		case key.Matches(msg, cliKeys.slower):
			m.dt = clampRange(m.dt/2, 0.25, 32)
		case key.Matches(msg, cliKeys.help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, cliKeys.species):
			m.showSpecies = !m.showSpecies
		}

	case tickMsg:
		if !m.paused {
			m.world.Tick(m.dt)
		}
		return m, m.scheduleTick()
	}
	return m, nil
}

func (m CLIModel) View() string {
	if m.width == 0 {
		return "starting..."
	}

	header := titleStyle.Render(fmt.Sprintf(
		" BioEvolve — year %d, %s, day %d — tick %d — dt %.2gs %s",
		m.world.Year, seasonNames[m.world.Season], m.world.Day, m.world.TickCount, m.dt,
		map[bool]string{true: "[paused]", false: ""}[m.paused],
	))

	mapView := m.renderMap(m.width*2/3, m.height-4)
	var side string
	if m.showSpecies {
		side = m.renderSpeciesPanel()
	} else {
		side = m.renderStatsPanel()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, mapView, side)
	footer := dimStyle.Render("q quit · space pause · +/- speed · s species · h help")
	if m.showHelp {
		footer = m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMap draws the biome grid downsampled to the viewport, overlaying
// organism glyphs.
func (m CLIModel) renderMap(cols, rows int) string {
	if cols < 4 || rows < 4 {
		return ""
	}
	bounds := m.world.Bounds()
	cellW := bounds.X / float64(cols)
	cellH := bounds.Y / float64(rows)

	// Index organisms by viewport cell, predators last so they win overlaps.
	glyphs := make(map[[2]int]OrganismType)
	for _, o := range m.world.Organisms {
		if !o.IsAlive {
			continue
		}
		gx := minInt(cols-1, int(o.Position.X/cellW))
		gy := minInt(rows-1, int(o.Position.Y/cellH))
		if existing, ok := glyphs[[2]int{gx, gy}]; !ok || o.Type > existing {
			glyphs[[2]int{gx, gy}] = o.Type
		}
	}

	var b strings.Builder
	for gy := 0; gy < rows; gy++ {
		for gx := 0; gx < cols; gx++ {
			pos := Vec2{X: (float64(gx) + 0.5) * cellW, Y: (float64(gy) + 0.5) * cellH}
			cell := m.world.CellAt(pos)
			color := "0"
			if cell != nil {
				color = biomeColors[cell.Biome]
			}
			ch := " "
			if t, ok := glyphs[[2]int{gx, gy}]; ok {
				ch = string(organismSymbols[t])
			}
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(color)).Render(ch))
		}
		b.WriteByte('\n')
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m CLIModel) renderStatsPanel() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("organisms: %s\n", m.printer.Sprintf("%d", m.world.LiveCount())))
	b.WriteString(fmt.Sprintf("temperature: %.1f°C\n", m.world.GlobalTemperature))
	b.WriteString(fmt.Sprintf("precipitation: %.0f%%  clouds: %.0f%%\n",
		m.world.Weather.Precipitation*100, m.world.Weather.CloudCover*100))
	b.WriteString(fmt.Sprintf("speciations: %d  extinctions: %d\n\n",
		m.world.SpeciationEvents, m.world.ExtinctionCount))

	for _, t := range AllOrganismTypes() {
		if s := m.world.SpeciesStats()[t]; s != nil && s.Count > 0 {
			b.WriteString(fmt.Sprintf("%c %-11s %5s  (%d species)\n",
				organismSymbols[t], t, m.printer.Sprintf("%d", s.Count), s.SpeciesCount))
		}
	}

	b.WriteString("\nrecent milestones:\n")
	for _, milestone := range m.world.Events().Recent(6) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("· %s\n", milestone.Description)))
	}
	return panelStyle.Render(b.String())
}

func (m CLIModel) renderSpeciesPanel() string {
	records := m.world.Registry().All()
	sort.Slice(records, func(i, j int) bool {
		return records[i].PopulationCount > records[j].PopulationCount
	})

	var b strings.Builder
	b.WriteString("species registry:\n")
	shown := 0
	for _, r := range records {
		if shown >= 18 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… and %d more\n", len(records)-shown)))
			break
		}
		line := fmt.Sprintf("%-28s %5d", r.ScientificName, r.PopulationCount)
		if r.Extinct {
			line = extinctStyle.Render(line)
		}
		b.WriteString(line + "\n")
		shown++
	}
	return panelStyle.Render(b.String())
}

func (m CLIModel) renderHelp() string {
	return panelStyle.Render(strings.Join([]string{
		"q / ctrl+c   quit",
		"space        pause or resume the simulation",
		"+ / -        double or halve the simulated seconds per frame",
		"s            toggle the species registry panel",
		"h / ?        toggle this help",
	}, "\n"))
}

// RunCLI starts the terminal viewer over a world.
func RunCLI(world *World) error {
	program := tea.NewProgram(NewCLIModel(world), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
