package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gbarello/qwave/internal/quantum"
	"github.com/gbarello/qwave/internal/sim"
)

const (
	mapCols = 64
	mapRows = 32
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	mapStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	foundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// potentialCycle is the order the "p" key walks through.
var potentialCycle = []string{"none", "single", "double", "sinusoid"}

type TickMsg time.Time

// Model is the bubbletea state for the live view. It owns the engine and
// steps it on ticks; every displayed quantity comes from read accessors.
type Model struct {
	engine   *quantum.Simulation
	pool     *sim.FieldPool
	running  bool
	stepsPer int // engine steps per frame

	cursorC, cursorR int // cursor in map coordinates
	lastMeasurement  *quantum.Measurement
	potentialIdx     int
	frameRate        int
}

func NewModel(engine *quantum.Simulation, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	n := engine.Params().GridSize
	return Model{
		engine:    engine,
		pool:      sim.NewFieldPool(n * n),
		running:   true,
		stepsPer:  2,
		cursorC:   mapCols / 2,
		cursorR:   mapRows / 2,
		frameRate: frameRate,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.engine.Reset()
			m.lastMeasurement = nil
		case "m":
			ix, iy := m.cursorCell()
			result := m.engine.Measure(ix, iy)
			m.lastMeasurement = &result
		case "left", "h":
			m.cursorC = clamp(m.cursorC-1, 0, mapCols-1)
		case "right", "l":
			m.cursorC = clamp(m.cursorC+1, 0, mapCols-1)
		case "up", "k":
			m.cursorR = clamp(m.cursorR-1, 0, mapRows-1)
		case "down", "j":
			m.cursorR = clamp(m.cursorR+1, 0, mapRows-1)
		case "p":
			m.potentialIdx = (m.potentialIdx + 1) % len(potentialCycle)
			m.engine.SetPotentialType(potentialCycle[m.potentialIdx])
		case "+", "=":
			m.engine.SetPotentialStrength(m.engine.Params().PotentialStrength * 1.25)
		case "-", "_":
			m.engine.SetPotentialStrength(m.engine.Params().PotentialStrength * 0.8)
		case "[":
			m.engine.SetTimeScale(m.engine.Params().TimeScale * 0.5)
		case "]":
			m.engine.SetTimeScale(m.engine.Params().TimeScale * 2)
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPer; i++ {
				m.engine.Step()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	p := m.engine.Params()

	density := m.pool.Get()
	m.engine.ProbabilityDensityInto(density)
	field := DensityMap(density, p.GridSize, mapCols, mapRows)
	m.pool.Put(density)

	field = m.overlayCursor(field)

	status := "paused"
	if m.running {
		status = "running"
	}

	stats := []string{
		row("status", status),
		row("time", fmt.Sprintf("%.3f", m.engine.Time())),
		row("Σ|ψ|²", fmt.Sprintf("%.8f", m.engine.TotalProbability())),
		row("potential", fmt.Sprintf("%s (%.1f)", p.Potential, p.PotentialStrength)),
		row("time scale", fmt.Sprintf("%.2f", p.TimeScale)),
	}
	ix, iy := m.cursorCell()
	stats = append(stats, row("cursor", fmt.Sprintf("(%d, %d) p=%.4f", ix, iy, m.engine.ProbabilityAt(ix, iy))))
	if m.lastMeasurement != nil {
		outcome := missStyle.Render("not found")
		if m.lastMeasurement.Found {
			outcome = foundStyle.Render("FOUND")
		}
		stats = append(stats, row("measurement", fmt.Sprintf("%s (p=%.4f)", outcome, m.lastMeasurement.Probability)))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("qwave %d×%d", p.GridSize, p.GridSize)))
	b.WriteByte('\n')
	b.WriteString(mapStyle.Render(field))
	b.WriteByte('\n')
	b.WriteString(strings.Join(stats, "\n"))
	b.WriteString(helpStyle.Render("\nspace pause · arrows cursor · m measure · p potential · +/- strength · [/] speed · r reset · q quit"))
	return b.String()
}

func (m Model) cursorCell() (int, int) {
	return CellAt(m.engine.Params().GridSize, mapCols, mapRows, m.cursorC, m.cursorR)
}

// overlayCursor replaces the character under the cursor with a marker.
func (m Model) overlayCursor(field string) string {
	lines := strings.Split(field, "\n")
	if m.cursorR >= len(lines) {
		return field
	}
	line := []rune(lines[m.cursorR])
	if m.cursorC >= len(line) {
		return field
	}
	lines[m.cursorR] = string(line[:m.cursorC]) + cursorStyle.Render("+") + string(line[m.cursorC+1:])
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the interactive view and blocks until the user quits.
func Run(engine *quantum.Simulation, frameRate int) error {
	_, err := tea.NewProgram(NewModel(engine, frameRate), tea.WithAltScreen()).Run()
	return err
}
