package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/plife/internal/metrics"
	"github.com/san-kum/plife/internal/physics"
)

const (
	width            = 80
	height           = 24
	historyCapacity  = 300
	maxStepsPerFrame = 16
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type TickMsg time.Time

// Rebuild returns a fresh engine for seed. The live view calls it on reset.
type Rebuild func(seed int64) (*physics.Engine, error)

// Model owns an engine and steps it on every frame tick. Rendering reads
// the particle slice between ticks, so no other goroutine touches it.
type Model struct {
	engine        *physics.Engine
	rebuild       Rebuild
	title         string
	seed          int64
	dt            float64
	t             float64
	ticks         int
	stepsPerFrame int
	canvas        *Canvas
	styles        []lipgloss.Style
	running       bool
	showMatrix    bool
	showHelp      bool
	energy        *metrics.KineticEnergy
	momentum      *metrics.NetMomentum
	energyHistory []float64
	err           error
}

func NewModel(engine *physics.Engine, rebuild Rebuild, title string, seed int64, dt float64) Model {
	return Model{
		engine:        engine,
		rebuild:       rebuild,
		title:         title,
		seed:          seed,
		dt:            dt,
		stepsPerFrame: 1,
		canvas:        NewCanvas(width, height),
		styles:        ColorStyles(engine.Set().Colors()),
		running:       true,
		energy:        metrics.NewKineticEnergy(),
		momentum:      metrics.NewNetMomentum(),
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset(m.seed + 1)
		case "+", "=":
			if m.stepsPerFrame < maxStepsPerFrame {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		case "m":
			m.showMatrix = !m.showMatrix
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerFrame && m.running; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.engine.Step(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.t += m.dt
	m.ticks++

	ps := m.engine.Set().Particles()
	m.energy.Observe(ps, m.t)
	m.momentum.Observe(ps, m.t)
	m.energyHistory = append(m.energyHistory, m.energy.Value())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// reset swaps in a freshly built engine. Without a rebuild function the
// view keeps its engine and only clears its history.
func (m *Model) reset(seed int64) {
	if m.rebuild != nil {
		e, err := m.rebuild(seed)
		if err != nil {
			m.err = err
			return
		}
		m.engine = e
		m.seed = seed
		m.styles = ColorStyles(e.Set().Colors())
	}
	m.t = 0
	m.ticks = 0
	m.err = nil
	m.energy.Reset()
	m.momentum.Reset()
	m.energyHistory = m.energyHistory[:0]
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render(m.styles))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	if m.err != nil {
		status = errorStyle.Render("HALTED: " + m.err.Error())
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	p := m.engine.Params()
	rows := [][2]string{
		{"Time", fmt.Sprintf("%.2f", m.t)},
		{"Ticks", fmt.Sprintf("%d (x%d)", m.ticks, m.stepsPerFrame)},
		{"Seed", fmt.Sprintf("%d", m.seed)},
		{"Particles", fmt.Sprintf("%d / %d colours", m.engine.Set().Len(), m.engine.Set().Colors())},
		{"Energy", fmt.Sprintf("%.4f", m.energy.Value())},
		{"Momentum", fmt.Sprintf("%.4f", m.momentum.Value())},
		{"Coincident", fmt.Sprintf("%d", m.engine.Coincident())},
		{"Sweep", p.Strategy.String()},
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}

	s.WriteString("\nCOLOURS\n")
	counts := m.engine.Set().CountByColor()
	for c, n := range counts {
		s.WriteString(m.styles[c].Render("⣿⣿") + fmt.Sprintf(" %d: %d\n", c, n))
	}

	if m.showMatrix {
		s.WriteString("\nMATRIX\n" + m.engine.Matrix().String())
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause S:Step R:Reseed Q:Quit\n+/-:Speed M:Matrix ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single tick when paused  ║
║  R        - New seed, matrix, layout ║
║  + / -    - Ticks per frame          ║
║  M        - Show force matrix        ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// draw maps world coordinates onto the canvas dot grid.
func (m *Model) draw() {
	m.canvas.Clear()
	p := m.engine.Params()
	cw, ch := float64(m.canvas.SubWidth()), float64(m.canvas.SubHeight())
	for _, pt := range m.engine.Set().Particles() {
		x := int(pt.Pos.X / p.Width * cw)
		y := int(pt.Pos.Y / p.Height * ch)
		m.canvas.Set(x, y, pt.Color)
	}
}
