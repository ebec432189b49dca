package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bhsim/internal/sim"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 300
	frameRate       = 30
	statsWidth      = 48
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options tune the live view.
type Options struct {
	Title       string
	Window      float64
	DrawOctants bool
	// TicksPerFrame simulation ticks run between two redraws.
	TicksPerFrame int
	// EnergyEvery samples the O(n²) total energy every n frames; 0 never.
	EnergyEvery int
	Theme       string
}

// Model runs a simulator and shows it on a Braille canvas with a stats
// panel.
type Model struct {
	ctx           context.Context
	sim           *sim.Simulator
	scene         *Scene
	opts          Options
	running       bool
	frame         int
	energyHistory []float64
	err           error
	showHelp      bool
	width, height int
}

func NewModel(ctx context.Context, s *sim.Simulator, opts Options) Model {
	if opts.TicksPerFrame <= 0 {
		opts.TicksPerFrame = 1
	}
	if opts.Title == "" {
		opts.Title = "bhsim"
	}
	return Model{
		ctx: ctx,
		sim: s,
		scene: &Scene{
			Canvas:      NewCanvas(defaultWidth, defaultHeight),
			Projector:   NewProjector(opts.Window),
			Theme:       GetTheme(opts.Theme),
			DrawOctants: opts.DrawOctants,
		},
		opts:          opts,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		width:         defaultWidth,
		height:        defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Err is the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "o":
			m.scene.DrawOctants = !m.scene.DrawOctants
		case "+", "=":
			m.adjustTheta(1.25)
		case "-", "_":
			m.adjustTheta(0.8)
		case "z":
			m.scene.Projector.ZoomIn()
		case "x":
			m.scene.Projector.ZoomOut()
		case "up", "k":
			m.scene.Projector.RotateX(-0.1)
		case "down", "j":
			m.scene.Projector.RotateX(0.1)
		case "left", "h":
			m.scene.Projector.RotateY(-0.1)
		case "right", "l":
			m.scene.Projector.RotateY(0.1)
		case "c":
			m.scene.Projector.ResetView()
		case "t":
			m.scene.Theme = nextTheme(m.scene.Theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		w := max(msg.Width-statsWidth-4, 10)
		h := max(msg.Height-2, 5)
		if w != m.width || h != m.height {
			m.width, m.height = w, h
			m.scene.Canvas = NewCanvas(w, h)
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjustTheta(factor float64) {
	theta := m.sim.Config().Theta * factor
	if err := m.sim.SetTheta(theta); err != nil {
		m.err = err
	}
}

func (m *Model) step() {
	for i := 0; i < m.opts.TicksPerFrame; i++ {
		if err := m.sim.Tick(m.ctx); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.frame++
	if m.opts.EnergyEvery > 0 && m.frame%m.opts.EnergyEvery == 0 {
		m.energyHistory = append(m.energyHistory, m.sim.Energy())
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	th := m.scene.Theme
	visible := m.scene.Draw(m.sim.Bodies(), m.sim.Tree())
	canvasView := canvasStyle.Render(m.scene.Canvas.Render())

	var s strings.Builder
	s.WriteString(th.header().Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "STOPPED"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(th.status(!m.running, m.err != nil).Render(status) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	cfg := m.sim.Config()
	s.WriteString(th.row("Tick", fmt.Sprintf("%d", m.sim.Ticks())))
	s.WriteString(th.row("Time", SI(m.sim.Time(), "s")))
	s.WriteString(th.row("Bodies", fmt.Sprintf("%d (%d shown)", len(m.sim.Bodies()), visible)))
	s.WriteString(th.row("Method", string(cfg.Method)))
	if tree := m.sim.Tree(); tree != nil {
		s.WriteString(th.row("Theta", fmt.Sprintf("%.3f", cfg.Theta)))
		s.WriteString(th.row("Nodes", fmt.Sprintf("%d", tree.NodeCount())))
		s.WriteString(th.row("Height", fmt.Sprintf("%d", tree.Height())))
		s.WriteString(th.row("Mass", SI(tree.Mass(), "kg")))
	}
	if n := m.sim.Escaped(); n > 0 {
		s.WriteString(labelStyle.Render("Escaped") + lipgloss.NewStyle().Foreground(th.Warning).Render(fmt.Sprintf("%d", n)) + "\n")
	}
	s.WriteString(th.row("Window", SI(m.scene.Projector.Window/m.scene.Projector.Zoom, "m")))
	if len(m.energyHistory) > 0 {
		first, last := m.energyHistory[0], m.energyHistory[len(m.energyHistory)-1]
		s.WriteString(th.row("Energy", SI(last, "J")))
		if first != 0 {
			s.WriteString(th.row("Drift", fmt.Sprintf("%.2e", math.Abs(last-first)/math.Abs(first))))
		}
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(th.Error).Width(statsWidth-6).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(21) + "\nSP:Pause O:Octants Q:Quit\n+/-:Theta Z/X:Zoom ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  O        - Toggle octant boundaries ║
║  + / -    - Raise / lower theta      ║
║  Z / X    - Zoom in / out            ║
║  Arrows   - Rotate the view          ║
║  C        - Reset the view           ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`
