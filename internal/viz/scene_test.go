package viz

import (
	"context"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bhsim/internal/body"
	"github.com/san-kum/bhsim/internal/octree"
	"github.com/san-kum/bhsim/internal/scenario"
	"github.com/san-kum/bhsim/internal/sim"
	"github.com/san-kum/bhsim/internal/vec"
)

func TestProjectorCenterAndEdges(t *testing.T) {
	p := NewProjector(100)

	x, y, _, ok := p.Project(vec.Zero, 200, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, x)
	assert.Equal(t, 50, y)

	// The shorter side spans the window.
	x, y, _, ok = p.Project(vec.New(0, 99, 0), 200, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, x)
	assert.Equal(t, 0, y)

	_, _, _, ok = p.Project(vec.New(0, -101, 0), 200, 100)
	assert.False(t, ok)

	assert.Equal(t, 5, p.Radius(10, 200, 100))
}

func TestProjectorDisplayWindowIsIndependentOfZoom(t *testing.T) {
	p := NewProjector(100)
	p.ZoomIn()
	assert.Greater(t, p.PixelsPerMeter(100, 100), 0.5)
	p.ResetView()
	assert.Equal(t, 0.5, p.PixelsPerMeter(100, 100))
}

func TestProjectorRotation(t *testing.T) {
	p := NewProjector(1)
	p.RotateY(math.Pi / 2)
	r := p.Rotate(vec.New(1, 0, 0))
	assert.InDelta(t, 0, r.X(), 1e-12)
	assert.InDelta(t, -1, r.Z(), 1e-12)

	p.ResetView()
	p.RotateX(math.Pi / 2)
	r = p.Rotate(vec.New(0, 0, 1))
	assert.InDelta(t, -1, r.Y(), 1e-12)
}

func TestSceneDrawsSolarSystem(t *testing.T) {
	bodies := scenario.SolarSystem()
	s := &Scene{
		Canvas:    NewCanvas(80, 40),
		Projector: NewProjector(scenario.DefaultWindow),
		Theme:     ThemeDeepSpace,
	}

	assert.Equal(t, 5, s.Draw(bodies, nil))
	w, h := s.Canvas.Pixels()
	x, y, _, _ := s.Projector.Project(vec.Zero, w, h)
	assert.True(t, s.Canvas.IsSet(x, y))
	assert.Equal(t, bodies[0].Color, s.Canvas.Colors[y/4][x/2])
}

func TestSceneDrawsOctants(t *testing.T) {
	a, err := body.New("a", 1e24, 1e6, vec.New(5e10, 5e10, 0), vec.Zero, "")
	require.NoError(t, err)
	b, err := body.New("b", 1e24, 1e6, vec.New(-5e10, -5e10, 0), vec.Zero, "")
	require.NoError(t, err)
	tree, err := octree.New(octree.Config{HalfWidth: 1e11, Theta: 1})
	require.NoError(t, err)
	require.NoError(t, tree.Build([]*body.Body{a, b}))
	tree.Finalize()

	s := &Scene{Canvas: NewCanvas(40, 20), Projector: NewProjector(1.2e11), Theme: ThemeMinimal}
	s.Draw([]*body.Body{a, b}, tree)
	plain := s.Canvas.String()

	s.DrawOctants = true
	s.Draw([]*body.Body{a, b}, tree)
	assert.NotEqual(t, plain, s.Canvas.String())

	w, h := s.Canvas.Pixels()
	x, y, _, _ := s.Projector.Project(vec.New(-1e11, 0, 0), w, h)
	assert.True(t, s.Canvas.IsSet(x, y), "root boundary should be drawn")
	assert.Equal(t, string(ThemeMinimal.Octant), s.Canvas.Colors[y/4][x/2])
}

func TestModelKeysAndTicks(t *testing.T) {
	s, err := sim.New(scenario.SolarSystem(), sim.DefaultConfig())
	require.NoError(t, err)
	m := NewModel(context.Background(), s, Options{Window: scenario.DefaultWindow, TicksPerFrame: 2, EnergyEvery: 1})

	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, s.Ticks())
	assert.Len(t, m.energyHistory, 1)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	assert.False(t, m.running)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	assert.Equal(t, 2, s.Ticks(), "paused model must not advance")

	theta := s.Config().Theta
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(Model)
	assert.InDelta(t, theta*1.25, s.Config().Theta, 1e-12)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	m = next.(Model)
	assert.True(t, m.scene.DrawOctants)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120-statsWidth-4, m.scene.Canvas.Width)

	view := m.View()
	assert.Contains(t, view, "PAUSED")
	assert.Contains(t, view, "Theta")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestSIFormat(t *testing.T) {
	assert.Equal(t, "1.50 Tm", SI(1.5e12, "m"))
	assert.Equal(t, "-2.00 kJ", SI(-2000, "J"))
	assert.Equal(t, "0 s", SI(0, "s"))
	assert.Equal(t, "1.000e-03 m", SI(1e-3, "m"))
}
