package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1)
}

func (t Theme) value() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) status(paused bool, failed bool) lipgloss.Style {
	switch {
	case failed:
		return lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	case paused:
		return lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	}
}

// row renders one label/value line of the stats panel.
func (t Theme) row(label, value string) string {
	return labelStyle.Render(label) + t.value().Render(value) + "\n"
}

// SI formats v with an SI prefix, e.g. 1.50 T for 1.5e12.
func SI(v float64, unit string) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%g %s", v, unit)
	}
	prefixes := []string{"", "k", "M", "G", "T", "P", "E", "Z", "Y"}
	exp := int(math.Floor(math.Log10(math.Abs(v)) / 3))
	if exp < 0 || exp >= len(prefixes) {
		return fmt.Sprintf("%.3e %s", v, unit)
	}
	return fmt.Sprintf("%.2f %s%s", v/math.Pow(1000, float64(exp)), prefixes[exp], unit)
}

// Separator renders a muted horizontal rule.
func Separator(width int) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Render(strings.Repeat("─", width))
}
