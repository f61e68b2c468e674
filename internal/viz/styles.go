package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinchain/internal/micromag"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	StatusConverged = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusWarning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(16)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

// StatusBadge renders a relaxation status with its colour.
func StatusBadge(s micromag.Status) string {
	label := strings.ToUpper(strings.ReplaceAll(s.String(), "_", " "))
	switch s {
	case micromag.StatusConverged:
		return StatusConverged.Render(label)
	case micromag.StatusMaxIterations:
		return StatusWarning.Render(label)
	default:
		return StatusRunning.Render(label)
	}
}

// Summary renders the outcome of a finished run as a bordered panel.
func Summary(title string, r *micromag.Result) string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(title) + "\n")
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("status", StatusBadge(r.Status))
	row("rule", r.Rule)
	row("sites", fmt.Sprintf("%d", len(r.Final)))
	row("iterations", fmt.Sprintf("%d", r.Iterations))
	row("max change", fmt.Sprintf("%.3e", r.MaxChange))
	row("energy", fmt.Sprintf("%.6e -> %.6e", r.InitialEnergy, r.FinalEnergy))
	row("energy est.", fmt.Sprintf("%.6e", r.EnergyChange))
	s.WriteString(SparklineChart(r.History, 40))
	return Panel.Render(s.String())
}

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// SparklineChart renders log10 of a positive series, sampled to width.
// Large values are red, values near the minimum green.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	logs := logSeries(values)

	lo, hi := logs[0], logs[0]
	for _, v := range logs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(logs) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(logs); i++ {
		norm := (logs[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// floorLog is used for exact zeros so a converged step still plots.
const floorLog = -20.0

func logSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if v > 0 {
			out[i] = math.Max(math.Log10(v), floorLog)
		} else {
			out[i] = floorLog
		}
	}
	return out
}
