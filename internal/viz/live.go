package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinchain/internal/micromag"
)

const (
	historyCapacity = 600
	maxStepsPerTick = 1024
	chainWidth      = 64
)

var (
	chainStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
)

type TickMsg time.Time

// Model steps a chain a few iterations per frame and draws it.
type Model struct {
	title        string
	c            micromag.Constants
	rule         micromag.UpdateRule
	initial      *micromag.Chain
	chain        *micromag.Chain
	iteration    int
	maxChange    float64
	history      []float64
	status       micromag.Status
	stepsPerTick int
	running      bool
	err          error
}

func NewModel(title string, chain *micromag.Chain, c micromag.Constants, rule micromag.UpdateRule) Model {
	return Model{
		title:        title,
		c:            c,
		rule:         rule,
		initial:      chain.Clone(),
		chain:        chain,
		history:      make([]float64, 0, historyCapacity),
		status:       micromag.StatusRunning,
		stepsPerTick: 1,
		running:      true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the relaxation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		}
	case TickMsg:
		if m.running && m.status == micromag.StatusRunning && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick iterations, stopping at a terminal state.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		change, err := micromag.Step(m.chain, m.c, m.rule)
		if err != nil {
			m.err = err
			return
		}
		m.iteration++
		m.maxChange = change
		m.history = append(m.history, change)
		if len(m.history) > historyCapacity {
			m.history = m.history[len(m.history)-historyCapacity:]
		}

		if change < m.c.Tolerance {
			m.status = micromag.StatusConverged
			return
		}
		if m.iteration >= m.c.MaxIterations {
			m.status = micromag.StatusMaxIterations
			return
		}
	}
}

func (m *Model) reset() {
	m.chain = m.initial.Clone()
	m.iteration = 0
	m.maxChange = 0
	m.history = m.history[:0]
	m.status = micromag.StatusRunning
	m.err = nil
}

// View renders the chain and the run statistics side by side.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")

	status := StatusBadge(m.status)
	if !m.running && m.status == micromag.StatusRunning {
		status = StatusWarning.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(m.history) > 1 {
		s.WriteString(graphStyle.Render(ConvergencePlot(m.history, 30, 4)) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("rule", m.rule.Name())
	row("iteration", fmt.Sprintf("%d / %d", m.iteration, m.c.MaxIterations))
	row("progress", ProgressBar(float64(m.iteration)/float64(max(m.c.MaxIterations, 1)), 20))
	row("max change", fmt.Sprintf("%.3e", m.maxChange))
	row("tolerance", fmt.Sprintf("%.1e", m.c.Tolerance))
	row("energy", fmt.Sprintf("%.6e", micromag.Energy(m.chain, m.c)))
	row("steps/frame", fmt.Sprintf("%d", m.stepsPerTick))

	if m.err != nil {
		s.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("SP:Pause R:Reset +/-:Speed Q:Quit"))

	chainView := chainStyle.Render(renderChain(m.chain.Magnetizations(), chainWidth))
	return lipgloss.JoinHorizontal(lipgloss.Top, chainView, statsStyle.Render(s.String()))
}

// renderChain draws each moment as an arrow of its in-plane (x, y)
// direction, wrapped at width. Moments mostly along ±z are drawn as ⊙/⊗.
func renderChain(s micromag.Snapshot, width int) string {
	var b strings.Builder
	for i, mv := range s {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}
		b.WriteRune(arrow(mv))
	}
	return b.String()
}

var arrows = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

func arrow(m micromag.Vec3) rune {
	inPlane := math.Hypot(m[0], m[1])
	if inPlane < math.Abs(m[2])/2 {
		if m[2] >= 0 {
			return '⊙'
		}
		return '⊗'
	}
	a := math.Atan2(m[1], m[0])
	idx := int(math.Round(a/(math.Pi/4))) % 8
	if idx < 0 {
		idx += 8
	}
	return arrows[idx]
}
