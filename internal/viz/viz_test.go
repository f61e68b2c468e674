package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/spinchain/internal/micromag"
)

func TestArrow(t *testing.T) {
	tests := []struct {
		m    micromag.Vec3
		want rune
	}{
		{micromag.Vec3{1, 0, 0}, '→'},
		{micromag.Vec3{0, 1, 0}, '↑'},
		{micromag.Vec3{-1, 0, 0}, '←'},
		{micromag.Vec3{0, -1, 0}, '↓'},
		{micromag.Vec3{0.7, 0.7, 0}, '↗'},
		{micromag.Vec3{0, 0, 1}, '⊙'},
		{micromag.Vec3{0, 0, -1}, '⊗'},
	}

	for _, tt := range tests {
		if got := arrow(tt.m); got != tt.want {
			t.Errorf("arrow(%v) = %c, want %c", tt.m, got, tt.want)
		}
	}
}

func TestRenderChain_Wraps(t *testing.T) {
	s := make(micromag.Snapshot, 10)
	for i := range s {
		s[i] = micromag.Vec3{1, 0, 0}
	}
	lines := strings.Split(renderChain(s, 4), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[2] != "→→" {
		t.Errorf("last line = %q", lines[2])
	}
}

func TestModel_StepsToConvergence(t *testing.T) {
	c := micromag.DefaultConstants()
	c.ExternalField = micromag.Vec3{1, 0, 0}
	chain, err := micromag.NewChain(8, micromag.Uniform(c.EasyAxis))
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewModel("test", chain, c, micromag.LLG{})
	m, _ = m.Update(TickMsg(time.Now()))

	lm := m.(Model)
	if lm.status != micromag.StatusConverged {
		t.Errorf("status = %v, want converged", lm.status)
	}
	if lm.iteration != 1 {
		t.Errorf("iteration = %d, want 1", lm.iteration)
	}
	if !strings.Contains(lm.View(), "CONVERGED") {
		t.Error("view does not show converged status")
	}
}

func TestModel_IterationCap(t *testing.T) {
	c := micromag.DefaultConstants()
	c.MaxIterations = 3
	chain, _ := micromag.NewChain(8, micromag.Helix())

	var m tea.Model = NewModel("cap", chain, c, micromag.Damping{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m, _ = m.Update(TickMsg(time.Now()))

	lm := m.(Model)
	if lm.status != micromag.StatusMaxIterations {
		t.Errorf("status = %v, want max_iterations", lm.status)
	}
	if lm.iteration != 3 {
		t.Errorf("iteration = %d, want 3", lm.iteration)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.(Model).iteration != 0 {
		t.Error("reset did not clear iteration count")
	}
}

func TestSummary(t *testing.T) {
	r := &micromag.Result{
		Status:     micromag.StatusMaxIterations,
		Rule:       "damping",
		Iterations: 10,
		History:    []float64{1, 0.1, 0},
		Final:      micromag.Snapshot{{1, 0, 0}},
	}
	out := Summary("run", r)
	for _, want := range []string{"MAX ITERATIONS", "damping", "10"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPlots(t *testing.T) {
	s := micromag.Snapshot{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if ProfilePlot(s, 30, 5) == "" {
		t.Error("empty profile plot")
	}
	if ConvergencePlot([]float64{1, 0.1, 0.01}, 30, 5) == "" {
		t.Error("empty convergence plot")
	}
	if ProfilePlot(nil, 30, 5) != "" || ConvergencePlot(nil, 30, 5) != "" {
		t.Error("expected empty plots for empty input")
	}
}
