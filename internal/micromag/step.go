package micromag

import (
	"fmt"
	"math"
)

// UpdateRule computes the raw per-site update Δm from a moment and the
// effective field acting on it.
type UpdateRule interface {
	Name() string
	Delta(m, h Vec3, c Constants) Vec3
}

// Damping is the gradient-descent-like rule Δm = -α·γ·Ms·H.
type Damping struct{}

func (Damping) Name() string { return "damping" }

func (Damping) Delta(_, h Vec3, c Constants) Vec3 {
	return h.Scale(-c.Damping * c.Gyromagnetic * c.Saturation)
}

// LLG is the Landau-Lifshitz form with precession and damping torques,
// integrated with one explicit Euler step of size TimeStep. Convergence is
// monotone near a fixed point only while γ|H|Δt/(1+α²) stays below about
// 0.1; see DefaultTimeStep.
type LLG struct{}

func (LLG) Name() string { return "llg" }

func (LLG) Delta(m, h Vec3, c Constants) Vec3 {
	mxh := m.Cross(h)
	mxmxh := m.Cross(mxh)
	pre := -c.Gyromagnetic / (1 + c.Damping*c.Damping)
	dmdt := mxh.Add(mxmxh.Scale(c.Damping)).Scale(pre)
	return dmdt.Scale(c.TimeStep)
}

// RuleByName returns the update rule registered under name.
func RuleByName(name string) (UpdateRule, error) {
	switch name {
	case "damping":
		return Damping{}, nil
	case "llg":
		return LLG{}, nil
	default:
		return nil, fmt.Errorf("unknown update rule: %s", name)
	}
}

// RuleNames lists the names accepted by RuleByName.
func RuleNames() []string {
	return []string{"damping", "llg"}
}

type stepStats struct {
	maxChange    float64
	energyChange float64
}

// Step performs one synchronous relaxation step and returns the largest
// absolute component of any Δm. The effective field is evaluated on the
// pre-step moments for every site, and no moment is written until all
// updates have been normalized. On error the chain is left unchanged.
func Step(chain *Chain, c Constants, rule UpdateRule) (float64, error) {
	st, err := step(chain, c, rule)
	return st.maxChange, err
}

func step(chain *Chain, c Constants, rule UpdateRule) (stepStats, error) {
	h := EffectiveField(chain, c)
	m := chain.moments
	n := len(m)

	next := make([]Vec3, n)
	change := make([]float64, n)
	work := make([]float64, n)
	bad := make([]bool, n)

	parallelFor(n, c.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			dm := rule.Delta(m[i], h[i], c)
			change[i] = dm.MaxAbs()
			work[i] = dm.Dot(h[i])
			u, ok := m[i].Add(dm).Normalize()
			next[i], bad[i] = u, !ok
		}
	})

	var st stepStats
	for i := 0; i < n; i++ {
		if bad[i] || math.IsNaN(change[i]) {
			return stepStats{}, &StepError{Site: i, Moment: m[i], Wrapped: ErrDegenerateMoment}
		}
		st.maxChange = math.Max(st.maxChange, change[i])
		st.energyChange += work[i]
	}
	st.energyChange *= -c.Saturation * c.CellSize

	copy(chain.moments, next)
	return st, nil
}
