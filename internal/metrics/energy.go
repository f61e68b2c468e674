package metrics

import (
	"math"

	"github.com/san-kum/spinchain/internal/micromag"
)

// EnergyTrace samples the total energy every Every iterations.
type EnergyTrace struct {
	name       string
	c          micromag.Constants
	every      int
	Iterations []int
	Energies   []float64
}

func NewEnergyTrace(c micromag.Constants, every int) *EnergyTrace {
	if every < 1 {
		every = 1
	}
	return &EnergyTrace{name: "energy", c: c, every: every}
}

func (e *EnergyTrace) Name() string { return e.name }

func (e *EnergyTrace) OnStep(iteration int, _ float64, chain *micromag.Chain) {
	if iteration%e.every != 0 {
		return
	}
	e.Iterations = append(e.Iterations, iteration)
	e.Energies = append(e.Energies, micromag.Energy(chain, e.c))
}

// Value returns the last sampled energy, or 0 before any sample.
func (e *EnergyTrace) Value() float64 {
	if len(e.Energies) == 0 {
		return 0
	}
	return e.Energies[len(e.Energies)-1]
}

// Increases counts sampled intervals where the energy went up.
func (e *EnergyTrace) Increases() int {
	n := 0
	for i := 1; i < len(e.Energies); i++ {
		if e.Energies[i] > e.Energies[i-1] {
			n++
		}
	}
	return n
}

func (e *EnergyTrace) Reset() {
	e.Iterations = e.Iterations[:0]
	e.Energies = e.Energies[:0]
}

// NormDrift tracks the largest deviation of any |m| from 1 seen at an
// iteration boundary.
type NormDrift struct {
	name     string
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) OnStep(_ int, _ float64, chain *micromag.Chain) {
	n.samples++
	for i := 0; i < chain.Size(); i++ {
		n.maxDrift = math.Max(n.maxDrift, math.Abs(chain.At(i).Norm()-1))
	}
}

func (n *NormDrift) Value() float64 { return n.maxDrift }

func (n *NormDrift) Samples() int { return n.samples }

func (n *NormDrift) Reset() {
	n.maxDrift = 0
	n.samples = 0
}
