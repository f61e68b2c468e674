package micromag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Status is the state of a relaxation run.
type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusMaxIterations
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max_iterations"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(iteration int, maxChange float64, chain *Chain)
}

// Result is the outcome of Minimize. A run that hits the iteration cap is
// still a valid result; only Status tells it apart from a converged one.
type Result struct {
	Status        Status
	Rule          string
	Iterations    int
	MaxChange     float64
	History       []float64
	InitialEnergy float64
	FinalEnergy   float64
	EnergyChange  float64 // sum of per-step estimates -Ms·dx·Σ Δm·H
	Final         Snapshot
}

// Converged reports whether the run stopped below tolerance.
func (r *Result) Converged() bool { return r.Status == StatusConverged }

// Relaxer drives Step until max_change drops below the tolerance or the
// iteration cap is reached.
type Relaxer struct {
	c         Constants
	rule      UpdateRule
	observers []Observer
	logger    *slog.Logger
}

func NewRelaxer(c Constants, rule UpdateRule) *Relaxer {
	return &Relaxer{
		c:         c,
		rule:      rule,
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
}

func (r *Relaxer) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Relaxer) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

func (r *Relaxer) Constants() Constants { return r.c }

func (r *Relaxer) Rule() UpdateRule { return r.rule }

// Minimize relaxes chain in place. Non-convergence is reported through
// Result.Status, not as an error. A degenerate update or a canceled context
// stops the run with an error.
func (r *Relaxer) Minimize(ctx context.Context, chain *Chain) (*Result, error) {
	capacity := r.c.MaxIterations
	if capacity > 4096 {
		capacity = 4096
	}
	result := &Result{
		Status:        StatusRunning,
		Rule:          r.rule.Name(),
		History:       make([]float64, 0, capacity),
		InitialEnergy: Energy(chain, r.c),
	}

	for iter := 1; iter <= r.c.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w after %d iterations: %w", ErrContextCanceled, result.Iterations, ctx.Err())
		default:
		}

		st, err := step(chain, r.c, r.rule)
		if err != nil {
			var se *StepError
			if errors.As(err, &se) {
				se.Iteration = iter
			}
			return nil, err
		}

		result.Iterations = iter
		result.MaxChange = st.maxChange
		result.EnergyChange += st.energyChange
		result.History = append(result.History, st.maxChange)

		for _, o := range r.observers {
			o.OnStep(iter, st.maxChange, chain)
		}

		if st.maxChange < r.c.Tolerance {
			result.Status = StatusConverged
			break
		}
	}

	if result.Status != StatusConverged {
		result.Status = StatusMaxIterations
	}
	result.FinalEnergy = Energy(chain, r.c)
	result.Final = chain.Magnetizations()

	if result.Converged() {
		r.logger.Info("relaxation converged",
			"rule", result.Rule,
			"iterations", result.Iterations,
			"max_change", result.MaxChange,
			"energy", result.FinalEnergy)
	} else {
		r.logger.Warn("relaxation did not converge",
			"rule", result.Rule,
			"max_iterations", r.c.MaxIterations,
			"max_change", result.MaxChange,
			"energy", result.FinalEnergy)
	}

	return result, nil
}
