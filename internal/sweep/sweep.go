// Package sweep relaxes one chain per applied field strength and records
// the equilibrium reached at each, giving an M(H) curve.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/san-kum/spinchain/internal/analysis"
	"github.com/san-kum/spinchain/internal/config"
	"github.com/san-kum/spinchain/internal/micromag"
)

var ErrNoValues = errors.New("sweep: no field values")

// Point is the relaxed state at one applied field strength.
type Point struct {
	Field      float64
	Status     micromag.Status
	Iterations int
	MaxChange  float64
	Energy     float64
	Alignment  float64
	Mean       micromag.Vec3
}

// Sweep applies the field along Direction with each of Values in turn.
// Every run starts from the same initial chain built from the base config.
type Sweep struct {
	base      *config.Config
	direction micromag.Vec3
	values    []float64
	parallel  int
}

func New(base *config.Config, direction micromag.Vec3, values []float64, parallel int) *Sweep {
	if parallel < 1 {
		parallel = 1
	}
	return &Sweep{base: base, direction: direction, values: values, parallel: parallel}
}

// Run relaxes every field value, at most parallel at a time. Points come
// back in the order of Values.
func (s *Sweep) Run(ctx context.Context) ([]Point, error) {
	if len(s.values) == 0 {
		return nil, ErrNoValues
	}
	dir, ok := s.direction.Normalize()
	if !ok {
		return nil, fmt.Errorf("sweep: direction %v: %w", s.direction, micromag.ErrDegenerateMoment)
	}

	c, err := s.base.Constants()
	if err != nil {
		return nil, err
	}
	rule, err := s.base.UpdateRule()
	if err != nil {
		return nil, err
	}
	policy, err := s.base.InitPolicy()
	if err != nil {
		return nil, err
	}
	initial, err := micromag.NewChain(s.base.Size, policy)
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(s.values))
	errs := make([]error, len(s.values))
	sem := make(chan struct{}, s.parallel)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	var wg sync.WaitGroup
	for i, h := range s.values {
		wg.Add(1)
		go func(idx int, h float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cc := c
			cc.ExternalField = dir.Scale(h)

			r := micromag.NewRelaxer(cc, rule)
			r.SetLogger(quiet)
			res, err := r.Minimize(ctx, initial.Clone())
			if err != nil {
				errs[idx] = fmt.Errorf("sweep: field %g: %w", h, err)
				return
			}

			stats := analysis.Summarize(res.Final, cc.EasyAxis)
			points[idx] = Point{
				Field:      h,
				Status:     res.Status,
				Iterations: res.Iterations,
				MaxChange:  res.MaxChange,
				Energy:     res.FinalEnergy,
				Alignment:  stats.Mean.Dot(dir),
				Mean:       stats.Mean,
			}
		}(i, h)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return points, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
