package micromag

// Constants holds the physical parameters and loop settings of a run. It is
// passed by value and never mutated by the engine.
type Constants struct {
	Exchange      float64 // A, exchange stiffness
	Saturation    float64 // Ms, saturation magnetization
	Anisotropy    float64 // Ku, uniaxial anisotropy constant
	EasyAxis      Vec3    // unit vector
	ExternalField Vec3
	Damping       float64 // alpha
	Gyromagnetic  float64 // gamma
	CellSize      float64 // dx
	TimeStep      float64 // dt, LLG rule only
	Permeability  float64 // mu0; 0 means fields are not divided
	MaxIterations int
	Tolerance     float64
	Workers       int
}

// DefaultTimeStep keeps the LLG rotation per step, γ|H|Δt/(1+α²), far below
// 0.1 for fields of order 1. Larger steps let the precession carry the
// residual deviation around the axis, and max_change then oscillates near
// tolerance instead of shrinking every step.
const (
	DefaultDamping       = 0.5
	DefaultGyromagnetic  = 2.21e5
	DefaultSaturation    = 8.0e5
	DefaultExchange      = 1.3e-11
	DefaultCellSize      = 1.0e-9
	DefaultAnisotropy    = 1.0e4
	DefaultTimeStep      = 1.0e-8
	DefaultMaxIterations = 10000
	DefaultTolerance     = 1e-6
	DefaultFieldStrength = 0.1
)

func DefaultConstants() Constants {
	return Constants{
		Exchange:      DefaultExchange,
		Saturation:    DefaultSaturation,
		Anisotropy:    DefaultAnisotropy,
		EasyAxis:      Vec3{1, 0, 0},
		ExternalField: Vec3{0, 0, DefaultFieldStrength},
		Damping:       DefaultDamping,
		Gyromagnetic:  DefaultGyromagnetic,
		CellSize:      DefaultCellSize,
		TimeStep:      DefaultTimeStep,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		Workers:       1,
	}
}

// mu is the divisor applied to anisotropy and Zeeman fields.
func (c Constants) mu() float64 {
	if c.Permeability > 0 {
		return c.Permeability
	}
	return 1
}
