package micromag

import (
	"fmt"
	"math"
	"math/rand"
)

// Chain is the 1D array of unit magnetic moments. Its size is fixed at
// construction and every moment is kept at unit length.
type Chain struct {
	moments []Vec3
}

// InitPolicy fills a freshly allocated moment array with an initial profile.
// The chain normalizes whatever the policy writes.
type InitPolicy interface {
	Name() string
	Fill(moments []Vec3)
}

func NewChain(size int, init InitPolicy) (*Chain, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}
	if init == nil {
		return nil, ErrNoInitPolicy
	}
	moments := make([]Vec3, size)
	init.Fill(moments)
	return newChain(moments)
}

// NewChainFrom builds a chain from explicit vectors, normalizing each one.
func NewChainFrom(vectors []Vec3) (*Chain, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w, got 0", ErrInvalidSize)
	}
	moments := make([]Vec3, len(vectors))
	copy(moments, vectors)
	return newChain(moments)
}

func newChain(moments []Vec3) (*Chain, error) {
	for i, m := range moments {
		u, ok := m.Normalize()
		if !ok {
			return nil, &StepError{Site: i, Moment: m, Wrapped: ErrDegenerateMoment}
		}
		moments[i] = u
	}
	return &Chain{moments: moments}, nil
}

func (c *Chain) Size() int { return len(c.moments) }

func (c *Chain) At(i int) Vec3 { return c.moments[i] }

func (c *Chain) Clone() *Chain {
	m := make([]Vec3, len(c.moments))
	copy(m, c.moments)
	return &Chain{moments: m}
}

// Magnetizations returns a read-only copy of the current moments.
func (c *Chain) Magnetizations() Snapshot {
	s := make(Snapshot, len(c.moments))
	copy(s, c.moments)
	return s
}

// Snapshot is an ordered copy of a chain's moments, one triple per site.
type Snapshot []Vec3

// Components returns the k-th component of every moment (0=x, 1=y, 2=z).
func (s Snapshot) Components(k int) []float64 {
	out := make([]float64, len(s))
	for i, m := range s {
		out[i] = m[k]
	}
	return out
}

type easyAxisInit struct {
	axis Vec3
	tilt float64
}

// EasyAxis starts every moment close to axis, tilted by a small fixed
// amount toward a perpendicular direction.
func EasyAxis(axis Vec3, tilt float64) InitPolicy {
	return easyAxisInit{axis: axis, tilt: tilt}
}

func (p easyAxisInit) Name() string { return "easy-axis" }

func (p easyAxisInit) Fill(moments []Vec3) {
	m := p.axis.Add(perpendicular(p.axis).Scale(p.tilt))
	for i := range moments {
		moments[i] = m
	}
}

func perpendicular(v Vec3) Vec3 {
	ref := Vec3{0, 0, 1}
	if math.Abs(v[2]) > 0.9*v.Norm() {
		ref = Vec3{0, 1, 0}
	}
	p, ok := v.Cross(ref).Normalize()
	if !ok {
		return Vec3{1, 0, 0}
	}
	return p
}

type helixInit struct{}

// Helix produces the sinusoidal helical profile
// (sin 2πi/N, cos 2πi/N, sin πi/N).
func Helix() InitPolicy { return helixInit{} }

func (helixInit) Name() string { return "helix" }

func (helixInit) Fill(moments []Vec3) {
	n := float64(len(moments))
	for i := range moments {
		phase := float64(i) / n
		moments[i] = Vec3{
			math.Sin(2 * math.Pi * phase),
			math.Cos(2 * math.Pi * phase),
			math.Sin(math.Pi * phase),
		}
	}
}

type randomInit struct {
	seed int64
}

// Random draws moments uniformly on the unit sphere from a seeded source.
func Random(seed int64) InitPolicy { return randomInit{seed: seed} }

func (randomInit) Name() string { return "random" }

func (p randomInit) Fill(moments []Vec3) {
	rng := rand.New(rand.NewSource(p.seed))
	for i := range moments {
		for {
			v := Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
			if v.Norm() > 1e-12 {
				moments[i] = v
				break
			}
		}
	}
}

type uniformInit struct {
	dir Vec3
}

// Uniform sets every moment to dir.
func Uniform(dir Vec3) InitPolicy { return uniformInit{dir: dir} }

func (uniformInit) Name() string { return "uniform" }

func (p uniformInit) Fill(moments []Vec3) {
	for i := range moments {
		moments[i] = p.dir
	}
}
