package micromag

import "math"

// Vec3 is a three-component real vector.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// MaxAbs returns the largest absolute component.
func (v Vec3) MaxAbs() float64 {
	return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
}

func (v Vec3) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Normalize returns v scaled to unit length. ok is false when v has zero or
// non-finite length.
func (v Vec3) Normalize() (u Vec3, ok bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return v, false
	}
	return v.Scale(1 / n), true
}
