package analysis

import (
	"math"

	"github.com/san-kum/spinchain/internal/micromag"
)

type Stats struct {
	Mean          micromag.Vec3
	MeanAlignment float64 // mean m·e
	MaxTwist      float64 // largest angle between neighbours, radians
	TotalTwist    float64 // sum of neighbour angles, radians
}

func Summarize(s micromag.Snapshot, easyAxis micromag.Vec3) Stats {
	var st Stats
	if len(s) == 0 {
		return st
	}

	for i, m := range s {
		st.Mean = st.Mean.Add(m)
		st.MeanAlignment += m.Dot(easyAxis)
		if i > 0 {
			a := angle(s[i-1], m)
			st.TotalTwist += a
			st.MaxTwist = math.Max(st.MaxTwist, a)
		}
	}

	n := float64(len(s))
	st.Mean = st.Mean.Scale(1 / n)
	st.MeanAlignment /= n
	return st
}

// angle between two unit vectors, robust near 0 and π.
func angle(a, b micromag.Vec3) float64 {
	return math.Atan2(a.Cross(b).Norm(), a.Dot(b))
}
