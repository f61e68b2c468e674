package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/spinchain/internal/micromag"
)

func TestSummarize_Uniform(t *testing.T) {
	s := micromag.Snapshot{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}
	st := Summarize(s, micromag.Vec3{1, 0, 0})

	if st.Mean != (micromag.Vec3{1, 0, 0}) {
		t.Errorf("mean = %v", st.Mean)
	}
	if st.MeanAlignment != 1 {
		t.Errorf("alignment = %v, want 1", st.MeanAlignment)
	}
	if st.MaxTwist != 0 || st.TotalTwist != 0 {
		t.Errorf("twist = %v/%v, want 0", st.MaxTwist, st.TotalTwist)
	}
}

func TestSummarize_Twist(t *testing.T) {
	s := micromag.Snapshot{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}}
	st := Summarize(s, micromag.Vec3{1, 0, 0})

	if math.Abs(st.MaxTwist-math.Pi/2) > 1e-12 {
		t.Errorf("max twist = %v, want π/2", st.MaxTwist)
	}
	if math.Abs(st.TotalTwist-math.Pi) > 1e-12 {
		t.Errorf("total twist = %v, want π", st.TotalTwist)
	}
	if math.Abs(st.MeanAlignment) > 1e-12 {
		t.Errorf("alignment = %v, want 0", st.MeanAlignment)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if st := Summarize(nil, micromag.Vec3{1, 0, 0}); st != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", st)
	}
}

func TestAmplitudeSpectrum_DominantMode(t *testing.T) {
	n := 40
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 3 * float64(i) / float64(n))
	}

	ps := AmplitudeSpectrum(data)
	if len(ps) != n/2+1 {
		t.Fatalf("spectrum length = %d, want %d", len(ps), n/2+1)
	}

	// a unit sine of n samples has |F(k)| = n/2, not its square
	k, amp := DominantMode(ps)
	if k != 3 {
		t.Errorf("dominant mode = %d, want 3", k)
	}
	if math.Abs(amp-float64(n)/2) > 1e-8 {
		t.Errorf("amplitude = %v, want %v", amp, float64(n)/2)
	}
}

func TestAmplitudeSpectrum_Constant(t *testing.T) {
	ps := AmplitudeSpectrum([]float64{1, 1, 1, 1})
	for k := 1; k < len(ps); k++ {
		if ps[k] > 1e-12 {
			t.Errorf("constant profile has amplitude %v at mode %d", ps[k], k)
		}
	}
	if math.Abs(ps[0]-4) > 1e-12 {
		t.Errorf("DC = %v, want 4", ps[0])
	}
}
