package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// AmplitudeSpectrum returns |F(k)| for k = 0..n/2 of a real profile sampled
// along the chain. Any length is accepted.
func AmplitudeSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	amp := make([]float64, len(data)/2+1)
	for i := range amp {
		amp[i] = cmplx.Abs(spectrum[i])
	}
	return amp
}

// DominantMode returns the non-zero wavenumber index with the largest
// amplitude. It returns 0 when the profile has no oscillating component.
func DominantMode(amp []float64) (k int, amplitude float64) {
	for i := 1; i < len(amp); i++ {
		if amp[i] > amplitude {
			k, amplitude = i, amp[i]
		}
	}
	return k, amplitude
}
