package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/AneteZepa/HappyBees/pkg/logging"
)

const (
	// FFTSize is the analysis window length. Non-overlapping hop: windows
	// tile the signal and trailing samples short of a full window are
	// discarded, never zero-padded.
	FFTSize = 512
	FFTHop  = 512

	// SpectrumBins is the number of magnitude bins of the real-input FFT.
	SpectrumBins = FFTSize/2 + 1
)

// InsufficientSamplesError reports a capture too short to fill a single
// analysis window.
type InsufficientSamplesError struct {
	Samples  int
	Required int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples for spectral analysis: got %d, need at least %d", e.Samples, e.Required)
}

// SpectralFrame is the averaged magnitude spectrum of one capture.
type SpectralFrame struct {
	Bins    []float64 `json:"bins"`    // SpectrumBins magnitudes
	Windows int       `json:"windows"` // windows averaged
}

// BinFrequency returns the center frequency of bin k in Hz.
func (f *SpectralFrame) BinFrequency(k int, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(FFTSize)
}

// SpectralAnalyzer computes Hanning-windowed average magnitude spectra.
type SpectralAnalyzer struct {
	sampleRate int
	window     []float64
	logger     logging.Logger
}

// NewSpectralAnalyzer creates an analyzer with a precomputed Hanning window.
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		window:     hanning(FFTSize),
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// hanning returns the symmetric Hanning window of length n, matching the
// numpy.hanning reference used when the models were trained.
func hanning(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// AverageSpectrum partitions the filtered signal into non-overlapping
// FFTSize windows, applies the Hanning window, and averages the real-FFT
// magnitude spectra across windows.
func (sa *SpectralAnalyzer) AverageSpectrum(signal []float64) (*SpectralFrame, error) {
	if len(signal) < FFTSize {
		return nil, &InsufficientSamplesError{Samples: len(signal), Required: FFTSize}
	}

	numWindows := (len(signal)-FFTSize)/FFTHop + 1

	accum := make([]float64, SpectrumBins)
	segment := make([]float64, FFTSize)

	for w := 0; w < numWindows; w++ {
		offset := w * FFTHop
		for i := 0; i < FFTSize; i++ {
			segment[i] = signal[offset+i] * sa.window[i]
		}

		spectrum := fft.FFTReal(segment)
		for k := 0; k < SpectrumBins; k++ {
			accum[k] += cmplx.Abs(spectrum[k])
		}
	}

	for k := range accum {
		accum[k] /= float64(numWindows)
	}

	sa.logger.Debug("spectrum averaged", logging.Fields{
		"windows": numWindows,
		"samples": len(signal),
	})

	return &SpectralFrame{Bins: accum, Windows: numWindows}, nil
}

// RMSDensity is the root-mean-square of the entire filtered buffer, the
// activity metric tracked across capture cycles.
func RMSDensity(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(signal)))
}
