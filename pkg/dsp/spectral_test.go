package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageSpectrumTonePeaksAtItsBin(t *testing.T) {
	// 1 kHz lands exactly on bin 32 at 16 kHz / 512-point windows.
	sa := NewSpectralAnalyzer(SampleRate)
	frame, err := sa.AverageSpectrum(sine(1000, 0.5, 2048))
	require.NoError(t, err)

	assert.Equal(t, 4, frame.Windows)
	require.Len(t, frame.Bins, SpectrumBins)

	peak := 0
	for k, v := range frame.Bins {
		if v > frame.Bins[peak] {
			peak = k
		}
	}
	assert.Equal(t, 32, peak)
	assert.InDelta(t, 1000.0, frame.BinFrequency(peak, SampleRate), 1e-9)
}

func TestAverageSpectrumWindowCount(t *testing.T) {
	sa := NewSpectralAnalyzer(SampleRate)

	tests := []struct {
		samples int
		windows int
	}{
		{512, 1},
		{1000, 1},
		{1024, 2},
		{16000, 31},
	}

	for _, tt := range tests {
		frame, err := sa.AverageSpectrum(make([]float64, tt.samples))
		require.NoError(t, err)
		assert.Equal(t, tt.windows, frame.Windows, "samples=%d", tt.samples)
	}
}

func TestAverageSpectrumTooShort(t *testing.T) {
	sa := NewSpectralAnalyzer(SampleRate)

	_, err := sa.AverageSpectrum(make([]float64, 100))

	var short *InsufficientSamplesError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 100, short.Samples)
	assert.Equal(t, FFTSize, short.Required)
}

func TestAverageSpectrumSilence(t *testing.T) {
	sa := NewSpectralAnalyzer(SampleRate)
	frame, err := sa.AverageSpectrum(make([]float64, 4096))
	require.NoError(t, err)

	for _, v := range frame.Bins {
		assert.Zero(t, v)
	}
}

func TestHanningWindowShape(t *testing.T) {
	w := hanning(FFTSize)

	assert.Zero(t, w[0])
	assert.InDelta(t, 0.0, w[FFTSize-1], 1e-12)

	// Symmetric window: mirrored samples match.
	for i := 0; i < FFTSize/2; i++ {
		assert.InDelta(t, w[i], w[FFTSize-1-i], 1e-12)
	}
}

func TestRMSDensity(t *testing.T) {
	assert.Zero(t, RMSDensity(nil))

	constant := make([]float64, 100)
	for i := range constant {
		constant[i] = 0.5
	}
	assert.InDelta(t, 0.5, RMSDensity(constant), 1e-12)

	assert.InDelta(t, 1.0/math.Sqrt2, RMSDensity(sine(1000, 1.0, SampleRate)), 1e-3)
}
