package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, amplitude float64, samples int) []float64 {
	out := make([]float64, samples)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
	}
	return out
}

func TestHighPassCoefficientsMatchReference(t *testing.T) {
	// Second-order-section design at 100 Hz / 16 kHz, values from the
	// deployed device firmware.
	sections := butterworthSections(HighPassOrder, HighPassCutoffHz, SampleRate, true)
	require.Len(t, sections, 1)

	s := sections[0]
	assert.InDelta(t, 0.9726139, s.b0, 1e-6)
	assert.InDelta(t, -2*0.9726139, s.b1, 2e-6)
	assert.InDelta(t, 0.9726139, s.b2, 1e-6)
	assert.InDelta(t, -1.9444777, s.a1, 1e-6)
	assert.InDelta(t, 0.9459779, s.a2, 1e-6)
}

func TestLowPassUnityDCGain(t *testing.T) {
	sections := butterworthSections(LowPassOrder, LowPassCutoffHz, SampleRate, false)
	require.Len(t, sections, 2)

	gain := 1.0
	for _, s := range sections {
		gain *= (s.b0 + s.b1 + s.b2) / (1 + s.a1 + s.a2)
	}
	assert.InDelta(t, 1.0, gain, 1e-9)
}

func TestConvertADC(t *testing.T) {
	signal := ConvertADC([]uint16{0, 2048, 4095})

	require.Len(t, signal, 3)
	assert.InDelta(t, 0.0, signal[0], 1e-12)
	assert.InDelta(t, 1.0, signal[1], 1e-12)
	assert.InDelta(t, 4095.0/2048.0, signal[2], 1e-12)
}

func TestProcessConstantSignalIsSilence(t *testing.T) {
	chain := NewFilterChain(SampleRate)
	signal := make([]float64, 2048)
	for i := range signal {
		signal[i] = 0.73
	}

	out := chain.Process(signal, 1.0)
	for _, v := range out {
		assert.InDelta(t, 0.0, v, 1e-12)
	}
}

func TestProcessGainIsLinear(t *testing.T) {
	chain := NewFilterChain(SampleRate)
	signal := sine(440, 0.2, 4096)

	unity := chain.Process(signal, 1.0)
	doubled := chain.Process(signal, 2.0)

	for i := range unity {
		assert.InDelta(t, 2*unity[i], doubled[i], 1e-12)
	}
}

func TestProcessBandShaping(t *testing.T) {
	chain := NewFilterChain(SampleRate)

	// 20 Hz sits well below the high-pass corner and must be attenuated
	// hard; 1 kHz is mid-band and must pass nearly untouched. Skip the
	// first windows to let the transient settle.
	low := chain.Process(sine(20, 1.0, SampleRate), 1.0)
	mid := chain.Process(sine(1000, 1.0, SampleRate), 1.0)

	lowRMS := RMSDensity(low[4096:])
	midRMS := RMSDensity(mid[4096:])

	assert.Less(t, lowRMS, 0.05)
	assert.InDelta(t, 1.0/math.Sqrt2, midRMS, 0.02)
}

func TestProcessEmptySignal(t *testing.T) {
	chain := NewFilterChain(SampleRate)
	assert.Empty(t, chain.Process(nil, 1.0))
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	chain := NewFilterChain(SampleRate)
	signal := sine(300, 0.5, 1024)
	original := make([]float64, len(signal))
	copy(original, signal)

	chain.Process(signal, 0.35)
	assert.Equal(t, original, signal)
}
