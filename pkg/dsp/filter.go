package dsp

import (
	"math"

	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// Fixed pipeline parameters. Device and host sides must agree on every one
// of these for the derived features to be comparable.
const (
	SampleRate = 16000

	HighPassCutoffHz = 100.0
	HighPassOrder    = 2
	LowPassCutoffHz  = 6000.0
	LowPassOrder     = 3

	// ADCFullScale is half the 12-bit ADC range. Raw readings are centered
	// and scaled by this value so a full-swing signal maps to roughly ±1.
	ADCFullScale = 2048.0
)

// section is one second-order filter section (Direct Form II Transposed).
// First-order sections are represented with b2 = a2 = 0.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// FilterChain applies the fixed two-stage Butterworth band shaping used by
// both the acquisition device and the host reference: a 2nd-order high-pass
// at 100 Hz followed by a 3rd-order low-pass at 6 kHz. Coefficients are
// derived once at construction; each Process call is a fresh offline pass
// with zeroed delay state.
type FilterChain struct {
	sampleRate float64
	highpass   []section
	lowpass    []section
	logger     logging.Logger
}

// NewFilterChain designs the filter sections for the given sample rate.
func NewFilterChain(sampleRate int) *FilterChain {
	fs := float64(sampleRate)
	return &FilterChain{
		sampleRate: fs,
		highpass:   butterworthSections(HighPassOrder, HighPassCutoffHz, fs, true),
		lowpass:    butterworthSections(LowPassOrder, LowPassCutoffHz, fs, false),
		logger: logging.WithFields(logging.Fields{
			"component":   "filter_chain",
			"sample_rate": sampleRate,
		}),
	}
}

// ConvertADC scales raw unsigned ADC readings to float. DC removal happens
// inside Process, so the net normalization is (x - mean) / 2048 on both the
// device-equivalent and host-equivalent paths.
func ConvertADC(raw []uint16) []float64 {
	signal := make([]float64, len(raw))
	for i, v := range raw {
		signal[i] = float64(v) / ADCFullScale
	}
	return signal
}

// Process runs the full chain over the signal: DC centering, scalar gain,
// high-pass, low-pass. The input is not modified. Step order is fixed; the
// cross-implementation parity guarantee depends on it.
func (c *FilterChain) Process(signal []float64, gain float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(len(signal))

	for i, v := range signal {
		out[i] = (v - mean) * gain
	}

	for _, s := range c.highpass {
		applySection(s, out)
	}
	for _, s := range c.lowpass {
		applySection(s, out)
	}

	c.logger.Debug("filter pass complete", logging.Fields{
		"samples":   len(signal),
		"gain":      gain,
		"dc_offset": mean,
	})

	return out
}

// applySection filters the buffer in place through one section using the
// Direct Form II Transposed recurrence, starting from zero delay state.
func applySection(s section, x []float64) {
	var w1, w2 float64
	for i, v := range x {
		y := s.b0*v + w1
		w1 = s.b1*v - s.a1*y + w2
		w2 = s.b2*v - s.a2*y
		x[i] = y
	}
}

// butterworthSections designs a digital Butterworth filter as cascaded
// second-order sections via the bilinear transform with frequency
// prewarping. The result matches the reference second-order-section design
// used on the host side (sosfilt semantics, unity passband gain).
func butterworthSections(order int, cutoffHz, sampleRate float64, highpass bool) []section {
	k := 2 * sampleRate
	wc := k * math.Tan(math.Pi*cutoffHz/sampleRate)

	sections := make([]section, 0, (order+1)/2)

	// Conjugate pole pairs of the analog prototype, scaled to wc. Pole k
	// sits at wc*exp(i*pi*(2k+order+1)/(2*order)); pairing k with its
	// mirror keeps each section real-valued.
	for i := 0; i < order/2; i++ {
		theta := math.Pi * float64(2*i+order+1) / float64(2*order)
		re := wc * math.Cos(theta)

		// Analog section denominator: s^2 + a1*s + a0.
		a1 := -2 * re
		a0 := wc * wc

		var b0, b1, b2 float64
		if highpass {
			b2 = 1
		} else {
			b0 = a0
		}
		sections = append(sections, bilinearBiquad(b0, b1, b2, a0, a1, k))
	}

	// Odd orders carry one real pole at -wc.
	if order%2 == 1 {
		var b0, b1 float64
		if highpass {
			b1 = 1
		} else {
			b0 = wc
		}
		sections = append(sections, bilinearFirstOrder(b0, b1, wc, k))
	}

	return sections
}

// bilinearBiquad maps an analog biquad (b2*s^2+b1*s+b0)/(s^2+a1*s+a0) to a
// digital section with s = k*(1-z^-1)/(1+z^-1).
func bilinearBiquad(b0, b1, b2, a0, a1, k float64) section {
	k2 := k * k
	d := k2 + a1*k + a0
	return section{
		b0: (b2*k2 + b1*k + b0) / d,
		b1: (2*b0 - 2*b2*k2) / d,
		b2: (b2*k2 - b1*k + b0) / d,
		a1: (2*a0 - 2*k2) / d,
		a2: (k2 - a1*k + a0) / d,
	}
}

// bilinearFirstOrder maps an analog first-order stage (b1*s+b0)/(s+a0).
func bilinearFirstOrder(b0, b1, a0, k float64) section {
	d := k + a0
	return section{
		b0: (b1*k + b0) / d,
		b1: (b0 - b1*k) / d,
		a1: (a0 - k) / d,
	}
}
