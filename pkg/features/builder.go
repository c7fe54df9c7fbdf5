package features

import (
	"fmt"

	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// Mode selects the feature layout for the seasonal model in use.
type Mode string

const (
	// ModeSummer feeds the swarm/piping classifier:
	// [temp, humidity, hour, spike_ratio, bins 4..19].
	ModeSummer Mode = "summer"

	// ModeWinter feeds the anomaly autoencoder:
	// [temp, humidity, temp_variance, heater_power, heater_ratio].
	ModeWinter Mode = "winter"
)

const (
	// Epsilon guards the ratio denominators.
	Epsilon = 1e-6

	// Summer spectral band: bins 4..19 inclusive, roughly 125-594 Hz at
	// FFT size 512 and 16 kHz.
	SummerBinStart = 4
	SummerBinEnd   = 19
)

// WinterHeaterBins are the bins summed into heater power (~188-250 Hz).
var WinterHeaterBins = []int{6, 7, 8}

// Valid reports whether the mode names a known layout.
func (m Mode) Valid() bool {
	return m == ModeSummer || m == ModeWinter
}

// VectorWidth returns the feature vector length for the mode.
func (m Mode) VectorWidth() int {
	switch m {
	case ModeSummer:
		return 4 + (SummerBinEnd - SummerBinStart + 1)
	case ModeWinter:
		return 5
	default:
		return 0
	}
}

// FeatureLengthError reports a vector that does not match the classifier's
// declared input width. Mismatches are never reconciled by padding or
// truncation.
type FeatureLengthError struct {
	Mode Mode
	Got  int
	Want int
}

func (e *FeatureLengthError) Error() string {
	return fmt.Sprintf("%s feature vector has %d values, classifier expects %d", e.Mode, e.Got, e.Want)
}

// SensorReading holds the instantaneous climate inputs for one cycle.
type SensorReading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Hour        float64 `json:"hour"` // 0-23
}

// Inputs gathers everything one Build call consumes: the climate reading,
// the averaged spectrum, the cycle's RMS density, and the history-derived
// scalars computed by the owning session.
type Inputs struct {
	Reading SensorReading
	Frame   *dsp.SpectralFrame

	// Density is the current cycle's RMS density; DensityMean is the
	// rolling mean of prior cycles, taken before the current value is
	// appended (1.0 when the history is empty).
	Density     float64
	DensityMean float64

	// TempVariance is the rolling temperature variance including the
	// current reading.
	TempVariance float64
}

// Builder assembles mode-tagged feature vectors and enforces the
// classifier's declared input width.
type Builder struct {
	mode   Mode
	width  int
	logger logging.Logger
}

// NewBuilder creates a builder for the mode, validated against the width
// the classifier declares.
func NewBuilder(mode Mode, classifierWidth int) (*Builder, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown feature mode %q", mode)
	}
	return &Builder{
		mode:  mode,
		width: classifierWidth,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_builder",
			"mode":      string(mode),
		}),
	}, nil
}

// Mode returns the layout this builder produces.
func (b *Builder) Mode() Mode {
	return b.mode
}

// Build assembles the ordered feature vector for the builder's mode.
func (b *Builder) Build(in Inputs) ([]float64, error) {
	var vector []float64
	switch b.mode {
	case ModeSummer:
		vector = buildSummer(in)
	case ModeWinter:
		vector = buildWinter(in)
	}

	if len(vector) != b.width {
		return nil, &FeatureLengthError{Mode: b.mode, Got: len(vector), Want: b.width}
	}

	b.logger.Debug("feature vector assembled", logging.Fields{
		"length":  len(vector),
		"density": in.Density,
	})

	return vector, nil
}

// SpikeRatio is the current density over its rolling mean, the primary
// activity-change signal. A value near 1.0 means steady state.
func SpikeRatio(density, rollingMean float64) float64 {
	return density / (rollingMean + Epsilon)
}

// HeaterPower sums the winter heater band magnitudes.
func HeaterPower(frame *dsp.SpectralFrame) float64 {
	power := 0.0
	for _, k := range WinterHeaterBins {
		if k < len(frame.Bins) {
			power += frame.Bins[k]
		}
	}
	return power
}

func buildSummer(in Inputs) []float64 {
	vector := make([]float64, 0, ModeSummer.VectorWidth())
	vector = append(vector,
		in.Reading.Temperature,
		in.Reading.Humidity,
		in.Reading.Hour,
		SpikeRatio(in.Density, in.DensityMean),
	)
	for k := SummerBinStart; k <= SummerBinEnd; k++ {
		vector = append(vector, in.Frame.Bins[k])
	}
	return vector
}

func buildWinter(in Inputs) []float64 {
	heaterPower := HeaterPower(in.Frame)
	heaterRatio := heaterPower / (in.Density + Epsilon)
	return []float64{
		in.Reading.Temperature,
		in.Reading.Humidity,
		in.TempVariance,
		heaterPower,
		heaterRatio,
	}
}
