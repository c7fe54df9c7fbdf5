package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AneteZepa/HappyBees/pkg/dsp"
)

// rampFrame builds a spectrum where bin k holds the value k, making layout
// mistakes visible in the assembled vector.
func rampFrame() *dsp.SpectralFrame {
	bins := make([]float64, dsp.SpectrumBins)
	for k := range bins {
		bins[k] = float64(k)
	}
	return &dsp.SpectralFrame{Bins: bins, Windows: 1}
}

func TestModeWidths(t *testing.T) {
	assert.Equal(t, 20, ModeSummer.VectorWidth())
	assert.Equal(t, 5, ModeWinter.VectorWidth())
	assert.Zero(t, Mode("autumn").VectorWidth())

	assert.True(t, ModeSummer.Valid())
	assert.True(t, ModeWinter.Valid())
	assert.False(t, Mode("autumn").Valid())
}

func TestNewBuilderRejectsUnknownMode(t *testing.T) {
	_, err := NewBuilder(Mode("autumn"), 20)
	assert.Error(t, err)
}

func TestBuildSummerLayout(t *testing.T) {
	b, err := NewBuilder(ModeSummer, 20)
	require.NoError(t, err)

	vector, err := b.Build(Inputs{
		Reading:     SensorReading{Temperature: 34.5, Humidity: 60, Hour: 14},
		Frame:       rampFrame(),
		Density:     0.5,
		DensityMean: 0.25,
	})
	require.NoError(t, err)
	require.Len(t, vector, 20)

	assert.InDelta(t, 34.5, vector[0], 1e-12)
	assert.InDelta(t, 60.0, vector[1], 1e-12)
	assert.InDelta(t, 14.0, vector[2], 1e-12)
	assert.InDelta(t, 0.5/(0.25+Epsilon), vector[3], 1e-12)

	// Bins 4..19 follow in order.
	for i := 0; i < 16; i++ {
		assert.InDelta(t, float64(SummerBinStart+i), vector[4+i], 1e-12)
	}
}

func TestBuildWinterLayout(t *testing.T) {
	b, err := NewBuilder(ModeWinter, 5)
	require.NoError(t, err)

	vector, err := b.Build(Inputs{
		Reading:      SensorReading{Temperature: 8, Humidity: 75},
		Frame:        rampFrame(),
		Density:      0.4,
		TempVariance: 2.5,
	})
	require.NoError(t, err)
	require.Len(t, vector, 5)

	heaterPower := 6.0 + 7.0 + 8.0
	assert.InDelta(t, 8.0, vector[0], 1e-12)
	assert.InDelta(t, 75.0, vector[1], 1e-12)
	assert.InDelta(t, 2.5, vector[2], 1e-12)
	assert.InDelta(t, heaterPower, vector[3], 1e-12)
	assert.InDelta(t, heaterPower/(0.4+Epsilon), vector[4], 1e-12)
}

func TestBuildRejectsWidthMismatch(t *testing.T) {
	b, err := NewBuilder(ModeSummer, 16)
	require.NoError(t, err)

	_, err = b.Build(Inputs{Frame: rampFrame(), DensityMean: 1.0})

	var lengthErr *FeatureLengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, 20, lengthErr.Got)
	assert.Equal(t, 16, lengthErr.Want)
}

func TestSpikeRatio(t *testing.T) {
	// Fresh history baseline: ratio is the density itself, give or take ε.
	assert.InDelta(t, 0.5/(1.0+Epsilon), SpikeRatio(0.5, 1.0), 1e-12)

	// Steady state sits near 1.0.
	assert.InDelta(t, 1.0, SpikeRatio(0.3, 0.3), 1e-5)
}

func TestHeaterPowerIgnoresOutOfRangeBins(t *testing.T) {
	frame := &dsp.SpectralFrame{Bins: []float64{0, 1, 2, 3, 4, 5, 6}}
	assert.InDelta(t, 6.0, HeaterPower(frame), 1e-12)
}
