package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretSummer(t *testing.T) {
	tests := []struct {
		name       string
		scores     []float64
		label      string
		confidence float64
	}{
		{"normal wins", []float64{0.8, 0.2}, LabelNormal, 0.8},
		{"swarm wins", []float64{0.3, 0.7}, LabelSwarm, 0.7},
		{"tie keeps normal", []float64{0.5, 0.5}, LabelNormal, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := InterpretSummer(tt.scores)
			require.NoError(t, err)
			assert.Equal(t, tt.label, outcome.Label)
			assert.InDelta(t, tt.confidence, outcome.Confidence, 1e-12)
		})
	}
}

func TestInterpretSummerRejectsWrongScoreCount(t *testing.T) {
	_, err := InterpretSummer([]float64{0.5})
	assert.Error(t, err)

	_, err = InterpretSummer([]float64{0.2, 0.3, 0.5})
	assert.Error(t, err)
}

func TestInterpretWinter(t *testing.T) {
	input := []float64{1, 2, 3, 4, 5}

	perfect, err := InterpretWinter(input, input, 5.0)
	require.NoError(t, err)
	assert.False(t, perfect.Anomaly)
	assert.Equal(t, LabelNormal, perfect.Label)
	assert.Zero(t, perfect.ReconstructionMSE)

	// Constant offset of 3 on every value: MSE is 9.
	off := []float64{4, 5, 6, 7, 8}
	anomalous, err := InterpretWinter(input, off, 5.0)
	require.NoError(t, err)
	assert.True(t, anomalous.Anomaly)
	assert.Equal(t, "Anomaly", anomalous.Label)
	assert.InDelta(t, 9.0, anomalous.ReconstructionMSE, 1e-12)
}

func TestInterpretWinterDefaultThreshold(t *testing.T) {
	input := []float64{0, 0, 0, 0, 0}
	reconstruction := []float64{2, 2, 2, 2, 2}

	// MSE 4 is under the 5.0 default, applied when no threshold is given.
	outcome, err := InterpretWinter(input, reconstruction, 0)
	require.NoError(t, err)
	assert.False(t, outcome.Anomaly)
}

func TestInterpretWinterRejectsLengthMismatch(t *testing.T) {
	_, err := InterpretWinter([]float64{1, 2, 3}, []float64{1, 2}, 5.0)
	assert.Error(t, err)
}

func TestSummerBaseline(t *testing.T) {
	model := SummerBaseline{}
	assert.Equal(t, 20, model.InputWidth())

	steady := make([]float64, 20)
	steady[3] = 1.0
	scores, err := model.Predict(steady)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, scores[0], 1e-12)

	spiking := make([]float64, 20)
	spiking[3] = 4.0
	scores, err = model.Predict(spiking)
	require.NoError(t, err)
	assert.Greater(t, scores[1], scores[0])

	_, err = model.Predict(make([]float64, 5))
	assert.Error(t, err)
}

func TestWinterBaselineEchoesInput(t *testing.T) {
	model := WinterBaseline{}
	assert.Equal(t, 5, model.InputWidth())

	input := []float64{1, 2, 3, 4, 5}
	out, err := model.Predict(input)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	_, err = model.Predict(make([]float64, 4))
	assert.Error(t, err)
}
