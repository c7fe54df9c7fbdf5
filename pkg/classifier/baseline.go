package classifier

import "fmt"

// Baseline models are conservative stand-ins used when no trained model is
// attached to a session. They keep the full pipeline runnable in the field
// while a model artifact is prepared.

// SummerBaseline scores swarm likelihood from the spike ratio alone.
type SummerBaseline struct{}

func (SummerBaseline) InputWidth() int { return 20 }

func (SummerBaseline) Predict(vector []float64) ([]float64, error) {
	if len(vector) != 20 {
		return nil, fmt.Errorf("summer baseline expects 20 features, got %d", len(vector))
	}

	// Spike ratio sits at index 3; near 1.0 means steady state.
	spike := vector[3]
	swarm := 0.0
	if spike > 1 {
		swarm = 1 - 1/spike
	}
	return []float64{1 - swarm, swarm}, nil
}

// WinterBaseline echoes its input, so anomalies are flagged only by an
// operator-lowered threshold.
type WinterBaseline struct{}

func (WinterBaseline) InputWidth() int { return 5 }

func (WinterBaseline) Predict(vector []float64) ([]float64, error) {
	if len(vector) != 5 {
		return nil, fmt.Errorf("winter baseline expects 5 features, got %d", len(vector))
	}
	out := make([]float64, len(vector))
	copy(out, vector)
	return out, nil
}
