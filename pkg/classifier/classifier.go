// Package classifier defines the boundary to the trained seasonal models.
// Models are consumed as opaque score functions; training, conversion and
// deployment live outside this repository.
package classifier

import "fmt"

// Classifier scores a fixed-width feature vector. The summer model returns
// two class scores; the winter autoencoder returns a reconstruction of the
// input vector.
type Classifier interface {
	// InputWidth is the vector length the model was trained on.
	InputWidth() int

	// Predict scores one feature vector.
	Predict(vector []float64) ([]float64, error)
}

// Summer class labels, index-aligned with the model output.
const (
	LabelNormal = "Normal"
	LabelSwarm  = "Swarm/Piping"
)

// DefaultAnomalyThreshold is the winter reconstruction-error cutoff
// established against the reference implementation.
const DefaultAnomalyThreshold = 5.0

// Outcome is an interpreted prediction.
type Outcome struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`

	// Winter only: mean squared reconstruction error.
	ReconstructionMSE float64 `json:"reconstruction_mse,omitempty"`
	Anomaly           bool    `json:"anomaly,omitempty"`
}

// InterpretSummer maps the two-score summer output to a label and
// confidence via argmax.
func InterpretSummer(scores []float64) (*Outcome, error) {
	if len(scores) != 2 {
		return nil, fmt.Errorf("summer classifier returned %d scores, expected 2", len(scores))
	}

	label := LabelNormal
	confidence := scores[0]
	if scores[1] > scores[0] {
		label = LabelSwarm
		confidence = scores[1]
	}

	return &Outcome{Label: label, Confidence: confidence}, nil
}

// InterpretWinter compares the autoencoder reconstruction against the input
// vector; a mean squared error above the threshold flags an anomaly.
func InterpretWinter(input, reconstruction []float64, threshold float64) (*Outcome, error) {
	if len(reconstruction) != len(input) {
		return nil, fmt.Errorf("winter reconstruction has %d values, input has %d", len(reconstruction), len(input))
	}
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	mse := 0.0
	for i := range input {
		diff := input[i] - reconstruction[i]
		mse += diff * diff
	}
	mse /= float64(len(input))

	out := &Outcome{ReconstructionMSE: mse, Anomaly: mse > threshold}
	if out.Anomaly {
		out.Label = "Anomaly"
	} else {
		out.Label = LabelNormal
	}
	return out, nil
}
