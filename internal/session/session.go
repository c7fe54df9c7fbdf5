// Package session orchestrates one monitoring cycle end to end: capture,
// filtering, spectral analysis, feature assembly and classification, plus
// the rolling state that links cycles together.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/AneteZepa/HappyBees/pkg/classifier"
	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/features"
	"github.com/AneteZepa/HappyBees/pkg/link"
	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// Capturer is the acquisition side of a cycle. *link.Device satisfies it.
type Capturer interface {
	Capture(ctx context.Context, seconds int) (*link.RawCapture, error)
}

// ClimateSource supplies the temperature, humidity and hour inputs.
type ClimateSource interface {
	Read(ctx context.Context) (features.SensorReading, error)
}

// StaticClimate returns fixed climate values, the mock mode used for
// reproducible runs. With ClockHour set the hour tracks the wall clock.
type StaticClimate struct {
	Temperature float64
	Humidity    float64
	Hour        float64
	ClockHour   bool
}

func (s *StaticClimate) Read(ctx context.Context) (features.SensorReading, error) {
	reading := features.SensorReading{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		Hour:        s.Hour,
	}
	if s.ClockHour {
		reading.Hour = float64(time.Now().Hour())
	}
	return reading, nil
}

// Config holds per-session settings.
type Config struct {
	Mode             features.Mode
	CaptureSeconds   int
	Gain             float64
	AnomalyThreshold float64

	// ArtifactDir, when set, receives one WAV file of the filtered signal
	// per cycle.
	ArtifactDir string
}

// CycleResult is the full outcome of one monitoring cycle.
type CycleResult struct {
	Timestamp time.Time              `json:"timestamp"`
	Reading   features.SensorReading `json:"reading"`

	Samples        int     `json:"samples"`
	Short          bool    `json:"short"`
	ReportedStdDev float64 `json:"reported_std_dev"`

	Density     float64 `json:"density"`
	DensityMean float64 `json:"density_mean"`
	SpikeRatio  float64 `json:"spike_ratio"`

	Spectrum *dsp.SpectralFrame  `json:"spectrum,omitempty"`
	Vector   []float64           `json:"vector"`
	Outcome  *classifier.Outcome `json:"outcome"`

	ArtifactPath string `json:"artifact_path,omitempty"`
}

// Session runs monitoring cycles against one device and one seasonal model.
// It is single-goroutine state, like the histories it owns.
type Session struct {
	config   Config
	capturer Capturer
	climate  ClimateSource
	model    classifier.Classifier

	chain    *dsp.FilterChain
	analyzer *dsp.SpectralAnalyzer
	builder  *features.Builder

	densityHistory *features.History
	tempHistory    *features.History

	cycles int
	logger logging.Logger
}

// NewSession wires a session from its collaborators. The feature layout is
// validated against the classifier's declared input width up front.
func NewSession(config Config, capturer Capturer, climate ClimateSource, model classifier.Classifier) (*Session, error) {
	if config.CaptureSeconds == 0 {
		config.CaptureSeconds = link.MinCaptureSeconds
	}
	if config.Gain == 0 {
		config.Gain = 1.0
	}

	builder, err := features.NewBuilder(config.Mode, model.InputWidth())
	if err != nil {
		return nil, err
	}
	if want := config.Mode.VectorWidth(); model.InputWidth() != want {
		return nil, &features.FeatureLengthError{Mode: config.Mode, Got: model.InputWidth(), Want: want}
	}

	return &Session{
		config:         config,
		capturer:       capturer,
		climate:        climate,
		model:          model,
		chain:          dsp.NewFilterChain(dsp.SampleRate),
		analyzer:       dsp.NewSpectralAnalyzer(dsp.SampleRate),
		builder:        builder,
		densityHistory: features.NewHistory(),
		tempHistory:    features.NewHistory(),
		logger: logging.WithFields(logging.Fields{
			"component": "session",
			"mode":      string(config.Mode),
		}),
	}, nil
}

// Cycles returns how many cycles completed successfully.
func (s *Session) Cycles() int {
	return s.cycles
}

// ResetHistories clears the rolling windows, e.g. after moving the device.
func (s *Session) ResetHistories() {
	s.densityHistory.Clear()
	s.tempHistory.Clear()
}

// RunCycle executes one full cycle. On any error the rolling histories are
// left untouched, so a failed capture does not poison the spike baseline.
func (s *Session) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := time.Now()

	reading, err := s.climate.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("climate read failed: %w", err)
	}

	capture, err := s.capturer.Capture(ctx, s.config.CaptureSeconds)
	if err != nil {
		return nil, err
	}

	signal := dsp.ConvertADC(capture.Samples)
	filtered := s.chain.Process(signal, s.config.Gain)

	frame, err := s.analyzer.AverageSpectrum(filtered)
	if err != nil {
		return nil, err
	}
	density := dsp.RMSDensity(filtered)
	densityMean := s.densityHistory.Mean()
	tempVariance := pendingVariance(s.tempHistory, reading.Temperature)

	vector, err := s.builder.Build(features.Inputs{
		Reading:      reading,
		Frame:        frame,
		Density:      density,
		DensityMean:  densityMean,
		TempVariance: tempVariance,
	})
	if err != nil {
		return nil, err
	}

	outcome, err := s.classify(vector)
	if err != nil {
		return nil, err
	}

	// The cycle succeeded; commit the rolling state.
	s.densityHistory.Update(density)
	s.tempHistory.Update(reading.Temperature)
	s.cycles++

	result := &CycleResult{
		Timestamp:      started,
		Reading:        reading,
		Samples:        len(capture.Samples),
		Short:          capture.Short,
		ReportedStdDev: capture.ReportedStdDev,
		Density:        density,
		DensityMean:    densityMean,
		SpikeRatio:     features.SpikeRatio(density, densityMean),
		Spectrum:       frame,
		Vector:         vector,
		Outcome:        outcome,
	}

	if s.config.ArtifactDir != "" {
		result.ArtifactPath = s.writeArtifact(started, filtered)
	}

	s.logger.Info("cycle complete", logging.Fields{
		"cycle":       s.cycles,
		"label":       outcome.Label,
		"density":     density,
		"spike_ratio": result.SpikeRatio,
		"windows":     frame.Windows,
	})
	return result, nil
}

func (s *Session) classify(vector []float64) (*classifier.Outcome, error) {
	scores, err := s.model.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	if s.config.Mode == features.ModeWinter {
		return classifier.InterpretWinter(vector, scores, s.config.AnomalyThreshold)
	}
	return classifier.InterpretSummer(scores)
}

// pendingVariance is the population variance of the window as it will look
// after the candidate value is appended, without mutating the window yet.
func pendingVariance(h *features.History, candidate float64) float64 {
	values := append(h.Values(), candidate)
	if len(values) > features.HistorySize {
		values = values[len(values)-features.HistorySize:]
	}
	if len(values) < 2 {
		return 0.0
	}
	return stat.PopVariance(values, nil)
}

func (s *Session) writeArtifact(ts time.Time, signal []float64) string {
	if err := os.MkdirAll(s.config.ArtifactDir, 0o755); err != nil {
		s.logger.Error(err, "failed to create artifact directory", logging.Fields{"dir": s.config.ArtifactDir})
		return ""
	}
	path := filepath.Join(s.config.ArtifactDir, ts.Format("20060102T150405")+".wav")
	if err := dsp.WriteWAV(path, signal, dsp.SampleRate); err != nil {
		s.logger.Error(err, "failed to write cycle artifact", logging.Fields{"path": path})
		return ""
	}
	return path
}
