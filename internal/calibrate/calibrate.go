// Package calibrate finds the software gain that places a reference
// recording's low-band spectral level at the level the models were trained
// on.
package calibrate

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// DefaultCandidates is the descending gain ladder probed by a search.
var DefaultCandidates = []float64{1.0, 0.7, 0.5, 0.4, 0.35, 0.3, 0.25, 0.2, 0.15, 0.1, 0.05}

const (
	// TargetMetric is the trained-on low-band level.
	TargetMetric = 0.04

	// The metric is considered usable anywhere inside this band.
	GoodBandLow  = 0.02
	GoodBandHigh = 0.08

	// Metric band: bins 4..7 inclusive, roughly 125-219 Hz.
	MetricBinStart = 4
	MetricBinEnd   = 7
)

// Measurement is the metric for one candidate gain.
type Measurement struct {
	Gain     float64 `yaml:"gain"`
	Metric   float64 `yaml:"metric"`
	Distance float64 `yaml:"distance"`
	InBand   bool    `yaml:"in_band"`
}

// Report is the outcome of a gain search.
type Report struct {
	Source       string        `yaml:"source"`
	Target       float64       `yaml:"target"`
	Measurements []Measurement `yaml:"measurements"`
	Best         Measurement   `yaml:"best"`
}

// Calibrator measures candidate gains against a reference signal.
type Calibrator struct {
	chain      *dsp.FilterChain
	analyzer   *dsp.SpectralAnalyzer
	candidates []float64
	logger     logging.Logger
}

// NewCalibrator creates a calibrator. A nil candidate list selects the
// default ladder.
func NewCalibrator(candidates []float64) *Calibrator {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Calibrator{
		chain:      dsp.NewFilterChain(dsp.SampleRate),
		analyzer:   dsp.NewSpectralAnalyzer(dsp.SampleRate),
		candidates: candidates,
		logger:     logging.WithFields(logging.Fields{"component": "calibrator"}),
	}
}

// Measure runs the full filter and spectral chain at one gain and reports
// the low-band metric.
func (c *Calibrator) Measure(signal []float64, gain float64) (Measurement, error) {
	filtered := c.chain.Process(signal, gain)
	frame, err := c.analyzer.AverageSpectrum(filtered)
	if err != nil {
		return Measurement{}, err
	}

	metric := 0.0
	for k := MetricBinStart; k <= MetricBinEnd; k++ {
		metric += frame.Bins[k]
	}
	metric /= float64(MetricBinEnd - MetricBinStart + 1)

	return Measurement{
		Gain:     gain,
		Metric:   metric,
		Distance: metric - TargetMetric,
		InBand:   metric >= GoodBandLow && metric <= GoodBandHigh,
	}, nil
}

// Search probes every candidate gain and selects the one whose metric lands
// closest to the target. Ties keep the earliest candidate, so the ladder's
// ordering is the preference order. Selection always succeeds once the
// signal is long enough to analyze.
func (c *Calibrator) Search(source string, signal []float64) (*Report, error) {
	report := &Report{
		Source:       source,
		Target:       TargetMetric,
		Measurements: make([]Measurement, 0, len(c.candidates)),
	}

	bestIdx := -1
	for i, gain := range c.candidates {
		m, err := c.Measure(signal, gain)
		if err != nil {
			return nil, err
		}
		report.Measurements = append(report.Measurements, m)
		c.logger.Debug("candidate measured", logging.Fields{
			"gain":     m.Gain,
			"metric":   m.Metric,
			"distance": m.Distance,
		})

		if bestIdx < 0 || math.Abs(m.Distance) < math.Abs(report.Measurements[bestIdx].Distance) {
			bestIdx = i
		}
	}

	report.Best = report.Measurements[bestIdx]
	c.logger.Info("gain selected", logging.Fields{
		"gain":    report.Best.Gain,
		"metric":  report.Best.Metric,
		"in_band": report.Best.InBand,
	})
	return report, nil
}

// Text renders the report as a human-readable table.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gain calibration for %s (target %.4f)\n\n", r.Source, r.Target)
	fmt.Fprintf(&b, "  %-6s  %-10s  %-10s  %s\n", "gain", "metric", "distance", "")
	for _, m := range r.Measurements {
		marker := ""
		if m == r.Best {
			marker = "<- selected"
		} else if m.InBand {
			marker = "in band"
		}
		fmt.Fprintf(&b, "  %-6.2f  %-10.5f  %+-10.5f  %s\n", m.Gain, m.Metric, m.Distance, marker)
	}
	fmt.Fprintf(&b, "\nSelected gain: %.2f (metric %.5f)\n", r.Best.Gain, r.Best.Metric)
	if !r.Best.InBand {
		fmt.Fprintf(&b, "Warning: best metric is outside the %.2f-%.2f band; check microphone placement.\n",
			GoodBandLow, GoodBandHigh)
	}
	return b.String()
}

// YAML renders the report for machine consumption.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}
