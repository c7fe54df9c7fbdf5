// Package app handles the monitor application lifecycle: it wires the
// effective configuration into a session and runs the capture loop until
// the cycle budget is spent or the context is canceled.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AneteZepa/HappyBees/configs"
	"github.com/AneteZepa/HappyBees/internal/session"
	"github.com/AneteZepa/HappyBees/pkg/classifier"
	"github.com/AneteZepa/HappyBees/pkg/features"
	"github.com/AneteZepa/HappyBees/pkg/link"
	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// Monitor runs the long-lived monitoring loop against one device.
type Monitor struct {
	config *configs.Config
	model  classifier.Classifier
	logger logging.Logger

	// OnCycle, when set, receives each successful cycle result.
	OnCycle func(*session.CycleResult)
}

// NewMonitor creates a monitor for a validated configuration. A nil model
// selects the baseline stand-in for the configured mode.
func NewMonitor(config *configs.Config, model classifier.Classifier) (*Monitor, error) {
	mode := features.Mode(config.Classifier.Mode)
	if model == nil {
		switch mode {
		case features.ModeWinter:
			model = classifier.WinterBaseline{}
		default:
			model = classifier.SummerBaseline{}
		}
	}

	return &Monitor{
		config: config,
		model:  model,
		logger: logging.WithFields(logging.Fields{
			"component": "monitor",
			"mode":      config.Classifier.Mode,
		}),
	}, nil
}

// Run opens the serial link and executes cycles until the context ends or
// the configured cycle count is reached. Individual cycle failures are
// logged and retried on the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	transport, err := link.OpenSerial(&link.SerialConfig{
		Device:      m.config.Link.Device,
		BaudRate:    m.config.Link.BaudRate,
		ReadTimeout: m.config.Link.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer transport.Close()

	device := link.NewDevice(transport, m.config.Link.Device, m.config.Link.ReadTimeout)

	sess, err := session.NewSession(
		session.Config{
			Mode:             features.Mode(m.config.Classifier.Mode),
			CaptureSeconds:   m.config.Audio.CaptureSeconds,
			Gain:             m.config.Audio.Gain,
			AnomalyThreshold: m.config.Classifier.AnomalyThreshold,
			ArtifactDir:      m.config.Monitor.ArtifactDir,
		},
		device,
		m.climateSource(),
		m.model,
	)
	if err != nil {
		return err
	}

	if m.config.Climate.Mock {
		if err := device.SetMockClimate(ctx,
			m.config.Climate.Temperature, m.config.Climate.Humidity, m.config.Climate.Hour); err != nil {
			m.logger.Warn("mock climate not accepted by device", logging.Fields{"error": err.Error()})
		}
	}

	m.logger.Info("monitor started", logging.Fields{
		"device":   m.config.Link.Device,
		"interval": m.config.Monitor.Interval.String(),
		"cycles":   m.config.Monitor.Cycles,
	})

	ticker := time.NewTicker(m.config.Monitor.Interval)
	defer ticker.Stop()

	for {
		result, err := sess.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Error(err, "cycle failed", logging.Fields{"completed": sess.Cycles()})
		} else if m.OnCycle != nil {
			m.OnCycle(result)
		}

		if m.config.Monitor.Cycles > 0 && sess.Cycles() >= m.config.Monitor.Cycles {
			m.logger.Info("cycle budget reached", logging.Fields{"cycles": sess.Cycles()})
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) climateSource() session.ClimateSource {
	return &session.StaticClimate{
		Temperature: m.config.Climate.Temperature,
		Humidity:    m.config.Climate.Humidity,
		Hour:        m.config.Climate.Hour,
		ClockHour:   m.config.Climate.ClockHour,
	}
}

// Describe renders a one-line summary of a cycle for interactive output.
func Describe(result *session.CycleResult) string {
	line := fmt.Sprintf("%s  %-12s  density=%.5f  spike=%.3f  temp=%.1f  hum=%.0f",
		result.Timestamp.Format(time.RFC3339),
		result.Outcome.Label,
		result.Density,
		result.SpikeRatio,
		result.Reading.Temperature,
		result.Reading.Humidity,
	)
	if result.Short {
		line += "  [short capture]"
	}
	return line
}
