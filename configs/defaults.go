package configs

import (
	"time"

	"github.com/spf13/viper"

	"github.com/AneteZepa/HappyBees/pkg/classifier"
	"github.com/AneteZepa/HappyBees/pkg/dsp"
	"github.com/AneteZepa/HappyBees/pkg/features"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Capture link defaults
	if !v.IsSet("link.device") {
		v.Set("link.device", "/dev/ttyACM0")
	}
	if !v.IsSet("link.baud_rate") {
		v.Set("link.baud_rate", 115200)
	}
	if !v.IsSet("link.read_timeout") {
		v.Set("link.read_timeout", 10*time.Second)
	}

	// Audio defaults
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", dsp.SampleRate)
	}
	if !v.IsSet("audio.capture_seconds") {
		v.Set("audio.capture_seconds", 3)
	}
	if !v.IsSet("audio.gain") {
		v.Set("audio.gain", 1.0)
	}

	// Monitor defaults
	if !v.IsSet("monitor.interval") {
		v.Set("monitor.interval", 15*time.Minute)
	}
	if !v.IsSet("monitor.cycles") {
		v.Set("monitor.cycles", 0)
	}

	// Classifier defaults
	if !v.IsSet("classifier.mode") {
		v.Set("classifier.mode", string(features.ModeSummer))
	}
	if !v.IsSet("classifier.anomaly_threshold") {
		v.Set("classifier.anomaly_threshold", classifier.DefaultAnomalyThreshold)
	}

	// Climate defaults
	if !v.IsSet("climate.mock") {
		v.Set("climate.mock", true)
	}
	if !v.IsSet("climate.temperature") {
		v.Set("climate.temperature", 34.5)
	}
	if !v.IsSet("climate.humidity") {
		v.Set("climate.humidity", 60.0)
	}
	if !v.IsSet("climate.clock_hour") {
		v.Set("climate.clock_hour", true)
	}

	// Output defaults
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "text")
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		OutputFormat: "text",
		Link:         GetDefaultLinkConfig(),
		Audio:        GetDefaultAudioConfig(),
		Monitor:      GetDefaultMonitorConfig(),
		Classifier:   GetDefaultClassifierConfig(),
		Climate:      GetDefaultClimateConfig(),
	}
}

// GetDefaultLinkConfig returns default capture-link settings
func GetDefaultLinkConfig() LinkConfig {
	return LinkConfig{
		Device:      "/dev/ttyACM0",
		BaudRate:    115200,
		ReadTimeout: 10 * time.Second,
	}
}

// GetDefaultAudioConfig returns default audio processing settings
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:     dsp.SampleRate,
		CaptureSeconds: 3,
		Gain:           1.0,
	}
}

// GetDefaultMonitorConfig returns default session settings
func GetDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval: 15 * time.Minute,
		Cycles:   0,
	}
}

// GetDefaultClassifierConfig returns default seasonal model settings
func GetDefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Mode:             string(features.ModeSummer),
		AnomalyThreshold: classifier.DefaultAnomalyThreshold,
	}
}

// GetDefaultClimateConfig returns default climate sensor settings
func GetDefaultClimateConfig() ClimateConfig {
	return ClimateConfig{
		Mock:        true,
		Temperature: 34.5,
		Humidity:    60.0,
		ClockHour:   true,
	}
}
