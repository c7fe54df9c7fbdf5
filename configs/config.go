package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/AneteZepa/HappyBees/pkg/features"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	DataDir      string `mapstructure:"data_dir"`

	// Capture link configuration
	Link LinkConfig `mapstructure:"link"`

	// Audio processing configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Monitoring session configuration
	Monitor MonitorConfig `mapstructure:"monitor"`

	// Classifier configuration
	Classifier ClassifierConfig `mapstructure:"classifier"`

	// Climate input configuration
	Climate ClimateConfig `mapstructure:"climate"`
}

// LinkConfig contains capture-link settings
type LinkConfig struct {
	Device      string        `mapstructure:"device"`
	BaudRate    int           `mapstructure:"baud_rate"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// AudioConfig contains audio processing settings
type AudioConfig struct {
	SampleRate     int     `mapstructure:"sample_rate"`
	CaptureSeconds int     `mapstructure:"capture_seconds"`
	Gain           float64 `mapstructure:"gain"`
}

// MonitorConfig contains long-running session settings
type MonitorConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Cycles      int           `mapstructure:"cycles"`
	ArtifactDir string        `mapstructure:"artifact_dir"`
}

// ClassifierConfig contains seasonal model settings
type ClassifierConfig struct {
	Mode             string  `mapstructure:"mode"`
	AnomalyThreshold float64 `mapstructure:"anomaly_threshold"`
}

// ClimateConfig contains climate sensor settings. Mock mode substitutes
// fixed values for the device sensor.
type ClimateConfig struct {
	Mock        bool    `mapstructure:"mock"`
	Temperature float64 `mapstructure:"temperature"`
	Humidity    float64 `mapstructure:"humidity"`
	Hour        float64 `mapstructure:"hour"`
	ClockHour   bool    `mapstructure:"clock_hour"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Link.BaudRate <= 0 {
		return fmt.Errorf("link baud rate must be positive")
	}

	if config.Link.ReadTimeout <= 0 {
		return fmt.Errorf("link read timeout must be positive")
	}

	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if config.Audio.CaptureSeconds < 1 || config.Audio.CaptureSeconds > 6 {
		return fmt.Errorf("capture duration must be between 1 and 6 seconds")
	}

	if config.Audio.Gain <= 0 {
		return fmt.Errorf("gain must be positive")
	}

	if !features.Mode(config.Classifier.Mode).Valid() {
		return fmt.Errorf("classifier mode must be %q or %q", features.ModeSummer, features.ModeWinter)
	}

	if config.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	if config.Climate.Hour < 0 || config.Climate.Hour > 23 {
		return fmt.Errorf("climate hour must be between 0 and 23")
	}

	return nil
}
