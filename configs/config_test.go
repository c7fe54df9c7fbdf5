package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(GetDefaultConfig()))
}

func TestSetDefaultsPopulatesViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, 115200, v.GetInt("link.baud_rate"))
	assert.Equal(t, 16000, v.GetInt("audio.sample_rate"))
	assert.Equal(t, "summer", v.GetString("classifier.mode"))
	assert.Equal(t, 15*time.Minute, v.GetDuration("monitor.interval"))
}

func TestSetDefaultsKeepsExistingValues(t *testing.T) {
	v := viper.New()
	v.Set("audio.gain", 0.35)
	SetDefaults(v)

	assert.InDelta(t, 0.35, v.GetFloat64("audio.gain"), 1e-12)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero baud rate", func(c *Config) { c.Link.BaudRate = 0 }},
		{"zero read timeout", func(c *Config) { c.Link.ReadTimeout = 0 }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"capture too short", func(c *Config) { c.Audio.CaptureSeconds = 0 }},
		{"capture too long", func(c *Config) { c.Audio.CaptureSeconds = 7 }},
		{"negative gain", func(c *Config) { c.Audio.Gain = -1 }},
		{"unknown mode", func(c *Config) { c.Classifier.Mode = "autumn" }},
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }},
		{"hour out of range", func(c *Config) { c.Climate.Hour = 24 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			assert.Error(t, ValidateConfig(config))
		})
	}
}

func TestLoadConfigFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults(viper.GetViper())
	viper.Set("classifier.mode", "winter")
	viper.Set("audio.capture_seconds", 2)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "winter", config.Classifier.Mode)
	assert.Equal(t, 2, config.Audio.CaptureSeconds)
	assert.Equal(t, "/dev/ttyACM0", config.Link.Device)
	require.NoError(t, ValidateConfig(config))
}
