package link

import (
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// Transport is the byte-oriented link to the acquisition device. A read
// deadline of zero means block indefinitely; reads past the deadline return
// with zero bytes and no error, matching serial-port semantics.
type Transport interface {
	io.ReadWriteCloser
	SetReadTimeout(d time.Duration) error
}

// SerialConfig holds serial transport settings.
type SerialConfig struct {
	Device      string        `mapstructure:"device"`
	BaudRate    int           `mapstructure:"baud_rate"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// DefaultSerialConfig returns the settings the device firmware ships with.
func DefaultSerialConfig() *SerialConfig {
	return &SerialConfig{
		BaudRate:    115200,
		ReadTimeout: 10 * time.Second,
	}
}

// SerialTransport is the Transport over a USB serial port.
type SerialTransport struct {
	port   serial.Port
	device string
}

// OpenSerial opens the configured serial device.
func OpenSerial(config *SerialConfig) (*SerialTransport, error) {
	if config == nil {
		config = DefaultSerialConfig()
	}

	mode := &serial.Mode{BaudRate: config.BaudRate}
	port, err := serial.Open(config.Device, mode)
	if err != nil {
		return nil, NewLinkError(config.Device, ErrCodeOpen, "failed to open serial device", err)
	}

	if config.ReadTimeout > 0 {
		if err := port.SetReadTimeout(config.ReadTimeout); err != nil {
			port.Close()
			return nil, NewLinkError(config.Device, ErrCodeOpen, "failed to set read timeout", err)
		}
	}

	logging.Debug("serial device opened", logging.Fields{
		"component": "serial_transport",
		"device":    config.Device,
		"baud_rate": config.BaudRate,
	})

	return &SerialTransport{port: port, device: config.Device}, nil
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

// SetReadTimeout updates the port read deadline.
func (t *SerialTransport) SetReadTimeout(d time.Duration) error {
	return t.port.SetReadTimeout(d)
}

// Close releases the port.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}

// Device returns the device path this transport is bound to.
func (t *SerialTransport) Device() string {
	return t.device
}
