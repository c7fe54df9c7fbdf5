// Package link implements the text-plus-binary capture protocol spoken by
// the hive acquisition device over its serial console.
//
// A capture is requested with "a<seconds>\n". The device replies with free
// form diagnostic lines, then a header "HDR:<bytes>:<samples>:<stddev>",
// then the raw little-endian uint16 sample payload, then lines until "END".
package link

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AneteZepa/HappyBees/pkg/logging"
)

// State tracks where a capture exchange currently is.
type State int

const (
	StateIdle State = iota
	StateAwaitingHeader
	StateReadingPayload
	StateAwaitingEnd
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingHeader:
		return "awaiting_header"
	case StateReadingPayload:
		return "reading_payload"
	case StateAwaitingEnd:
		return "awaiting_end"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	headerPrefix = "HDR:"
	endMarker    = "END"

	// Capture duration bounds accepted by the firmware.
	MinCaptureSeconds = 1
	MaxCaptureSeconds = 6

	readChunkSize = 4096
)

// RawCapture is the decoded result of one capture exchange.
type RawCapture struct {
	// Samples are the raw ADC readings, little-endian on the wire.
	Samples []uint16

	// ReportedStdDev is the standard deviation the device computed on its
	// side, used to cross-check host DSP.
	ReportedStdDev float64

	// Short is set when the payload ended before the announced byte count.
	Short bool
}

// Device drives the capture protocol over a Transport.
type Device struct {
	transport Transport
	name      string
	timeout   time.Duration

	state State
	buf   []byte
	eof   bool

	logger logging.Logger
}

// NewDevice wraps an open transport. The timeout bounds each protocol phase
// on top of the requested capture duration.
func NewDevice(transport Transport, name string, timeout time.Duration) *Device {
	if timeout <= 0 {
		timeout = DefaultSerialConfig().ReadTimeout
	}
	return &Device{
		transport: transport,
		name:      name,
		timeout:   timeout,
		state:     StateIdle,
		logger: logging.WithFields(logging.Fields{
			"component": "capture_link",
			"device":    name,
		}),
	}
}

// State returns the current protocol state.
func (d *Device) State() State {
	return d.state
}

// Close closes the underlying transport.
func (d *Device) Close() error {
	return d.transport.Close()
}

// Capture requests a recording of the given duration and runs the exchange
// to completion. A truncated payload is returned with Short set; error
// markers and malformed headers fail the capture.
func (d *Device) Capture(ctx context.Context, seconds int) (*RawCapture, error) {
	if seconds < MinCaptureSeconds || seconds > MaxCaptureSeconds {
		return nil, NewLinkError(d.name, ErrCodeProtocol,
			fmt.Sprintf("capture duration %ds outside %d-%ds", seconds, MinCaptureSeconds, MaxCaptureSeconds), nil)
	}

	d.buf = d.buf[:0]
	d.eof = false
	d.state = StateAwaitingHeader

	if _, err := d.transport.Write([]byte(fmt.Sprintf("a%d\n", seconds))); err != nil {
		d.state = StateFailed
		return nil, NewLinkError(d.name, ErrCodeOpen, "failed to send capture request", err)
	}

	// The device records for the full duration before it starts talking.
	deadline := time.Now().Add(d.timeout + time.Duration(seconds)*time.Second)

	byteCount, sampleCount, stdDev, err := d.awaitHeader(ctx, deadline)
	if err != nil {
		d.state = StateFailed
		return nil, err
	}

	d.state = StateReadingPayload
	payload, short := d.readPayload(ctx, deadline, byteCount)
	if short {
		d.logger.Warn("payload ended early", logging.Fields{
			"expected_bytes": byteCount,
			"received_bytes": len(payload),
		})
	}

	capture := &RawCapture{
		Samples:        decodeSamples(payload, sampleCount),
		ReportedStdDev: stdDev,
		Short:          short,
	}

	d.state = StateAwaitingEnd
	if err := d.awaitEnd(ctx, deadline); err != nil {
		if linkErr, ok := err.(*LinkError); ok && linkErr.Code == ErrCodeTimeout {
			// A truncated stream never delivers the trailer; the samples
			// in hand are still usable.
			d.logger.Warn("end marker not received", logging.Fields{"state": d.state.String()})
		} else {
			d.state = StateFailed
			return nil, err
		}
	}

	d.state = StateDone
	d.logger.Debug("capture complete", logging.Fields{
		"samples":          len(capture.Samples),
		"reported_std_dev": capture.ReportedStdDev,
		"short":            capture.Short,
	})
	return capture, nil
}

// Ping sends the liveness command and returns the device's reply line.
func (d *Device) Ping(ctx context.Context) (string, error) {
	return d.command(ctx, "p\n", true)
}

// SetGain configures the device-side software gain.
func (d *Device) SetGain(ctx context.Context, gain float64) error {
	if gain <= 0 {
		return NewLinkError(d.name, ErrCodeProtocol, fmt.Sprintf("gain must be positive, got %g", gain), nil)
	}
	_, err := d.command(ctx, fmt.Sprintf("g%g\n", gain), false)
	return err
}

// SetMockClimate overrides the device's climate sensor with fixed values,
// used for reproducible parity runs.
func (d *Device) SetMockClimate(ctx context.Context, temperature, humidity, hour float64) error {
	_, err := d.command(ctx, fmt.Sprintf("v%g,%g,%g\n", temperature, humidity, hour), false)
	return err
}

// ClearHistory resets the device's rolling statistics.
func (d *Device) ClearHistory(ctx context.Context) error {
	_, err := d.command(ctx, "c\n", false)
	return err
}

func (d *Device) command(ctx context.Context, cmd string, wantReply bool) (string, error) {
	d.buf = d.buf[:0]
	d.eof = false

	if _, err := d.transport.Write([]byte(cmd)); err != nil {
		return "", NewLinkError(d.name, ErrCodeOpen, "failed to send command", err)
	}
	if !wantReply {
		return "", nil
	}

	line, err := d.readLine(ctx, time.Now().Add(d.timeout))
	if err != nil {
		return "", err
	}
	return line, nil
}

func (d *Device) awaitHeader(ctx context.Context, deadline time.Time) (byteCount, sampleCount int, stdDev float64, err error) {
	for {
		line, err := d.readLine(ctx, deadline)
		if err != nil {
			return 0, 0, 0, err
		}
		if line == "" {
			continue
		}
		if marker, bad := errorMarker(line); bad {
			return 0, 0, 0, NewLinkError(d.name, ErrCodeProtocol,
				fmt.Sprintf("device reported failure before header: %q", marker), nil)
		}
		if !strings.HasPrefix(line, headerPrefix) {
			d.logger.Debug("device diagnostic", logging.Fields{"line": line})
			continue
		}
		return d.parseHeader(line)
	}
}

func (d *Device) parseHeader(line string) (byteCount, sampleCount int, stdDev float64, err error) {
	parts := strings.Split(line, ":")
	if len(parts) < 4 {
		return 0, 0, 0, NewLinkError(d.name, ErrCodeProtocol,
			fmt.Sprintf("malformed header %q", line), nil)
	}

	byteCount, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || byteCount < 0 {
		return 0, 0, 0, NewLinkError(d.name, ErrCodeProtocol,
			fmt.Sprintf("invalid byte count in header %q", line), err)
	}
	sampleCount, err = strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || sampleCount < 0 {
		return 0, 0, 0, NewLinkError(d.name, ErrCodeProtocol,
			fmt.Sprintf("invalid sample count in header %q", line), err)
	}

	// The std-dev field is advisory; an unparsable value is reported as zero.
	stdDev, convErr := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if convErr != nil {
		stdDev = 0
	}
	return byteCount, sampleCount, stdDev, nil
}

// readPayload collects up to want bytes, returning what arrived and whether
// the stream ended early.
func (d *Device) readPayload(ctx context.Context, deadline time.Time, want int) ([]byte, bool) {
	payload := make([]byte, 0, want)
	for len(payload) < want {
		if len(d.buf) > 0 {
			take := want - len(payload)
			if take > len(d.buf) {
				take = len(d.buf)
			}
			payload = append(payload, d.buf[:take]...)
			d.buf = d.buf[take:]
			continue
		}
		if d.eof {
			return payload, true
		}
		if err := d.fill(ctx, deadline); err != nil {
			return payload, true
		}
	}
	return payload, false
}

func (d *Device) awaitEnd(ctx context.Context, deadline time.Time) error {
	for {
		line, err := d.readLine(ctx, deadline)
		if err != nil {
			return err
		}
		if marker, bad := errorMarker(line); bad {
			return NewLinkError(d.name, ErrCodeProtocol,
				fmt.Sprintf("device reported failure after payload: %q", marker), nil)
		}
		if strings.TrimSpace(line) == endMarker {
			return nil
		}
	}
}

// readLine returns the next newline-terminated line with CR/LF stripped.
func (d *Device) readLine(ctx context.Context, deadline time.Time) (string, error) {
	for {
		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			line := strings.TrimRight(string(d.buf[:i]), "\r")
			d.buf = d.buf[i+1:]
			return line, nil
		}
		if d.eof {
			if len(d.buf) > 0 {
				line := strings.TrimRight(string(d.buf), "\r")
				d.buf = d.buf[:0]
				return line, nil
			}
			return "", NewLinkError(d.name, ErrCodeTimeout, "stream closed while waiting for line", io.EOF)
		}
		if err := d.fill(ctx, deadline); err != nil {
			return "", err
		}
	}
}

// fill reads one chunk from the transport into the buffer. Zero-byte reads
// are retried until the deadline; EOF is recorded and surfaced by callers.
func (d *Device) fill(ctx context.Context, deadline time.Time) error {
	for {
		if err := ctx.Err(); err != nil {
			return NewLinkError(d.name, ErrCodeTimeout, "capture canceled", err)
		}
		if time.Now().After(deadline) {
			return NewLinkError(d.name, ErrCodeTimeout,
				fmt.Sprintf("device silent in state %s", d.state), nil)
		}

		chunk := make([]byte, readChunkSize)
		n, err := d.transport.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			return nil
		}
		if err == io.EOF {
			d.eof = true
			return nil
		}
		if err != nil {
			return NewLinkError(d.name, ErrCodeOpen, "transport read failed", err)
		}
		// Zero bytes without error means the port timed out; poll again.
		time.Sleep(5 * time.Millisecond)
	}
}

func decodeSamples(payload []byte, sampleCount int) []uint16 {
	n := len(payload) / 2
	if n > sampleCount {
		n = sampleCount
	}
	samples := make([]uint16, n)
	for i := 0; i < n; i++ {
		samples[i] = binary.LittleEndian.Uint16(payload[2*i:])
	}
	return samples
}

// errorMarker reports whether a diagnostic line signals device-side failure.
func errorMarker(line string) (string, bool) {
	if strings.Contains(line, "ERROR") || strings.Contains(strings.ToLower(line), "failed") {
		return line, true
	}
	return "", false
}
