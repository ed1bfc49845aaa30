// Package serial provides a console transport over a serial port
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// pollTimeout is the read timeout used so that ReadByte polls instead of
// blocking the cooperative loop
const pollTimeout = time.Millisecond

// Config defines the configuration for serial port communication
type Config struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// Validate checks if the serial configuration is valid
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	validBaudRates := []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}
	validBaud := false
	for _, rate := range validBaudRates {
		if c.BaudRate == rate {
			validBaud = true
			break
		}
	}
	if !validBaud {
		return fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}

	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("data bits must be between 5 and 8, got: %d", c.DataBits)
	}

	if c.StopBits < 1 || c.StopBits > 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got: %d", c.StopBits)
	}

	validParity := []string{"none", "odd", "even", "mark", "space"}
	validParityFound := false
	for _, p := range validParity {
		if c.Parity == p {
			validParityFound = true
			break
		}
	}
	if !validParityFound {
		return fmt.Errorf("invalid parity: %s", c.Parity)
	}

	return nil
}

// DefaultConfig returns a default serial configuration
func DefaultConfig() Config {
	return Config{
		Port:     "/dev/ttyUSB0",
		BaudRate: 115200,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
	}
}

// Transport is a shell transport backed by a serial port. Reads poll with
// a short timeout so the caller's loop is never blocked.
type Transport struct {
	port   serial.Port
	config Config
}

// Open opens the serial port described by the configuration
func Open(config Config) (*Transport, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: convertStopBits(config.StopBits),
		Parity:   convertParity(config.Parity),
	}

	port, err := serial.Open(config.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", config.Port, err)
	}

	if err := port.SetReadTimeout(pollTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &Transport{
		port:   port,
		config: config,
	}, nil
}

// ReadByte returns the next available input byte, or false when none is
// available before the poll timeout
func (t *Transport) ReadByte() (byte, bool) {
	var buf [1]byte

	n, err := t.port.Read(buf[:])
	if err != nil || n == 0 {
		return 0, false
	}

	return buf[0], true
}

// Write writes data to the serial port
func (t *Transport) Write(p []byte) (int, error) {
	n, err := t.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}

	return n, nil
}

// Flush is a no-op: serial writes are not buffered by this transport
func (t *Transport) Flush() error {
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	return nil
}

// GetConfig returns the configuration the transport was opened with
func (t *Transport) GetConfig() Config {
	return t.config
}

// ListPorts returns a list of available serial ports on the system
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to get available ports: %w", err)
	}

	return ports, nil
}

// IsPortAvailable checks if a specific port is available
func IsPortAvailable(portName string) bool {
	ports, err := serial.GetPortsList()
	if err != nil {
		return false
	}

	for _, port := range ports {
		if port == portName {
			return true
		}
	}

	return false
}

// convertStopBits converts our stop bits format to go.bug.st/serial format
func convertStopBits(stopBits int) serial.StopBits {
	switch stopBits {
	case 2:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// convertParity converts our parity format to go.bug.st/serial format
func convertParity(parity string) serial.Parity {
	switch parity {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}
