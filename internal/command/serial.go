package command

import (
	"fmt"
	"io"
	"time"

	"github.com/cjeanneret/DoorGo/internal/debug"
	"github.com/tarm/serial"
)

// SerialConfig holds the serial link configuration.
type SerialConfig struct {
	// Device path, e.g. "/dev/ttyACM0".
	Device string

	// Baud rate; the controller side runs at 9600 by default.
	Baud int

	// ReadTimeout for reads; 0 = blocking. The sequencer's reader
	// goroutine wants blocking reads, doorctl wants a timeout so it can
	// stop waiting for responses.
	ReadTimeout time.Duration
}

// OpenSerial opens the serial device. The returned port carries both
// directions of the link: command lines in, status lines back out.
func OpenSerial(cfg SerialConfig) (io.ReadWriteCloser, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device path is empty")
	}
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}

	debug.Info("Opening serial link %s @ %d baud", cfg.Device, cfg.Baud)

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}
	return port, nil
}
