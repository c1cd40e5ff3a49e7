package notecard

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readPollInterval is the serial read timeout. Reads return empty at this
// cadence so the client can enforce its own response timeout.
const readPollInterval = 100 * time.Millisecond

// Open opens the companion device on a real serial port at path.
func Open(path string, opts PortOptions, timeout time.Duration) (*Client, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if err := port.SetReadTimeout(readPollInterval); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", path, err)
	}

	// Discard anything the device emitted before we attached.
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to reset input buffer on %s: %w", path, err)
	}

	return NewClient(port, timeout), nil
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
