package notecard

import (
	"io"
)

// SerialPorter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real serial hardware.
// go.bug.st/serial ports satisfy it directly.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
	// ResetInputBuffer discards received bytes that have not been read.
	ResetInputBuffer() error
}
