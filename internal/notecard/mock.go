package notecard

import (
	"bytes"
	"errors"
	"sync"
)

// TestableSerialPort implements SerialPorter with configurable behaviour for testing.
// Reads on an empty buffer return (0, nil), the same as a real port whose read
// timeout elapsed. Replies queued with QueueResponse arrive only after the next
// Write, the way a device answers a request.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite makes the next Write report one byte fewer than given
	ShortWrite bool

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// ReadCalls records the number of Read calls
	ReadCalls int

	// WriteCalls records the number of Write calls
	WriteCalls int

	// ResetCalls records the number of ResetInputBuffer calls
	ResetCalls int

	// ResetError is returned by the next ResetInputBuffer call if set
	ResetError error

	replies [][]byte
}

var _ SerialPorter = (*TestableSerialPort)(nil)

// NewTestableSerialPort creates a new TestableSerialPort for testing.
func NewTestableSerialPort() *TestableSerialPort {
	return &TestableSerialPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read reads from the read buffer, optionally simulating errors.
func (t *TestableSerialPort) Read(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}

	if t.ReadBuffer.Len() == 0 {
		return 0, nil
	}
	return t.ReadBuffer.Read(p)
}

// Write writes to the write buffer, optionally simulating errors.
func (t *TestableSerialPort) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}

	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}

	if t.ShortWrite && len(p) > 0 {
		t.ShortWrite = false
		return t.WriteBuffer.Write(p[:len(p)-1])
	}

	n, err = t.WriteBuffer.Write(p)
	if len(t.replies) > 0 {
		t.ReadBuffer.Write(t.replies[0])
		t.replies = t.replies[1:]
	}
	return n, err
}

// Close marks the port as closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	return t.CloseError
}

// ResetInputBuffer drops unread data, optionally simulating an error.
func (t *TestableSerialPort) ResetInputBuffer() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ResetCalls++

	if t.ResetError != nil {
		err := t.ResetError
		t.ResetError = nil
		return err
	}

	t.ReadBuffer.Reset()
	return nil
}

// QueueResponse queues data to arrive after the next Write that has no reply
// queued ahead of it.
func (t *TestableSerialPort) QueueResponse(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.replies = append(t.replies, append([]byte(nil), data...))
}

// AddReadData makes data readable immediately, as if it had just arrived.
func (t *TestableSerialPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.Write(data)
}

// GetWrittenData returns all data written to the port.
func (t *TestableSerialPort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]byte(nil), t.WriteBuffer.Bytes()...)
}
