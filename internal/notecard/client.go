// Package notecard implements the newline-delimited JSON request/response
// protocol spoken by the cellular companion device over its auxiliary serial
// port.
package notecard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/banshee-data/triangulate/internal/timeutil"
)

var (
	// ErrClosed is returned when a request is created or sent after Close.
	ErrClosed = errors.New("notecard: client closed")
	// ErrWriteFailed is returned on a short write to the serial port.
	ErrWriteFailed = errors.New("notecard: failed to write to serial port")
	// ErrTimeout is returned when no response line arrives in time.
	ErrTimeout = errors.New("notecard: timed out waiting for response")
)

// DefaultTimeout bounds the wait for a single response line.
const DefaultTimeout = 5 * time.Second

const maxResponseLen = 64 * 1024

// Client exchanges requests with the companion device. Each exchange holds the
// client lock from write to response, so requests never interleave on the wire.
type Client struct {
	port    SerialPorter
	timeout time.Duration
	clock   timeutil.Clock

	mu      sync.Mutex
	pending []byte
	closed  bool
}

// NewClient wraps a serial port. A non-positive timeout selects DefaultTimeout.
func NewClient(port SerialPorter, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		port:    port,
		timeout: timeout,
		clock:   timeutil.RealClock{},
	}
}

// NewRequest creates a request expecting a response.
func (c *Client) NewRequest(name string) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, errors.New("notecard: empty request name")
	}
	return Request{"req": name}, nil
}

// SendRequest sends req. Commands return as soon as they are written; requests
// wait for the response and report an "err" field as a *ResponseError.
func (c *Client) SendRequest(req Request) error {
	if req.IsCommand() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrClosed
		}
		if err := c.resync(); err != nil {
			return err
		}
		return c.write(req)
	}

	rsp, err := c.RequestAndResponse(req)
	if err != nil {
		return err
	}
	return rsp.AsError(req.Name())
}

// RequestAndResponse sends req and returns the decoded response. Only
// transport failures are returned as errors; a device "err" field is left in
// the response for the caller to inspect.
func (c *Client) RequestAndResponse(req Request) (Response, error) {
	if req.IsCommand() {
		return nil, fmt.Errorf("notecard: %s is a command and has no response", req.Name())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	if err := c.resync(); err != nil {
		return nil, err
	}
	if err := c.write(req); err != nil {
		return nil, err
	}

	for {
		line, err := c.readLine()
		if err != nil {
			// whatever arrives later belongs to this request
			c.pending = nil
			return nil, fmt.Errorf("notecard: %s: %w", req.Name(), err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		rsp := Response{}
		if err := dec.Decode(&rsp); err != nil {
			return nil, fmt.Errorf("notecard: %s: malformed response %q: %w", req.Name(), line, err)
		}
		return rsp, nil
	}
}

// Close closes the underlying port. Later requests fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}

// resync discards buffered and unread input so that a late reply to an
// earlier, abandoned request is never taken as the answer to the next one.
func (c *Client) resync() error {
	c.pending = nil
	if err := c.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("notecard: reset input: %w", err)
	}
	return nil
}

func (c *Client) write(req Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("notecard: encode %s: %w", req.Name(), err)
	}
	payload = append(payload, '\n')

	n, err := c.port.Write(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return ErrWriteFailed
	}
	return nil
}

// readLine returns the next newline-terminated line. Serial ports with a read
// timeout return (0, nil) when idle; those reads count against c.timeout.
func (c *Client) readLine() ([]byte, error) {
	start := c.clock.Now()
	buf := make([]byte, 256)

	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := c.pending[:i+1]
			c.pending = append([]byte(nil), c.pending[i+1:]...)
			return line, nil
		}
		if len(c.pending) > maxResponseLen {
			c.pending = nil
			return nil, fmt.Errorf("response exceeds %d bytes", maxResponseLen)
		}

		n, err := c.port.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, buf[:n]...)
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if c.clock.Since(start) >= c.timeout {
			return nil, ErrTimeout
		}
		if err != nil {
			// in-memory ports report EOF once drained
			return nil, ErrTimeout
		}
	}
}
