package notecard

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/banshee-data/triangulate/internal/timeutil"
)

// ClearText is the triangulation text that erases the device's cached scan.
const ClearText = "-"

// Simulator is an in-memory companion device speaking the same line protocol
// as the hardware. It implements SerialPorter so a Client can be attached to
// it directly, and is used for --dev runs and tests.
type Simulator struct {
	mu    sync.Mutex
	clock timeutil.Clock

	in     []byte
	out    bytes.Buffer
	closed bool

	mode     string
	on       bool
	text     string
	textAt   time.Time
	motionAt time.Time

	offline  bool
	failWith string
	requests []Request
}

var _ SerialPorter = (*Simulator)(nil)

// NewSimulator returns a simulator reading timestamps from clock.
func NewSimulator(clock timeutil.Clock) *Simulator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Simulator{clock: clock}
}

// Write consumes request lines and queues their responses.
func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New("simulator closed")
	}

	s.in = append(s.in, p...)
	for {
		i := bytes.IndexByte(s.in, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimSpace(s.in[:i])
		s.in = s.in[i+1:]
		if len(line) == 0 {
			continue
		}
		s.handleLine(line)
	}
	return len(p), nil
}

// Read returns queued response bytes, or io.EOF when none are pending.
func (s *Simulator) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New("simulator closed")
	}
	if s.out.Len() == 0 {
		return 0, io.EOF
	}
	return s.out.Read(p)
}

// ResetInputBuffer drops responses that have not been read yet.
func (s *Simulator) ResetInputBuffer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Reset()
	return nil
}

// Close marks the simulator closed.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Move records a motion event at the current clock time.
func (s *Simulator) Move() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motionAt = s.clock.Now()
}

// SetOffline drops all requests without answering while true.
func (s *Simulator) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// FailWith makes every request answer with an "err" field. An empty message
// restores normal behaviour.
func (s *Simulator) FailWith(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = message
}

// Text returns the cached triangulation text.
func (s *Simulator) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Enabled reports whether Wi-Fi triangulation has been switched on.
func (s *Simulator) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on && s.mode == "wifi"
}

// Requests returns every request received, in order.
func (s *Simulator) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Simulator) handleLine(line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		if !s.offline {
			s.respond(Response{"err": "unrecognized request: invalid JSON {io}"})
		}
		return
	}
	s.requests = append(s.requests, req)

	if s.offline {
		return
	}

	var rsp Response
	switch {
	case s.failWith != "":
		rsp = Response{"err": s.failWith}
	case req.Name() == "card.triangulate":
		rsp = s.triangulate(req)
	default:
		rsp = Response{"err": "unknown request: " + req.Name() + " {io}"}
	}

	if !req.IsCommand() {
		s.respond(rsp)
	}
}

func (s *Simulator) triangulate(req Request) Response {
	if mode, ok := req["mode"].(string); ok {
		s.mode = mode
	}
	if on, ok := req["on"].(bool); ok {
		s.on = on
	}
	if text, ok := req["text"].(string); ok {
		if text == ClearText {
			s.text = ""
			s.textAt = time.Time{}
		} else {
			s.text = text
			s.textAt = s.clock.Now()
		}
	}

	rsp := Response{
		"mode":   s.mode,
		"on":     s.on,
		"length": len(s.text),
		"time":   epoch(s.textAt),
		"motion": epoch(s.motionAt),
	}
	return rsp
}

func (s *Simulator) respond(rsp Response) {
	payload, err := json.Marshal(rsp)
	if err != nil {
		return
	}
	s.out.Write(payload)
	s.out.WriteString("\r\n")
}

func epoch(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
