// Package triangulation keeps a cellular companion device supplied with nearby
// Wi-Fi access points so it can geolocate itself. The Coordinator prepares the
// radio, asks the companion whether its cached scan still holds, rescans when
// it does not, and submits the result as +CWLAP records.
//
// A Coordinator is single-threaded: callers must not invoke its methods
// concurrently. Runner adds the locking needed by background loops and debug
// handlers.
package triangulation

import (
	"time"

	"github.com/banshee-data/triangulate/internal/monitoring"
	"github.com/banshee-data/triangulate/internal/notecard"
	"github.com/banshee-data/triangulate/internal/timeutil"
)

// triangulateRequest is the companion request used for configuration,
// cache status and submission alike.
const triangulateRequest = "card.triangulate"

const (
	// DefaultDisconnectTimeout bounds the wait for the radio to drop its
	// association during Begin.
	DefaultDisconnectTimeout = 10 * time.Second
	// DefaultPollInterval is the fixed delay between radio state polls.
	DefaultPollInterval = 10 * time.Millisecond
)

// AccessPoint is one entry of the radio's scan table.
type AccessPoint struct {
	EncryptionType int
	SSID           string
	RSSI           int
	BSSID          string
	Channel        int
}

// Radio is the local Wi-Fi radio.
type Radio interface {
	// SetStationMode switches the radio to client mode, able to scan
	// without being associated.
	SetStationMode() error
	// Disconnect drops any association. It reports whether anything was
	// done; false means there was nothing to disconnect from.
	Disconnect() bool
	// IsConnected reports whether the radio is still associated.
	IsConnected() bool
	// Scan runs a synchronous scan and returns the number of networks found.
	// A negative count or a non-nil error is a failed scan.
	Scan() (int, error)
	// AccessPoint returns entry i of the most recent scan table.
	AccessPoint(i int) AccessPoint
}

// Companion is the request/response surface of the companion device. The
// coordinator borrows it and never closes it.
type Companion interface {
	NewRequest(name string) (notecard.Request, error)
	SendRequest(req notecard.Request) error
	RequestAndResponse(req notecard.Request) (notecard.Response, error)
}

// DiagnosticSink receives human-readable diagnostic lines. It is best-effort.
type DiagnosticSink interface {
	LogDebug(line string)
	LogDebugf(format string, v ...interface{})
}

// ScanState is the coordinator's only mutable state.
type ScanState struct {
	// AccessPointCount is the number of networks found by the last
	// successful scan.
	AccessPointCount int `json:"access_point_count"`
	// LastScan is when the last successful scan started; zero if none.
	LastScan time.Time `json:"last_scan"`
	// Initialized is set once Begin has completed.
	Initialized bool `json:"initialized"`
}

// Options configures a Coordinator. Zero values select defaults.
type Options struct {
	Sink              DiagnosticSink
	Clock             timeutil.Clock
	Snapshot          ConfigSnapshot
	DisconnectTimeout time.Duration
	PollInterval      time.Duration
}

// Coordinator sequences radio setup, cache checks, scanning and submission.
type Coordinator struct {
	companion Companion
	radio     Radio
	sink      DiagnosticSink
	clock     timeutil.Clock
	snapshot  ConfigSnapshot

	disconnectTimeout time.Duration
	pollInterval      time.Duration

	state ScanState
}

// New returns a Coordinator using companion and radio. The companion must
// outlive the coordinator.
func New(companion Companion, radio Radio, opts Options) *Coordinator {
	c := &Coordinator{
		companion:         companion,
		radio:             radio,
		sink:              opts.Sink,
		clock:             opts.Clock,
		snapshot:          opts.Snapshot,
		disconnectTimeout: opts.DisconnectTimeout,
		pollInterval:      opts.PollInterval,
	}
	if c.sink == nil {
		c.sink = monitoring.Sink{}
	}
	if c.clock == nil {
		c.clock = timeutil.RealClock{}
	}
	if c.snapshot == nil {
		c.snapshot = NopConfigSnapshot{}
	}
	if c.disconnectTimeout <= 0 {
		c.disconnectTimeout = DefaultDisconnectTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	return c
}

// State returns a copy of the scan state.
func (c *Coordinator) State() ScanState {
	return c.state
}
