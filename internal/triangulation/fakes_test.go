package triangulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/triangulate/internal/notecard"
	"github.com/banshee-data/triangulate/internal/timeutil"
)

var testEpoch = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

// fakeRadio is an in-memory radio with a scripted scan table.
type fakeRadio struct {
	table []AccessPoint

	scanCount int
	scanErr   error

	stationErr error

	// disconnectAction is returned by Disconnect.
	disconnectAction bool
	// connectedPolls is how many IsConnected calls report true; -1 is forever.
	connectedPolls int

	calls []string
}

func newFakeRadio(aps ...AccessPoint) *fakeRadio {
	return &fakeRadio{table: aps, scanCount: len(aps)}
}

func (r *fakeRadio) SetStationMode() error {
	r.calls = append(r.calls, "station")
	return r.stationErr
}

func (r *fakeRadio) Disconnect() bool {
	r.calls = append(r.calls, "disconnect")
	return r.disconnectAction
}

func (r *fakeRadio) IsConnected() bool {
	if r.connectedPolls < 0 {
		return true
	}
	if r.connectedPolls > 0 {
		r.connectedPolls--
		return true
	}
	return false
}

func (r *fakeRadio) Scan() (int, error) {
	r.calls = append(r.calls, "scan")
	return r.scanCount, r.scanErr
}

func (r *fakeRadio) AccessPoint(i int) AccessPoint {
	if i < 0 || i >= len(r.table) {
		return AccessPoint{}
	}
	return r.table[i]
}

func (r *fakeRadio) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakeCompanion records requests and returns scripted results.
type fakeCompanion struct {
	allocErr  error
	sendErr   error
	status    notecard.Response
	statusErr error

	sent        []notecard.Request
	statusCalls int
}

func (c *fakeCompanion) NewRequest(name string) (notecard.Request, error) {
	if c.allocErr != nil {
		return nil, c.allocErr
	}
	return notecard.Request{"req": name}, nil
}

func (c *fakeCompanion) SendRequest(req notecard.Request) error {
	c.sent = append(c.sent, req)
	return c.sendErr
}

func (c *fakeCompanion) RequestAndResponse(req notecard.Request) (notecard.Response, error) {
	c.statusCalls++
	return c.status, c.statusErr
}

// texts returns the "text" field of each submitted request.
func (c *fakeCompanion) texts() []string {
	var out []string
	for _, req := range c.sent {
		if text, ok := req["text"].(string); ok {
			out = append(out, text)
		}
	}
	return out
}

// recordingSink keeps every diagnostic line.
type recordingSink struct {
	lines []string
}

func (s *recordingSink) LogDebug(line string) {
	s.lines = append(s.lines, line)
}

func (s *recordingSink) LogDebugf(format string, v ...interface{}) {
	s.lines = append(s.lines, fmt.Sprintf(format, v...))
}

func (s *recordingSink) contains(substr string) bool {
	for _, l := range s.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

type testRig struct {
	companion *fakeCompanion
	radio     *fakeRadio
	sink      *recordingSink
	clock     *timeutil.MockClock
	coord     *Coordinator
}

func newTestRig(aps ...AccessPoint) *testRig {
	rig := &testRig{
		companion: &fakeCompanion{},
		radio:     newFakeRadio(aps...),
		sink:      &recordingSink{},
		clock:     timeutil.NewMockClock(testEpoch),
	}
	rig.coord = New(rig.companion, rig.radio, Options{
		Sink:  rig.sink,
		Clock: rig.clock,
	})
	return rig
}

var sampleAPs = []AccessPoint{
	{EncryptionType: 3, SSID: "home-net", RSSI: -42, BSSID: "a4:2b:b0:11:22:33", Channel: 6},
	{EncryptionType: 0, SSID: "Cafe \"Free\"", RSSI: -71, BSSID: "F0:9F:C2:AA:BB:CC", Channel: 11},
	{EncryptionType: 4, SSID: "", RSSI: -88, BSSID: "00:11:22:33:44:55", Channel: 1},
}
