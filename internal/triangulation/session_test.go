package triangulation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/triangulate/internal/notecard"
)

func TestBegin_ConfiguresCompanionAndRadio(t *testing.T) {
	rig := newTestRig()

	require.NoError(t, rig.coord.Begin())

	require.Len(t, rig.companion.sent, 1)
	assert.Equal(t, notecard.Request{
		"req":  "card.triangulate",
		"mode": "wifi",
		"on":   true,
		"set":  true,
	}, rig.companion.sent[0])
	assert.Equal(t, []string{"station", "disconnect"}, rig.radio.calls)
	assert.True(t, rig.coord.State().Initialized)
	assert.True(t, rig.sink.contains("[INFO ]"))
}

func TestBegin_Idempotent(t *testing.T) {
	rig := newTestRig()

	require.NoError(t, rig.coord.Begin())
	require.NoError(t, rig.coord.Begin())

	assert.Len(t, rig.companion.sent, 1, "second Begin must not issue requests")
	assert.Equal(t, 1, rig.radio.count("station"))
	assert.Equal(t, 1, rig.radio.count("disconnect"))
}

func TestBegin_WaitsForDisconnect(t *testing.T) {
	rig := newTestRig()
	rig.radio.disconnectAction = true
	rig.radio.connectedPolls = 5

	require.NoError(t, rig.coord.Begin())

	assert.True(t, rig.coord.State().Initialized)
	sleeps := rig.clock.Sleeps()
	assert.Len(t, sleeps, 5)
	for _, d := range sleeps {
		assert.Equal(t, DefaultPollInterval, d, "poll interval must be fixed")
	}
}

func TestBegin_DisconnectTimeout(t *testing.T) {
	rig := newTestRig()
	rig.radio.disconnectAction = true
	rig.radio.connectedPolls = -1

	err := rig.coord.Begin()

	require.Error(t, err)
	assert.Equal(t, CodeDisconnectTimeout, CodeOf(err))
	assert.ErrorIs(t, err, ErrDisconnectTimeout)
	assert.False(t, rig.coord.State().Initialized)
	assert.GreaterOrEqual(t, rig.clock.Since(testEpoch), 10*time.Second)
	assert.Less(t, rig.clock.Since(testEpoch), 10*time.Second+2*DefaultPollInterval)
	assert.True(t, rig.sink.contains("[ERROR]"))

	// A later call retries the full handshake.
	rig.radio.connectedPolls = 0
	require.NoError(t, rig.coord.Begin())
	assert.Len(t, rig.companion.sent, 2)
	assert.True(t, rig.coord.State().Initialized)
}

func TestBegin_CustomDisconnectTimeout(t *testing.T) {
	rig := newTestRig()
	rig.coord = New(rig.companion, rig.radio, Options{
		Sink:              rig.sink,
		Clock:             rig.clock,
		DisconnectTimeout: time.Second,
		PollInterval:      100 * time.Millisecond,
	})
	rig.radio.disconnectAction = true
	rig.radio.connectedPolls = -1

	err := rig.coord.Begin()

	assert.Equal(t, CodeDisconnectTimeout, CodeOf(err))
	assert.Equal(t, time.Second, rig.clock.Since(testEpoch))
}

func TestBegin_CompanionFailuresLeaveRadioUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeCompanion)
		want  Code
	}{
		{
			name:  "allocation",
			setup: func(c *fakeCompanion) { c.allocErr = notecard.ErrClosed },
			want:  CodeRequestAllocation,
		},
		{
			name: "error response",
			setup: func(c *fakeCompanion) {
				c.sendErr = &notecard.ResponseError{Request: "card.triangulate", Message: "not supported"}
			},
			want: CodeDeviceResponse,
		},
		{
			name:  "transport",
			setup: func(c *fakeCompanion) { c.sendErr = notecard.ErrTimeout },
			want:  CodeTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig()
			tt.setup(rig.companion)

			err := rig.coord.Begin()

			assert.Equal(t, tt.want, CodeOf(err))
			assert.Empty(t, rig.radio.calls, "radio must not be touched")
			assert.False(t, rig.coord.State().Initialized)
			assert.True(t, rig.sink.contains("[ERROR]"))
		})
	}
}

func TestBegin_StationModeFailure(t *testing.T) {
	rig := newTestRig()
	rig.radio.stationErr = errors.New("interface is in AP mode")

	err := rig.coord.Begin()

	assert.Equal(t, CodeRadioMode, CodeOf(err))
	assert.ErrorContains(t, err, "AP mode")
	assert.Equal(t, 0, rig.radio.count("disconnect"))
	assert.False(t, rig.coord.State().Initialized)
}

type scriptedSnapshot struct {
	captureErr, restoreErr error
	captures, restores     int
}

func (s *scriptedSnapshot) Capture() error { s.captures++; return s.captureErr }
func (s *scriptedSnapshot) Restore() error { s.restores++; return s.restoreErr }

func TestBeginEnd_Snapshot(t *testing.T) {
	rig := newTestRig()
	snap := &scriptedSnapshot{}
	rig.coord = New(rig.companion, rig.radio, Options{Sink: rig.sink, Clock: rig.clock, Snapshot: snap})

	require.NoError(t, rig.coord.Begin())
	assert.Equal(t, 1, snap.captures)

	require.NoError(t, rig.coord.End())
	assert.Equal(t, 1, snap.restores)
	assert.False(t, rig.coord.State().Initialized)

	snap.captureErr = errors.New("no access")
	err := rig.coord.Begin()
	assert.Equal(t, CodeConfigSnapshot, CodeOf(err))
	assert.Len(t, rig.companion.sent, 1, "failed capture aborts before the companion request")

	snap.restoreErr = errors.New("gone")
	assert.Equal(t, CodeConfigSnapshot, CodeOf(rig.coord.End()))
}

func TestEnd_DefaultIsNoop(t *testing.T) {
	rig := newTestRig()
	require.NoError(t, rig.coord.Begin())
	calls := len(rig.radio.calls)
	sent := len(rig.companion.sent)

	require.NoError(t, rig.coord.End())

	assert.Len(t, rig.radio.calls, calls)
	assert.Len(t, rig.companion.sent, sent)
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Code: CodeTransport, Op: "submit", Err: notecard.ErrTimeout}
	assert.Equal(t, "triangulation: submit: transport failure: notecard: timed out waiting for response", err.Error())
	assert.ErrorIs(t, err, notecard.ErrTimeout)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrScanFailed)

	assert.Equal(t, CodeOK, CodeOf(nil))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("other")))
	assert.Equal(t, "code(42)", Code(42).String())
}
