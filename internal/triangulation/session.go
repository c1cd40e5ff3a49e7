package triangulation

import (
	"github.com/banshee-data/triangulate/internal/notecard"
)

// Begin prepares the companion device to accept Wi-Fi triangulation data and
// puts the radio into a scan-ready state. It is idempotent: once it has
// succeeded, later calls return nil without touching either device. On
// failure the coordinator stays uninitialized and the next call retries the
// full handshake.
func (c *Coordinator) Begin() error {
	if c.state.Initialized {
		return nil
	}

	if err := c.snapshot.Capture(); err != nil {
		c.sink.LogDebugf("[ERROR][Wi-Fi] failed to capture configuration: %v", err)
		return &Error{Code: CodeConfigSnapshot, Op: "begin", Err: err}
	}

	err := c.send("begin", func(req notecard.Request) {
		req.SetString("mode", "wifi").
			SetBool("on", true).
			SetBool("set", true)
	})
	if err != nil {
		return err
	}

	if err := c.radio.SetStationMode(); err != nil {
		c.sink.LogDebugf("[ERROR][Wi-Fi] failed to enter station mode: %v", err)
		return &Error{Code: CodeRadioMode, Op: "begin", Err: err}
	}

	if c.radio.Disconnect() && !c.waitDisconnected() {
		c.sink.LogDebugf("[ERROR][Wi-Fi] still connected after %s", c.disconnectTimeout)
		return &Error{Code: CodeDisconnectTimeout, Op: "begin"}
	}

	c.state.Initialized = true
	c.sink.LogDebugf("[INFO ][Wi-Fi] radio ready for scanning")
	return nil
}

// waitDisconnected polls the radio at a fixed interval until it reports
// disconnected or the disconnect timeout elapses.
func (c *Coordinator) waitDisconnected() bool {
	start := c.clock.Now()
	for c.radio.IsConnected() {
		if c.clock.Since(start) >= c.disconnectTimeout {
			return false
		}
		c.clock.Sleep(c.pollInterval)
	}
	return true
}

// End restores the configuration captured by Begin and marks the coordinator
// uninitialized. With the default NopConfigSnapshot nothing is restored.
func (c *Coordinator) End() error {
	err := c.snapshot.Restore()
	c.state.Initialized = false
	if err != nil {
		c.sink.LogDebugf("[ERROR][Wi-Fi] failed to restore configuration: %v", err)
		return &Error{Code: CodeConfigSnapshot, Op: "end", Err: err}
	}
	return nil
}
