package triangulation

import (
	"errors"

	"github.com/banshee-data/triangulate/internal/notecard"
)

// EnqueueResults hands buffer to the companion device as its triangulation
// text. With no access points it either clears the companion's cached text
// (clearOnEmpty) or does nothing and returns nil.
func (c *Coordinator) EnqueueResults(buffer string, clearOnEmpty bool) error {
	var text string
	switch {
	case c.state.AccessPointCount > 0:
		text = buffer
	case clearOnEmpty:
		text = notecard.ClearText
	default:
		return nil
	}

	return c.send("submit", func(req notecard.Request) {
		req.SetString("text", text)
	})
}

// send builds a triangulation request, lets fill attach fields, and sends it,
// mapping failures onto error codes.
func (c *Coordinator) send(op string, fill func(notecard.Request)) error {
	req, err := c.companion.NewRequest(triangulateRequest)
	if err != nil || req == nil {
		c.sink.LogDebugf("[ERROR][Notecard] failed to allocate %s request: %v", triangulateRequest, err)
		return &Error{Code: CodeRequestAllocation, Op: op, Err: err}
	}
	fill(req)

	if err := c.companion.SendRequest(req); err != nil {
		var rerr *notecard.ResponseError
		if errors.As(err, &rerr) {
			c.sink.LogDebugf("[ERROR][Notecard] %s: %s", triangulateRequest, rerr.Message)
			return &Error{Code: CodeDeviceResponse, Op: op, Err: err}
		}
		c.sink.LogDebugf("[ERROR][Notecard] %s not delivered: %v", triangulateRequest, err)
		return &Error{Code: CodeTransport, Op: op, Err: err}
	}
	return nil
}
