package triangulation

// CacheIsValid asks the companion device whether its cached scan still
// describes the current position. Any failure to get an answer reads as
// invalid so the caller rescans.
func (c *Coordinator) CacheIsValid() bool {
	req, err := c.companion.NewRequest(triangulateRequest)
	if err != nil || req == nil {
		c.sink.LogDebugf("[ERROR][Notecard] failed to allocate %s status request: %v", triangulateRequest, err)
		return false
	}

	rsp, err := c.companion.RequestAndResponse(req)
	if err != nil || rsp == nil {
		c.sink.LogDebugf("[ERROR][Notecard] no %s status response: %v", triangulateRequest, err)
		return false
	}
	if msg := rsp.Err(); msg != "" {
		c.sink.LogDebugf("[ERROR][Notecard] %s status: %s", triangulateRequest, msg)
		return false
	}

	textLength := rsp.Int("length")
	scanTime := rsp.Int("time")
	motionTime := rsp.Int("motion")

	// A cached scan exists, motion has been tracked, and the scan is newer
	// than the last motion event.
	return textLength > 1 && scanTime != 0 && motionTime != 0 && scanTime > motionTime
}
