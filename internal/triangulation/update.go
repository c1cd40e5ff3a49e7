package triangulation

import (
	"time"
)

// UpdateTriangulationData refreshes the companion device's triangulation text.
//
// Unless useCache is set and the companion reports its cached scan still
// valid, the radio rescans. A failed scan empties the table and processing
// continues, so clearOnEmptyScan can still erase stale data. The current table
// is then formatted and submitted.
//
// The returned error is the scan failure when a scan was attempted and failed,
// otherwise the submission result. A submission failure after a failed scan
// is only visible in the diagnostic log.
func (c *Coordinator) UpdateTriangulationData(clearOnEmptyScan, useCache bool) error {
	var scanErr error
	if !useCache || !c.CacheIsValid() {
		scanErr = c.scan()
	}

	buffer := BuildBuffer(c.records())
	submitErr := c.EnqueueResults(buffer, clearOnEmptyScan)

	if scanErr != nil {
		return scanErr
	}
	return submitErr
}

func (c *Coordinator) scan() error {
	c.state.LastScan = c.clock.Now()

	count, err := c.radio.Scan()
	if err != nil || count < 0 {
		c.sink.LogDebugf("[ERROR][Wi-Fi] AP scan failed!")
		c.state.AccessPointCount = 0
		c.state.LastScan = time.Time{}
		return &Error{Code: CodeScanFailed, Op: "scan", Err: err}
	}

	c.state.AccessPointCount = count
	c.sink.LogDebugf("[INFO ][Wi-Fi] <%d> access points found.", count)
	return nil
}
