package monitoring

import (
	"log"
	"strings"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Sink routes preformatted diagnostic lines to Logf. Device-facing lines carry
// their own CRLF terminator, which is stripped so the log stays one line per
// entry.
type Sink struct{}

// LogDebug writes a single preformatted line.
func (Sink) LogDebug(line string) {
	Logf("%s", strings.TrimRight(line, "\r\n"))
}

// LogDebugf writes a printf-style line.
func (Sink) LogDebugf(format string, v ...interface{}) {
	Logf(strings.TrimRight(format, "\r\n"), v...)
}
