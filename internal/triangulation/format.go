package triangulation

import (
	"iter"
	"strconv"
	"strings"
)

// RecordPrefix opens every +CWLAP record.
const RecordPrefix = "+CWLAP:("

const crlf = "\r\n"

// SanitizeSSID replaces every byte below 0x20, at or above 0x7F, or equal to
// '"' with '.'. The result is safe inside a double-quoted field. Multi-byte
// UTF-8 sequences become one dot per byte.
func SanitizeSSID(ssid string) string {
	b := []byte(ssid)
	for i, ch := range b {
		if ch < ' ' || ch >= 0x7f || ch == '"' {
			b[i] = '.'
		}
	}
	return string(b)
}

// FormatRecord renders one access point as a CRLF-terminated +CWLAP record:
//
//	+CWLAP:(<enc>,"<ssid>",<rssi>,"<bssid>",<channel>)
func FormatRecord(ap AccessPoint) string {
	var sb strings.Builder
	sb.Grow(len(RecordPrefix) + len(ap.SSID) + len(ap.BSSID) + 24)
	sb.WriteString(RecordPrefix)
	sb.WriteString(strconv.Itoa(ap.EncryptionType))
	sb.WriteString(`,"`)
	sb.WriteString(SanitizeSSID(ap.SSID))
	sb.WriteString(`",`)
	sb.WriteString(strconv.Itoa(ap.RSSI))
	sb.WriteString(`,"`)
	sb.WriteString(ap.BSSID)
	sb.WriteString(`",`)
	sb.WriteString(strconv.Itoa(ap.Channel))
	sb.WriteString(")")
	sb.WriteString(crlf)
	return sb.String()
}

// Records yields the formatted records for radio table entries [0, count) in
// radio order. Each iteration re-reads the radio table.
func Records(radio Radio, count int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := 0; i < count; i++ {
			if !yield(FormatRecord(radio.AccessPoint(i))) {
				return
			}
		}
	}
}

// BuildBuffer concatenates records and appends the terminating blank line.
func BuildBuffer(records iter.Seq[string]) string {
	var sb strings.Builder
	for rec := range records {
		sb.WriteString(rec)
	}
	sb.WriteString(crlf)
	return sb.String()
}

func (c *Coordinator) records() iter.Seq[string] {
	return Records(c.radio, c.state.AccessPointCount)
}

// LogCachedSsids writes the records of the last scan to the diagnostic sink.
// It neither rescans nor submits; with no prior scan it writes nothing.
func (c *Coordinator) LogCachedSsids() {
	for rec := range c.records() {
		c.sink.LogDebug(rec)
	}
}
