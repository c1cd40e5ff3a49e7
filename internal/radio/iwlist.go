package radio

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/banshee-data/triangulate/internal/triangulation"
)

// Encryption codes reported per access point, numbered like the ESP32
// wifi_auth_mode_t enum that cloud-side triangulation expects.
const (
	AuthOpen           = 0
	AuthWEP            = 1
	AuthWPAPSK         = 2
	AuthWPA2PSK        = 3
	AuthWPAWPA2PSK     = 4
	AuthWPA2Enterprise = 5
)

var (
	addressRegex    = regexp.MustCompile(`Address: ([0-9A-Fa-f:]{17})`)
	ssidRegex       = regexp.MustCompile(`ESSID:"(.*)"`)
	channelRegex    = regexp.MustCompile(`Channel[: ](\d+)`)
	signalRegex     = regexp.MustCompile(`Signal level[=:](-?\d+)(?: dBm|/(\d+))`)
	encryptionRegex = regexp.MustCompile(`Encryption key:(on|off)`)
	wpa2Regex       = regexp.MustCompile(`IE: IEEE 802.11i/WPA2 Version`)
	wpaRegex        = regexp.MustCompile(`IE: WPA Version 1`)
	enterpriseRegex = regexp.MustCompile(`Authentication Suites \(\d+\) : 802\.1x`)
)

// parseIWListOutput extracts access points from `iwlist <if> scan` output,
// strongest signal first. Cells without a BSSID are skipped.
func parseIWListOutput(output string) []triangulation.AccessPoint {
	var aps []triangulation.AccessPoint

	cells := strings.Split(output, "Cell ")
	for _, cell := range cells[1:] {
		address := addressRegex.FindStringSubmatch(cell)
		if len(address) < 2 {
			continue
		}

		ap := triangulation.AccessPoint{BSSID: address[1]}
		if ssid := ssidRegex.FindStringSubmatch(cell); len(ssid) > 1 {
			ap.SSID = unescapeSSID(ssid[1])
		}
		if ch := channelRegex.FindStringSubmatch(cell); len(ch) > 1 {
			ap.Channel, _ = strconv.Atoi(ch[1])
		}
		ap.RSSI = parseSignal(signalRegex.FindStringSubmatch(cell))
		ap.EncryptionType = encryptionType(cell)

		aps = append(aps, ap)
	}

	slices.SortStableFunc(aps, func(a, b triangulation.AccessPoint) int {
		return b.RSSI - a.RSSI
	})
	return aps
}

// parseSignal returns dBm. Drivers that report a relative level ("60/100")
// are mapped onto -100..-50 dBm.
func parseSignal(m []string) int {
	if len(m) < 2 {
		return -100
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return -100
	}
	if m[2] == "" {
		return level
	}
	scale, err := strconv.Atoi(m[2])
	if err != nil || scale <= 0 {
		return -100
	}
	return level*100/scale/2 - 100
}

func encryptionType(cell string) int {
	enc := encryptionRegex.FindStringSubmatch(cell)
	if len(enc) < 2 || enc[1] == "off" {
		return AuthOpen
	}

	wpa2 := wpa2Regex.MatchString(cell)
	wpa := wpaRegex.MatchString(cell)
	switch {
	case wpa2 && enterpriseRegex.MatchString(cell):
		return AuthWPA2Enterprise
	case wpa2 && wpa:
		return AuthWPAWPA2PSK
	case wpa2:
		return AuthWPA2PSK
	case wpa:
		return AuthWPAPSK
	default:
		return AuthWEP
	}
}

// unescapeSSID undoes iwlist's \xHH escaping of non-printable bytes.
func unescapeSSID(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
