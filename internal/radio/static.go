package radio

import (
	"sync"

	"github.com/banshee-data/triangulate/internal/triangulation"
)

// DevTable is the access point table used by --dev runs.
var DevTable = []triangulation.AccessPoint{
	{EncryptionType: AuthWPA2PSK, SSID: "field-lab", RSSI: -41, BSSID: "a4:2b:b0:d1:9e:02", Channel: 6},
	{EncryptionType: AuthWPAWPA2PSK, SSID: "Corner Cafe", RSSI: -63, BSSID: "f0:9f:c2:10:7a:b4", Channel: 11},
	{EncryptionType: AuthOpen, SSID: "", RSSI: -78, BSSID: "00:1d:7e:33:c4:18", Channel: 1},
	{EncryptionType: AuthWPA2Enterprise, SSID: "eduroam", RSSI: -84, BSSID: "3c:37:86:5a:01:ef", Channel: 36},
}

// Static is a radio whose scans always find the same access points. It
// starts associated so the disconnect path is exercised.
type Static struct {
	mu        sync.Mutex
	table     []triangulation.AccessPoint
	count     int
	connected bool
}

var _ triangulation.Radio = (*Static)(nil)

// NewStatic returns a Static radio that finds aps on every scan.
func NewStatic(aps ...triangulation.AccessPoint) *Static {
	return &Static{table: aps, connected: true}
}

func (s *Static) SetStationMode() error { return nil }

func (s *Static) Disconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return false
	}
	s.connected = false
	return true
}

func (s *Static) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Static) Scan() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = len(s.table)
	return s.count, nil
}

func (s *Static) AccessPoint(i int) triangulation.AccessPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.count {
		return triangulation.AccessPoint{}
	}
	return s.table[i]
}
