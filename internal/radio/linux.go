// Package radio provides the Wi-Fi radios the triangulation coordinator
// scans with: the host's wireless interface on Linux, and a static table for
// development without hardware.
package radio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/banshee-data/triangulate/internal/monitoring"
	"github.com/banshee-data/triangulate/internal/triangulation"
)

// DefaultCommandTimeout bounds each external wpa_cli/iw/iwlist invocation.
const DefaultCommandTimeout = 30 * time.Second

// ErrNoInterface is returned when the configured interface is not a
// wireless interface known to nl80211.
var ErrNoInterface = errors.New("radio: wireless interface not found")

// WifiClient is the subset of *wifi.Client used by Linux.
type WifiClient interface {
	Interfaces() ([]*wifi.Interface, error)
	BSS(ifi *wifi.Interface) (*wifi.BSS, error)
	Close() error
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecCommand runs name with os/exec. A failed command's stderr is included
// in the returned error.
func ExecCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, err
}

// Linux drives a wireless interface through nl80211 for state queries,
// wpa_cli for disconnecting and iwlist for scanning.
type Linux struct {
	iface   string
	client  WifiClient
	run     CommandRunner
	timeout time.Duration

	mu    sync.Mutex
	table []triangulation.AccessPoint
}

var _ triangulation.Radio = (*Linux)(nil)

// Open connects to nl80211 and returns a radio for iface.
func Open(iface string) (*Linux, error) {
	client, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("radio: could not init a wifi interface client: %w", err)
	}
	return NewLinux(iface, client, ExecCommand), nil
}

// NewLinux returns a radio for iface using client and run. A nil run uses
// ExecCommand.
func NewLinux(iface string, client WifiClient, run CommandRunner) *Linux {
	if run == nil {
		run = ExecCommand
	}
	return &Linux{
		iface:   iface,
		client:  client,
		run:     run,
		timeout: DefaultCommandTimeout,
	}
}

// Close releases the nl80211 connection.
func (l *Linux) Close() error {
	return l.client.Close()
}

func (l *Linux) interfaceInfo() (*wifi.Interface, error) {
	ifis, err := l.client.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("radio: could not list wifi interfaces: %w", err)
	}
	for _, ifi := range ifis {
		if ifi.Name == l.iface {
			return ifi, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoInterface, l.iface)
}

func (l *Linux) command(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	return l.run(ctx, name, args...)
}

// SetStationMode switches the interface to managed (station) mode when it is
// in any other mode.
func (l *Linux) SetStationMode() error {
	ifi, err := l.interfaceInfo()
	if err != nil {
		return err
	}
	if ifi.Type == wifi.InterfaceTypeStation {
		return nil
	}

	monitoring.Logf("Switching %s from %v to station mode", l.iface, ifi.Type)
	if _, err := l.command("iw", "dev", l.iface, "set", "type", "managed"); err != nil {
		return fmt.Errorf("radio: set %s to station mode: %w", l.iface, err)
	}
	return nil
}

// Disconnect asks wpa_supplicant to leave the current network. It reports
// whether a disconnect was initiated, which is false when the interface was
// not associated or wpa_cli failed.
func (l *Linux) Disconnect() bool {
	if !l.IsConnected() {
		return false
	}
	if _, err := l.command("wpa_cli", "-i", l.iface, "disconnect"); err != nil {
		monitoring.Logf("failed to disconnect %s: %v", l.iface, err)
		return false
	}
	return true
}

// IsConnected reports whether the interface is associated with an access
// point.
func (l *Linux) IsConnected() bool {
	ifi, err := l.interfaceInfo()
	if err != nil {
		return false
	}
	bss, err := l.client.BSS(ifi)
	if err != nil || bss == nil {
		// nl80211 reports an error when there is no BSS
		return false
	}
	return bss.Status == wifi.BSSStatusAssociated
}

// Scan runs a blocking scan and replaces the access point table. On failure
// the previous table is discarded.
func (l *Linux) Scan() (int, error) {
	out, err := l.command("iwlist", l.iface, "scan")

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.table = nil
		return -1, fmt.Errorf("radio: scan %s: %w", l.iface, err)
	}
	l.table = parseIWListOutput(string(out))
	return len(l.table), nil
}

// AccessPoint returns entry i of the last scan, or the zero value when i is
// out of range.
func (l *Linux) AccessPoint(i int) triangulation.AccessPoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.table) {
		return triangulation.AccessPoint{}
	}
	return l.table[i]
}
