package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/triangulate/internal/notecard"
)

// Defaults applied by the Get* accessors when a field is omitted.
const (
	DefaultSerialPort        = "/dev/ttyACM0"
	DefaultInterface         = "wlan0"
	DefaultUpdateInterval    = 5 * time.Minute
	DefaultDisconnectTimeout = 10 * time.Second
	DefaultRequestTimeout    = 5 * time.Second
)

// Config is the runtime configuration for the triangulation helper. Every
// field is optional; omitted values fall back to the defaults above.
type Config struct {
	// Companion device
	SerialPort     *string               `json:"serial_port,omitempty"`
	Serial         *notecard.PortOptions `json:"serial,omitempty"`
	RequestTimeout *string               `json:"request_timeout,omitempty"` // duration string like "5s"

	// Radio
	Interface         *string `json:"interface,omitempty"`
	DisconnectTimeout *string `json:"disconnect_timeout,omitempty"` // duration string like "10s"

	// Update loop
	UpdateInterval   *string `json:"update_interval,omitempty"` // duration string like "5m"
	ClearOnEmptyScan *bool   `json:"clear_on_empty_scan,omitempty"`
	UseCache         *bool   `json:"use_cache,omitempty"`

	// Debug HTTP listener, disabled when empty.
	DebugListen *string `json:"debug_listen,omitempty"`
}

// Default returns a Config with all fields unset.
func Default() *Config {
	return &Config{}
}

// Load loads a Config from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	for name, value := range map[string]*string{
		"request_timeout":    c.RequestTimeout,
		"disconnect_timeout": c.DisconnectTimeout,
		"update_interval":    c.UpdateInterval,
	} {
		if value == nil || *value == "" {
			continue
		}
		d, err := time.ParseDuration(*value)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, *value)
		}
	}

	if c.Serial != nil {
		if _, err := c.Serial.Normalize(); err != nil {
			return fmt.Errorf("invalid serial options: %w", err)
		}
	}

	if c.SerialPort != nil && *c.SerialPort == "" {
		return fmt.Errorf("serial_port must not be empty")
	}
	if c.Interface != nil && *c.Interface == "" {
		return fmt.Errorf("interface must not be empty")
	}

	return nil
}

// GetSerialPort returns the companion device serial port path.
func (c *Config) GetSerialPort() string {
	if c.SerialPort != nil {
		return *c.SerialPort
	}
	return DefaultSerialPort
}

// GetSerial returns the serial line options.
func (c *Config) GetSerial() notecard.PortOptions {
	if c.Serial != nil {
		return *c.Serial
	}
	return notecard.PortOptions{}
}

// GetRequestTimeout returns the companion device response timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDurationOr(c.RequestTimeout, DefaultRequestTimeout)
}

// GetInterface returns the wireless interface name.
func (c *Config) GetInterface() string {
	if c.Interface != nil {
		return *c.Interface
	}
	return DefaultInterface
}

// GetDisconnectTimeout returns the bound on the radio disconnect wait.
func (c *Config) GetDisconnectTimeout() time.Duration {
	return parseDurationOr(c.DisconnectTimeout, DefaultDisconnectTimeout)
}

// GetUpdateInterval returns the period between triangulation updates.
func (c *Config) GetUpdateInterval() time.Duration {
	return parseDurationOr(c.UpdateInterval, DefaultUpdateInterval)
}

// GetClearOnEmptyScan reports whether an empty scan clears the companion's
// cached location. Defaults to false.
func (c *Config) GetClearOnEmptyScan() bool {
	if c.ClearOnEmptyScan != nil {
		return *c.ClearOnEmptyScan
	}
	return false
}

// GetUseCache reports whether the companion's movement-aware cache may skip
// a scan. Defaults to true.
func (c *Config) GetUseCache() bool {
	if c.UseCache != nil {
		return *c.UseCache
	}
	return true
}

// GetDebugListen returns the debug HTTP listen address, or "" when disabled.
func (c *Config) GetDebugListen() string {
	if c.DebugListen != nil {
		return *c.DebugListen
	}
	return ""
}

func parseDurationOr(value *string, fallback time.Duration) time.Duration {
	if value == nil || *value == "" {
		return fallback
	}
	d, err := time.ParseDuration(*value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
