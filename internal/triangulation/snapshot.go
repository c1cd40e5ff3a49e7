package triangulation

// ConfigSnapshot captures the host radio and companion device configuration
// before Begin changes it, and puts it back on End.
type ConfigSnapshot interface {
	Capture() error
	Restore() error
}

// NopConfigSnapshot is the default ConfigSnapshot. Nothing is captured, so End
// leaves the radio in station mode and Wi-Fi triangulation enabled on the
// companion device.
//
// TODO: read card.triangulate (mode, on) before Begin overwrites it and
// re-send it from Restore; the radio side needs the prior wpa_supplicant
// network so it can reassociate.
type NopConfigSnapshot struct{}

func (NopConfigSnapshot) Capture() error { return nil }
func (NopConfigSnapshot) Restore() error { return nil }
