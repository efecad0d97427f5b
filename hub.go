package wink

import "context"

const unknownReading = "Unknown"

// Hub wraps a Wink hub.
type Hub struct {
	*Device
}

// AsHub returns the hub view of d.
func (d *Device) AsHub() (*Hub, error) {
	if err := d.as(KindHub); err != nil {
		return nil, err
	}
	return &Hub{d}, nil
}

// UpdateNeeded reports whether the hub wants a firmware update. An
// unreported value is false.
func (h *Hub) UpdateNeeded() bool {
	needed, _ := h.lastReading().Bool("update_needed")
	return needed
}

func (h *Hub) readingString(key string) string {
	if v, ok := h.lastReading().String(key); ok {
		return v
	}
	return unknownReading
}

// MACAddress returns the hub's MAC address or "Unknown".
func (h *Hub) MACAddress() string { return h.readingString("mac_address") }

// IPAddress returns the hub's LAN address or "Unknown".
func (h *Hub) IPAddress() string { return h.readingString("ip_address") }

// FirmwareVersion returns the firmware version or "Unknown".
func (h *Hub) FirmwareVersion() string { return h.readingString("firmware_version") }

// PairingMode returns the pairing mode or "Unknown".
func (h *Hub) PairingMode() string { return h.readingString("pairing_mode") }

// KiddeRadioCode returns the Kidde smoke alarm radio code, or -1.
func (h *Hub) KiddeRadioCode() int {
	if code, ok := h.lastReading().Int("kidde_radio_code"); ok {
		return code
	}
	return -1
}

// SetPairingMode requests a pairing mode change.
func (h *Hub) SetPairingMode(ctx context.Context, mode string) error {
	return h.setDesiredState(ctx, Document{"pairing_mode": mode})
}

// SetKiddeRadioCode requests a new Kidde radio code.
func (h *Hub) SetKiddeRadioCode(ctx context.Context, code int) error {
	return h.setDesiredState(ctx, Document{"kidde_radio_code": code})
}
