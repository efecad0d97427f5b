package wink

import (
	"context"
	"fmt"
	"net/http"
)

// DevicesPath lists every device on the authenticated account.
const DevicesPath = "/users/me/wink_devices"

// ClassifyDevice returns the kind of a device listing entry: the first
// catalog kind whose id key the entry carries.
func ClassifyDevice(entry Document) (DeviceKind, bool) {
	for _, kind := range deviceKindOrder {
		if _, ok := entry.ID(kind.IDKey()); ok {
			return kind, true
		}
	}
	return "", false
}

// ListDevices fetches the account's devices through api. Entries of
// unknown kinds are passed to skip, which may be nil.
func ListDevices(ctx context.Context, api Caller, skip func(Document)) ([]*Device, error) {
	doc, err := api.Call(ctx, http.MethodGet, DevicesPath, nil)
	if err != nil {
		return nil, err
	}

	entries, err := documentList(doc["data"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse device list: %w", err)
	}

	devices := make([]*Device, 0, len(entries))
	for _, entry := range entries {
		kind, ok := ClassifyDevice(entry)
		if !ok {
			if skip != nil {
				skip(entry)
			}
			continue
		}
		d, err := NewDevice(api, kind, entry)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// FilterDevices returns the devices of one kind.
func FilterDevices(devices []*Device, kind DeviceKind) []*Device {
	var out []*Device
	for _, d := range devices {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

// FindDeviceByName returns the first device whose name matches, or nil.
func FindDeviceByName(devices []*Device, name string) *Device {
	for _, d := range devices {
		if n, ok := d.Data().String("name"); ok && n == name {
			return d
		}
	}
	return nil
}

// Devices lists every device on the account.
func (s *Session) Devices(ctx context.Context) ([]*Device, error) {
	return ListDevices(ctx, s, func(entry Document) {
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		s.logger.Debug().Strs("keys", keys).Msg("skipping device of unknown kind")
	})
}

// DevicesByKind lists the account's devices of one kind.
func (s *Session) DevicesByKind(ctx context.Context, kind DeviceKind) ([]*Device, error) {
	if _, err := deviceSchema(kind); err != nil {
		return nil, err
	}
	all, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return FilterDevices(all, kind), nil
}

// LightBulbs lists the account's light bulbs.
func (s *Session) LightBulbs(ctx context.Context) ([]*LightBulb, error) {
	devices, err := s.DevicesByKind(ctx, KindLightBulb)
	if err != nil {
		return nil, err
	}
	out := make([]*LightBulb, len(devices))
	for i, d := range devices {
		out[i] = &LightBulb{d}
	}
	return out, nil
}

// GarageDoors lists the account's garage doors.
func (s *Session) GarageDoors(ctx context.Context) ([]*GarageDoor, error) {
	devices, err := s.DevicesByKind(ctx, KindGarageDoor)
	if err != nil {
		return nil, err
	}
	out := make([]*GarageDoor, len(devices))
	for i, d := range devices {
		out[i] = &GarageDoor{d}
	}
	return out, nil
}

// Hubs lists the account's hubs.
func (s *Session) Hubs(ctx context.Context) ([]*Hub, error) {
	devices, err := s.DevicesByKind(ctx, KindHub)
	if err != nil {
		return nil, err
	}
	out := make([]*Hub, len(devices))
	for i, d := range devices {
		out[i] = &Hub{d}
	}
	return out, nil
}

// Powerstrips lists the account's powerstrips.
func (s *Session) Powerstrips(ctx context.Context) ([]*Powerstrip, error) {
	devices, err := s.DevicesByKind(ctx, KindPowerstrip)
	if err != nil {
		return nil, err
	}
	out := make([]*Powerstrip, len(devices))
	for i, d := range devices {
		out[i] = &Powerstrip{d}
	}
	return out, nil
}

// CloudClocks lists the account's cloud clocks.
func (s *Session) CloudClocks(ctx context.Context) ([]*CloudClock, error) {
	devices, err := s.DevicesByKind(ctx, KindCloudClock)
	if err != nil {
		return nil, err
	}
	out := make([]*CloudClock, len(devices))
	for i, d := range devices {
		out[i] = &CloudClock{d}
	}
	return out, nil
}
