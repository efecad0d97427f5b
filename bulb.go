package wink

import "context"

// LightBulb wraps a light_bulb device. Readers use the device's
// last-fetched snapshot; call Get or Refresh to update it.
type LightBulb struct {
	*Device
}

// AsLightBulb returns the light bulb view of d.
func (d *Device) AsLightBulb() (*LightBulb, error) {
	if err := d.as(KindLightBulb); err != nil {
		return nil, err
	}
	return &LightBulb{d}, nil
}

// IsOn reports the last powered reading. known is false when the bulb
// has not reported one.
func (b *LightBulb) IsOn() (on, known bool) {
	return b.lastReading().Bool("powered")
}

// Brightness returns the last brightness reading in [0, 1]. A bulb that
// is powered off reports 0 since it keeps its brightness while dark. A
// missing reading is -1.
func (b *LightBulb) Brightness() float64 {
	reading := b.lastReading()
	if on, ok := reading.Bool("powered"); ok && !on {
		return 0
	}
	if v, ok := reading.Float("brightness"); ok {
		return v
	}
	return -1
}

// TurnOn powers the bulb on.
func (b *LightBulb) TurnOn(ctx context.Context) error {
	return b.setDesiredState(ctx, Document{"powered": true})
}

// TurnOff powers the bulb off.
func (b *LightBulb) TurnOff(ctx context.Context) error {
	return b.setDesiredState(ctx, Document{"powered": false})
}

// Toggle flips the power state. A bulb in an unknown state is turned off.
func (b *LightBulb) Toggle(ctx context.Context) error {
	if on, known := b.IsOn(); on || !known {
		return b.TurnOff(ctx)
	}
	return b.TurnOn(ctx)
}

// SetBrightness sets the brightness without changing the power state.
func (b *LightBulb) SetBrightness(ctx context.Context, brightness float64) error {
	return b.setDesiredState(ctx, Document{"brightness": brightness})
}
