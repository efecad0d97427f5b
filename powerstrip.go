package wink

import "context"

// Powerstrip wraps a Pivot Power Genius strip.
type Powerstrip struct {
	*Device
}

// AsPowerstrip returns the powerstrip view of d.
func (d *Device) AsPowerstrip() (*Powerstrip, error) {
	if err := d.as(KindPowerstrip); err != nil {
		return nil, err
	}
	return &Powerstrip{d}, nil
}

// Outlets returns the strip's cached outlets in index order.
func (p *Powerstrip) Outlets() []*Outlet {
	children, _ := p.SubDevicesByKind(KindOutlet)
	out := make([]*Outlet, len(children))
	for i, c := range children {
		out[i] = &Outlet{c}
	}
	return out
}

// Outlet wraps one outlet of a powerstrip.
type Outlet struct {
	*Device
}

// AsOutlet returns the outlet view of d.
func (d *Device) AsOutlet() (*Outlet, error) {
	if err := d.as(KindOutlet); err != nil {
		return nil, err
	}
	return &Outlet{d}, nil
}

// IsPowered reports the last powered value.
func (o *Outlet) IsPowered() (powered, known bool) {
	return o.Data().Bool("powered")
}

// SetPowered switches the outlet.
func (o *Outlet) SetPowered(ctx context.Context, powered bool) error {
	_, err := o.Update(ctx, Document{"powered": powered})
	return err
}

// Schedules lists the outlet's scheduled states.
func (o *Outlet) Schedules(ctx context.Context) ([]*Resource, error) {
	return o.Resources(ctx, ResourceScheduledOutletState)
}

// CreateSchedule creates a scheduled state, e.g.
//
//	Document{"name": "night", "powered": false, "recurrence": "DTSTART:..."}
func (o *Outlet) CreateSchedule(ctx context.Context, doc Document) (*Resource, error) {
	return o.CreateResource(ctx, ResourceScheduledOutletState, doc)
}
