package wink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Direction selects which way CloudClock.Rotate moves dial configurations.
type Direction int

const (
	RotateLeft Direction = iota
	RotateRight
)

// manualChannel is the dial channel that displays values set through the
// API instead of a feed.
const manualChannel = "10"

// CloudClock wraps a Nimbus cloud clock.
type CloudClock struct {
	*Device
}

// AsCloudClock returns the cloud clock view of d.
func (d *Device) AsCloudClock() (*CloudClock, error) {
	if err := d.as(KindCloudClock); err != nil {
		return nil, err
	}
	return &CloudClock{d}, nil
}

// Dials returns the clock's cached dials in index order.
func (c *CloudClock) Dials() []*Dial {
	children, _ := c.SubDevicesByKind(KindDial)
	out := make([]*Dial, len(children))
	for i, d := range children {
		out[i] = &Dial{d}
	}
	return out
}

// Rotate shifts each dial's configuration to its neighbour. Left moves
// the first dial's configuration to the last dial.
func (c *CloudClock) Rotate(ctx context.Context, dir Direction) error {
	dials := c.Dials()
	if len(dials) < 2 {
		return nil
	}

	configs := make([]Document, len(dials))
	for i, d := range dials {
		doc, err := d.Get(ctx)
		if err != nil {
			return err
		}
		configs[i] = d.GetConfig(doc)
	}

	switch dir {
	case RotateLeft:
		configs = append(configs[1:], configs[0])
	case RotateRight:
		configs = append([]Document{configs[len(configs)-1]}, configs[:len(configs)-1]...)
	default:
		return fmt.Errorf("wink: unknown rotate direction %d", dir)
	}

	for i, d := range dials {
		if _, err := d.Update(ctx, configs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Alarms lists the clock's alarms.
func (c *CloudClock) Alarms(ctx context.Context) ([]*Resource, error) {
	return c.Resources(ctx, ResourceAlarm)
}

// CreateAlarm creates an alarm. recurrence is an iCalendar RRULE block.
func (c *CloudClock) CreateAlarm(ctx context.Context, name, recurrence string, enabled bool) (*Resource, error) {
	return c.CreateResource(ctx, ResourceAlarm, Document{
		"name":       name,
		"recurrence": recurrence,
		"enabled":    enabled,
	})
}

// Dial wraps one dial of a cloud clock. The API serves dials at the root
// level.
type Dial struct {
	*Device
}

// AsDial returns the dial view of d.
func (d *Device) AsDial() (*Dial, error) {
	if err := d.as(KindDial); err != nil {
		return nil, err
	}
	return &Dial{d}, nil
}

// Templates returns the dial templates offered by the API.
func (d *Dial) Templates(ctx context.Context) ([]Document, error) {
	doc, err := d.api.Call(ctx, http.MethodGet, "/dial_templates", nil)
	if err != nil {
		return nil, err
	}
	return documentList(doc["data"])
}

// FlashValue shows the dial's current value as its label for duration,
// then restores the label and channel.
func (d *Dial) FlashValue(ctx context.Context, duration time.Duration) error {
	current, err := d.Get(ctx)
	if err != nil {
		return err
	}

	_, err = d.Update(ctx, Document{
		"channel_configuration": Document{"channel_id": manualChannel},
		"dial_configuration":    current["dial_configuration"],
		"label":                 fmt.Sprint(current["value"]),
	})
	if err != nil {
		return err
	}

	waitErr := wait(ctx, duration)
	_, err = d.Update(context.WithoutCancel(ctx), Document{
		"channel_configuration": current["channel_configuration"],
		"dial_configuration":    current["dial_configuration"],
		"label":                 current["label"],
		"labels":                current["labels"],
	})
	return errors.Join(waitErr, err)
}

// Demo drives the dial to its minimum and maximum values, pausing delay
// between steps, then restores its configuration.
func (d *Dial) Demo(ctx context.Context, delay time.Duration) error {
	if _, err := d.Get(ctx); err != nil {
		return err
	}
	original := d.GetConfig(nil)

	dialConfig, ok := original.Map("dial_configuration")
	if !ok {
		return fmt.Errorf("wink: dial %s has no dial_configuration", d.id)
	}

	_, err := d.Update(ctx, Document{
		"channel_configuration": Document{"channel_id": manualChannel},
		"dial_configuration":    dialConfig,
		"label":                 "demo!",
	})
	if err != nil {
		return err
	}

	steps := []struct {
		text string
		key  string
	}{
		{"min", "min_value"},
		{"max", "max_value"},
	}

	runErr := wait(ctx, delay)
	for _, step := range steps {
		if runErr != nil {
			break
		}
		value := dialConfig[step.key]
		if _, runErr = d.Update(ctx, Document{
			"value": value,
			"label": fmt.Sprintf("%s: %v", step.text, value),
		}); runErr != nil {
			break
		}
		runErr = wait(ctx, delay)
	}

	_, err = d.Update(context.WithoutCancel(ctx), original)
	return errors.Join(runErr, err)
}
