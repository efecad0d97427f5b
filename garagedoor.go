package wink

import "context"

// DoorPosition is the interpreted position of a garage door.
type DoorPosition int

const (
	DoorUnknown DoorPosition = iota
	DoorClosed
	DoorOpen
	DoorMoving
)

// String returns the position name.
func (p DoorPosition) String() string {
	switch p {
	case DoorClosed:
		return "Closed"
	case DoorOpen:
		return "Open"
	case DoorMoving:
		return "Moving"
	default:
		return "Unknown"
	}
}

// PositionFromReading maps a raw position reading to a DoorPosition.
func PositionFromReading(position float64) DoorPosition {
	switch {
	case position == 0:
		return DoorClosed
	case position == 1:
		return DoorOpen
	case position > 0 && position < 1:
		return DoorMoving
	default:
		return DoorUnknown
	}
}

// GarageDoor wraps a garage_door device.
type GarageDoor struct {
	*Device
}

// AsGarageDoor returns the garage door view of d.
func (d *Device) AsGarageDoor() (*GarageDoor, error) {
	if err := d.as(KindGarageDoor); err != nil {
		return nil, err
	}
	return &GarageDoor{d}, nil
}

// CurrentPosition interprets the last position reading.
func (g *GarageDoor) CurrentPosition() DoorPosition {
	position, ok := g.lastReading().Float("position")
	if !ok {
		return DoorUnknown
	}
	return PositionFromReading(position)
}

// IsFault reports the last fault reading. known is false when the door
// has not reported one.
func (g *GarageDoor) IsFault() (fault, known bool) {
	return g.lastReading().Bool("fault")
}

// Open requests the door open. The move happens asynchronously.
func (g *GarageDoor) Open(ctx context.Context) error {
	return g.setDesiredState(ctx, Document{"position": 1.0})
}

// Close requests the door closed.
func (g *GarageDoor) Close(ctx context.Context) error {
	return g.setDesiredState(ctx, Document{"position": 0.0})
}
