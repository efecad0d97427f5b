package wink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Device is a remote Wink device. All device kinds share this type; the
// kind's schema decides which fields count as configuration, which
// sub-devices are built from a listing and which resources can be created
// under the device. Kind-specific helpers live on the typed wrappers
// returned by AsLightBulb, AsHub and friends.
type Device struct {
	api      Caller
	schema   *DeviceSchema
	id       string
	original Document

	mu       sync.RWMutex
	snapshot Document

	children map[DeviceKind][]*Device
}

// NewDevice builds a device of the given kind from a fetched document.
// Declared sub-devices are constructed eagerly from the document's
// "<kind>s" arrays and cached for the lifetime of the device.
func NewDevice(api Caller, kind DeviceKind, data Document) (*Device, error) {
	schema, err := deviceSchema(kind)
	if err != nil {
		return nil, err
	}

	id, ok := data.ID(kind.IDKey())
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrEmptyID, kind, kind.IDKey())
	}

	d := &Device{
		api:      api,
		schema:   schema,
		id:       id,
		original: data.Clone(),
		snapshot: data.Clone(),
		children: make(map[DeviceKind][]*Device, len(schema.SubDevices)),
	}

	for _, sub := range schema.SubDevices {
		entries, err := documentList(data[sub.Plural()])
		if err != nil {
			return nil, fmt.Errorf("wink: %s %s: %s: %w", kind, id, sub.Plural(), err)
		}
		for _, entry := range entries {
			child, err := NewDevice(api, sub, entry)
			if err != nil {
				return nil, err
			}
			d.children[sub] = append(d.children[sub], child)
		}
	}

	return d, nil
}

// Kind returns the device kind.
func (d *Device) Kind() DeviceKind { return d.schema.Kind }

// ID returns the device id.
func (d *Device) ID() string { return d.id }

// Schema returns the field partition for the device's kind.
func (d *Device) Schema() *DeviceSchema { return d.schema.Clone() }

// Path returns the canonical API path, e.g. "/light_bulbs/42".
func (d *Device) Path() string {
	return "/" + d.schema.Kind.Plural() + "/" + d.id
}

func (d *Device) caller() Caller { return d.api }

// Data returns a copy of the last-fetched snapshot.
func (d *Device) Data() Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot.Clone()
}

// Original returns a copy of the document the device was built from.
func (d *Device) Original() Document {
	return d.original.Clone()
}

func (d *Device) record(doc Document) {
	d.mu.Lock()
	d.snapshot = doc.Clone()
	d.mu.Unlock()
}

// Get fetches the device and records the result as the last-fetched
// snapshot.
func (d *Device) Get(ctx context.Context) (Document, error) {
	doc, err := d.api.Call(ctx, http.MethodGet, d.Path(), nil)
	if err != nil {
		return nil, err
	}
	d.record(doc)
	return doc, nil
}

// Refresh re-fetches the device, discarding the response.
func (d *Device) Refresh(ctx context.Context) error {
	_, err := d.Get(ctx)
	return err
}

// Update sends a partial document with PUT. When the server echoes the
// device back, the echo becomes the last-fetched snapshot.
func (d *Device) Update(ctx context.Context, partial Document) (Document, error) {
	doc, err := d.api.Call(ctx, http.MethodPut, d.Path(), partial)
	if err != nil {
		return nil, err
	}
	if id, ok := doc.ID(d.schema.Kind.IDKey()); ok && id == d.id {
		d.record(doc)
	}
	return doc, nil
}

// GetConfig returns a copy of doc without the kind's non-config fields.
// A nil doc selects the last-fetched snapshot. doc is not modified.
func (d *Device) GetConfig(doc Document) Document {
	if doc == nil {
		doc = d.Data()
	}
	return doc.Without(d.schema.NonConfigFields...)
}

// SubDevices returns the cached sub-devices in declared kind order, then
// listing order.
func (d *Device) SubDevices() []*Device {
	var out []*Device
	for _, kind := range d.schema.SubDevices {
		out = append(out, d.children[kind]...)
	}
	return out
}

// SubDevicesByKind returns the cached sub-devices of one declared kind.
func (d *Device) SubDevicesByKind(kind DeviceKind) ([]*Device, error) {
	if !d.schema.HasSubDevice(kind) {
		return nil, &ConfigError{Owner: string(d.schema.Kind), Kind: string(kind), Reason: "is not a sub-device kind"}
	}
	return append([]*Device(nil), d.children[kind]...), nil
}

// Resources re-fetches the device and builds the resources of kind listed
// in it.
func (d *Device) Resources(ctx context.Context, kind ResourceKind) ([]*Resource, error) {
	if !d.schema.HasResource(kind) {
		return nil, d.undeclared(kind)
	}
	doc, err := d.Get(ctx)
	if err != nil {
		return nil, err
	}
	return resourcesFrom(d, kind, doc)
}

// CreateResource creates a resource of kind under the device.
func (d *Device) CreateResource(ctx context.Context, kind ResourceKind, doc Document) (*Resource, error) {
	if !d.schema.HasResource(kind) {
		return nil, d.undeclared(kind)
	}
	return createResource(ctx, d, kind, doc)
}

func (d *Device) undeclared(kind ResourceKind) error {
	return &ConfigError{Owner: string(d.schema.Kind), Kind: string(kind), Reason: "is not a resource kind"}
}

// Triggers lists the device's triggers.
func (d *Device) Triggers(ctx context.Context) ([]*Resource, error) {
	return d.Resources(ctx, ResourceTrigger)
}

// CreateTrigger creates a trigger on the device.
func (d *Device) CreateTrigger(ctx context.Context, doc Document) (*Resource, error) {
	return d.CreateResource(ctx, ResourceTrigger, doc)
}

// RevertResult reports the outcome of reverting one device and, when the
// device itself was restored, its sub-devices.
type RevertResult struct {
	Kind DeviceKind
	ID   string
	// Err is the failure restoring this device, if any.
	Err error
	// Skipped is set on sub-devices whose parent failed to revert.
	Skipped  bool
	Children []*RevertResult
}

// Failed reports whether anything in the tree failed or was skipped.
func (r *RevertResult) Failed() bool {
	if r.Err != nil || r.Skipped {
		return true
	}
	for _, c := range r.Children {
		if c.Failed() {
			return true
		}
	}
	return false
}

// Errors joins every failure in the tree, or returns nil.
func (r *RevertResult) Errors() error {
	var errs []error
	r.walk(func(n *RevertResult) {
		if n.Err != nil {
			errs = append(errs, fmt.Errorf("revert %s %s: %w", n.Kind, n.ID, n.Err))
		}
	})
	return errors.Join(errs...)
}

func (r *RevertResult) walk(fn func(*RevertResult)) {
	fn(r)
	for _, c := range r.Children {
		c.walk(fn)
	}
}

// Revert restores the configuration captured when the device was built,
// then reverts each cached sub-device in declared order. A failed update
// skips that device's subtree; devices already restored are left as they
// are.
func (d *Device) Revert(ctx context.Context) *RevertResult {
	result := &RevertResult{Kind: d.schema.Kind, ID: d.id}

	if _, err := d.Update(ctx, d.GetConfig(d.original)); err != nil {
		result.Err = err
		for _, child := range d.SubDevices() {
			result.Children = append(result.Children, child.skipped())
		}
		return result
	}

	for _, child := range d.SubDevices() {
		result.Children = append(result.Children, child.Revert(ctx))
	}
	return result
}

func (d *Device) skipped() *RevertResult {
	result := &RevertResult{Kind: d.schema.Kind, ID: d.id, Skipped: true}
	for _, child := range d.SubDevices() {
		result.Children = append(result.Children, child.skipped())
	}
	return result
}

// documentList converts a JSON array of objects. A missing or null value
// is an empty list.
func documentList(v any) ([]Document, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []Document:
		return t, nil
	case []map[string]any:
		out := make([]Document, len(t))
		for i, m := range t {
			out[i] = Document(m)
		}
		return out, nil
	case []any:
		out := make([]Document, 0, len(t))
		for i, e := range t {
			doc, ok := asDocument(e)
			if !ok {
				return nil, fmt.Errorf("entry %d is %T, not an object", i, e)
			}
			out = append(out, doc)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected an array, got %T", v)
	}
}

func (d *Device) as(kind DeviceKind) error {
	if d.schema.Kind != kind {
		return &ConfigError{Kind: string(d.schema.Kind), Reason: fmt.Sprintf("device %s is not a %s", d.id, kind)}
	}
	return nil
}

// lastReading returns the "last_reading" object of the last-fetched
// snapshot, or an empty document.
func (d *Device) lastReading() Document {
	reading, ok := d.Data().Map("last_reading")
	if !ok {
		return Document{}
	}
	return reading
}

func (d *Device) setDesiredState(ctx context.Context, state Document) error {
	_, err := d.Update(ctx, Document{"desired_state": state})
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
