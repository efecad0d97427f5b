package wink

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Resource is a user-created object nested under a device or another
// resource: a trigger, an alarm or a scheduled outlet state.
type Resource struct {
	parent node
	schema *ResourceSchema
	id     string

	mu   sync.RWMutex
	data Document
}

func newResource(parent node, kind ResourceKind, data Document) (*Resource, error) {
	schema, err := resourceSchema(kind)
	if err != nil {
		return nil, err
	}
	id, ok := data.ID(kind.IDKey())
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrEmptyID, kind, kind.IDKey())
	}
	return &Resource{parent: parent, schema: schema, id: id, data: data.Clone()}, nil
}

// Kind returns the resource kind.
func (r *Resource) Kind() ResourceKind { return r.schema.Kind }

// ID returns the resource id.
func (r *Resource) ID() string { return r.id }

// Schema returns the field partition for the resource's kind.
func (r *Resource) Schema() *ResourceSchema { return r.schema.Clone() }

// Parent returns the device or resource r was listed or created under.
// It is a *Device or a *Resource.
func (r *Resource) Parent() any { return r.parent }

// Path returns the parent path followed by "/<kind>s/<id>".
func (r *Resource) Path() string {
	return r.parent.Path() + "/" + r.schema.Kind.Plural() + "/" + r.id
}

func (r *Resource) caller() Caller { return r.parent.caller() }

// Data returns a copy of the last-fetched snapshot.
func (r *Resource) Data() Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Clone()
}

// Get fetches the resource and records the result.
func (r *Resource) Get(ctx context.Context) (Document, error) {
	doc, err := r.caller().Call(ctx, http.MethodGet, r.Path(), nil)
	if err != nil {
		return nil, err
	}
	r.record(doc)
	return doc, nil
}

func (r *Resource) record(doc Document) {
	r.mu.Lock()
	r.data = doc.Clone()
	r.mu.Unlock()
}

// Update sends a partial document with PUT. When the server echoes the
// resource back, the echo becomes the recorded data.
func (r *Resource) Update(ctx context.Context, partial Document) (Document, error) {
	doc, err := r.caller().Call(ctx, http.MethodPut, r.Path(), partial)
	if err != nil {
		return nil, err
	}
	if id, ok := doc.ID(r.schema.Kind.IDKey()); ok && id == r.id {
		r.record(doc)
	}
	return doc, nil
}

// Delete removes the resource.
func (r *Resource) Delete(ctx context.Context) (Document, error) {
	return r.caller().Call(ctx, http.MethodDelete, r.Path(), nil)
}

// GetConfig returns a copy of doc without the kind's non-config fields.
// A nil doc selects the last-fetched snapshot.
func (r *Resource) GetConfig(doc Document) Document {
	if doc == nil {
		doc = r.Data()
	}
	return doc.Without(r.schema.NonConfigFields...)
}

// Resources re-fetches r and builds the nested resources of kind.
func (r *Resource) Resources(ctx context.Context, kind ResourceKind) ([]*Resource, error) {
	if !r.schema.HasResource(kind) {
		return nil, r.undeclared(kind)
	}
	doc, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	return resourcesFrom(r, kind, doc)
}

// CreateResource creates a nested resource of kind under r.
func (r *Resource) CreateResource(ctx context.Context, kind ResourceKind, doc Document) (*Resource, error) {
	if !r.schema.HasResource(kind) {
		return nil, r.undeclared(kind)
	}
	return createResource(ctx, r, kind, doc)
}

func (r *Resource) undeclared(kind ResourceKind) error {
	return &ConfigError{Owner: string(r.schema.Kind), Kind: string(kind), Reason: "is not a resource kind"}
}

func resourcesFrom(parent node, kind ResourceKind, doc Document) ([]*Resource, error) {
	entries, err := documentList(doc[kind.Plural()])
	if err != nil {
		return nil, fmt.Errorf("wink: %s: %s: %w", parent.Path(), kind.Plural(), err)
	}
	out := make([]*Resource, 0, len(entries))
	for _, entry := range entries {
		res, err := newResource(parent, kind, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func createResource(ctx context.Context, parent node, kind ResourceKind, doc Document) (*Resource, error) {
	created, err := parent.caller().Call(ctx, http.MethodPost, parent.Path()+"/"+kind.Plural(), doc)
	if err != nil {
		return nil, err
	}
	return newResource(parent, kind, created)
}
