package wink

import "slices"

// FieldType is the declared semantic type of a mutable field.
type FieldType int

const (
	FieldString FieldType = iota
	FieldBool
	FieldInt
	FieldFloat
	FieldObject
)

// String returns the type name.
func (t FieldType) String() string {
	switch t {
	case FieldString:
		return "string"
	case FieldBool:
		return "bool"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is a named, typed, user-settable field.
type Field struct {
	Name string
	Type FieldType
}

// DeviceKind tags a device type, e.g. "light_bulb". It is also the
// singular path segment and id-key prefix used by the API.
type DeviceKind string

// ResourceKind tags a creatable resource type, e.g. "trigger".
type ResourceKind string

// DeviceSchema partitions a device kind's fields and declares its
// sub-devices and creatable resources. The catalog entries are shared and
// never modified; exported accessors return copies.
type DeviceSchema struct {
	Kind            DeviceKind
	NonConfigFields []string
	MutableFields   []Field
	SubDevices      []DeviceKind
	Resources       []ResourceKind
	Sharable        bool
}

// ResourceSchema describes a creatable resource kind.
type ResourceSchema struct {
	Kind            ResourceKind
	NonConfigFields []string
	MutableFields   []Field
	Resources       []ResourceKind
}

// IDKey returns the document key holding the device id.
func (k DeviceKind) IDKey() string { return string(k) + "_id" }

// Plural returns the path segment and list key for the kind.
func (k DeviceKind) Plural() string { return string(k) + "s" }

// IDKey returns the document key holding the resource id.
func (k ResourceKind) IDKey() string { return string(k) + "_id" }

// Plural returns the path segment and list key for the kind.
func (k ResourceKind) Plural() string { return string(k) + "s" }

// Clone returns a copy that shares no slices with s.
func (s *DeviceSchema) Clone() *DeviceSchema {
	out := *s
	out.NonConfigFields = slices.Clone(s.NonConfigFields)
	out.MutableFields = slices.Clone(s.MutableFields)
	out.SubDevices = slices.Clone(s.SubDevices)
	out.Resources = slices.Clone(s.Resources)
	return &out
}

// Clone returns a copy that shares no slices with s.
func (s *ResourceSchema) Clone() *ResourceSchema {
	out := *s
	out.NonConfigFields = slices.Clone(s.NonConfigFields)
	out.MutableFields = slices.Clone(s.MutableFields)
	out.Resources = slices.Clone(s.Resources)
	return &out
}

// IsConfigField reports whether name survives GetConfig.
func (s *DeviceSchema) IsConfigField(name string) bool {
	return !slices.Contains(s.NonConfigFields, name)
}

// MutableField looks up a mutable field by name.
func (s *DeviceSchema) MutableField(name string) (Field, bool) {
	return findField(s.MutableFields, name)
}

// HasSubDevice reports whether kind is a declared sub-device kind.
func (s *DeviceSchema) HasSubDevice(kind DeviceKind) bool {
	return slices.Contains(s.SubDevices, kind)
}

// HasResource reports whether kind is a declared creatable resource.
func (s *DeviceSchema) HasResource(kind ResourceKind) bool {
	return slices.Contains(s.Resources, kind)
}

// IsConfigField reports whether name survives GetConfig.
func (s *ResourceSchema) IsConfigField(name string) bool {
	return !slices.Contains(s.NonConfigFields, name)
}

// MutableField looks up a mutable field by name.
func (s *ResourceSchema) MutableField(name string) (Field, bool) {
	return findField(s.MutableFields, name)
}

// HasResource reports whether kind may be nested under this resource.
func (s *ResourceSchema) HasResource(kind ResourceKind) bool {
	return slices.Contains(s.Resources, kind)
}

func findField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// LookupDeviceSchema returns a copy of the catalog entry for kind.
func LookupDeviceSchema(kind DeviceKind) (*DeviceSchema, error) {
	s, err := deviceSchema(kind)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// LookupResourceSchema returns a copy of the catalog entry for kind.
func LookupResourceSchema(kind ResourceKind) (*ResourceSchema, error) {
	s, err := resourceSchema(kind)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func deviceSchema(kind DeviceKind) (*DeviceSchema, error) {
	s, ok := deviceSchemas[kind]
	if !ok {
		return nil, &ConfigError{Kind: string(kind), Reason: "unknown device kind"}
	}
	return s, nil
}

func resourceSchema(kind ResourceKind) (*ResourceSchema, error) {
	s, ok := resourceSchemas[kind]
	if !ok {
		return nil, &ConfigError{Kind: string(kind), Reason: "unknown resource kind"}
	}
	return s, nil
}

// DeviceKinds lists every catalogued device kind in declaration order.
func DeviceKinds() []DeviceKind {
	return slices.Clone(deviceKindOrder)
}

var (
	deviceSchemas   map[DeviceKind]*DeviceSchema
	resourceSchemas map[ResourceKind]*ResourceSchema
	deviceKindOrder []DeviceKind
)

func init() {
	deviceSchemas = make(map[DeviceKind]*DeviceSchema, len(deviceCatalog))
	for _, s := range deviceCatalog {
		deviceSchemas[s.Kind] = s
		deviceKindOrder = append(deviceKindOrder, s.Kind)
	}
	resourceSchemas = make(map[ResourceKind]*ResourceSchema, len(resourceCatalog))
	for _, s := range resourceCatalog {
		resourceSchemas[s.Kind] = s
	}
}
