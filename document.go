package wink

import (
	"encoding/json"
	"math"
	"strconv"
)

// Document is a decoded JSON object as returned by the Wink API.
// Numbers decoded by a Session are json.Number values; the typed
// navigators below accept both json.Number and Go numeric types.
type Document map[string]any

// Clone returns a deep copy of the document. Nested objects and arrays
// are copied so the result can be modified without touching d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Without returns a copy of d with the given keys removed.
func (d Document) Without(keys ...string) Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// String navigates nested objects and returns a string value.
//
//	mac, ok := doc.String("last_reading", "mac_address")
func (d Document) String(keys ...string) (string, bool) {
	val, ok := d.lookup(keys)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// Float navigates nested objects and returns a numeric value as float64.
func (d Document) Float(keys ...string) (float64, bool) {
	val, ok := d.lookup(keys)
	if !ok {
		return 0, false
	}
	return toFloat(val)
}

// Int navigates nested objects and returns a numeric value as int.
// Values with a fractional part or outside the int range are rejected.
func (d Document) Int(keys ...string) (int, bool) {
	f, ok := d.Float(keys...)
	if !ok {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// Bool navigates nested objects and returns a bool value.
func (d Document) Bool(keys ...string) (bool, bool) {
	val, ok := d.lookup(keys)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// Map navigates nested objects and returns an object value.
func (d Document) Map(keys ...string) (Document, bool) {
	val, ok := d.lookup(keys)
	if !ok {
		return nil, false
	}
	return asDocument(val)
}

// Slice navigates nested objects and returns an array value.
func (d Document) Slice(keys ...string) ([]any, bool) {
	val, ok := d.lookup(keys)
	if !ok {
		return nil, false
	}
	arr, ok := val.([]any)
	return arr, ok
}

// ID returns the identifier stored under key. The API sends ids as
// strings, but numeric ids are accepted and rendered without exponent.
func (d Document) ID(key string) (string, bool) {
	val, ok := d[key]
	if !ok || val == nil {
		return "", false
	}
	switch v := val.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func (d Document) lookup(keys []string) (any, bool) {
	if len(keys) == 0 {
		return map[string]any(d), true
	}

	current := d
	for i, key := range keys {
		val, exists := current[key]
		if !exists {
			return nil, false
		}
		if i == len(keys)-1 {
			return val, true
		}
		next, ok := asDocument(val)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func asDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
