package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Remainder holds the JSON fields of an object that are not modelled by a
// typed field. Values are kept as raw JSON and keys keep the order in which
// they were read, so re-encoding reproduces the unknown part of a document
// without interpreting it.
//
// The zero value is an empty, ready to use Remainder.
type Remainder struct {
	keys   []string
	values map[string]json.RawMessage
}

// Len returns the number of keys held.
func (r Remainder) Len() int {
	return len(r.keys)
}

// Keys returns the keys in document order.
func (r Remainder) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Get returns the raw JSON value stored under name.
func (r Remainder) Get(name string) (json.RawMessage, bool) {
	raw, ok := r.values[name]
	return raw, ok
}

// Set encodes value and stores it under name. An existing key keeps its
// position; a new key is appended.
func (r *Remainder) Set(name string, value any) error {
	raw, err := marshalJSON(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", name, err)
	}
	r.set(name, raw)
	return nil
}

// Delete removes name and reports whether it was present.
func (r *Remainder) Delete(name string) bool {
	if _, ok := r.values[name]; !ok {
		return false
	}
	delete(r.values, name)
	for i, key := range r.keys {
		if key == name {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a copy that shares no state with r.
func (r Remainder) Clone() Remainder {
	out := Remainder{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]json.RawMessage, len(r.values)),
	}
	copy(out.keys, r.keys)
	for key, raw := range r.values {
		dup := make(json.RawMessage, len(raw))
		copy(dup, raw)
		out.values[key] = dup
	}
	return out
}

// Equal reports whether both remainders hold the same keys with structurally
// equal values. Key order and whitespace are ignored.
func (r Remainder) Equal(other Remainder) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for key, raw := range r.values {
		otherRaw, ok := other.values[key]
		if !ok || !jsonEqual(raw, otherRaw) {
			return false
		}
	}
	return true
}

func (r *Remainder) set(name string, raw json.RawMessage) {
	if r.values == nil {
		r.values = make(map[string]json.RawMessage)
	}
	if _, exists := r.values[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.values[name] = raw
}

// jsonKind is the JSON type of a raw value, derived from its first byte.
type jsonKind string

const (
	kindObject jsonKind = "object"
	kindArray  jsonKind = "array"
	kindString jsonKind = "string"
	kindNumber jsonKind = "number"
	kindBool   jsonKind = "boolean"
	kindNull   jsonKind = "null"
)

func kindOf(raw json.RawMessage) jsonKind {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return kindNull
	}
	switch trimmed[0] {
	case '{':
		return kindObject
	case '[':
		return kindArray
	case '"':
		return kindString
	case 't', 'f':
		return kindBool
	case 'n':
		return kindNull
	default:
		return kindNumber
	}
}

// decodeObject splits a JSON object into an ordered Remainder holding every
// key. Callers then take their typed fields out of it.
func decodeObject(data []byte) (Remainder, error) {
	if kind := kindOf(data); kind != kindObject {
		return Remainder{}, &SchemaError{Err: fmt.Errorf("%w: expected object, got %s", ErrWrongShape, kind)}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return Remainder{}, fmt.Errorf("reading object start: %w", err)
	}

	rest := Remainder{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Remainder{}, fmt.Errorf("reading object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return Remainder{}, fmt.Errorf("unexpected object key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Remainder{}, fmt.Errorf("reading value of %q: %w", key, err)
		}
		rest.set(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return Remainder{}, fmt.Errorf("reading object end: %w", err)
	}
	return rest, nil
}

// take decodes the required field name into dst and removes it from r.
func (r *Remainder) take(name string, want jsonKind, dst any) error {
	raw, ok := r.values[name]
	if !ok {
		return &SchemaError{Path: name, Err: ErrMissingField}
	}
	if got := kindOf(raw); got != want {
		return &SchemaError{Path: name, Err: fmt.Errorf("%w: expected %s, got %s", ErrWrongShape, want, got)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return wrapSchemaError(name, err)
	}
	r.Delete(name)
	return nil
}

// takeOptionalString takes name only when it holds a string. An absent key
// or a null value is left in r so that it re-encodes exactly as read.
func (r *Remainder) takeOptionalString(name string) (*string, error) {
	raw, ok := r.values[name]
	if !ok || kindOf(raw) == kindNull {
		return nil, nil
	}
	var value string
	if err := r.take(name, kindString, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

// takeList decodes the required array field name element by element so
// that failures report the offending index.
func takeList[T any](r *Remainder, name string, elem jsonKind, out *[]T) error {
	var raws []json.RawMessage
	if err := r.take(name, kindArray, &raws); err != nil {
		return err
	}

	items := make([]T, len(raws))
	for i, raw := range raws {
		path := fmt.Sprintf("%s[%d]", name, i)
		if got := kindOf(raw); got != elem {
			return &SchemaError{Path: path, Err: fmt.Errorf("%w: expected %s, got %s", ErrWrongShape, elem, got)}
		}
		if err := json.Unmarshal(raw, &items[i]); err != nil {
			return wrapSchemaError(path, err)
		}
	}
	*out = items
	return nil
}

// field is a typed value written ahead of the remainder on encode.
type field struct {
	name  string
	value any
}

// encode writes fields followed by every remainder key not shadowed by a
// field. A typed field always wins over a remainder entry of the same name.
func (r Remainder) encode(fields ...field) ([]byte, error) {
	typed := make(map[string]struct{}, len(fields))

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, f := range fields {
		raw, err := marshalJSON(f.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", f.name, err)
		}
		writeMember(&buf, f.name, raw)
		typed[f.name] = struct{}{}
	}
	for _, key := range r.keys {
		if _, shadowed := typed[key]; shadowed {
			continue
		}
		writeMember(&buf, key, r.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, raw []byte) {
	if buf.Len() > 1 {
		buf.WriteByte(',')
	}
	key, _ := marshalJSON(name) //nolint:errcheck // strings always encode
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(raw)
}

// marshalJSON encodes v without HTML escaping so that strings taken from the
// document are written back in the same form.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// jsonEqual compares two raw values structurally.
func jsonEqual(a, b json.RawMessage) bool {
	va, errA := decodeAny(a)
	vb, errB := decodeAny(b)
	if errA != nil || errB != nil {
		return bytes.Equal(a, b)
	}
	return reflect.DeepEqual(va, vb)
}

func decodeAny(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
