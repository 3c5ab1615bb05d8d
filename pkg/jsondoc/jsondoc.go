// Package jsondoc parses JSON objects while preserving key order and
// unknown fields, so documents like package.json and source maps can be
// edited and re-serialized without shuffling what was not touched.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object with stable key order. Values are kept raw
// until a caller asks for them.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// Parse decodes data into an Object. The top-level value must be a
// JSON object.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	obj := &Object{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding key: %w", err)
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding value of %q: %w", key, err)
		}
		if _, exists := obj.values[key]; !exists {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding object end: %w", err)
	}
	return obj, nil
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Raw returns the raw value of key.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Get unmarshals the value of key into v.
func (o *Object) Get(key string, v any) error {
	raw, ok := o.values[key]
	if !ok {
		return fmt.Errorf("key %q not present", key)
	}
	return json.Unmarshal(raw, v)
}

// String returns the value of key when it is a JSON string.
func (o *Object) String(key string) (string, bool) {
	var s string
	if err := o.Get(key, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores v under key, appending the key when new.
func (o *Object) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value of %q: %w", key, err)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
	return nil
}

// SetRaw stores an already-encoded value under key.
func (o *Object) SetRaw(key string, raw json.RawMessage) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
}

// Delete removes key. It reports whether the key was present.
func (o *Object) Delete(key string) bool {
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Object parses the value of key as a nested Object.
func (o *Object) Object(key string) (*Object, error) {
	raw, ok := o.values[key]
	if !ok {
		return nil, fmt.Errorf("key %q not present", key)
	}
	return Parse(raw)
}

// MarshalJSON serializes the object compactly in document key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteString(",")
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":")
		var val bytes.Buffer
		if err := json.Compact(&val, o.values[k]); err != nil {
			return nil, fmt.Errorf("compacting %q: %w", k, err)
		}
		buf.Write(val.Bytes())
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// MarshalIndent serializes the object pretty-printed with two-space
// indentation, document key order, and a trailing newline.
func (o *Object) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(": ")

		var val bytes.Buffer
		if err := json.Indent(&val, o.values[k], "  ", "  "); err != nil {
			return nil, fmt.Errorf("re-indenting %q: %w", k, err)
		}
		buf.Write(val.Bytes())
	}
	if len(o.keys) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
