// Package ordered provides an insertion-ordered string-keyed map.
//
// encoding/json marshals Go maps with keys sorted lexicographically, which
// is incompatible with any wire format that carries meaning in field order
// (DIR struct values, Q-regime resource tables, expression environments).
// Map preserves the order keys were first inserted in and exposes a
// MarshalJSON that honors it.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is an insertion-ordered string-keyed map. The zero value is ready to
// use. Map is not safe for concurrent use without external synchronization.
type Map[V any] struct {
	keys []string
	vals map[string]V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{vals: make(map[string]V)}
}

// Set inserts or overwrites the value for key. Overwriting an existing key
// does not change its position in iteration order.
func (m *Map[V]) Set(key string, value V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Get returns the value bound to key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil || m.vals == nil {
		var zero V
		return zero, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is bound.
func (m *Map[V]) Has(key string) bool {
	if m == nil || m.vals == nil {
		return false
	}
	_, ok := m.vals[key]
	return ok
}

// Len returns the number of bound keys.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the bound keys in insertion order. The returned slice must
// not be mutated.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Range calls fn for every entry in insertion order, stopping early if fn
// returns false.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Clone returns a shallow copy with its own key/value storage.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V]()
	if m == nil {
		return out
	}
	out.keys = append(out.keys, m.keys...)
	for k, v := range m.vals {
		out.vals[k] = v
	}
	return out
}

// MarshalJSON renders the map as a JSON object with keys in insertion
// order, which encoding/json cannot do for a plain Go map.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("ordered.Map: marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v, _ := m.Get(k)
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("ordered.Map: marshal value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON populates the map from a JSON object, preserving the key
// order the object's bytes were written in.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered.Map: expected JSON object, got %v", tok)
	}
	*m = Map[V]{vals: make(map[string]V)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered.Map: expected string key, got %v", keyTok)
		}
		var val V
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("ordered.Map: decode value for key %q: %w", key, err)
		}
		m.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
