// internal/automation/action/bag.go
package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Bag is an ordered mapping from parameter name to raw value. Insertion
// order is preserved, including through JSON decoding of assistant action
// hints, because unlisted actions fall back to passing values in
// insertion order.
type Bag struct {
	keys   []string
	values map[string]interface{}
}

func NewBag() *Bag {
	return &Bag{values: make(map[string]interface{})}
}

// Set stores a value, appending the key to the order on first insert.
func (b *Bag) Set(key string, value interface{}) *Bag {
	if b.values == nil {
		b.values = make(map[string]interface{})
	}
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
	return b
}

func (b *Bag) Get(key string) (interface{}, bool) {
	if b == nil || b.values == nil {
		return nil, false
	}
	v, ok := b.values[key]
	return v, ok
}

// GetString returns the value under key rendered as a string, or the
// empty string when absent.
func (b *Bag) GetString(key string) string {
	v, ok := b.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keys returns the parameter names in insertion order.
func (b *Bag) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Values returns the raw values in insertion order.
func (b *Bag) Values() []interface{} {
	if b == nil {
		return nil
	}
	out := make([]interface{}, 0, len(b.keys))
	for _, k := range b.keys {
		out = append(out, b.values[k])
	}
	return out
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Map returns a plain map view for schema validation. Mutating the
// returned map does not affect the bag's ordering.
func (b *Bag) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(b.keys))
	if b == nil {
		return out
	}
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Clone returns a deep-enough copy for independent mutation of
// top-level entries.
func (b *Bag) Clone() *Bag {
	clone := NewBag()
	if b == nil {
		return clone
	}
	for _, k := range b.keys {
		clone.Set(k, b.values[k])
	}
	return clone
}

// UnmarshalJSON decodes a JSON object preserving key order. Nested
// objects decode as plain maps; only top-level order matters for the
// insertion-order fallback.
func (b *Bag) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameter bag must be a JSON object")
	}

	b.keys = nil
	b.values = make(map[string]interface{})

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in parameter bag", keyTok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		b.Set(key, value)
	}

	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON encodes the bag preserving insertion order.
func (b *Bag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(b.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
