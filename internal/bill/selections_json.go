package bill

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the selections as an object in insertion order.
func (s *Selections) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.order) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of item id -> selection, preserving the
// document order of keys. Values are normalized the same way Set does.
func (s *Selections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("selections: expected object, got %v", tok)
	}

	s.order = nil
	s.byID = make(map[string]Selection)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("selections: non-string key %v", keyTok)
		}

		var sel Selection
		if err := dec.Decode(&sel); err != nil {
			return fmt.Errorf("selections: item %q: %w", id, err)
		}
		if sel.Quantity < 0 {
			sel.Quantity = 0
		}
		s.Set(id, sel)
	}

	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
