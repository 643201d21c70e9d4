// Package ordered keeps JSON object registries in insertion order, so that
// "registry order" survives a round trip through disk.
package ordered

import (
	"bytes"
	"encoding/json"

	"github.com/samber/oops"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Map is a string to string mapping that remembers the order keys were added in.
// An empty value is stored on disk as null.
type Map struct {
	keys   []string
	values map[string]string
}

type Entry struct {
	Key   string
	Value string
}

func New() *Map {
	return &Map{values: make(map[string]string)}
}

// Parse reads a JSON object, keeping the document order of its keys.
func Parse(data []byte) (*Map, error) {
	m := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, oops.New("invalid json document")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, oops.With("type", doc.Type.String()).New("json document is not an object")
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			m.Set(key.String(), "")
		} else {
			m.Set(key.String(), value.String())
		}
		return true
	})
	return m, nil
}

func (m *Map) Len() int {
	return len(m.keys)
}

func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Map) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. A new key goes to the end; an existing key keeps its position.
func (m *Map) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// KeyOf returns the first key holding value.
func (m *Map) KeyOf(value string) (string, bool) {
	for _, k := range m.keys {
		if m.values[k] == value {
			return k, true
		}
	}
	return "", false
}

func (m *Map) Entries() []Entry {
	entries := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, Entry{Key: k, Value: m.values[k]})
	}
	return entries
}

// Marshal renders the map as an indented JSON object in insertion order.
func (m *Map) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, oops.With("key", k).Wrap(err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := m.values[k]
		if v == "" {
			buf.WriteString("null")
			continue
		}
		value, err := json.Marshal(v)
		if err != nil {
			return nil, oops.With("key", k).Wrap(err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return pretty.Pretty(buf.Bytes()), nil
}
