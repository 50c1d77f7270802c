package document

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// field is one key/value pair of an ordered object.
type field struct {
	key   string
	value any
}

// orderedMap is an object that encodes its keys in insertion order.
type orderedMap []field

// MarshalJSON implements json.Marshaler.
func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler.
func (m orderedMap) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		var v yaml.Node
		if err := v.Encode(f.value); err != nil {
			return nil, err
		}
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key},
			&v)
	}
	return n, nil
}

func appendProperties(m orderedMap, props map[string]any) orderedMap {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m = append(m, field{k, props[k]})
	}
	return m
}

func sortedStrings(props map[string]string) orderedMap {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m := make(orderedMap, 0, len(keys))
	for _, k := range keys {
		m = append(m, field{k, props[k]})
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (e Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Element) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	el, err := ElementFromMap(m)
	if err != nil {
		return err
	}
	*e = el
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Element) MarshalYAML() (any, error) {
	return e.fields().MarshalYAML()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Element) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	el, err := ElementFromMap(m)
	if err != nil {
		return err
	}
	*e = el
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.fields())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	doc, err := DocumentFromMap(m)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.fields().MarshalYAML()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Document) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	doc, err := DocumentFromMap(m)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
