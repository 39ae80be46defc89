/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Settings is an ordered mapping from property name to value,
// holding the declarative definition of one resource instance.
// The zero value is an empty, usable Settings.
type Settings struct {
	keys   []string
	values map[string]interface{}
}

// New returns an empty Settings.
func New() *Settings {
	return &Settings{values: map[string]interface{}{}}
}

// FromMap returns a Settings holding the given values in key order.
func FromMap(m map[string]interface{}) *Settings {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := New()
	for _, k := range keys {
		s.set(k, m[k])
	}
	return s
}

// Parse decodes a YAML or JSON document into Settings, preserving the key order.
func Parse(data []byte) (*Settings, error) {
	s := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (interface{}, bool) {
	if s == nil || s.values == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

// String returns the value stored under key formatted as a string,
// or an empty string if the key is missing.
func (s *Settings) String(key string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// Keys returns the property names in order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of properties.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// With returns a copy of the settings with key set to value.
// An existing key keeps its position.
func (s *Settings) With(key string, value interface{}) *Settings {
	c := s.DeepCopy()
	c.set(key, value)
	return c
}

// Without returns a copy of the settings without key.
func (s *Settings) Without(key string) *Settings {
	c := New()
	for _, k := range s.Keys() {
		if k != key {
			c.set(k, s.values[k])
		}
	}
	return c
}

// Filter returns a copy holding only the allowed properties, in their original order.
// A nil allow-list returns the settings unchanged.
func (s *Settings) Filter(allowed []string) *Settings {
	if allowed == nil {
		return s.DeepCopy()
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	c := New()
	for _, k := range s.Keys() {
		if _, ok := set[k]; ok {
			c.set(k, s.values[k])
		}
	}
	return c
}

// Merge returns a copy of s with the top-level properties of other applied on top.
func (s *Settings) Merge(other *Settings) *Settings {
	c := s.DeepCopy()
	for _, k := range other.Keys() {
		v, _ := other.Get(k)
		c.set(k, v)
	}
	return c
}

// DeepCopy returns a copy of the settings, nested maps and lists included.
func (s *Settings) DeepCopy() *Settings {
	c := New()
	for _, k := range s.Keys() {
		c.set(k, copyValue(s.values[k]))
	}
	return c
}

// Map returns the settings as a plain map.
func (s *Settings) Map() map[string]interface{} {
	m := make(map[string]interface{}, s.Len())
	for _, k := range s.Keys() {
		m[k] = s.values[k]
	}
	return m
}

func (s *Settings) set(key string, value interface{}) {
	if s.values == nil {
		s.values = map[string]interface{}{}
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// MarshalJSON encodes the settings as a JSON object in key order.
func (s *Settings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, fmt.Errorf("property '%s' encoding failed, error: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving the key order.
func (s *Settings) UnmarshalJSON(data []byte) error {
	return yaml.Unmarshal(data, s)
}

// UnmarshalYAML decodes a YAML mapping node, preserving the key order.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("settings must be a mapping, got %s", nodeKind(node))
	}

	*s = Settings{values: map[string]interface{}{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("property '%s' decoding failed, error: %w", key, err)
		}
		s.set(key, value)
	}
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = copyValue(e)
		}
		return m
	case []interface{}:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = copyValue(e)
		}
		return l
	case []string:
		l := make([]string, len(t))
		copy(l, t)
		return l
	default:
		return v
	}
}
