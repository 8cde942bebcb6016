// Package env implements the configuration environment shared by the parser,
// the visitors and the templates.
//
// Values are stored in a flat map whose keys are dotted paths such as
// "mau.visitor.prefixes". The nested view, where every dot opens a new map,
// is produced on demand with Nested and is the shape templates receive as
// "config".
package env

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Separator joins the segments of a flat key.
const Separator = "."

// Environment is a flat key/value store with dotted keys.
type Environment struct {
	flat map[string]any
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{flat: make(map[string]any)}
}

// FromFlat builds an environment from a map whose keys are already dotted.
func FromFlat(flat map[string]any) *Environment {
	e := New()
	for k, v := range flat {
		e.Set(k, v)
	}
	return e
}

// FromNested builds an environment from a nested map.
func FromNested(nested map[string]any) *Environment {
	return &Environment{flat: Flatten(nested)}
}

// Get returns the value stored under key.
func (e *Environment) Get(key string) (any, bool) {
	v, ok := e.flat[key]
	return v, ok
}

// GetString returns the value of key as a string, or def when the key is missing.
func (e *Environment) GetString(key string, def string) string {
	v, ok := e.flat[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// GetBool returns the value of key as a boolean, or def when the key is
// missing or cannot be interpreted as a boolean.
func (e *Environment) GetBool(key string, def bool) bool {
	v, ok := e.flat[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return def
		}
		return parsed
	}
	return def
}

// GetStrings returns the value of key as a list of strings.
// A scalar value is returned as a list with a single element.
func (e *Environment) GetStrings(key string) []string {
	v, ok := e.flat[key]
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		result := make([]string, 0, len(list))
		for _, item := range list {
			result = append(result, fmt.Sprint(item))
		}
		return result
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	}
	return []string{fmt.Sprint(v)}
}

// Namespace returns all the values whose key starts with prefix followed by
// the separator. Keys of the returned map have the prefix removed but keep any
// further dots, so "mau.visitor.custom_templates.text.j2" is returned as
// "text.j2" for the prefix "mau.visitor.custom_templates".
func (e *Environment) Namespace(prefix string) map[string]any {
	result := make(map[string]any)
	p := prefix + Separator
	for k, v := range e.flat {
		if strings.HasPrefix(k, p) {
			result[strings.TrimPrefix(k, p)] = v
		}
	}
	return result
}

// Set stores value under key. Map values are flattened below key.
func (e *Environment) Set(key string, value any) {
	if m, ok := asMap(value); ok && len(m) > 0 {
		for k, v := range Flatten(m) {
			e.flat[key+Separator+k] = v
		}
		return
	}
	e.flat[key] = value
}

// Update copies every value of other into e, overwriting existing keys.
func (e *Environment) Update(other *Environment) {
	if other == nil {
		return
	}
	for k, v := range other.flat {
		e.flat[k] = v
	}
}

// Clone returns a shallow copy of the environment.
func (e *Environment) Clone() *Environment {
	c := New()
	c.Update(e)
	return c
}

// Keys returns the sorted list of flat keys.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.flat))
	for k := range e.flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flat returns a copy of the flat map.
func (e *Environment) Flat() map[string]any {
	result := make(map[string]any, len(e.flat))
	for k, v := range e.flat {
		result[k] = v
	}
	return result
}

// Nested returns the nested view of the environment.
func (e *Environment) Nested() map[string]any {
	return Nest(e.flat)
}

// Flatten converts a nested map into a flat map with dotted keys.
// Empty nested maps are kept as leaves so that Nest can rebuild them.
func Flatten(nested map[string]any) map[string]any {
	flat := make(map[string]any)
	flatten("", nested, flat)
	return flat
}

func flatten(prefix string, nested map[string]any, flat map[string]any) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		if m, ok := asMap(v); ok && len(m) > 0 {
			flatten(key, m, flat)
			continue
		}
		flat[key] = v
	}
}

// Nest converts a flat map with dotted keys into a nested map.
// Keys are processed in sorted order, so when a key is both a leaf and a
// namespace ("a" and "a.b") the namespace wins deterministically.
func Nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nested := make(map[string]any)
	for _, k := range keys {
		segments := strings.Split(k, Separator)
		current := nested
		for _, segment := range segments[:len(segments)-1] {
			next, ok := current[segment].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[segment] = next
			}
			current = next
		}
		last := segments[len(segments)-1]
		if _, isNamespace := current[last].(map[string]any); isNamespace {
			if m, ok := asMap(flat[k]); !ok || len(m) == 0 {
				continue
			}
		}
		current[last] = flat[k]
	}
	return nested
}

// asMap normalises the map types produced by YAML decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		result := make(map[string]any, len(m))
		for k, item := range m {
			result[fmt.Sprint(k)] = item
		}
		return result, true
	case map[string]string:
		result := make(map[string]any, len(m))
		for k, item := range m {
			result[k] = item
		}
		return result, true
	}
	return nil, false
}
