package domain

import "fmt"

// Fields is a string-keyed mapping that remembers insertion order.
// Values are scalars (string, int) or nested *Fields.
type Fields struct {
	keys   []string
	values map[string]any
}

// NewFields creates an empty Fields.
func NewFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Set stores value under key. An existing key keeps its position.
func (f *Fields) Set(key string, value any) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Child returns the nested mapping under key, creating it when absent.
// It fails if key already holds a scalar.
func (f *Fields) Child(key string) (*Fields, error) {
	v, ok := f.values[key]
	if !ok {
		child := NewFields()
		f.Set(key, child)
		return child, nil
	}
	child, ok := v.(*Fields)
	if !ok {
		return nil, fmt.Errorf("field %q already holds a value", key)
	}
	return child, nil
}

// SetPath stores value at the nested location described by path,
// creating intermediate mappings. Overwriting an existing leaf is an error.
func (f *Fields) SetPath(path []string, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("empty field path")
	}
	cur := f
	for _, key := range path[:len(path)-1] {
		next, err := cur.Child(key)
		if err != nil {
			return err
		}
		cur = next
	}
	leaf := path[len(path)-1]
	if _, exists := cur.values[leaf]; exists {
		return fmt.Errorf("field %q already set", leaf)
	}
	cur.Set(leaf, value)
	return nil
}

// Plain converts the mapping into nested map[string]any values.
func (f *Fields) Plain() map[string]any {
	if f == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		if child, ok := f.values[k].(*Fields); ok {
			out[k] = child.Plain()
			continue
		}
		out[k] = f.values[k]
	}
	return out
}
