package queryir

import "slices"

// Options is an ordered OPTION map.
//
// Keys keep the position of their first insertion; setting an existing key
// replaces its value in place (last write wins). Options is copy-on-write:
// With never changes the receiver.
type Options struct {
	keys   []string
	values map[string]any
}

// Option is one key = value entry.
type Option struct {
	Name  string
	Value any
}

// NewOptions builds Options from entries in order.
func NewOptions(entries ...Option) Options {
	var o Options
	for _, e := range entries {
		o = o.With(e.Name, e.Value)
	}
	return o
}

// With returns a copy of o with name set to value.
func (o Options) With(name string, value any) Options {
	values := make(map[string]any, len(o.values)+1)
	for k, v := range o.values {
		values[k] = v
	}
	keys := o.keys
	if _, ok := values[name]; !ok {
		keys = append(slices.Clone(o.keys), name)
	}
	values[name] = value
	return Options{keys: keys, values: values}
}

// Get returns the value for name.
func (o Options) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Len returns the number of options.
func (o Options) Len() int {
	return len(o.keys)
}

// Entries returns the options in insertion order.
func (o Options) Entries() []Option {
	out := make([]Option, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, Option{Name: k, Value: o.values[k]})
	}
	return out
}
