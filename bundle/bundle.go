package bundle

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Bundle is an ordered mapping from name to value. The zero value is an
// empty bundle. Derivations never modify the receiver.
type Bundle struct {
	keys []string
	vals map[string]any
}

// New builds a bundle from alternating key-value pairs. A repeated key keeps
// its first position and its last value. New panics on an odd number of
// arguments or a non-string key.
func New(kvs ...any) Bundle {
	if len(kvs)%2 != 0 {
		panic("bundle: New called with an odd number of arguments")
	}
	b := Bundle{vals: make(map[string]any, len(kvs)/2)}
	for i := 0; i < len(kvs); i += 2 {
		k, ok := kvs[i].(string)
		if !ok {
			panic(fmt.Sprintf("bundle: key at position %d is %T, not string", i, kvs[i]))
		}
		b.set(k, kvs[i+1])
	}
	return b
}

// FromMap builds a bundle from m with keys in sorted order.
func FromMap(m map[string]any) Bundle {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b := Bundle{keys: keys, vals: make(map[string]any, len(m))}
	for k, v := range m {
		b.vals[k] = v
	}
	return b
}

func (b *Bundle) set(k string, v any) {
	if _, ok := b.vals[k]; !ok {
		b.keys = append(b.keys, k)
	}
	b.vals[k] = v
}

func (b Bundle) clone(extra int) Bundle {
	c := Bundle{
		keys: make([]string, len(b.keys), len(b.keys)+extra),
		vals: make(map[string]any, len(b.keys)+extra),
	}
	copy(c.keys, b.keys)
	for k, v := range b.vals {
		c.vals[k] = v
	}
	return c
}

// Get returns the value stored under k.
func (b Bundle) Get(k string) (any, bool) {
	v, ok := b.vals[k]
	return v, ok
}

// Value returns the value stored under k, or nil.
func (b Bundle) Value(k string) any {
	return b.vals[k]
}

// Has reports whether k is present.
func (b Bundle) Has(k string) bool {
	_, ok := b.vals[k]
	return ok
}

// Keys returns the keys in order.
func (b Bundle) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Len returns the number of entries.
func (b Bundle) Len() int { return len(b.keys) }

// Range calls fn for each entry in order until fn returns false.
func (b Bundle) Range(fn func(k string, v any) bool) {
	for _, k := range b.keys {
		if !fn(k, b.vals[k]) {
			return
		}
	}
}

// Map returns a copy of the entries as a plain map.
func (b Bundle) Map() map[string]any {
	m := make(map[string]any, len(b.keys))
	for k, v := range b.vals {
		m[k] = v
	}
	return m
}

// With returns a bundle with k set to v. An existing key keeps its position.
func (b Bundle) With(k string, v any) Bundle {
	c := b.clone(1)
	c.set(k, v)
	return c
}

// Without returns a bundle lacking the given keys.
func (b Bundle) Without(keys ...string) Bundle {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	return b.Filter(func(k string, _ any) bool { return !drop[k] })
}

// Pick returns the entries whose keys are listed, in the bundle's order.
// Missing keys are ignored.
func (b Bundle) Pick(keys ...string) Bundle {
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	return b.Filter(func(k string, _ any) bool { return keep[k] })
}

// Filter returns the entries for which keep returns true.
func (b Bundle) Filter(keep func(k string, v any) bool) Bundle {
	c := Bundle{vals: make(map[string]any)}
	for _, k := range b.keys {
		if v := b.vals[k]; keep(k, v) {
			c.set(k, v)
		}
	}
	return c
}

// Equal reports whether both bundles hold the same keys in the same order
// with deeply equal values.
func (b Bundle) Equal(o Bundle) bool {
	if len(b.keys) != len(o.keys) {
		return false
	}
	for i, k := range b.keys {
		if o.keys[i] != k || !reflect.DeepEqual(b.vals[k], o.vals[k]) {
			return false
		}
	}
	return true
}

// String formats the bundle as {k: v, ...} in key order.
func (b Bundle) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", k, b.vals[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Read retrieves a typed value. It fails if the key is missing or holds a
// different type.
func Read[T any](b Bundle, k string) (T, error) {
	var zero T
	raw, ok := b.Get(k)
	if !ok {
		return zero, fmt.Errorf("bundle: key %q not found", k)
	}
	val, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("bundle: key %q: expected %T, got %T", k, zero, raw)
	}
	return val, nil
}
