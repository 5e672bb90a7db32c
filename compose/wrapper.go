package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/weave/bundle"
)

// AnyParam in an allow-list permits binding every name.
const AnyParam = "*"

// Wrapper gives a callable a name, bound parameters and an allow-list of
// names Bind may fix. Wrappers are immutable; Bind and AddAllowed return
// new wrappers.
type Wrapper struct {
	name    string
	fn      Callable
	partial bundle.Bundle
	allowed []string
}

// Wrap names c. Only names in allowed can later be bound.
func Wrap(name string, c Callable, allowed ...string) *Wrapper {
	return &Wrapper{name: name, fn: c, allowed: normalizeAllowed(allowed)}
}

// Call invokes the wrapped callable with the bound parameters overlaid by
// params.
func (w *Wrapper) Call(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
	return w.fn.Call(ctx, bundle.Merge(w.partial, params))
}

// Bind fixes the allowed subset of params. It returns w itself when nothing
// is allowed.
func (w *Wrapper) Bind(params bundle.Bundle) *Wrapper {
	params = filterAllowed(params, w.allowed)
	if params.Len() == 0 {
		return w
	}
	c := *w
	c.partial = bundle.Merge(w.partial, params)
	return &c
}

// AddAllowed returns a wrapper that may bind names as well.
func (w *Wrapper) AddAllowed(names ...string) *Wrapper {
	c := *w
	c.allowed = normalizeAllowed(append(append([]string(nil), w.allowed...), names...))
	return &c
}

// Name returns the wrapper's name.
func (w *Wrapper) Name() string { return w.name }

// Allowed returns the sorted allow-list.
func (w *Wrapper) Allowed() []string { return append([]string(nil), w.allowed...) }

// Partial returns the bound parameters.
func (w *Wrapper) Partial() bundle.Bundle { return w.partial }

// String renders the name and bound parameters, e.g. "scale(factor=2)".
func (w *Wrapper) String() string {
	name := w.name
	if name == "" {
		name = describe(w.fn)
	}
	if w.partial.Len() == 0 {
		return name
	}
	parts := make([]string, 0, w.partial.Len())
	w.partial.Range(func(k string, v any) bool {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		return true
	})
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func filterAllowed(params bundle.Bundle, allowed []string) bundle.Bundle {
	for _, a := range allowed {
		if a == AnyParam {
			return params
		}
	}
	return params.Pick(allowed...)
}

func normalizeAllowed(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
