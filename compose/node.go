package compose

import (
	"context"
	"fmt"

	"github.com/kbukum/weave/bundle"
)

// Node is a composition of outer and inner under a compositor. Nodes are
// immutable values; Bind, BindCurried and AddAllowed return new nodes and
// never touch the constituent callables. Outer and inner may themselves be
// nodes, so compositions form a tree.
type Node struct {
	compositor Compositor
	outer      Callable
	inner      Callable
	curried    bundle.Bundle
	allowed    []string
}

// Compose builds a node. A nil compositor means Direct. Names in allowed may
// be bound into the inner callable with Bind.
func Compose(c Compositor, outer, inner Callable, allowed ...string) Node {
	return Node{
		compositor: OrDirect(c),
		outer:      outer,
		inner:      inner,
		allowed:    normalizeAllowed(allowed),
	}
}

// Call runs the composition: the curried parameters go to the outer stage
// and params to the inner stage.
func (n Node) Call(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
	return n.compositor(FuncOf(n.outer), FuncOf(n.inner))(n.curried)(ctx, params)
}

// Bind fixes the allowed subset of params on the inner callable.
func (n Node) Bind(params bundle.Bundle) Node {
	params = filterAllowed(params, n.allowed)
	if params.Len() == 0 {
		return n
	}
	n.inner = bindInto(n.inner, params, n.allowed)
	return n
}

// BindCurried returns a node whose outer stage receives params.
func (n Node) BindCurried(params bundle.Bundle) Node {
	n.curried = bundle.Merge(n.curried, params)
	return n
}

// AddAllowed returns a node that may bind names as well.
func (n Node) AddAllowed(names ...string) Node {
	n.allowed = normalizeAllowed(append(append([]string(nil), n.allowed...), names...))
	return n
}

// Allowed returns the sorted allow-list.
func (n Node) Allowed() []string { return append([]string(nil), n.allowed...) }

// Curried returns the parameters bound to the outer stage.
func (n Node) Curried() bundle.Bundle { return n.curried }

// Outer returns the outer callable.
func (n Node) Outer() Callable { return n.outer }

// Inner returns the inner callable.
func (n Node) Inner() Callable { return n.inner }

func (n Node) String() string {
	return fmt.Sprintf("compose(%s, %s)", describe(n.outer), describe(n.inner))
}

// bindInto binds params on c, wrapping plain callables so they are not
// modified.
func bindInto(c Callable, params bundle.Bundle, allowed []string) Callable {
	switch v := c.(type) {
	case Node:
		return v.AddAllowed(allowed...).Bind(params)
	case *Wrapper:
		return v.AddAllowed(allowed...).Bind(params)
	default:
		return Wrap("", c, allowed...).Bind(params)
	}
}
