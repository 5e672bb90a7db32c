package compose

import (
	"context"
	"fmt"

	"github.com/kbukum/weave/bundle"
)

// Func is the shape of every callable in a pipeline.
type Func func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error)

// Call implements Callable.
func (f Func) Call(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
	return f(ctx, params)
}

// Callable is anything that can be invoked with a parameter bundle.
type Callable interface {
	Call(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error)
}

// FuncOf adapts a Callable to a Func.
func FuncOf(c Callable) Func {
	if f, ok := c.(Func); ok {
		return f
	}
	return c.Call
}

// Identity returns its parameters unchanged.
func Identity(_ context.Context, params bundle.Bundle) (bundle.Bundle, error) {
	return params, nil
}

// Const returns a Func that ignores its parameters and returns b.
func Const(b bundle.Bundle) Func {
	return func(context.Context, bundle.Bundle) (bundle.Bundle, error) {
		return b, nil
	}
}

func describe(c Callable) string {
	switch v := c.(type) {
	case nil:
		return "<nil>"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", c)
	}
}
