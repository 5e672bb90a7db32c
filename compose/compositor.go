package compose

import (
	"context"

	"github.com/kbukum/weave/bundle"
)

// Curried is a compositor that has closed over the outer parameters.
type Curried func(outerParams bundle.Bundle) Func

// Compositor fuses an outer and an inner Func.
type Compositor func(outer, inner Func) Curried

// Direct calls inner, merges its result into the outer parameters and calls
// outer once. Outer parameters win on key collision.
func Direct(outer, inner Func) Curried {
	return DirectWith(bundle.PreferOuter)(outer, inner)
}

// DirectWith is Direct with an explicit collision policy.
func DirectWith(policy bundle.MergePolicy) Compositor {
	return func(outer, inner Func) Curried {
		return func(outerParams bundle.Bundle) Func {
			return func(ctx context.Context, innerParams bundle.Bundle) (bundle.Bundle, error) {
				res, err := inner(ctx, innerParams)
				if err != nil {
					return bundle.Bundle{}, err
				}
				return outer(ctx, policy.Merge(outerParams, res))
			}
		}
	}
}

// OrDirect returns c, or Direct when c is nil.
func OrDirect(c Compositor) Compositor {
	if c == nil {
		return Direct
	}
	return c
}
