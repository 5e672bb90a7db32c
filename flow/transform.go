package flow

import (
	"context"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/compose"
)

// Transform wraps f. Transforms that fuse a stage with f must do so through
// c, which is compose.Direct when nil.
type Transform func(f compose.Func, c compose.Compositor) compose.Func

// Apply runs t over f. A nil t returns f.
func (t Transform) Apply(f compose.Func, c compose.Compositor) compose.Func {
	if t == nil {
		return f
	}
	return t(f, c)
}

// Router splits a call's parameters into the outer and inner share.
type Router func(params bundle.Bundle) (outer, inner bundle.Bundle)

// RouteInner sends every parameter to the inner stage.
func RouteInner(params bundle.Bundle) (outer, inner bundle.Bundle) {
	return bundle.Bundle{}, params
}

// RouteOuter sends every parameter to the outer stage.
func RouteOuter(params bundle.Bundle) (outer, inner bundle.Bundle) {
	return params, bundle.Bundle{}
}

// RouteKeys sends the listed parameters to the inner stage and the rest to
// the outer one.
func RouteKeys(keys ...string) Router {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	return func(params bundle.Bundle) (outer, inner bundle.Bundle) {
		inner = params.Filter(func(k string, _ any) bool { return want[k] })
		outer = params.Filter(func(k string, _ any) bool { return !want[k] })
		return outer, inner
	}
}

// Input returns a transform that runs stage before f. route decides which
// parameters stage sees; the rest go straight to f alongside stage's result.
// A nil route is RouteInner.
func Input(stage compose.Func, route Router) Transform {
	if route == nil {
		route = RouteInner
	}
	return func(f compose.Func, c compose.Compositor) compose.Func {
		fused := compose.OrDirect(c)(f, stage)
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			outer, inner := route(params)
			return fused(outer)(ctx, inner)
		}
	}
}

// Output returns a transform that runs stage on f's result.
func Output(stage compose.Func) Transform {
	return func(f compose.Func, c compose.Compositor) compose.Func {
		return compose.OrDirect(c)(stage, f)(bundle.Bundle{})
	}
}

// NullTransform returns f unchanged. It is the control arm of a split.
func NullTransform(f compose.Func, _ compose.Compositor) compose.Func {
	return f
}

// InjectParams returns a transform whose result is the raw parameter bundle.
// f is never called.
func InjectParams() Transform {
	return func(compose.Func, compose.Compositor) compose.Func {
		return compose.Identity
	}
}

// IChain applies transforms on the input side: the last listed wraps f
// directly and the first listed ends up outermost, so it sees the caller's
// parameters first.
func IChain(transforms ...Transform) Transform {
	return func(f compose.Func, c compose.Compositor) compose.Func {
		for i := len(transforms) - 1; i >= 0; i-- {
			f = transforms[i].Apply(f, c)
		}
		return f
	}
}

// OChain applies transforms on the output side in listed order, so the
// first listed post-processes f's result first.
func OChain(transforms ...Transform) Transform {
	return func(f compose.Func, c compose.Compositor) compose.Func {
		for _, t := range transforms {
			f = t.Apply(f, c)
		}
		return f
	}
}

// IOChain applies ichain and then ochain to f, both under c. Either chain
// may be nil.
func IOChain(f compose.Func, ichain, ochain Transform, c compose.Compositor) compose.Func {
	f = ichain.Apply(f, c)
	return ochain.Apply(f, c)
}
