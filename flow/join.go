package flow

import (
	"context"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/compose"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
)

// Joiner combines the values one name takes across branches, in branch
// order.
type Joiner func(values []any) (any, error)

// Concat joins values into one Seq. Seq values contribute their elements,
// other values are appended as they are.
func Concat(values []any) (any, error) {
	var out bundle.Seq
	for _, v := range values {
		if s, ok := v.(bundle.Seq); ok {
			out = append(out, s...)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// First keeps the first branch's value.
func First(values []any) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// Splitter turns a list of branch chains into a transform.
type Splitter func(chains ...Transform) (Transform, error)

// Join returns a splitter that runs every branch up to the point where it
// would call f, joins the parameters each branch would have handed to f and
// then calls f once with the joined bundle. Names in joinVars (every name
// when joinVars is empty) are combined with joiner; other names keep the
// first branch's value. A nil joiner is Concat.
//
// Branch stages compose with compose.Direct. A branch that never reaches f
// (such as InjectParams) contributes its whole result. When no branch
// reaches f the joined bundle is returned as is. The compositor given to
// the returned transform is not used.
func Join(joiner Joiner, joinVars ...string) Splitter {
	if joiner == nil {
		joiner = Concat
	}
	return func(chains ...Transform) (Transform, error) {
		if len(chains) == 0 {
			return nil, errors.InvalidInput("chains", "at least one chain is required")
		}
		return func(f compose.Func, _ compose.Compositor) compose.Func {
			return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
				ctx, span := observability.StartSpan(ctx, observability.SpanJoin)
				defer span.End()
				observability.SetSpanAttribute(ctx, observability.AttrBranches, len(chains))

				out, err := runJoin(ctx, f, params, chains, joiner, joinVars)
				if err != nil {
					observability.SetSpanError(ctx, err)
				}
				return out, err
			}
		}, nil
	}
}

func runJoin(ctx context.Context, f compose.Func, params bundle.Bundle, chains []Transform, joiner Joiner, joinVars []string) (bundle.Bundle, error) {
	reached := false
	handoff := func(_ context.Context, p bundle.Bundle) (bundle.Bundle, error) {
		reached = true
		return p, nil
	}
	results := make([]bundle.Bundle, len(chains))
	for i, t := range chains {
		res, err := t.Apply(handoff, compose.Direct)(ctx, params)
		if err != nil {
			return bundle.Bundle{}, err
		}
		results[i] = res
	}

	joined, err := joinResults(results, joiner, joinVars)
	if err != nil {
		return bundle.Bundle{}, err
	}
	if l := logger.Get("flow").WithContext(ctx); l.DebugEnabled() {
		l.Debug("join done", logger.Fields(
			logger.FieldBranches, len(chains),
			logger.FieldKeys, joined.Keys(),
		))
	}
	if !reached {
		return joined, nil
	}
	return f(ctx, joined)
}

// joinResults builds one column per name across results, skipping branches
// that lack the name.
func joinResults(results []bundle.Bundle, joiner Joiner, joinVars []string) (bundle.Bundle, error) {
	var keys []string
	cols := make(map[string][]any)
	for _, r := range results {
		r.Range(func(k string, v any) bool {
			if _, ok := cols[k]; !ok {
				keys = append(keys, k)
			}
			cols[k] = append(cols[k], v)
			return true
		})
	}

	join := make(map[string]bool, len(joinVars))
	for _, k := range joinVars {
		join[k] = true
	}
	kvs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		if len(joinVars) > 0 && !join[k] {
			kvs = append(kvs, k, cols[k][0])
			continue
		}
		v, err := joiner(cols[k])
		if err != nil {
			return bundle.Bundle{}, err
		}
		kvs = append(kvs, k, v)
	}
	return bundle.New(kvs...), nil
}
