package flow

import (
	"context"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/compose"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
	"github.com/kbukum/weave/replicate"
)

// SplitConfig configures SplitChain.
type SplitConfig struct {
	// Spec assigns each branch its slice of the parameters. Its replicate
	// count is overridden by the number of branches.
	Spec      replicate.Spec
	MergeType bundle.MergeType
	Logger    *logger.Logger
}

// SplitChain returns a transform that wraps f once per chain and calls
// every branch with the same parameters. Names in cfg.Spec (every name when
// the spec broadcasts) are expanded to one element per branch; branch i gets
// element i, indexed cyclically. Other parameters reach every branch whole.
// The branch results are merged in branch order.
func SplitChain(cfg SplitConfig, chains ...Transform) (Transform, error) {
	if len(chains) == 0 {
		return nil, errors.InvalidInput("chains", "at least one chain is required")
	}
	spec, err := cfg.Spec.WithOptions(replicate.WithReplicates(len(chains)))
	if err != nil {
		return nil, err
	}
	log := logger.Or(cfg.Logger, "flow")

	return func(f compose.Func, c compose.Compositor) compose.Func {
		branches := make([]compose.Func, len(chains))
		for i, t := range chains {
			branches[i] = t.Apply(f, c)
		}
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			ctx, span := observability.StartSpan(ctx, observability.SpanSplit)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrBranches, len(branches))

			slices, err := branchParams(spec, params, len(branches))
			if err != nil {
				observability.SetSpanError(ctx, err)
				return bundle.Bundle{}, err
			}
			results := make([]bundle.Bundle, len(branches))
			for i, branch := range branches {
				if results[i], err = branch(ctx, slices[i]); err != nil {
					observability.SetSpanError(ctx, err)
					return bundle.Bundle{}, err
				}
			}
			if l := log.WithContext(ctx); l.DebugEnabled() {
				l.Debug("split done", logger.Fields(
					logger.FieldBranches, len(branches),
					logger.FieldKeys, spec.Names(),
				))
			}
			return bundle.FromRecords(results, cfg.MergeType), nil
		}
	}, nil
}

// branchParams expands params with spec and returns the parameters of each
// of the n branches.
func branchParams(spec replicate.Spec, params bundle.Bundle, n int) ([]bundle.Bundle, error) {
	expanded, _, err := spec.Expand(params)
	if err != nil {
		return nil, err
	}
	sliced := spec.Names()
	if spec.BroadcastOutOfSpec() {
		sliced = expanded.Keys()
	}
	out := make([]bundle.Bundle, n)
	for i := range out {
		p := params
		for _, k := range sliced {
			if v, ok := expanded.Get(k); ok {
				p = p.With(k, bundle.At(v, i))
			}
		}
		out[i] = p
	}
	return out, nil
}
