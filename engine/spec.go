package engine

import (
	"fmt"

	"github.com/kbukum/weave/config"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/replicate"
)

// defaults are the parsed config.Defaults.
type defaults struct {
	weave     replicate.WeaveType
	maxDepth  int
	broadcast bool
}

func parseDefaults(d config.Defaults) (defaults, error) {
	w, err := replicate.ParseWeaveType(d.Weave)
	if err != nil {
		return defaults{}, err
	}
	return defaults{weave: w, maxDepth: d.MaxAggregationDepth, broadcast: d.BroadcastOutOfSpec}, nil
}

// options returns the spec options for an ad hoc spec built from defaults.
func (d defaults) options() []replicate.Option {
	return []replicate.Option{
		replicate.WithWeave(d.weave),
		replicate.WithMaxAggregationDepth(d.maxDepth),
		replicate.WithBroadcastOutOfSpec(d.broadcast),
	}
}

// buildSpec turns a spec declaration into a Spec. Settings the declaration
// leaves out come from d; a spec file's own settings win over d but lose to
// the declaration.
func buildSpec(name string, sc config.SpecConfig, d defaults) (replicate.Spec, error) {
	var (
		spec replicate.Spec
		err  error
	)
	if sc.File != "" {
		spec, err = replicate.LoadSpecFile(sc.File)
		if err == nil && spec.MaxAggregationDepth() == 0 && d.maxDepth > 0 {
			spec, err = spec.WithOptions(replicate.WithMaxAggregationDepth(d.maxDepth))
		}
	} else {
		var entries []replicate.Entry
		if entries, err = replicate.ParseEntries(sc.Entries); err == nil {
			spec, err = replicate.NewSpec(entries, d.options()...)
		}
	}
	if err != nil {
		return replicate.Spec{}, wrapSpecErr(name, err)
	}

	var opts []replicate.Option
	if sc.Weave != "" {
		w, err := replicate.ParseWeaveType(sc.Weave)
		if err != nil {
			return replicate.Spec{}, wrapSpecErr(name, err)
		}
		opts = append(opts, replicate.WithWeave(w))
	}
	if sc.Replicates > 0 {
		opts = append(opts, replicate.WithReplicates(sc.Replicates))
	}
	if sc.BroadcastOutOfSpec != nil {
		opts = append(opts, replicate.WithBroadcastOutOfSpec(*sc.BroadcastOutOfSpec))
	}
	if len(opts) == 0 {
		return spec, nil
	}
	spec, err = spec.WithOptions(opts...)
	if err != nil {
		return replicate.Spec{}, wrapSpecErr(name, err)
	}
	return spec, nil
}

// wrapSpecErr names the spec in err, keeping AppError codes. Other errors
// become INVALID_INPUT.
func wrapSpecErr(name string, err error) error {
	app, ok := errors.AsAppError(err)
	if !ok {
		return errors.InvalidInput("specs."+name, err.Error()).WithCause(err)
	}
	return errors.New(app.Code, fmt.Sprintf("spec %s: %s", name, app.Message)).
		WithDetails(app.Details).
		WithDetail("spec", name).
		WithCause(app.Cause)
}
