package compose

import (
	"context"
	"fmt"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
	"github.com/kbukum/weave/replicate"
	"github.com/kbukum/weave/validation"
)

// IMappingConfig configures an input-mapping compositor.
type IMappingConfig struct {
	// Spec expands the merged outer and inner parameters.
	Spec replicate.Spec
	// InnerMapping holds static per-replicate sequences routed to inner.
	InnerMapping bundle.Bundle
	// OuterMapping holds static per-replicate sequences routed to outer.
	OuterMapping bundle.Bundle
	// MergeType decides key handling when outer results differ in keys.
	MergeType bundle.MergeType
	Logger    *logger.Logger
	Metrics   *observability.Metrics
}

// OMappingConfig configures an output-mapping compositor.
type OMappingConfig struct {
	// Spec broadcasts the outer parameters over the inner's records.
	Spec replicate.Spec
	// Mapping holds static per-record sequences passed to outer.
	Mapping bundle.Bundle
	// NReplicates, when positive, is the record count inner must produce.
	// Without it a non-empty Mapping fixes the count by its length.
	NReplicates int
	MergeType   bundle.MergeType
	Logger      *logger.Logger
	Metrics     *observability.Metrics
}

// IMapping returns a compositor that expands the merged parameters with
// cfg.Spec into L replicates. For replicate i it calls inner with the inner
// slice of record i, memoized by content, then calls outer with the inner
// result overlaid by the outer slice. The L outer results are merged into
// one bundle.
func IMapping(cfg IMappingConfig) (Compositor, error) {
	if err := checkMappings(
		mappingField{"inner_mapping", cfg.InnerMapping},
		mappingField{"outer_mapping", cfg.OuterMapping},
	); err != nil {
		return nil, err
	}
	log := logger.Or(cfg.Logger, "compose")

	return func(outer, inner Func) Curried {
		return func(outerParams bundle.Bundle) Func {
			return func(ctx context.Context, innerParams bundle.Bundle) (bundle.Bundle, error) {
				return cfg.run(ctx, log, outer, inner, outerParams, innerParams)
			}
		}
	}, nil
}

func (c IMappingConfig) run(ctx context.Context, log *logger.Logger, outer, inner Func, outerParams, innerParams bundle.Bundle) (bundle.Bundle, error) {
	merged := bundle.MergeAll(outerParams, innerParams, c.InnerMapping, c.OuterMapping)
	expanded, n, err := c.Spec.Expand(merged)
	if err != nil {
		return bundle.Bundle{}, err
	}
	sliced := slicedKeys(c.Spec, merged, c.InnerMapping, c.OuterMapping)
	width := replicateWidth(c.Spec, n, c.InnerMapping, c.OuterMapping)
	innerKeys := unionKeys(innerParams, c.InnerMapping)
	outerKeys := unionKeys(outerParams, c.OuterMapping)

	memo := newMemoTable()
	results := make([]bundle.Bundle, 0, width)
	for i := 0; i < width; i++ {
		res, err := memo.call(ctx, inner, sliceAt(expanded, innerKeys, sliced, i))
		if err != nil {
			return bundle.Bundle{}, err
		}
		out, err := outer(ctx, bundle.PreferOuter.Merge(sliceAt(expanded, outerKeys, sliced, i), res))
		if err != nil {
			return bundle.Bundle{}, err
		}
		results = append(results, out)
	}

	c.Metrics.RecordReplicate(ctx, c.Spec.Weave().String(), width)
	c.Metrics.RecordMemo(ctx, memo.hits, memo.misses)
	if l := log.WithContext(ctx); l.DebugEnabled() {
		l.Debug("imapping done", logger.Fields(
			logger.FieldMemoID, memo.id.String(),
			logger.FieldReplicates, width,
			logger.FieldMemoHits, memo.hits,
			logger.FieldMemoMisses, memo.misses,
		))
	}
	return bundle.FromRecords(results, c.MergeType), nil
}

// OMapping returns a compositor that calls inner once, splits its result
// into records and calls outer once per record. Outer parameters named by
// cfg.Spec are broadcast and sliced per record; on key collision the record
// wins over the static mapping, which wins over the outer parameters.
func OMapping(cfg OMappingConfig) (Compositor, error) {
	v := validation.New()
	v.Min("n_replicates", cfg.NReplicates, 0)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := checkMappings(mappingField{"mapping", cfg.Mapping}); err != nil {
		return nil, err
	}
	if want := cfg.NReplicates; want > 0 && cfg.Mapping.Len() > 0 {
		if n := mappingLen(cfg.Mapping); n != want {
			return nil, errors.LengthMismatch("mapping", map[string]int{"mapping": n, "n_replicates": want})
		}
	}
	log := logger.Or(cfg.Logger, "compose")

	return func(outer, inner Func) Curried {
		return func(outerParams bundle.Bundle) Func {
			return func(ctx context.Context, innerParams bundle.Bundle) (bundle.Bundle, error) {
				return cfg.run(ctx, log, outer, inner, outerParams, innerParams)
			}
		}
	}, nil
}

func (c OMappingConfig) run(ctx context.Context, log *logger.Logger, outer, inner Func, outerParams, innerParams bundle.Bundle) (bundle.Bundle, error) {
	out, err := inner(ctx, innerParams)
	if err != nil {
		return bundle.Bundle{}, err
	}
	records, err := bundle.ToRecords(out)
	if err != nil {
		return bundle.Bundle{}, err
	}
	if want := c.cardinality(); want >= 0 && len(records) != want {
		return bundle.Bundle{}, errors.OutputCardinalityMismatch(len(records), want)
	}

	merged := bundle.MergeAll(outerParams, out, c.Mapping)
	expanded, _, err := c.Spec.Expand(merged)
	if err != nil {
		return bundle.Bundle{}, err
	}
	sliced := slicedKeys(c.Spec, merged)
	outerKeys := outerParams.Keys()

	results := make([]bundle.Bundle, 0, len(records))
	for i, rec := range records {
		params := sliceAt(expanded, outerKeys, sliced, i)
		params = bundle.Merge(params, sliceAt(c.Mapping, c.Mapping.Keys(), nil, i))
		params = bundle.Merge(params, rec)
		res, err := outer(ctx, params)
		if err != nil {
			return bundle.Bundle{}, err
		}
		results = append(results, res)
	}

	c.Metrics.RecordReplicate(ctx, c.Spec.Weave().String(), len(records))
	if l := log.WithContext(ctx); l.DebugEnabled() {
		l.Debug("omapping done", logger.Fields(
			logger.FieldReplicates, len(records),
			logger.FieldKeys, out.Keys(),
		))
	}
	return bundle.FromRecords(results, c.MergeType), nil
}

func (c OMappingConfig) cardinality() int {
	switch {
	case c.NReplicates > 0:
		return c.NReplicates
	case c.Mapping.Len() > 0:
		return mappingLen(c.Mapping)
	default:
		return -1
	}
}

type mappingField struct {
	name string
	m    bundle.Bundle
}

// checkMappings requires every static mapping value to be a Seq and every
// mapping to hold sequences of one length.
func checkMappings(fields ...mappingField) error {
	v := validation.New()
	for _, f := range fields {
		f.m.Range(func(k string, val any) bool {
			v.Custom(bundle.IsSeq(val), fmt.Sprintf("%s.%s", f.name, k), "must be a sequence")
			return true
		})
	}
	if err := v.Err(); err != nil {
		return err
	}
	for _, f := range fields {
		lengths := make(map[string]int, f.m.Len())
		first := -1
		equal := true
		f.m.Range(func(k string, val any) bool {
			n := bundle.Len(val)
			lengths[k] = n
			if first < 0 {
				first = n
			} else if n != first {
				equal = false
			}
			return true
		})
		if !equal {
			return errors.LengthMismatch(f.name, lengths)
		}
	}
	return nil
}

func mappingLen(m bundle.Bundle) int {
	n := 0
	m.Range(func(_ string, v any) bool {
		n = bundle.Len(v)
		return false
	})
	return n
}

// slicedKeys returns the names indexed per replicate: the spec's names and
// the static mappings, or every name when the spec broadcasts.
func slicedKeys(spec replicate.Spec, merged bundle.Bundle, mappings ...bundle.Bundle) map[string]bool {
	out := make(map[string]bool)
	if spec.BroadcastOutOfSpec() {
		for _, k := range merged.Keys() {
			out[k] = true
		}
		return out
	}
	for _, k := range spec.Names() {
		out[k] = true
	}
	for _, m := range mappings {
		for _, k := range m.Keys() {
			out[k] = true
		}
	}
	return out
}

// replicateWidth is the number of replicates an input-mapping call runs. An
// inactive spec (empty, no broadcast, no forced count) runs once unless a
// static mapping asks for more.
func replicateWidth(spec replicate.Spec, n int, mappings ...bundle.Bundle) int {
	active := !spec.IsEmpty() || spec.BroadcastOutOfSpec() || spec.Replicates() > 0
	width := 1
	if active {
		if n == 0 {
			return 0
		}
		width = n
	}
	hasMapping := false
	for _, m := range mappings {
		if m.Len() == 0 {
			continue
		}
		l := mappingLen(m)
		if !hasMapping && !active {
			width = l
		} else {
			width = max(width, l)
		}
		hasMapping = true
	}
	return width
}

// sliceAt picks keys from b, replacing sliced values by their element i.
func sliceAt(b bundle.Bundle, keys []string, sliced map[string]bool, i int) bundle.Bundle {
	kvs := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		v, ok := b.Get(k)
		if !ok {
			continue
		}
		if sliced == nil || sliced[k] {
			v = bundle.At(v, i)
		}
		kvs = append(kvs, k, v)
	}
	return bundle.New(kvs...)
}

func unionKeys(bs ...bundle.Bundle) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, b := range bs {
		for _, k := range b.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}
