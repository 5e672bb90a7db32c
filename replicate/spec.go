package replicate

import (
	"fmt"

	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/validation"
)

// Spec declares which parameters broadcast together and how. A Spec is
// immutable and safe for concurrent use.
type Spec struct {
	entries []Entry
	opts    options
}

type options struct {
	weave              WeaveType
	replicates         int
	maxDepth           int
	broadcastOutOfSpec bool
}

// Option configures a Spec.
type Option func(*options)

// WithWeave sets the weave type. The default is Maximal.
func WithWeave(w WeaveType) Option {
	return func(o *options) { o.weave = w }
}

// WithReplicates forces the result length to n by cyclic indexing of the
// natural result. Zero keeps the natural length.
func WithReplicates(n int) Option {
	return func(o *options) { o.replicates = n }
}

// WithMaxAggregationDepth caps the number of cartesian factors. Zero means
// unlimited.
func WithMaxAggregationDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithBroadcastOutOfSpec expands parameters the spec does not name to the
// result length as well.
func WithBroadcastOutOfSpec(b bool) Option {
	return func(o *options) { o.broadcastOutOfSpec = b }
}

// NewSpec builds and validates a spec. It fails with INVALID_INPUT on
// duplicate names, empty names or groups, and negative counts, and with
// AGGREGATION_DEPTH_EXCEEDED when the spec crosses more factors than allowed.
func NewSpec(entries []Entry, opts ...Option) (Spec, error) {
	s := Spec{entries: append([]Entry(nil), entries...)}
	for _, opt := range opts {
		opt(&s.opts)
	}
	if err := s.validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// MustSpec is like NewSpec but panics on error. It is intended for specs
// fixed at build time.
func MustSpec(entries []Entry, opts ...Option) Spec {
	s, err := NewSpec(entries, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) validate() error {
	v := validation.New()
	for _, e := range s.entries {
		validateEntry(v, e, "entries")
	}
	v.Unique("entries", s.Names())
	v.Custom(s.opts.weave.Valid(), "weave", fmt.Sprintf("unknown weave type %d", int(s.opts.weave)))
	v.Min("replicates", s.opts.replicates, 0)
	v.Min("max_aggregation_depth", s.opts.maxDepth, 0)
	if err := v.Err(); err != nil {
		return err
	}
	if s.opts.maxDepth > 0 {
		if d := s.Depth(); d > s.opts.maxDepth {
			return errors.AggregationDepthExceeded(d, s.opts.maxDepth)
		}
	}
	return nil
}

func validateEntry(v *validation.Validator, e Entry, path string) {
	switch e.kind {
	case KindAtom:
		v.Required(path, e.name)
	default:
		p := fmt.Sprintf("%s.%s", path, e.kind)
		v.NotEmpty(p, len(e.children))
		for _, c := range e.children {
			validateEntry(v, c, p)
		}
	}
}

// Entries returns the top-level entries.
func (s Spec) Entries() []Entry { return append([]Entry(nil), s.entries...) }

// Weave returns the weave type.
func (s Spec) Weave() WeaveType { return s.opts.weave }

// Replicates returns the forced result length, or 0.
func (s Spec) Replicates() int { return s.opts.replicates }

// MaxAggregationDepth returns the cartesian factor cap, or 0.
func (s Spec) MaxAggregationDepth() int { return s.opts.maxDepth }

// BroadcastOutOfSpec reports whether unnamed parameters are expanded too.
func (s Spec) BroadcastOutOfSpec() bool { return s.opts.broadcastOutOfSpec }

// IsEmpty reports whether the spec names no parameters.
func (s Spec) IsEmpty() bool { return len(s.entries) == 0 }

// Names returns every referenced parameter name in spec order.
func (s Spec) Names() []string {
	var out []string
	for _, e := range s.entries {
		out = append(out, e.Names()...)
	}
	return out
}

// Has reports whether the spec references name.
func (s Spec) Has(name string) bool {
	for _, n := range s.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Depth returns the number of cartesian factors the spec materializes.
// Top-level entries add up under Maximal and Strict; under Minimal they are
// zipped, so the deepest entry counts.
func (s Spec) Depth() int {
	d := 0
	for _, e := range s.entries {
		if s.opts.weave == Minimal {
			d = max(d, e.depth())
		} else {
			d += e.depth()
		}
	}
	return d
}

// Extend returns a spec with extra entries appended.
func (s Spec) Extend(entries ...Entry) (Spec, error) {
	all := append(s.Entries(), entries...)
	return NewSpec(all, s.optionList()...)
}

// WithOptions returns a spec with opts applied over the current options.
func (s Spec) WithOptions(opts ...Option) (Spec, error) {
	return NewSpec(s.entries, append(s.optionList(), opts...)...)
}

func (s Spec) optionList() []Option {
	return []Option{
		WithWeave(s.opts.weave),
		WithReplicates(s.opts.replicates),
		WithMaxAggregationDepth(s.opts.maxDepth),
		WithBroadcastOutOfSpec(s.opts.broadcastOutOfSpec),
	}
}

func (s Spec) String() string {
	str := fmt.Sprintf("%s[%s]", s.opts.weave, joinEntries(s.entries))
	if s.opts.replicates > 0 {
		str += fmt.Sprintf(" n=%d", s.opts.replicates)
	}
	if s.opts.broadcastOutOfSpec {
		str += " broadcast"
	}
	return str
}
