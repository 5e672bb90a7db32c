package replicate

import (
	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/logger"
)

// block is an evaluated entry: named columns sharing length n. A free block
// holds only scalars and adapts to any length.
type block struct {
	n     int
	free  bool
	names []string
	cols  []bundle.Seq
}

// Replicate builds a spec from entries and applies it to b.
func Replicate(b bundle.Bundle, entries []Entry, opts ...Option) (bundle.Bundle, error) {
	s, err := NewSpec(entries, opts...)
	if err != nil {
		return bundle.Bundle{}, err
	}
	return s.Apply(b)
}

// Apply expands b according to the spec. Every referenced value becomes a
// Seq of the common length L; other values are expanded to L only when
// BroadcastOutOfSpec is set. Key order is preserved.
func (s Spec) Apply(b bundle.Bundle) (bundle.Bundle, error) {
	out, _, err := s.Expand(b)
	return out, err
}

// Expand is Apply that also reports the common length L. When the spec is
// empty and does not broadcast, b is returned unchanged and L is the longest
// value length.
func (s Spec) Expand(b bundle.Bundle) (bundle.Bundle, int, error) {
	var (
		out bundle.Bundle
		n   int
		err error
	)
	if s.IsEmpty() {
		out, n, err = s.expandAll(b)
	} else {
		out, n, err = s.expandSpec(b)
	}
	if err != nil {
		return bundle.Bundle{}, 0, err
	}

	if log := logger.Get("replicate"); log.DebugEnabled() {
		log.Debug("expanded", logger.Fields(
			logger.FieldWeave, s.opts.weave.String(),
			logger.FieldReplicates, n,
			logger.FieldKeys, s.Names(),
		))
	}
	return out, n, nil
}

// expandAll handles the empty spec: with broadcasting on, every value goes
// to the longest length present (or the forced count).
func (s Spec) expandAll(b bundle.Bundle) (bundle.Bundle, int, error) {
	n := s.opts.replicates
	if n == 0 {
		n = MaxLen(b)
	}
	if !s.opts.broadcastOutOfSpec {
		return b, n, nil
	}
	kvs := make([]any, 0, 2*b.Len())
	for _, k := range b.Keys() {
		v, err := cycleTo(k, b.Value(k), n)
		if err != nil {
			return bundle.Bundle{}, 0, err
		}
		kvs = append(kvs, k, v)
	}
	return bundle.New(kvs...), n, nil
}

func (s Spec) expandSpec(b bundle.Bundle) (bundle.Bundle, int, error) {
	top := Product(s.entries...)
	if s.opts.weave == Minimal {
		top = Bound(s.entries...)
	}
	blk, err := s.eval(top, b)
	if err != nil {
		return bundle.Bundle{}, 0, err
	}

	n := blk.n
	if want := s.opts.replicates; want > 0 && want != n {
		if n == 0 {
			return bundle.Bundle{}, 0, errors.LengthMismatch("replicates", map[string]int{
				"natural": 0, "replicates": want,
			})
		}
		for i, col := range blk.cols {
			blk.cols[i] = bundle.Cycle(col, want)
		}
		n = want
	}

	expanded := make(map[string]bundle.Seq, len(blk.names))
	for i, name := range blk.names {
		expanded[name] = blk.cols[i]
	}

	kvs := make([]any, 0, 2*b.Len())
	for _, k := range b.Keys() {
		var v any
		if col, ok := expanded[k]; ok {
			v = col
		} else if s.opts.broadcastOutOfSpec {
			if v, err = cycleTo(k, b.Value(k), n); err != nil {
				return bundle.Bundle{}, 0, err
			}
		} else {
			v = b.Value(k)
		}
		kvs = append(kvs, k, v)
	}
	return bundle.New(kvs...), n, nil
}

func (s Spec) eval(e Entry, b bundle.Bundle) (block, error) {
	if e.kind == KindAtom {
		v, ok := b.Get(e.name)
		if !ok {
			return block{}, errors.UnknownParameter(e.name)
		}
		if seq, ok := v.(bundle.Seq); ok {
			return block{n: len(seq), names: []string{e.name}, cols: []bundle.Seq{seq}}, nil
		}
		return block{n: 1, free: true, names: []string{e.name}, cols: []bundle.Seq{{v}}}, nil
	}

	children := make([]block, len(e.children))
	for i, c := range e.children {
		blk, err := s.eval(c, b)
		if err != nil {
			return block{}, err
		}
		children[i] = blk
	}
	if e.kind == KindProduct {
		return product(children), nil
	}
	return s.lockstep(e, children)
}

// product crosses blocks in row-major order: the first block varies slowest.
func product(blocks []block) block {
	out := block{n: 1, free: true}
	for _, b := range blocks {
		out.n *= b.n
		out.free = out.free && b.free
	}

	stride := out.n
	for _, b := range blocks {
		if b.n > 0 {
			stride /= b.n
		}
		for j, col := range b.cols {
			expanded := make(bundle.Seq, out.n)
			for i := range expanded {
				expanded[i] = col[(i/stride)%b.n]
			}
			out.names = append(out.names, b.names[j])
			out.cols = append(out.cols, expanded)
		}
	}
	return out
}

// lockstep aligns blocks index for index, reconciling unequal lengths by
// the spec's weave type.
func (s Spec) lockstep(e Entry, blocks []block) (block, error) {
	lo, hi := -1, -1
	for _, b := range blocks {
		if b.free {
			continue
		}
		if lo < 0 || b.n < lo {
			lo = b.n
		}
		if b.n > hi {
			hi = b.n
		}
	}

	out := block{}
	switch {
	case lo < 0:
		out.n, out.free = 1, true
	case lo == hi:
		out.n = lo
	case s.opts.weave == Minimal:
		out.n = lo
	case s.opts.weave == Maximal && lo > 0:
		out.n = hi
	default:
		lengths := make(map[string]int)
		for i, b := range blocks {
			if !b.free {
				lengths[e.children[i].String()] = b.n
			}
		}
		return block{}, errors.LengthMismatch(e.String(), lengths)
	}

	for _, b := range blocks {
		for j, col := range b.cols {
			if len(col) > out.n {
				col = bundle.Truncate(col, out.n)
			} else if len(col) < out.n {
				col = bundle.Cycle(col, out.n)
			}
			out.names = append(out.names, b.names[j])
			out.cols = append(out.cols, col)
		}
	}
	return out, nil
}

// cycleTo expands one value to n elements. An empty sequence cannot fill a
// positive length.
func cycleTo(name string, v any, n int) (bundle.Seq, error) {
	if seq, ok := v.(bundle.Seq); ok && len(seq) == 0 && n > 0 {
		return nil, errors.LengthMismatch(name, map[string]int{name: 0, "replicates": n})
	}
	return bundle.Cycle(v, n), nil
}

// MaxLen returns the longest value length in b, scalars counting as 1.
// An empty bundle has length 0.
func MaxLen(b bundle.Bundle) int {
	n := 0
	b.Range(func(_ string, v any) bool {
		n = max(n, bundle.Len(v))
		return true
	})
	return n
}
