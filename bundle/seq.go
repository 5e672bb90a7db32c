package bundle

import "fmt"

// Seq is the only list-like value type. Any other value, including typed
// slices and strings, is a scalar.
type Seq []any

// SeqOf builds a Seq from typed values.
func SeqOf[T any](xs ...T) Seq {
	s := make(Seq, len(xs))
	for i, x := range xs {
		s[i] = x
	}
	return s
}

// Values converts a Seq back into a typed slice.
func Values[T any](v any) ([]T, error) {
	s, ok := v.(Seq)
	if !ok {
		return nil, fmt.Errorf("bundle: expected Seq, got %T", v)
	}
	out := make([]T, len(s))
	for i, x := range s {
		t, ok := x.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("bundle: element %d: expected %T, got %T", i, zero, x)
		}
		out[i] = t
	}
	return out, nil
}

// IsSeq reports whether v is a Seq.
func IsSeq(v any) bool {
	_, ok := v.(Seq)
	return ok
}

// Len returns the length of a Seq and 1 for a scalar.
func Len(v any) int {
	if s, ok := v.(Seq); ok {
		return len(s)
	}
	return 1
}

// At returns element i mod len of a Seq, or the scalar itself.
// At on an empty Seq returns nil.
func At(v any, i int) any {
	s, ok := v.(Seq)
	if !ok {
		return v
	}
	if len(s) == 0 {
		return nil
	}
	return s[i%len(s)]
}

// Cycle returns a Seq of exactly n elements by cyclic indexing of v.
// A scalar is repeated n times.
func Cycle(v any, n int) Seq {
	out := make(Seq, n)
	for i := range out {
		out[i] = At(v, i)
	}
	return out
}

// Truncate returns the leading n elements of a Seq.
func Truncate(s Seq, n int) Seq {
	if n >= len(s) {
		return s
	}
	out := make(Seq, n)
	copy(out, s[:n])
	return out
}
