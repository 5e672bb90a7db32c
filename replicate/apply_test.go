package replicate

import (
	"reflect"
	"testing"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
)

func fixture() bundle.Bundle {
	return bundle.New(
		"a", seq(1, 2, 3),
		"b", seq(4, 5, 6),
		"c", seq(7, 8, 9),
		"d", seq(10, 11, 12),
	)
}

func TestApplyMaximal(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want bundle.Bundle
	}{
		{
			name: "out of spec untouched",
			want: bundle.New(
				"a", seq(1, 1, 1, 2, 2, 2, 3, 3, 3),
				"b", seq(4, 5, 6, 4, 5, 6, 4, 5, 6),
				"c", seq(7, 8, 9),
				"d", seq(10, 11, 12),
			),
		},
		{
			name: "broadcast out of spec",
			opts: []Option{WithBroadcastOutOfSpec(true)},
			want: bundle.New(
				"a", seq(1, 1, 1, 2, 2, 2, 3, 3, 3),
				"b", seq(4, 5, 6, 4, 5, 6, 4, 5, 6),
				"c", seq(7, 8, 9, 7, 8, 9, 7, 8, 9),
				"d", seq(10, 11, 12, 10, 11, 12, 10, 11, 12),
			),
		},
		{
			name: "forced replicates",
			opts: []Option{WithBroadcastOutOfSpec(true), WithReplicates(12)},
			want: bundle.New(
				"a", seq(1, 1, 1, 2, 2, 2, 3, 3, 3, 1, 1, 1),
				"b", seq(4, 5, 6, 4, 5, 6, 4, 5, 6, 4, 5, 6),
				"c", seq(7, 8, 9, 7, 8, 9, 7, 8, 9, 7, 8, 9),
				"d", seq(10, 11, 12, 10, 11, 12, 10, 11, 12, 10, 11, 12),
			),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Replicate(fixture(), Names("a", "b"), tc.opts...)
			if err != nil {
				t.Fatalf("Replicate: %v", err)
			}
			assertBundle(t, got, tc.want)
		})
	}
}

func TestApplyMinimalProductZip(t *testing.T) {
	params := bundle.New("a", seq(0, 1, 2), "b", seq(3, 4), "c", seq(2, 5))
	got, err := Replicate(params,
		[]Entry{Product(Atom("a"), Atom("b")), Atom("c")},
		WithWeave(Minimal))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	assertBundle(t, got, bundle.New("a", seq(0, 0), "b", seq(3, 4), "c", seq(2, 5)))
}

func TestApplyStrictBound(t *testing.T) {
	params := bundle.New("a", seq(0, 1, 2), "b", seq(3, 4), "c", seq(2, 5))
	got, err := Replicate(params,
		[]Entry{Atom("a"), BoundNames("b", "c")},
		WithWeave(Strict), WithBroadcastOutOfSpec(true))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	assertBundle(t, got, bundle.New(
		"a", seq(0, 0, 1, 1, 2, 2),
		"b", seq(3, 4, 3, 4, 3, 4),
		"c", seq(2, 5, 2, 5, 2, 5),
	))
}

func TestApplyStrictMixed(t *testing.T) {
	params := bundle.New(
		"a", seq(0, 1, 2),
		"b", seq(3, 4), "c", seq(2, 5),
		"d", "fish",
		"e", seq(7, 8, 9), "f", bundle.SeqOf("x", "y", "z"),
	)
	got, n, err := MustSpec(
		[]Entry{Atom("a"), BoundNames("b", "c"), Atom("d"), BoundNames("e", "f")},
		WithWeave(Strict),
	).Expand(params)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if n != 18 {
		t.Fatalf("L = %d, want 18", n)
	}
	e, _ := bundle.Values[int](got.Value("e"))
	f, _ := bundle.Values[string](got.Value("f"))
	d, _ := bundle.Values[string](got.Value("d"))
	a, _ := bundle.Values[int](got.Value("a"))
	for i := 0; i < n; i++ {
		if d[i] != "fish" {
			t.Errorf("d[%d] = %q", i, d[i])
		}
		if want := (i / 6) % 3; a[i] != want {
			t.Errorf("a[%d] = %d, want %d", i, a[i], want)
		}
		if e[i] != 7+i%3 || f[i] != []string{"x", "y", "z"}[i%3] {
			t.Errorf("bound pair broken at %d: e=%d f=%s", i, e[i], f[i])
		}
	}
}

func TestApplyProductBroadcast(t *testing.T) {
	params := bundle.New("a", seq(0, 1, 2), "b", seq(3, 4), "c", seq(2, 5), "x", "out")
	got, n, err := MustSpec(
		[]Entry{Product(Atom("a"), Atom("b"), Atom("c"))},
		WithBroadcastOutOfSpec(true),
	).Expand(params)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if n != 12 {
		t.Fatalf("L = %d, want 12", n)
	}
	got.Range(func(k string, v any) bool {
		if bundle.Len(v) != 12 {
			t.Errorf("%s has length %d", k, bundle.Len(v))
		}
		return true
	})
}

func TestBoundLengthReconciliation(t *testing.T) {
	params := bundle.New("b", seq(1, 2, 3), "c", seq(7, 8))
	entries := []Entry{BoundNames("b", "c")}

	t.Run("maximal extends cyclically", func(t *testing.T) {
		got, err := Replicate(params, entries, WithWeave(Maximal))
		if err != nil {
			t.Fatalf("Replicate: %v", err)
		}
		assertBundle(t, got, bundle.New("b", seq(1, 2, 3), "c", seq(7, 8, 7)))
	})

	t.Run("minimal truncates", func(t *testing.T) {
		got, err := Replicate(params, entries, WithWeave(Minimal))
		if err != nil {
			t.Fatalf("Replicate: %v", err)
		}
		assertBundle(t, got, bundle.New("b", seq(1, 2), "c", seq(7, 8)))
	})

	t.Run("strict fails", func(t *testing.T) {
		_, err := Replicate(params, entries, WithWeave(Strict))
		if !errors.IsCode(err, errors.ErrCodeLengthMismatch) {
			t.Fatalf("expected LENGTH_MISMATCH, got %v", err)
		}
		if want := "LENGTH_MISMATCH: length mismatch in (b, c): b=3, c=2"; err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("maximal cannot extend an empty member", func(t *testing.T) {
		_, err := Replicate(bundle.New("b", seq(1), "c", bundle.Seq{}), entries)
		if !errors.IsCode(err, errors.ErrCodeLengthMismatch) {
			t.Fatalf("expected LENGTH_MISMATCH, got %v", err)
		}
	})
}

func TestScalarsBroadcast(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		weave   WeaveType
		want    bundle.Bundle
	}{
		{
			name:    "maximal",
			entries: Names("a", "s"),
			weave:   Maximal,
			want:    bundle.New("a", seq(1, 2), "s", bundle.SeqOf("k", "k")),
		},
		{
			name:    "minimal",
			entries: Names("a", "s"),
			weave:   Minimal,
			want:    bundle.New("a", seq(1, 2), "s", bundle.SeqOf("k", "k")),
		},
		{
			name:    "strict bound",
			entries: []Entry{BoundNames("a", "s")},
			weave:   Strict,
			want:    bundle.New("a", seq(1, 2), "s", bundle.SeqOf("k", "k")),
		},
		{
			name:    "only scalars",
			entries: Names("s"),
			weave:   Strict,
			want:    bundle.New("a", seq(1, 2), "s", bundle.SeqOf("k")),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Replicate(bundle.New("a", seq(1, 2), "s", "k"), tc.entries, WithWeave(tc.weave))
			if err != nil {
				t.Fatalf("Replicate: %v", err)
			}
			assertBundle(t, got, tc.want)
		})
	}
}

func TestTypedSlicesAreScalars(t *testing.T) {
	vec := []float64{0.1, 0.2}
	got, err := Replicate(bundle.New("a", seq(1, 2, 3), "v", vec), Names("a", "v"))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	want := bundle.Seq{vec, vec, vec}
	if !reflect.DeepEqual(got.Value("v"), want) {
		t.Errorf("v = %v, want %v", got.Value("v"), want)
	}
}

func TestEmptySpec(t *testing.T) {
	params := bundle.New("a", seq(1, 2, 3), "x", "s", "b", seq(4, 5))

	t.Run("no broadcast is a no-op", func(t *testing.T) {
		got, n, err := MustSpec(nil).Expand(params)
		if err != nil {
			t.Fatalf("Expand: %v", err)
		}
		assertBundle(t, got, params)
		if n != 3 {
			t.Errorf("L = %d", n)
		}
	})

	t.Run("broadcast to longest", func(t *testing.T) {
		got, err := MustSpec(nil, WithWeave(Strict), WithBroadcastOutOfSpec(true)).Apply(params)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		assertBundle(t, got, bundle.New("a", seq(1, 2, 3), "x", bundle.SeqOf("s", "s", "s"), "b", seq(4, 5, 4)))
	})

	t.Run("broadcast to forced count", func(t *testing.T) {
		got, err := MustSpec(nil, WithBroadcastOutOfSpec(true), WithReplicates(4)).Apply(params)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		assertBundle(t, got, bundle.New("a", seq(1, 2, 3, 1), "x", bundle.SeqOf("s", "s", "s", "s"), "b", seq(4, 5, 4, 5)))
	})

	t.Run("empty bundle", func(t *testing.T) {
		got, err := MustSpec(nil, WithBroadcastOutOfSpec(true)).Apply(bundle.New())
		if err != nil || got.Len() != 0 {
			t.Errorf("got %v, %v", got, err)
		}
	})
}

func TestEmptySequences(t *testing.T) {
	params := bundle.New("a", bundle.Seq{}, "b", seq(1, 2), "x", 3)

	got, n, err := MustSpec(Names("a", "b")).Expand(params)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if n != 0 || bundle.Len(got.Value("a")) != 0 || bundle.Len(got.Value("b")) != 0 {
		t.Errorf("expected empty result, got %v (L=%d)", got, n)
	}

	_, err = MustSpec(Names("a", "b"), WithReplicates(2)).Apply(params)
	if !errors.IsCode(err, errors.ErrCodeLengthMismatch) {
		t.Errorf("forcing replicates over an empty result: %v", err)
	}

	got, err = MustSpec(Names("a"), WithBroadcastOutOfSpec(true)).Apply(params)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if bundle.Len(got.Value("x")) != 0 {
		t.Errorf("x should broadcast to length 0, got %v", got.Value("x"))
	}

	_, err = MustSpec(Names("x"), WithBroadcastOutOfSpec(true)).Apply(params)
	if !errors.IsCode(err, errors.ErrCodeLengthMismatch) {
		t.Errorf("empty out-of-spec value cannot fill length 1: %v", err)
	}
}

func TestUnknownParameter(t *testing.T) {
	_, err := Replicate(fixture(), []Entry{Atom("a"), BoundNames("b", "zz")})
	if !errors.IsCode(err, errors.ErrCodeUnknownParameter) {
		t.Fatalf("expected UNKNOWN_PARAMETER, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["parameter"] != "zz" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestKeyOrderPreserved(t *testing.T) {
	params := bundle.New("z", seq(1, 2), "m", 0, "a", seq(3, 4))
	got, err := Replicate(params, Names("a", "z"), WithBroadcastOutOfSpec(true))
	if err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"z", "m", "a"}) {
		t.Errorf("keys = %v", keys)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	params := fixture()
	before := params.String()
	if _, err := Replicate(params, Names("a", "b"), WithReplicates(5), WithBroadcastOutOfSpec(true)); err != nil {
		t.Fatalf("Replicate: %v", err)
	}
	if params.String() != before {
		t.Errorf("input changed: %v", params)
	}
}

// Value at index i of atom j is atom_j[(i / stride_j) % n_j], stride_j being
// the product of the lengths after j.
func TestMaximalStrideProperty(t *testing.T) {
	lengths := []int{2, 3, 4}
	names := []string{"p", "q", "r"}
	kvs := []any{}
	for j, n := range lengths {
		vals := make(bundle.Seq, n)
		for i := range vals {
			vals[i] = 100*j + i
		}
		kvs = append(kvs, names[j], vals)
	}
	params := bundle.New(kvs...)

	got, n, err := MustSpec(Names(names...)).Expand(params)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if n != 24 {
		t.Fatalf("L = %d, want 24", n)
	}
	for j, name := range names {
		stride := 1
		for _, l := range lengths[j+1:] {
			stride *= l
		}
		col := got.Value(name).(bundle.Seq)
		orig := params.Value(name).(bundle.Seq)
		for i := 0; i < n; i++ {
			if want := orig[(i/stride)%lengths[j]]; col[i] != want {
				t.Fatalf("%s[%d] = %v, want %v", name, i, col[i], want)
			}
		}
	}
}

func TestMinimalNeverExceedsShortest(t *testing.T) {
	params := bundle.New("a", seq(1, 2, 3, 4), "b", seq(5, 6), "c", seq(7, 8, 9))
	got, n, err := MustSpec(Names("a", "b", "c"), WithWeave(Minimal)).Expand(params)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if n != 2 {
		t.Fatalf("L = %d", n)
	}
	assertBundle(t, got, bundle.New("a", seq(1, 2), "b", seq(5, 6), "c", seq(7, 8)))
}

func TestMaxLen(t *testing.T) {
	if MaxLen(bundle.New()) != 0 {
		t.Error("empty bundle has length 0")
	}
	if MaxLen(bundle.New("a", 1, "b", seq(1, 2, 3))) != 3 {
		t.Error("expected 3")
	}
}

// --- helpers ---

func seq(xs ...int) bundle.Seq { return bundle.SeqOf(xs...) }

func assertBundle(t *testing.T, got, want bundle.Bundle) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("got  %v\nwant %v", got, want)
	}
}
