package bundle

import (
	"reflect"
	"testing"

	"github.com/kbukum/weave/errors"
)

func TestToRecords(t *testing.T) {
	b := New("a", SeqOf(1, 2), "label", "x", "b", SeqOf("p", "q"))
	recs, err := ToRecords(b)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	want := []Bundle{
		New("a", 1, "label", "x", "b", "p"),
		New("a", 2, "label", "x", "b", "q"),
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records", len(recs))
	}
	for i := range want {
		if !recs[i].Equal(want[i]) {
			t.Errorf("record %d = %v, want %v", i, recs[i], want[i])
		}
	}
}

func TestToRecordsScalarsOnly(t *testing.T) {
	b := New("v", []float64{1, 2}, "s", "abc")
	recs, err := ToRecords(b)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(recs) != 1 || !recs[0].Equal(b) {
		t.Errorf("records = %v", recs)
	}
}

func TestToRecordsEmptySeq(t *testing.T) {
	recs, err := ToRecords(New("a", Seq{}, "b", 1))
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %v", recs)
	}
}

func TestToRecordsLengthMismatch(t *testing.T) {
	_, err := ToRecords(New("a", SeqOf(1, 2), "b", SeqOf(1, 2, 3)))
	if !errors.IsCode(err, errors.ErrCodeLengthMismatch) {
		t.Fatalf("expected LENGTH_MISMATCH, got %v", err)
	}
	if err.Error() != "LENGTH_MISMATCH: length mismatch in records: a=2, b=3" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFromRecordsUnion(t *testing.T) {
	recs := []Bundle{
		New("a", 1, "b", 2),
		New("c", 3, "a", 4),
		New("b", 5),
	}
	got := FromRecords(recs, Union)
	want := New("a", SeqOf(1, 4), "b", SeqOf(2, 5), "c", SeqOf(3))
	if !got.Equal(want) {
		t.Errorf("FromRecords = %v, want %v", got, want)
	}
}

func TestFromRecordsIntersection(t *testing.T) {
	recs := []Bundle{
		New("a", 1, "b", 2, "c", 0),
		New("c", 3, "a", 4),
		New("a", 5, "c", 6),
	}
	got := FromRecords(recs, Intersection)
	want := New("a", SeqOf(1, 4, 5), "c", SeqOf(0, 3, 6))
	if !got.Equal(want) {
		t.Errorf("FromRecords = %v, want %v", got, want)
	}
}

func TestFromRecordsFlatten(t *testing.T) {
	tests := []struct {
		name string
		recs []Bundle
		want any
	}{
		{
			name: "nested sequences flatten one level",
			recs: []Bundle{New("x", SeqOf(1, 2)), New("x", SeqOf(3))},
			want: SeqOf(1, 2, 3),
		},
		{
			name: "only one level",
			recs: []Bundle{New("x", Seq{SeqOf(1)}), New("x", Seq{SeqOf(2)})},
			want: Seq{SeqOf(1), SeqOf(2)},
		},
		{
			name: "typed slices are scalars",
			recs: []Bundle{New("x", []float64{1, 2}), New("x", []float64{3})},
			want: Seq{[]float64{1, 2}, []float64{3}},
		},
		{
			name: "strings are scalars",
			recs: []Bundle{New("x", "ab"), New("x", "cd")},
			want: SeqOf("ab", "cd"),
		},
		{
			name: "mixed column is not flattened",
			recs: []Bundle{New("x", SeqOf(1)), New("x", 2)},
			want: Seq{SeqOf(1), 2},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromRecords(tc.recs, Union).Value("x")
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("x = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestFromRecordsEmpty(t *testing.T) {
	if got := FromRecords(nil, Union); got.Len() != 0 {
		t.Errorf("expected empty bundle, got %v", got)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	bundles := []Bundle{
		New("a", SeqOf(1, 2, 3), "b", SeqOf("x", "y", "z")),
		New("only", SeqOf(true)),
		New("v", Seq{[]int{1}, []int{2}}, "w", SeqOf(0.5, 1.5)),
	}
	for _, b := range bundles {
		recs, err := ToRecords(b)
		if err != nil {
			t.Fatalf("ToRecords(%v): %v", b, err)
		}
		if got := FromRecords(recs, Union); !got.Equal(b) {
			t.Errorf("round trip = %v, want %v", got, b)
		}
	}
}
