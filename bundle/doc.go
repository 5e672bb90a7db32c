// Package bundle defines the named-parameter currency of weave.
//
// A Bundle is an ordered, immutable mapping from name to value. Values are
// either scalars or sequences; only Seq is treated as a sequence, so typed
// slices such as []float64 travel as opaque scalars and are never broadcast
// or flattened.
//
//	b := bundle.New("a", bundle.SeqOf(1, 2, 3), "label", "x")
//	recs, err := bundle.ToRecords(b)      // three records, label copied into each
//	back := bundle.FromRecords(recs, bundle.Union)
//
// The package also provides merge policies for key collisions and Fingerprint,
// the content digest used to memoize calls by parameter values.
package bundle
