// Package replicate expands named values into equal-length, index-aligned
// sequences according to a declarative Spec.
//
// A Spec lists entries: an Atom names one parameter, a Bound group makes its
// members vary in lockstep, and a Product group crosses its members. The
// WeaveType decides how top-level entries combine:
//
//   - Maximal: cartesian product, first entry slowest. Unequal lengths in a
//     bound group are extended cyclically to the longest.
//   - Minimal: top-level entries are zipped and truncated to the shortest.
//     Bound groups truncate as well.
//   - Strict: cartesian like Maximal, but bound members must already have
//     equal lengths.
//
// Scalars never constrain a length; they broadcast wherever they appear.
//
//	spec := replicate.MustSpec([]replicate.Entry{
//	    replicate.Atom("a"),
//	    replicate.Bound(replicate.Atom("b"), replicate.Atom("c")),
//	}, replicate.WithWeave(replicate.Strict))
//	out, err := spec.Apply(params)
//
// Specs can also be declared in YAML, see ParseSpec and LoadSpecFile.
package replicate
