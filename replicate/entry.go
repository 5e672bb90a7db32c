package replicate

import (
	"strings"
)

// Kind identifies the variant of an Entry.
type Kind int

const (
	KindAtom Kind = iota
	KindBound
	KindProduct
)

func (k Kind) String() string {
	switch k {
	case KindBound:
		return "bound"
	case KindProduct:
		return "product"
	default:
		return "atom"
	}
}

// Entry is one element of a Spec: an atom naming a parameter, or a bound or
// product group of entries. Entries are immutable and built only through
// Atom, Bound and Product.
type Entry struct {
	kind     Kind
	name     string
	children []Entry
}

// Atom references the parameter called name.
func Atom(name string) Entry {
	return Entry{kind: KindAtom, name: name}
}

// Bound groups entries that vary together, index for index.
func Bound(children ...Entry) Entry {
	return Entry{kind: KindBound, children: append([]Entry(nil), children...)}
}

// Product groups entries into a nested cartesian product, first slowest.
func Product(children ...Entry) Entry {
	return Entry{kind: KindProduct, children: append([]Entry(nil), children...)}
}

// Names returns one atom per name.
func Names(names ...string) []Entry {
	out := make([]Entry, len(names))
	for i, n := range names {
		out[i] = Atom(n)
	}
	return out
}

// BoundNames is shorthand for a bound group of atoms.
func BoundNames(names ...string) Entry {
	return Bound(Names(names...)...)
}

// Kind returns the entry variant.
func (e Entry) Kind() Kind { return e.kind }

// Name returns the parameter name of an atom, or "".
func (e Entry) Name() string { return e.name }

// Children returns the members of a group.
func (e Entry) Children() []Entry {
	return append([]Entry(nil), e.children...)
}

// Names returns every parameter name referenced by the entry, depth first.
func (e Entry) Names() []string {
	if e.kind == KindAtom {
		return []string{e.name}
	}
	var out []string
	for _, c := range e.children {
		out = append(out, c.Names()...)
	}
	return out
}

// depth counts the cartesian factors the entry contributes.
func (e Entry) depth() int {
	switch e.kind {
	case KindProduct:
		d := 0
		for _, c := range e.children {
			d += c.depth()
		}
		return d
	case KindBound:
		d := 0
		for _, c := range e.children {
			d = max(d, c.depth())
		}
		return d
	default:
		return 1
	}
}

// String renders atoms as names, products as [..] and bound groups as (..).
func (e Entry) String() string {
	switch e.kind {
	case KindAtom:
		return e.name
	case KindBound:
		return "(" + joinEntries(e.children) + ")"
	default:
		return "[" + joinEntries(e.children) + "]"
	}
}

func joinEntries(es []Entry) string {
	parts := make([]string, len(es))
	for i, c := range es {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
