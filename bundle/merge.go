package bundle

import (
	"fmt"
	"strings"
)

// Merge returns base overlaid with over. Values from over win; keys keep
// base order followed by the keys new in over.
func Merge(base, over Bundle) Bundle {
	c := base.clone(over.Len())
	for _, k := range over.keys {
		c.set(k, over.vals[k])
	}
	return c
}

// MergeAll merges bundles left to right, later bundles winning.
func MergeAll(bundles ...Bundle) Bundle {
	var out Bundle
	for _, b := range bundles {
		out = Merge(out, b)
	}
	return out
}

// MergePolicy decides which side wins when outer parameters and an inner
// result share a key.
type MergePolicy int

const (
	// PreferOuter keeps the outer value on collision.
	PreferOuter MergePolicy = iota
	// PreferInner keeps the inner value on collision.
	PreferInner
)

// Merge combines the outer parameters with an inner result under the policy.
// Outer keys come first in both cases.
func (p MergePolicy) Merge(outer, inner Bundle) Bundle {
	if p == PreferInner {
		return Merge(outer, inner)
	}
	return Merge(outer, inner.Without(outer.keys...))
}

func (p MergePolicy) String() string {
	if p == PreferInner {
		return "prefer_inner"
	}
	return "prefer_outer"
}

// MergeType decides key handling when records have different key sets.
type MergeType int

const (
	// Union keeps a key present in any record.
	Union MergeType = iota
	// Intersection keeps only keys present in every record.
	Intersection
)

func (m MergeType) String() string {
	if m == Intersection {
		return "intersection"
	}
	return "union"
}

// ParseMergeType parses "union" or "intersection". Empty means Union.
func ParseMergeType(s string) (MergeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "union":
		return Union, nil
	case "intersection":
		return Intersection, nil
	default:
		return Union, fmt.Errorf("bundle: unknown merge type %q", s)
	}
}
