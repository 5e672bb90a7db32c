package compose

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/weave/bundle"
)

// memoTable caches inner results for one compositor invocation. Keys are
// content fingerprints, so two slices hit the same entry exactly when their
// names and values are equal.
type memoTable struct {
	id      uuid.UUID
	results map[bundle.Digest]bundle.Bundle
	hits    int
	misses  int
}

func newMemoTable() *memoTable {
	return &memoTable{
		id:      uuid.New(),
		results: make(map[bundle.Digest]bundle.Bundle),
	}
}

// call returns the cached result for params or computes it. Failures are
// not cached.
func (m *memoTable) call(ctx context.Context, f Func, params bundle.Bundle) (bundle.Bundle, error) {
	key := bundle.Fingerprint(params)
	if res, ok := m.results[key]; ok {
		m.hits++
		return res, nil
	}
	res, err := f(ctx, params)
	if err != nil {
		return bundle.Bundle{}, err
	}
	m.misses++
	m.results[key] = res
	return res, nil
}
