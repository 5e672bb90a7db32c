package bundle

import (
	"github.com/kbukum/weave/errors"
)

// ToRecords zips the Seq values of b into one record per position. Scalars
// are copied into every record. All Seq values must share one length; a
// bundle without Seq values yields a single record.
func ToRecords(b Bundle) ([]Bundle, error) {
	n := -1
	lengths := make(map[string]int)
	for _, k := range b.keys {
		s, ok := b.vals[k].(Seq)
		if !ok {
			continue
		}
		lengths[k] = len(s)
		if n < 0 {
			n = len(s)
		} else if len(s) != n {
			n = -2
		}
	}
	if n == -2 {
		return nil, errors.LengthMismatch("records", lengths)
	}
	if n < 0 {
		return []Bundle{b}, nil
	}

	records := make([]Bundle, n)
	for i := range records {
		r := Bundle{keys: b.keys, vals: make(map[string]any, len(b.keys))}
		for _, k := range b.keys {
			v := b.vals[k]
			if s, ok := v.(Seq); ok {
				v = s[i]
			}
			r.vals[k] = v
		}
		records[i] = r
	}
	return records, nil
}

// FromRecords collects one Seq per key across records. With Union a key
// present in any record is kept and absent positions are skipped; with
// Intersection only keys present in every record are kept. A column whose
// elements are all Seq values is flattened one level.
func FromRecords(records []Bundle, mt MergeType) Bundle {
	out := Bundle{vals: make(map[string]any)}
	if len(records) == 0 {
		return out
	}

	var keys []string
	switch mt {
	case Intersection:
		for _, k := range records[0].keys {
			inAll := true
			for _, r := range records[1:] {
				if !r.Has(k) {
					inAll = false
					break
				}
			}
			if inAll {
				keys = append(keys, k)
			}
		}
	default:
		seen := make(map[string]bool)
		for _, r := range records {
			for _, k := range r.keys {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}

	for _, k := range keys {
		col := make(Seq, 0, len(records))
		for _, r := range records {
			if v, ok := r.Get(k); ok {
				col = append(col, v)
			}
		}
		out.set(k, flatten(col))
	}
	return out
}

// flatten concatenates col when every element is a Seq.
func flatten(col Seq) Seq {
	if len(col) == 0 {
		return col
	}
	total := 0
	for _, v := range col {
		s, ok := v.(Seq)
		if !ok {
			return col
		}
		total += len(s)
	}
	flat := make(Seq, 0, total)
	for _, v := range col {
		flat = append(flat, v.(Seq)...)
	}
	return flat
}
