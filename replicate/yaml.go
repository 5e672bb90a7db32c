package replicate

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/validation"
)

// Document is the YAML form of a Spec:
//
//	entries: [a, {bound: [b, c]}, [x, y]]
//	weave: strict
//	replicates: 0
//	max_aggregation_depth: 0
//	broadcast_out_of_spec: false
//
// A string entry is an atom, a list is a product group, and a single-key
// mapping {bound: [...]} or {product: [...]} is an explicit group.
type Document struct {
	Entries             []Entry   `yaml:"entries"`
	Weave               WeaveType `yaml:"weave"`
	Replicates          int       `yaml:"replicates" validate:"gte=0"`
	MaxAggregationDepth int       `yaml:"max_aggregation_depth" validate:"gte=0"`
	BroadcastOutOfSpec  bool      `yaml:"broadcast_out_of_spec"`
}

// Spec builds the spec the document describes.
func (d Document) Spec() (Spec, error) {
	if err := validation.Validate(d); err != nil {
		return Spec{}, err
	}
	return NewSpec(d.Entries,
		WithWeave(d.Weave),
		WithReplicates(d.Replicates),
		WithMaxAggregationDepth(d.MaxAggregationDepth),
		WithBroadcastOutOfSpec(d.BroadcastOutOfSpec),
	)
}

// Document returns the YAML form of the spec.
func (s Spec) Document() Document {
	return Document{
		Entries:             s.Entries(),
		Weave:               s.opts.weave,
		Replicates:          s.opts.replicates,
		MaxAggregationDepth: s.opts.maxDepth,
		BroadcastOutOfSpec:  s.opts.broadcastOutOfSpec,
	}
}

// MarshalYAML encodes the spec as a Document.
func (s Spec) MarshalYAML() (any, error) {
	return s.Document(), nil
}

// UnmarshalYAML decodes and validates a Document.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	var d Document
	if err := node.Decode(&d); err != nil {
		return err
	}
	spec, err := d.Spec()
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// ParseSpec decodes a spec from YAML.
func ParseSpec(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return Spec{}, err
		}
		return Spec{}, errors.InvalidInput("spec", err.Error()).WithCause(err)
	}
	return s, nil
}

// LoadSpecFile reads a YAML spec from disk.
func LoadSpecFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("replicate: reading %s: %w", path, err)
	}
	s, err := ParseSpec(data)
	if err != nil {
		return Spec{}, fmt.Errorf("replicate: parsing %s: %w", path, err)
	}
	return s, nil
}

// MarshalYAML encodes atoms as strings, products as lists and bound groups
// as {bound: [...]}.
func (e Entry) MarshalYAML() (any, error) {
	switch e.kind {
	case KindAtom:
		return e.name, nil
	case KindBound:
		return map[string][]Entry{"bound": e.children}, nil
	default:
		return e.children, nil
	}
}

// UnmarshalYAML decodes the entry syntax described on Document.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseEntry(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = parsed
	return nil
}

// ParseEntries converts generically decoded values (from YAML, JSON or a
// config map) into entries.
func ParseEntries(raw []any) ([]Entry, error) {
	out := make([]Entry, 0, len(raw))
	for i, r := range raw {
		e, err := ParseEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseEntry converts one generically decoded value into an entry.
func ParseEntry(raw any) (Entry, error) {
	switch v := raw.(type) {
	case string:
		return Atom(v), nil
	case []any:
		children, err := ParseEntries(v)
		if err != nil {
			return Entry{}, err
		}
		return Product(children...), nil
	case map[string]any:
		return parseGroup(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return parseGroup(m)
	default:
		return Entry{}, errors.InvalidInput("entries", fmt.Sprintf("unsupported entry %v (%T)", raw, raw))
	}
}

func parseGroup(m map[string]any) (Entry, error) {
	if len(m) != 1 {
		return Entry{}, errors.InvalidInput("entries", "a group must have exactly one key, bound or product")
	}
	var (
		kind string
		body any
	)
	for k, v := range m {
		kind, body = k, v
	}
	members, ok := body.([]any)
	if !ok {
		return Entry{}, errors.InvalidInput("entries", fmt.Sprintf("%s group must be a list, got %T", kind, body))
	}
	children, err := ParseEntries(members)
	if err != nil {
		return Entry{}, err
	}
	switch kind {
	case "bound":
		return Bound(children...), nil
	case "product":
		return Product(children...), nil
	default:
		return Entry{}, errors.InvalidInput("entries", fmt.Sprintf("unknown group %q", kind))
	}
}
