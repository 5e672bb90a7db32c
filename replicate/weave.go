package replicate

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// WeaveType is the combination policy of a Spec.
type WeaveType int

const (
	// Maximal crosses top-level entries and extends bound groups cyclically.
	Maximal WeaveType = iota
	// Minimal zips top-level entries and truncates to the shortest.
	Minimal
	// Strict crosses top-level entries and requires equal bound lengths.
	Strict
)

var weaveNames = [...]string{"maximal", "minimal", "strict"}

func (w WeaveType) String() string {
	if w < 0 || int(w) >= len(weaveNames) {
		return fmt.Sprintf("WeaveType(%d)", int(w))
	}
	return weaveNames[w]
}

// Valid reports whether w is one of the defined weave types.
func (w WeaveType) Valid() bool {
	return w >= 0 && int(w) < len(weaveNames)
}

// ParseWeaveType parses a weave name. Empty means Maximal.
func ParseWeaveType(s string) (WeaveType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Maximal, nil
	}
	for i, n := range weaveNames {
		if n == s {
			return WeaveType(i), nil
		}
	}
	return Maximal, fmt.Errorf("replicate: unknown weave type %q", s)
}

// MarshalYAML encodes the weave type by name.
func (w WeaveType) MarshalYAML() (any, error) {
	return w.String(), nil
}

// UnmarshalYAML decodes a weave name.
func (w *WeaveType) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseWeaveType(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
