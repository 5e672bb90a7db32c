package compose

import (
	"context"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
)

// Signature declares the parameters a callable accepts. A nil Params list
// accepts every name; a non-nil list restricts the callable to the listed
// names, filling gaps from Defaults. In Strict mode an undeclared name is an
// error instead of being dropped.
type Signature struct {
	Params   []string      `yaml:"params" validate:"unique,dive,identifier"`
	Defaults bundle.Bundle `yaml:"-"`
	Strict   bool          `yaml:"strict"`
}

// Accepts reports whether name is a declared parameter.
func (s Signature) Accepts(name string) bool {
	if s.Params == nil {
		return true
	}
	for _, p := range s.Params {
		if p == name {
			return true
		}
	}
	return false
}

// Bind splits params into the accepted parameters, with defaults filled in,
// and the undeclared extras.
func (s Signature) Bind(params bundle.Bundle) (accepted, extra bundle.Bundle, err error) {
	if s.Params == nil {
		return bundle.Merge(s.Defaults, params), bundle.Bundle{}, nil
	}
	accepted = params.Pick(s.Params...)
	extra = params.Without(s.Params...)
	if s.Strict && extra.Len() > 0 {
		return bundle.Bundle{}, bundle.Bundle{}, errors.UnknownParameter(extra.Keys()[0])
	}
	for _, p := range s.Params {
		if accepted.Has(p) {
			continue
		}
		v, ok := s.Defaults.Get(p)
		if !ok {
			return bundle.Bundle{}, bundle.Bundle{}, errors.MissingField(p)
		}
		accepted = accepted.With(p, v)
	}
	return accepted, extra, nil
}

// Sanitize filters every call to f through sig.
func Sanitize(sig Signature, f Func) Func {
	return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
		accepted, _, err := sig.Bind(params)
		if err != nil {
			return bundle.Bundle{}, err
		}
		return f(ctx, accepted)
	}
}
