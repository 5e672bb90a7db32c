package compose

import (
	"context"
	"fmt"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/validation"
)

// PrimitiveFunc is a plain function wrapped by a Primitive. Its result is
// structured into a bundle according to the declared outputs.
type PrimitiveFunc func(ctx context.Context, params bundle.Bundle) (any, error)

// PrimitiveConfig declares a Primitive.
type PrimitiveConfig struct {
	Name      string    `validate:"required,identifier"`
	Signature Signature `validate:"-"`
	// Outputs names the results. Nil means Fn returns a Bundle itself; an
	// empty list discards the result; one name wraps the result; n names
	// zip a Seq of n values.
	Outputs []string `validate:"omitempty,unique,dive,identifier"`
	// ForwardUnused copies undeclared input parameters into the result.
	ForwardUnused bool
	Fn            PrimitiveFunc `validate:"required"`
}

// Primitive turns a plain function into a Callable with a declared
// signature and named outputs.
type Primitive struct {
	cfg PrimitiveConfig
}

// NewPrimitive validates cfg and builds the primitive.
func NewPrimitive(cfg PrimitiveConfig) (*Primitive, error) {
	if err := validation.Validate(cfg); err != nil {
		return nil, err
	}
	if err := validation.Validate(cfg.Signature); err != nil {
		return nil, err
	}
	cfg.Outputs = cloneOutputs(cfg.Outputs)
	return &Primitive{cfg: cfg}, nil
}

// MustPrimitive is like NewPrimitive but panics on error.
func MustPrimitive(cfg PrimitiveConfig) *Primitive {
	p, err := NewPrimitive(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Call binds params to the signature, runs the function and structures its
// result.
func (p *Primitive) Call(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
	accepted, extra, err := p.cfg.Signature.Bind(params)
	if err != nil {
		return bundle.Bundle{}, err
	}
	raw, err := p.cfg.Fn(ctx, accepted)
	if err != nil {
		return bundle.Bundle{}, err
	}
	out, err := p.structure(raw)
	if err != nil {
		return bundle.Bundle{}, err
	}
	if p.cfg.ForwardUnused {
		return bundle.Merge(extra, out), nil
	}
	return out, nil
}

func (p *Primitive) structure(raw any) (bundle.Bundle, error) {
	outputs := p.cfg.Outputs
	switch {
	case outputs == nil:
		switch v := raw.(type) {
		case bundle.Bundle:
			return v, nil
		case map[string]any:
			return bundle.FromMap(v), nil
		default:
			return bundle.Bundle{}, errors.UnsupportedResultShape(p.String(),
				fmt.Sprintf("no outputs declared, so the result must be a Bundle, got %T", raw))
		}
	case len(outputs) == 0:
		return bundle.New(), nil
	case len(outputs) == 1:
		return bundle.New(outputs[0], raw), nil
	}

	var values []any
	switch v := raw.(type) {
	case bundle.Seq:
		values = v
	case []any:
		values = v
	default:
		return bundle.Bundle{}, errors.UnsupportedResultShape(p.String(),
			fmt.Sprintf("%d outputs declared, so the result must be a Seq, got %T", len(outputs), raw))
	}
	if len(values) != len(outputs) {
		return bundle.Bundle{}, errors.UnsupportedResultShape(p.String(),
			fmt.Sprintf("%d outputs declared, got %d values", len(outputs), len(values)))
	}
	kvs := make([]any, 0, 2*len(outputs))
	for i, name := range outputs {
		kvs = append(kvs, name, values[i])
	}
	return bundle.New(kvs...), nil
}

// Name returns the primitive's name.
func (p *Primitive) Name() string { return p.cfg.Name }

// Signature returns the declared signature.
func (p *Primitive) Signature() Signature { return p.cfg.Signature }

// Outputs returns the declared output names.
func (p *Primitive) Outputs() []string { return cloneOutputs(p.cfg.Outputs) }

func (p *Primitive) String() string {
	return fmt.Sprintf("Primitive(%s)", p.cfg.Name)
}

// cloneOutputs copies outputs keeping the nil versus empty distinction.
func cloneOutputs(outputs []string) []string {
	if outputs == nil {
		return nil
	}
	return append([]string{}, outputs...)
}
