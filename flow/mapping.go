package flow

import (
	"github.com/kbukum/weave/compose"
)

// IMappingComposition binds an input-mapping compositor into t. The
// compositor supplied by t's caller is ignored.
func IMappingComposition(t Transform, cfg compose.IMappingConfig) (Transform, error) {
	c, err := compose.IMapping(cfg)
	if err != nil {
		return nil, err
	}
	return WithCompositor(t, c), nil
}

// OMappingComposition binds an output-mapping compositor into t. The
// compositor supplied by t's caller is ignored.
func OMappingComposition(t Transform, cfg compose.OMappingConfig) (Transform, error) {
	c, err := compose.OMapping(cfg)
	if err != nil {
		return nil, err
	}
	return WithCompositor(t, c), nil
}

// WithCompositor returns t with its compositor fixed to c.
func WithCompositor(t Transform, c compose.Compositor) Transform {
	return func(f compose.Func, _ compose.Compositor) compose.Func {
		return t.Apply(f, c)
	}
}
