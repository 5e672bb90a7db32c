package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/compose"
	"github.com/kbukum/weave/config"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/flow"
	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
	"github.com/kbukum/weave/replicate"
	"github.com/kbukum/weave/version"
)

// Engine builds configured compositors, splits and stages.
//
// Call Start before use when tracing is enabled, and Stop on shutdown. The
// spec registry is safe for concurrent use; everything else is read-only
// after Start.
type Engine struct {
	id       uuid.UUID
	cfg      config.Config
	defaults defaults
	merge    bundle.MergeType
	specs    *Registry
	log      *logger.Logger
	metrics  *observability.Metrics
	extra    []compose.Middleware
	shutdown observability.ShutdownFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the base logger. By default one is built from the
// logging section of the configuration.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the stage metrics. By default metrics are created on
// Start when tracing and metrics are both enabled.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMiddleware adds middleware run inside the built-in tracing, logging
// and metrics middleware of Instrument.
func WithMiddleware(mws ...compose.Middleware) Option {
	return func(e *Engine) { e.extra = append(e.extra, mws...) }
}

// New validates cfg and builds its named specs.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := parseDefaults(cfg.Defaults)
	if err != nil {
		return nil, errors.InvalidInput("defaults.weave", err.Error())
	}
	merge, err := bundle.ParseMergeType(cfg.Defaults.Merge)
	if err != nil {
		return nil, errors.InvalidInput("defaults.merge", err.Error())
	}

	e := &Engine{
		id:       uuid.New(),
		cfg:      cfg,
		defaults: d,
		merge:    merge,
		specs:    NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.New(&cfg.Logging, cfg.Name)
	}

	names := make([]string, 0, len(cfg.Specs))
	for name := range cfg.Specs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spec, err := buildSpec(name, cfg.Specs[name], d)
		if err != nil {
			return nil, err
		}
		if err := e.specs.Register(name, spec); err != nil {
			return nil, err
		}
	}

	e.component("engine").Debug("engine ready", logger.Fields(
		"engine_id", e.id.String(),
		"version", version.Short(),
		logger.FieldKeys, names,
	))
	return e, nil
}

// Start sets up tracing and, if configured, metrics export.
func (e *Engine) Start(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, e.cfg.Tracing, e.cfg.Name, e.cfg.Environment)
	if err != nil {
		return err
	}
	e.shutdown = shutdown
	if e.metrics == nil && e.cfg.Tracing.Enabled && e.cfg.Tracing.Metrics {
		m, err := observability.NewMetrics(observability.Meter(observability.TracerName))
		if err != nil {
			return err
		}
		e.metrics = m
	}
	e.component("engine").Info("engine started", logger.Fields(
		"engine_id", e.id.String(),
		"tracing", e.cfg.Tracing.Enabled,
	))
	return nil
}

// Stop flushes and stops the providers started by Start.
func (e *Engine) Stop(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// ID identifies the engine instance in logs.
func (e *Engine) ID() uuid.UUID { return e.id }

// Config returns the defaulted configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Logger returns the base logger.
func (e *Engine) Logger() *logger.Logger { return e.log }

// MergeType is the configured default merge type.
func (e *Engine) MergeType() bundle.MergeType { return e.merge }

// Specs lists the registered spec names.
func (e *Engine) Specs() []string { return e.specs.List() }

// Spec returns the named spec, or NOT_FOUND.
func (e *Engine) Spec(name string) (replicate.Spec, error) {
	return e.specs.Lookup(name)
}

// Register adds or replaces a named spec.
func (e *Engine) Register(name string, spec replicate.Spec) error {
	return e.specs.Register(name, spec)
}

// NewSpec builds a spec from entries with the configured defaults. opts
// are applied after the defaults.
func (e *Engine) NewSpec(entries []replicate.Entry, opts ...replicate.Option) (replicate.Spec, error) {
	return replicate.NewSpec(entries, append(e.defaults.options(), opts...)...)
}

// resolve returns the named spec. The empty name is the empty spec with
// the configured defaults.
func (e *Engine) resolve(name string) (replicate.Spec, error) {
	if name == "" {
		return e.NewSpec(nil)
	}
	return e.Spec(name)
}

// Replicate expands b with the named spec.
func (e *Engine) Replicate(ctx context.Context, name string, b bundle.Bundle) (bundle.Bundle, error) {
	spec, err := e.resolve(name)
	if err != nil {
		return bundle.Bundle{}, err
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanReplicate)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrWeave, spec.Weave().String())

	out, n, err := spec.Expand(b)
	if err != nil {
		observability.SetSpanError(ctx, err)
		e.metrics.RecordError(ctx, string(errors.Wrap(err).Code), "replicate")
		return bundle.Bundle{}, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrReplicates, n)
	e.metrics.RecordReplicate(ctx, spec.Weave().String(), n)
	return out, nil
}

// IMapping builds an input-mapping compositor over the named spec.
func (e *Engine) IMapping(name string, innerMapping, outerMapping bundle.Bundle) (compose.Compositor, error) {
	spec, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return compose.IMapping(compose.IMappingConfig{
		Spec:         spec,
		InnerMapping: innerMapping,
		OuterMapping: outerMapping,
		MergeType:    e.merge,
		Logger:       e.component("compose"),
		Metrics:      e.metrics,
	})
}

// OMapping builds an output-mapping compositor over the named spec.
func (e *Engine) OMapping(name string, mapping bundle.Bundle, nReplicates int) (compose.Compositor, error) {
	spec, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return compose.OMapping(compose.OMappingConfig{
		Spec:        spec,
		Mapping:     mapping,
		NReplicates: nReplicates,
		MergeType:   e.merge,
		Logger:      e.component("compose"),
		Metrics:     e.metrics,
	})
}

// Split builds a split over chains whose branch slices come from the named
// spec.
func (e *Engine) Split(name string, chains ...flow.Transform) (flow.Transform, error) {
	spec, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	return flow.SplitChain(flow.SplitConfig{
		Spec:      spec,
		MergeType: e.merge,
		Logger:    e.component("flow"),
	}, chains...)
}

// Instrument wraps c as a named stage with tracing, logging, metrics and
// any middleware given through WithMiddleware, outermost first.
func (e *Engine) Instrument(stage string, c compose.Callable) compose.Func {
	mws := append([]compose.Middleware{
		compose.WithTracing("weave"),
		compose.WithLogging(e.component("stage")),
		compose.WithMetrics(e.metrics),
	}, e.extra...)
	return compose.Instrument(stage, c, mws...)
}

func (e *Engine) component(name string) *logger.Logger {
	return e.log.WithComponent(name)
}
