package observability

import (
	"context"
	goerrors "errors"
)

// ShutdownFunc flushes and stops the providers started by Setup.
type ShutdownFunc func(context.Context) error

// Setup starts the tracer provider, and the meter provider when cfg.Metrics is
// set. A disabled config yields a no-op shutdown.
func Setup(ctx context.Context, cfg Config, serviceName, environment string) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	cfg.ApplyDefaults()

	tp, err := InitTracer(ctx, cfg.TracerConfig(serviceName, environment))
	if err != nil {
		return nil, err
	}
	shutdowns := []ShutdownFunc{tp.Shutdown}

	if cfg.Metrics {
		mc := cfg.MeterConfig(serviceName, environment)
		mp, err := InitMeter(ctx, &mc)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	return func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return goerrors.Join(errs...)
	}, nil
}
