package compose

import (
	"context"
	"time"

	"github.com/kbukum/weave/bundle"
	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/logger"
	"github.com/kbukum/weave/observability"
)

// Middleware wraps the Func of a named stage.
type Middleware func(stage string, next Func) Func

// Chain composes middlewares. The first is outermost: it runs first on the
// way in and last on the way out.
//
// Chain(a, b, c)(stage, f) is equivalent to a(stage, b(stage, c(stage, f))).
func Chain(middlewares ...Middleware) Middleware {
	return func(stage string, next Func) Func {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](stage, next)
		}
		return next
	}
}

// Instrument wraps c as the named stage.
func Instrument(stage string, c Callable, middlewares ...Middleware) Func {
	return Chain(middlewares...)(stage, FuncOf(c))
}

// WithLogging logs every stage call with its duration. Failures log at
// error level, successes at debug level. A nil log uses the "compose"
// component logger.
func WithLogging(log *logger.Logger) Middleware {
	return func(stage string, next Func) Func {
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			start := time.Now()
			out, err := next(ctx, params)
			l := logger.Or(log, "compose").WithContext(ctx)
			fields := logger.Fields(
				logger.FieldStage, stage,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if err != nil {
				l.Error("stage failed", logger.MergeWithError(fields, err))
			} else if l.DebugEnabled() {
				fields[logger.FieldKeys] = out.Keys()
				l.Debug("stage ok", fields)
			}
			return out, err
		}
	}
}

// WithTracing opens a span around every stage call. The span is named
// "{prefix}.{stage}", or just the stage name when prefix is empty.
func WithTracing(prefix string) Middleware {
	return func(stage string, next Func) Func {
		name := stage
		if prefix != "" {
			name = prefix + "." + stage
		}
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			ctx, span := observability.StartSpan(ctx, name)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrStage, stage)

			out, err := next(ctx, params)
			if err != nil {
				observability.SetSpanError(ctx, err)
				return out, err
			}
			observability.SetSpanAttribute(ctx, observability.AttrKeys, out.Keys())
			return out, nil
		}
	}
}

// WithMetrics records call counts, durations and errors of every stage.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(stage string, next Func) Func {
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			start := time.Now()
			out, err := next(ctx, params)
			status := observability.StatusOK
			if err != nil {
				status = observability.StatusError
				m.RecordError(ctx, string(errors.Wrap(err).Code), stage)
			}
			m.RecordStage(ctx, stage, status, time.Since(start))
			return out, err
		}
	}
}

// WithStageErrors wraps failures that are not AppErrors as STAGE_FAILED
// naming the stage. AppErrors pass through unchanged.
func WithStageErrors() Middleware {
	return func(stage string, next Func) Func {
		return func(ctx context.Context, params bundle.Bundle) (bundle.Bundle, error) {
			out, err := next(ctx, params)
			if err != nil && !errors.IsAppError(err) {
				return out, errors.StageFailed(stage, err)
			}
			return out, err
		}
	}
}
