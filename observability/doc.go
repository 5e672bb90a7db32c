// Package observability provides OpenTelemetry tracing and metrics for weave
// pipelines.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("sweep"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "weave.stage")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("sweep"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("weave"))
//	metrics.RecordStage(ctx, "train", "ok", duration)
//
// Both providers can be started from configuration with Setup, which returns
// a single shutdown function.
package observability
