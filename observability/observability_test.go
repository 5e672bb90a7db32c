package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected Environment 'development', got %q", cfg.Environment)
	}
}

func TestConfigDerivation(t *testing.T) {
	cfg := Config{Enabled: true, Endpoint: "collector:4318", SampleRate: 0.25}
	cfg.ApplyDefaults()
	if cfg.MetricsInterval != 15*time.Second {
		t.Errorf("MetricsInterval = %v", cfg.MetricsInterval)
	}

	tc := cfg.TracerConfig("sweep", "staging")
	if tc.ServiceName != "sweep" || tc.Environment != "staging" || tc.Endpoint != "collector:4318" || tc.SampleRate != 0.25 {
		t.Errorf("TracerConfig = %+v", tc)
	}
	if tc.Insecure {
		t.Error("Insecure should follow the config")
	}

	mc := cfg.MeterConfig("sweep", "staging")
	if mc.Endpoint != "collector:4318" || mc.Interval != 15*time.Second {
		t.Errorf("MeterConfig = %+v", mc)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.rate), func(t *testing.T) {
			desc := Sampler(tt.rate).Description()
			if !strings.HasPrefix(desc, "ParentBased{root:"+tt.want) {
				t.Errorf("Sampler(%v) = %s", tt.rate, desc)
			}
		})
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "svc", "development")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestStartSpanRecordsAttributesAndErrors(t *testing.T) {
	rec := useSpanRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanStage)
	SetSpanAttribute(ctx, AttrStage, "train")
	SetSpanAttribute(ctx, AttrReplicates, 6)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, AttrKeys, []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Name() != SpanStage {
		t.Errorf("name = %s", s.Name())
	}
	if s.InstrumentationScope().Name != TracerName {
		t.Errorf("scope = %s", s.InstrumentationScope().Name)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if len(attrs) != 6 {
		t.Errorf("expected 6 attributes, got %d", len(attrs))
	}
	if attrs[AttrStage].AsString() != "train" {
		t.Errorf("stage attr = %v", attrs[AttrStage])
	}
	if attrs[AttrReplicates].AsInt64() != 6 {
		t.Errorf("replicates attr = %v", attrs[AttrReplicates])
	}
	if s.Status().Code != codes.Error || s.Status().Description != "boom" {
		t.Errorf("status = %+v", s.Status())
	}
	if len(s.Events()) != 1 {
		t.Errorf("expected an exception event, got %d events", len(s.Events()))
	}
}

func TestSpanHelpersWithoutRecordingSpan(t *testing.T) {
	ctx := context.Background()
	if SpanFromContext(ctx) == nil {
		t.Fatal("expected non-nil span (noop)")
	}
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span error"))
}

func TestMetricsRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordStage(ctx, "train", StatusOK, 20*time.Millisecond)
	m.RecordStage(ctx, "train", StatusError, 10*time.Millisecond)
	m.RecordReplicate(ctx, "maximal", 9)
	m.RecordMemo(ctx, 3, 2)
	m.RecordMemo(ctx, 0, 0)
	m.RecordError(ctx, "LENGTH_MISMATCH", "replicate")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	if got := sumInt64(t, rm, "stage.calls"); got != 2 {
		t.Errorf("stage.calls = %d", got)
	}
	if got := sumInt64(t, rm, "stage.calls", attribute.String("status", StatusError)); got != 1 {
		t.Errorf("stage.calls{status=error} = %d", got)
	}
	if got := sumInt64(t, rm, "memo.lookups", attribute.String("result", "hit")); got != 3 {
		t.Errorf("memo hits = %d", got)
	}
	if got := sumInt64(t, rm, "memo.lookups", attribute.String("result", "miss")); got != 2 {
		t.Errorf("memo misses = %d", got)
	}
	if got := sumInt64(t, rm, "error.total", attribute.String("code", "LENGTH_MISMATCH")); got != 1 {
		t.Errorf("error.total = %d", got)
	}

	width := findMetric(t, rm, "replicate.width")
	hist, ok := width.Data.(metricdata.Histogram[int64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Sum != 9 {
		t.Errorf("replicate.width = %+v", width.Data)
	}
	dur := findMetric(t, rm, "stage.duration")
	if dh, ok := dur.Data.(metricdata.Histogram[float64]); !ok || dh.DataPoints[0].Count != 2 {
		t.Errorf("stage.duration = %+v", dur.Data)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordStage(ctx, "x", StatusOK, time.Second)
	m.RecordReplicate(ctx, "strict", 1)
	m.RecordMemo(ctx, 1, 1)
	m.RecordError(ctx, "INTERNAL_ERROR", "x")
}

func TestNewMetricsNoopMeter(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil || m == nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordStage(context.Background(), "noop", StatusOK, time.Millisecond)
}

func TestInitTracer(t *testing.T) {
	tp, err := InitTracer(context.Background(), DefaultTracerConfig("test-service"))
	if err != nil {
		t.Skipf("InitTracer failed: %v", err)
	}
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tp.Shutdown(ctx)
}

// --- helpers ---

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Metrics{}
}

// sumInt64 adds up the data points of a counter carrying all of attrs.
func sumInt64(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := findMetric(t, rm, name).Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is not an int64 sum", name)
	}
	var total int64
points:
	for _, dp := range sum.DataPoints {
		for _, attr := range attrs {
			if v, found := dp.Attributes.Value(attr.Key); !found || v.Emit() != attr.Value.Emit() {
				continue points
			}
		}
		total += dp.Value
	}
	return total
}
