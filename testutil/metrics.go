package testutil

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/weave/observability"
)

// MetricsReader reads back what a Metrics instance recorded.
type MetricsReader struct {
	h      *THelper
	reader *sdkmetric.ManualReader
}

// Metrics returns stage metrics backed by an in-memory reader.
func (h *THelper) Metrics() (*observability.Metrics, *MetricsReader) {
	h.t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h.t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observability.NewMetrics(mp.Meter("testutil"))
	if err != nil {
		h.t.Fatalf("metrics: %v", err)
	}
	return m, &MetricsReader{h: h, reader: reader}
}

// Collect returns the current metric data.
func (r *MetricsReader) Collect() metricdata.ResourceMetrics {
	r.h.t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(context.Background(), &rm); err != nil {
		r.h.t.Fatalf("collect metrics: %v", err)
	}
	return rm
}

// Counter sums the int64 counter name over data points carrying every attr.
func (r *MetricsReader) Counter(name string, attrs ...attribute.KeyValue) int64 {
	r.h.t.Helper()
	var total int64
	for _, m := range r.find(name) {
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			continue
		}
		for _, dp := range sum.DataPoints {
			if hasAll(dp.Attributes, attrs) {
				total += dp.Value
			}
		}
	}
	return total
}

// Observations counts the recordings of the histogram name over data
// points carrying every attr.
func (r *MetricsReader) Observations(name string, attrs ...attribute.KeyValue) uint64 {
	r.h.t.Helper()
	var total uint64
	for _, m := range r.find(name) {
		switch h := m.Data.(type) {
		case metricdata.Histogram[int64]:
			for _, dp := range h.DataPoints {
				if hasAll(dp.Attributes, attrs) {
					total += dp.Count
				}
			}
		case metricdata.Histogram[float64]:
			for _, dp := range h.DataPoints {
				if hasAll(dp.Attributes, attrs) {
					total += dp.Count
				}
			}
		}
	}
	return total
}

func (r *MetricsReader) find(name string) []metricdata.Metrics {
	var out []metricdata.Metrics
	rm := r.Collect()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				out = append(out, m)
			}
		}
	}
	return out
}

func hasAll(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, want := range attrs {
		v, ok := set.Value(want.Key)
		if !ok || v.Emit() != want.Value.Emit() {
			return false
		}
	}
	return true
}
