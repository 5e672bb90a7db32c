package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/weave/observability"
)

type fakeLifecycle struct {
	started, stopped bool
}

func (f *fakeLifecycle) Start(context.Context) error { f.started = true; return nil }
func (f *fakeLifecycle) Stop(context.Context) error  { f.stopped = true; return nil }

func TestStartRegistersStop(t *testing.T) {
	f := &fakeLifecycle{}
	t.Run("inner", func(t *testing.T) {
		T(t).Start(f)
		if !f.started || f.stopped {
			t.Errorf("started=%v stopped=%v", f.started, f.stopped)
		}
	})
	if !f.stopped {
		t.Error("Stop not called on cleanup")
	}
}

func TestMetricsReader(t *testing.T) {
	m, r := T(t).Metrics()
	ctx := context.Background()
	m.RecordStage(ctx, "fit", observability.StatusOK, time.Millisecond)
	m.RecordStage(ctx, "fit", observability.StatusOK, time.Millisecond)
	m.RecordStage(ctx, "score", observability.StatusError, time.Millisecond)
	m.RecordReplicate(ctx, "strict", 6)

	if got := r.Counter("stage.calls", attribute.String("stage", "fit")); got != 2 {
		t.Errorf("fit calls = %d", got)
	}
	if got := r.Counter("stage.calls"); got != 3 {
		t.Errorf("all calls = %d", got)
	}
	if got := r.Counter("stage.calls", attribute.String("stage", "score"), attribute.String("status", observability.StatusOK)); got != 0 {
		t.Errorf("score ok calls = %d", got)
	}
	if got := r.Observations("stage.duration"); got != 3 {
		t.Errorf("duration observations = %d", got)
	}
	if got := r.Observations("replicate.width", attribute.String("weave", "strict")); got != 1 {
		t.Errorf("width observations = %d", got)
	}
}

func TestSpans(t *testing.T) {
	rec := T(t).Spans()
	ctx, span := observability.StartSpan(context.Background(), "outer")
	observability.SetSpanAttribute(ctx, observability.AttrStage, "fit")
	_, child := observability.StartSpan(ctx, "inner")
	child.End()
	span.End()

	names := SpanNames(rec)
	if len(names) != 2 || names[0] != "inner" || names[1] != "outer" {
		t.Errorf("span names = %v", names)
	}
	if !HasAttr(rec.Ended()[1].Attributes(), attribute.String(observability.AttrStage, "fit")) {
		t.Error("missing stage attribute")
	}
}

func TestLogger(t *testing.T) {
	log, logs := T(t).Logger()
	if logs.Entries() != nil {
		t.Error("expected no entries")
	}
	log.Debug("first", map[string]interface{}{"n": 1})
	log.Error("second", map[string]interface{}{"error": errors.New("boom").Error()})

	if got := logs.Last(); got["message"] != "second" || got["error"] != "boom" || got["level"] != "error" {
		t.Errorf("last = %v", got)
	}
	if found := logs.Find("first"); len(found) != 1 || found[0]["n"] != float64(1) {
		t.Errorf("find = %v", found)
	}
}
