// Package testutil provides test fixtures for weave pipelines.
//
// Fixtures register their own cleanup with testing.T:
//
//	func TestSweep(t *testing.T) {
//	    h := testutil.T(t)
//	    metrics, reader := h.Metrics()
//	    spans := h.Spans()
//	    log, logs := h.Logger()
//	    // build and run stages with metrics and log ...
//	    if reader.Counter("stage.calls", attribute.String("status", "ok")) != 2 { ... }
//	    if logs.Last()["stage"] != "fit" { ... }
//	}
//
// Spans installs a global tracer provider, so tests using it must not run
// in parallel with each other.
package testutil
