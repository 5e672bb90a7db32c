package testutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/kbukum/weave/logger"
)

// LogBuffer captures JSON log lines.
type LogBuffer struct {
	h   *THelper
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Logger returns a debug-level JSON logger writing into the returned buffer.
func (h *THelper) Logger() (*logger.Logger, *LogBuffer) {
	lb := &LogBuffer{h: h}
	log := logger.NewWithWriter(lb, &logger.Config{Level: "debug", Format: "json"}, "test")
	return log, lb
}

// Entries decodes every captured line.
func (b *LogBuffer) Entries() []map[string]any {
	b.h.t.Helper()
	b.mu.Lock()
	raw := strings.TrimSpace(b.buf.String())
	b.mu.Unlock()
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	out := make([]map[string]any, len(lines))
	for i, line := range lines {
		if err := json.Unmarshal([]byte(line), &out[i]); err != nil {
			b.h.t.Fatalf("bad log line %q: %v", line, err)
		}
	}
	return out
}

// Last returns the last captured entry, failing the test when there is none.
func (b *LogBuffer) Last() map[string]any {
	b.h.t.Helper()
	entries := b.Entries()
	if len(entries) == 0 {
		b.h.t.Fatal("no log entries")
	}
	return entries[len(entries)-1]
}

// Find returns the entries whose message is msg.
func (b *LogBuffer) Find(msg string) []map[string]any {
	b.h.t.Helper()
	var out []map[string]any
	for _, e := range b.Entries() {
		if e["message"] == msg {
			out = append(out, e)
		}
	}
	return out
}
