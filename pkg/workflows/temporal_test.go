package workflows

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	temporallog "go.temporal.io/sdk/log"

	"github.com/ghuser/ticketdesk/pkg/config"
	"github.com/ghuser/ticketdesk/pkg/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestTemporalLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := newTemporalLogger(logger.NewWithWriter(&buf, &config.Config{LogLevel: "debug"}))

	l.Debug("d", "k", 1)
	l.Info("i", "k", 2)
	l.Warn("w", "k", 3)
	l.Error("e", "k", 4)

	lines := decodeLines(t, &buf)
	if len(lines) != 4 {
		t.Fatalf("expected 4 records, got %d", len(lines))
	}
	for i, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if lines[i]["level"] != want {
			t.Errorf("record %d: expected level %s, got %v", i, want, lines[i]["level"])
		}
		if lines[i]["k"] != float64(i+1) {
			t.Errorf("record %d: expected k=%d, got %v", i, i+1, lines[i]["k"])
		}
	}
}

func TestTemporalLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := newTemporalLogger(logger.NewWithWriter(&buf, &config.Config{LogLevel: "info"}))

	withLogger, ok := l.(temporallog.WithLogger)
	if !ok {
		t.Fatal("temporal logger does not implement WithLogger")
	}
	withLogger.With("workflow_id", "ticket-escalation-1").Info("started")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["workflow_id"] != "ticket-escalation-1" {
		t.Fatalf("expected bound workflow_id, got %v", lines)
	}
}
