package log

import (
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core), InfoLevel), logs
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "": InfoLevel, "warning": WarnLevel, "error": ErrorLevel}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %v want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestWithFieldsCarried(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	l.WithComponent("ledger").With(Str("kind", "todo")).Info("appended", Int("count", 3))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[ComponentKey] != "ledger" || ctx["kind"] != "todo" {
		t.Fatalf("missing carried fields: %v", ctx)
	}
	if ctx["count"] != int64(3) {
		t.Fatalf("count field: %v", ctx["count"])
	}
}

func TestErrField(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	l.WithError(os.ErrNotExist).Warn("lookup failed")
	if got := logs.All()[0].ContextMap()["error"]; got != os.ErrNotExist.Error() {
		t.Fatalf("error field: %v", got)
	}
}

func TestApplyConfigJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := ApplyConfig(&Config{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept", Str("id", "c123"))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info entry should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"id":"c123"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	if l.GetLevel() != WarnLevel {
		t.Fatalf("level: %v", l.GetLevel())
	}
}

func TestApplyConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRedirectStdLog(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	restore := RedirectStdLog(l)
	stdlog.Print("from pebble")
	restore()

	if logs.FilterMessage("from pebble").Len() != 1 {
		t.Fatalf("std log not redirected: %v", logs.All())
	}
}

func TestToStdLoggerWritesAtLevel(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)
	ToStdLogger(l, ErrorLevel).Print("compaction stalled")

	got := logs.FilterMessage("compaction stalled").All()
	if len(got) != 1 || got[0].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected entries: %v", logs.All())
	}
}

type recordingLogger struct {
	Logger
	lines []string
}

func (r *recordingLogger) Warn(msg string, _ ...Field) { r.lines = append(r.lines, msg) }

func TestStdWriterTrimsNewline(t *testing.T) {
	r := &recordingLogger{Logger: NewNop()}
	w := stdWriter{l: r, level: WarnLevel}
	n, err := w.Write([]byte("disk slow\n"))
	if err != nil || n != 10 {
		t.Fatalf("write: %d %v", n, err)
	}
	if len(r.lines) != 1 || r.lines[0] != "disk slow" {
		t.Fatalf("lines: %v", r.lines)
	}
}
