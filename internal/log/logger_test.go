package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"budget/internal/core"

	"github.com/shopspring/decimal"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	l.Info("record appended", FieldCategory, "Rent")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "category=Rent") {
		t.Fatalf("unexpected log line: %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Debug("saved")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("expected storage component, got %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFields(t *testing.T) {
	r, err := core.NewRecordOn(core.Expense, "Rent", decimal.RequireFromString("400"), "2025-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := NewFields().WithOperation(OpAppend).WithStore("json").WithRecord(r).WithError(errors.New("boom"))
	if f[FieldOperation] != OpAppend || f[FieldStore] != "json" || f[FieldKind] != "expense" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != len(f)*2 {
		t.Fatalf("ToSlice length mismatch")
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error should not add a field")
	}
}
