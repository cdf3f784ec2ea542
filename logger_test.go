package ge

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/ge/gecore"
)

func TestLoggerDefaultSilent(t *testing.T) {
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should discard even error records")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("log output = %q, want it to contain the message", buf.String())
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	SetLogger(nil)

	Logger().Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil logger still wrote: %q", buf.String())
	}
}

func TestEngineLogsDroppedRun(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	eng := NewEngine(WithVertexCapacity(4))
	state := newState()
	inds := u16Inds(0, 1, 2, 3, 0, 1, 2, 3, 0, 1)
	if _, err := eng.Submit(state, posVerts(4), inds,
		gecore.PosFloat|gecore.IdxUint16, gecore.TopologyTriangleStrip, 10); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := eng.Flush(state); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if !strings.Contains(buf.String(), "dropping run") {
		t.Errorf("log output = %q, want a dropped-run warning", buf.String())
	}
}
