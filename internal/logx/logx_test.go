package logx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.InfoLevel)

	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info message missing from output: %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)

	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("FromContext should return the attached logger")
	}
}

func TestFromContextDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext must never return nil")
	}
}
