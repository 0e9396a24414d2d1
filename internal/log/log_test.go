package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLevelsAndFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	SetLevel(LevelInfo)
	Debug("hidden")
	Info("store loaded", "source", "v2", "tasks", 3, "dangling")
	Error("save failed", errors.New("disk full"), "path", "/tmp/a b")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug line filtered at info level:\n%s", out)
	}
	if !strings.Contains(out, "[INFO] store loaded source=v2 tasks=3\n") {
		t.Fatalf("unexpected info line:\n%s", out)
	}
	if !strings.Contains(out, `[ERROR] save failed err="disk full" path="/tmp/a b"`) {
		t.Fatalf("unexpected error line:\n%s", out)
	}

	buf.Reset()
	SetLevel(ParseLevel("debug"))
	Debug("visible")
	if !strings.Contains(buf.String(), "[DEBUG] visible") {
		t.Fatalf("expected debug line; got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("ERROR") != LevelError || ParseLevel("nope") != LevelInfo || ParseLevel(" Debug ") != LevelDebug {
		t.Fatalf("unexpected ParseLevel mapping")
	}
}
