package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"panic", LevelPanic},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	defer func() {
		SetLevel(prev)
		SetOutput(nil)
	}()

	SetLevel(LevelWarn)
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn line missing: %s", out)
	}

	buf.Reset()
	SetLevel(LevelTrace)
	Trace("deep")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Fatalf("expected TRACE level label, got %s", buf.String())
	}
}
