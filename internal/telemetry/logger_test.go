package telemetry

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevelSwitch(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, c := range cases {
		log := NewLogger(c.level, "json")
		if log.GetLevel() != c.want {
			t.Errorf("level %q: got %v, want %v", c.level, log.GetLevel(), c.want)
		}
	}
}

func TestNewLoggerTextFormatWritesConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "info", "text")
	log.Info().Msg("hello")

	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Fatalf("expected output to contain message, got %q", buf.String())
	}
}

func TestNewLoggerJSONFormatWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "info", "json")
	log.Info().Str("k", "v").Msg("hello")

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"k":"v"`)) {
		t.Fatalf("expected json field, got %q", out)
	}
}
