package txrouter

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogrusLoggerFiltersBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	l := NewLogrusLogger(base, LogLevelInfo)
	l.Log(LogLevelDebug, "should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected a debug line dropped at info level, got %q", buf.String())
	}

	l.Log(LogLevelInfo, "should be kept", "session", "abc")
	if buf.Len() == 0 {
		t.Fatal("expected an info line to be logged at info level")
	}
}

func TestLogrusLoggerLevel(t *testing.T) {
	l := NewLogrusLogger(logrus.New(), LogLevelWarn)
	if l.Level() != LogLevelWarn {
		t.Fatalf("Level() = %v, want LogLevelWarn", l.Level())
	}
}

func TestNopLoggerNeverPanics(t *testing.T) {
	nopLogger{}.Log(LogLevelError, "whatever", "key", "value")
}
