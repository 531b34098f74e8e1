package txrouter

import "github.com/sirupsen/logrus"

// LogLevel is the router's own leveled-logging ladder, in the
// teacher's style (kgo.LogLevel): a small closed set the caller filters
// on, not a library-specific level type.
type LogLevel int8

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return "NONE"
	}
}

// Logger is the interface the router logs through. Keyvals are an
// alternating key, value, key, value... list, mirroring the teacher's
// cfg.logger.Log(level, msg, "key", val, ...) call sites.
type Logger interface {
	Level() LogLevel
	Log(level LogLevel, msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Level() LogLevel                          { return LogLevelNone }
func (nopLogger) Log(LogLevel, string, ...any)             {}

// logrusLogger adapts a *logrus.Logger to the Logger interface, the
// way a deployed router picks up the host process's structured logging
// stack instead of printing to stderr directly.
type logrusLogger struct {
	lvl LogLevel
	l   *logrus.Logger
}

// NewLogrusLogger wraps l as a Logger, logging at level and below.
func NewLogrusLogger(l *logrus.Logger, level LogLevel) Logger {
	return &logrusLogger{lvl: level, l: l}
}

func (g *logrusLogger) Level() LogLevel { return g.lvl }

func (g *logrusLogger) Log(level LogLevel, msg string, keyvals ...any) {
	if level > g.lvl {
		return
	}
	fields := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	entry := g.l.WithFields(fields)
	switch level {
	case LogLevelError:
		entry.Error(msg)
	case LogLevelWarn:
		entry.Warn(msg)
	case LogLevelInfo:
		entry.Info(msg)
	case LogLevelDebug:
		entry.Debug(msg)
	}
}
