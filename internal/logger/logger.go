// Package logger is the process-wide leveled logger.
//
// Call sites use printf-style helpers (logger.Info("listening on %s", addr)); records are emitted through a
// log/slog text handler so the level can be changed at runtime from the --log flag or the config file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelPanic
)

const slogLevelTrace = slog.Level(-8)

var levelNames = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
	LevelPanic: "panic",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ParseLevel converts a flag value into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "panic":
		return LevelPanic, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level %q (want trace, debug, info, warn, error, fatal, panic)", s)
	}
}

var (
	mu       sync.RWMutex
	current  = LevelInfo
	levelVar = new(slog.LevelVar)
	base     = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelVar,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogLevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}))
}

// SetLevel changes the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
	levelVar.Set(l.slogLevel())
}

// GetLevel returns the active level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetOutput redirects log output. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	lg := base
	mu.RUnlock()
	lg.Log(context.Background(), l.slogLevel(), fmt.Sprintf(format, args...))
}

func Trace(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }
