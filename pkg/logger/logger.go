package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel = zerolog.Level

const (
	DEBUG = zerolog.DebugLevel
	INFO  = zerolog.InfoLevel
	WARN  = zerolog.WarnLevel
	ERROR = zerolog.ErrorLevel
	FATAL = zerolog.FatalLevel
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	Configure(os.Stderr, "info", false)
}

// Configure replaces the process logger. json=false selects the human
// console format.
func Configure(w io.Writer, level string, json bool) {
	if w == nil {
		w = os.Stderr
	}
	if !json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))
	current.Store(&l)
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func SetLevel(level LogLevel) {
	l := current.Load().Level(level)
	current.Store(&l)
}

func GetLevel() LogLevel {
	return current.Load().GetLevel()
}

func logMessage(level LogLevel, component, message string, fields map[string]any) {
	l := current.Load()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(message)
	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(message string) { logMessage(DEBUG, "", message, nil) }

func Info(message string) { logMessage(INFO, "", message, nil) }

func Warn(message string) { logMessage(WARN, "", message, nil) }

func Error(message string) { logMessage(ERROR, "", message, nil) }

func Fatal(message string) { logMessage(FATAL, "", message, nil) }

func DebugC(component, message string) { logMessage(DEBUG, component, message, nil) }

func InfoC(component, message string) { logMessage(INFO, component, message, nil) }

func WarnC(component, message string) { logMessage(WARN, component, message, nil) }

func ErrorC(component, message string) { logMessage(ERROR, component, message, nil) }

func DebugCF(component, message string, fields map[string]any) {
	logMessage(DEBUG, component, message, fields)
}

func InfoCF(component, message string, fields map[string]any) {
	logMessage(INFO, component, message, fields)
}

func WarnCF(component, message string, fields map[string]any) {
	logMessage(WARN, component, message, fields)
}

func ErrorCF(component, message string, fields map[string]any) {
	logMessage(ERROR, component, message, fields)
}

func FatalCF(component, message string, fields map[string]any) {
	logMessage(FATAL, component, message, fields)
}
