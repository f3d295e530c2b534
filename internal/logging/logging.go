// Package logging provides a minimal leveled logger shared by all packages.
// Output is text by default; JSON can be enabled for machine consumption.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. It accepts the names in any
// case but does not trim whitespace.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

var (
	mu     sync.Mutex
	level  = LevelInfo
	format = "text"
	out    io.Writer = os.Stderr
)

// SetLevel sets the minimum level that will be logged.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetFormat selects the output format: "text" or "json".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f == "json" {
		format = "json"
	} else {
		format = "text"
	}
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		out = os.Stderr
	} else {
		out = w
	}
}

// Debug logs at debug level with Printf-style formatting.
func Debug(msg string, args ...any) { logAt(LevelDebug, msg, args...) }

// Info logs at info level with Printf-style formatting.
func Info(msg string, args ...any) { logAt(LevelInfo, msg, args...) }

// Warn logs at warn level with Printf-style formatting.
func Warn(msg string, args ...any) { logAt(LevelWarn, msg, args...) }

// Error logs at error level with Printf-style formatting.
func Error(msg string, args ...any) { logAt(LevelError, msg, args...) }

func logAt(l Level, msg string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	now := time.Now()
	if format == "json" {
		entry := map[string]string{
			"ts":    now.Format(time.RFC3339),
			"level": strings.ToLower(l.String()),
			"msg":   msg,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(out, string(b))
		return
	}
	var tag string
	switch l {
	case LevelDebug:
		tag = "[DEBUG]"
	case LevelInfo:
		tag = "[INFO]"
	case LevelWarn:
		tag = "[WARN]"
	case LevelError:
		tag = "[ERROR]"
	}
	fmt.Fprintf(out, "%s %s %s\n", now.Format("2006-01-02 15:04:05"), tag, msg)
}
