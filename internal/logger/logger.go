// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// Text output goes through the standard log package; json output writes one object per line
// so mining runs can be piped into log collectors.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
)

// String returns the upper-case level tag used in output.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// ParseLevel maps a config string to a Level. Unknown values fall back to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging
type Logger struct {
	level  Level
	json   bool
	logger *log.Logger
	out    io.Writer
	mu     sync.Mutex
}

var (
	// Global logger instance
	defaultLogger *Logger
)

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

// New creates a logger writing to w.
func New(w io.Writer, level string, format string) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	isJSON := strings.ToLower(format) == "json"
	if !isJSON {
		flags |= log.Lshortfile
	}
	return &Logger{
		level:  ParseLevel(level),
		json:   isJSON,
		logger: log.New(w, "", flags),
		out:    w,
	}
}

// Init initializes the default logger with the specified level and format
func Init(level string, format string) {
	defaultLogger = New(os.Stderr, level, format)
}

// SetOutput replaces the default logger with one writing to w. Used by tests.
func SetOutput(w io.Writer, level string, format string) {
	defaultLogger = New(w, level, format)
}

func (l *Logger) write(lvl Level, format string, args ...interface{}) {
	if l == nil || lvl < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.json {
		line, err := json.Marshal(jsonLine{
			Time:    time.Now().UTC().Format(time.RFC3339Nano),
			Level:   lvl.String(),
			Message: msg,
		})
		if err != nil {
			return
		}
		l.mu.Lock()
		_, _ = l.out.Write(append(line, '\n'))
		l.mu.Unlock()
		return
	}
	// calldepth 3: write -> package func -> caller
	_ = l.logger.Output(3, "["+lvl.String()+"] "+msg)
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	defaultLogger.write(DebugLevel, format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	defaultLogger.write(InfoLevel, format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	defaultLogger.write(WarnLevel, format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	defaultLogger.write(ErrorLevel, format, args...)
}

// Fatal logs a message and exits
func Fatal(format string, args ...interface{}) {
	if defaultLogger == nil {
		log.Fatalf("[FATAL] "+format, args...)
	}
	defaultLogger.write(ErrorLevel+1, format, args...)
	os.Exit(1)
}
