// Package logger provides structured logging for the document translator.
// It keeps a small Field-based call surface and delegates output to
// charmbracelet/log, so packages log as logger.Info("msg", logger.String(...)).
package logger

import (
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Level represents the severity level of a log message
type Level int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
)

func (l Level) charm() charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with any value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

var (
	mu  sync.RWMutex
	std = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.InfoLevel,
	})
)

// Init replaces the package logger, writing to w at the given level.
func Init(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()
	std = charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           level.charm(),
	})
}

// SetLevel sets the minimum level of the package logger.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	std.SetLevel(level.charm())
}

func keyvals(fields []Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

// Debug logs a debug message with optional fields
func Debug(msg string, fields ...Field) {
	mu.RLock()
	defer mu.RUnlock()
	std.Debug(msg, keyvals(fields)...)
}

// Info logs an informational message with optional fields
func Info(msg string, fields ...Field) {
	mu.RLock()
	defer mu.RUnlock()
	std.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message with optional fields
func Warn(msg string, fields ...Field) {
	mu.RLock()
	defer mu.RUnlock()
	std.Warn(msg, keyvals(fields)...)
}

// Error logs an error message with the error and optional fields
func Error(msg string, err error, fields ...Field) {
	mu.RLock()
	defer mu.RUnlock()
	if err != nil {
		fields = append(fields, Err(err))
	}
	std.Error(msg, keyvals(fields)...)
}
