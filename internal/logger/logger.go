// Package logger provides a small leveled logger scoped to a component name.
package logger

import (
	"fmt"
	"log"
	"os"
)

const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[int]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Default to INFO; development gets DEBUG.
var minLevel = LevelInfo

func init() {
	if os.Getenv("ENV") == "development" {
		minLevel = LevelDebug
	}
	log.SetFlags(log.Ldate | log.Ltime)
}

// Logger tags every line with its component.
type Logger struct {
	component string
}

// New creates a logger for a specific component.
func New(component string) *Logger {
	return &Logger{component: component}
}

// SetMinLevel changes the minimum log level at runtime.
func SetMinLevel(level int) {
	minLevel = level
}

func (l *Logger) logf(level int, format string, args ...interface{}) {
	if level < minLevel {
		return
	}
	prefix := fmt.Sprintf("[%s][%s] ", levelNames[level], l.component)
	log.Printf(prefix+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}
