// Package test holds helpers shared by the package test suites.
package test

import (
	"fmt"
	"strings"
	"sync"
)

// Logger records every message it receives. It satisfies core.Logger.
type Logger struct {
	mu       sync.RWMutex
	messages []LogEntry
}

// LogEntry is a single recorded message
type LogEntry struct {
	Level   string
	Message string
}

func NewTestLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Criticalf(s string, v ...any) { l.log("CRITICAL", s, v...) }
func (l *Logger) Errorf(s string, v ...any)    { l.log("ERROR", s, v...) }
func (l *Logger) Warningf(s string, v ...any)  { l.log("WARN", s, v...) }
func (l *Logger) Noticef(s string, v ...any)   { l.log("NOTICE", s, v...) }
func (l *Logger) Debugf(s string, v ...any)    { l.log("DEBUG", s, v...) }

func (l *Logger) log(level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogEntry{Level: level, Message: fmt.Sprintf(format, v...)})
}

// GetMessages returns a copy of all recorded messages in order
func (l *Logger) GetMessages() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]LogEntry, len(l.messages))
	copy(result, l.messages)
	return result
}

// Errors returns the recorded error-level messages in order
func (l *Logger) Errors() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for _, entry := range l.messages {
		if entry.Level == "ERROR" {
			out = append(out, entry.Message)
		}
	}
	return out
}

// HasMessage checks if a message containing the substring was logged
func (l *Logger) HasMessage(substr string) bool {
	return l.has("", substr)
}

// HasError checks if an error containing the substring was logged
func (l *Logger) HasError(substr string) bool {
	return l.has("ERROR", substr)
}

// HasWarning checks if a warning containing the substring was logged
func (l *Logger) HasWarning(substr string) bool {
	return l.has("WARN", substr)
}

func (l *Logger) has(level, substr string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, entry := range l.messages {
		if (level == "" || entry.Level == level) && strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}
