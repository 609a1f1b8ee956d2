package core

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter exposes a logrus.Logger through the Logger interface.
// With Caller set, the call site is attached as a "caller" field whenever
// debug logging is enabled; logrus' own ReportCaller would point at this
// file instead.
type LogrusAdapter struct {
	*logrus.Logger
	Caller bool
}

var _ Logger = (*LogrusAdapter)(nil)

func (l *LogrusAdapter) logf(level logrus.Level, format string, args ...any) {
	if !l.IsLevelEnabled(level) {
		return
	}

	entry := logrus.NewEntry(l.Logger)
	if l.Caller && l.IsLevelEnabled(logrus.DebugLevel) {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
		}
	}
	entry.Logf(level, format, args...)
}

// Criticalf logs at error level.
func (l *LogrusAdapter) Criticalf(format string, args ...any) {
	l.logf(logrus.ErrorLevel, format, args...)
}

func (l *LogrusAdapter) Debugf(format string, args ...any) {
	l.logf(logrus.DebugLevel, format, args...)
}

func (l *LogrusAdapter) Errorf(format string, args ...any) {
	l.logf(logrus.ErrorLevel, format, args...)
}

func (l *LogrusAdapter) Noticef(format string, args ...any) {
	l.logf(logrus.InfoLevel, format, args...)
}

func (l *LogrusAdapter) Warningf(format string, args ...any) {
	l.logf(logrus.WarnLevel, format, args...)
}
