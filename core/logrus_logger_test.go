package core

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newBufferedLogrus(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return l, &buf
}

func TestLogrusAdapterLevels(t *testing.T) {
	t.Parallel()

	l, buf := newBufferedLogrus(logrus.InfoLevel)
	a := &LogrusAdapter{Logger: l}

	a.Debugf("hidden %d", 1)
	a.Noticef("notice %d", 2)
	a.Warningf("warn %d", 3)
	a.Errorf("error %d", 4)
	a.Criticalf("critical %d", 5)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `level=info msg="notice 2"`)
	assert.Contains(t, out, `level=warning msg="warn 3"`)
	assert.Contains(t, out, `level=error msg="error 4"`)
	assert.Contains(t, out, `level=error msg="critical 5"`)
}

func TestLogrusAdapterCaller(t *testing.T) {
	t.Parallel()

	l, buf := newBufferedLogrus(logrus.DebugLevel)
	a := &LogrusAdapter{Logger: l, Caller: true}
	a.Noticef("where")

	assert.Contains(t, buf.String(), "caller=\"logrus_logger_test.go:")
}

func TestLogrusAdapterCallerFollowsLevel(t *testing.T) {
	t.Parallel()

	l, buf := newBufferedLogrus(logrus.InfoLevel)
	a := &LogrusAdapter{Logger: l, Caller: true}
	a.Noticef("quiet")
	assert.NotContains(t, buf.String(), "caller=")

	l.SetLevel(logrus.DebugLevel)
	a.Noticef("loud")
	assert.Contains(t, buf.String(), "caller=\"logrus_logger_test.go:")
}
