package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "upper-case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.Logrus().Level)

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		existing := logrus.New()
		adapter, ok := NewLogrusAdapterFromLogger(existing).(*LogrusAdapter)
		require.True(t, ok)
		assert.Same(t, existing, adapter.logger)
	})

	t.Run("with nil logger creates new one", func(t *testing.T) {
		adapter, ok := NewLogrusAdapterFromLogger(nil).(*LogrusAdapter)
		require.True(t, ok)
		assert.NotNil(t, adapter.logger)
	})
}

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusAdapterFromLogger(l), &buf
}

func TestLogrusAdapter_LoggingMethods(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...Field)
		message string
	}{
		{"Debug", func(l Logger, m string, f ...Field) { l.Debug(m, f...) }, "debug message"},
		{"Info", func(l Logger, m string, f ...Field) { l.Info(m, f...) }, "info message"},
		{"Warn", func(l Logger, m string, f ...Field) { l.Warn(m, f...) }, "warn message"},
		{"Error", func(l Logger, m string, f ...Field) { l.Error(m, f...) }, "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferedAdapter(logrus.DebugLevel)
			tt.logFunc(logger, tt.message, F(FieldDataset, "transferencias"))

			output := buf.String()
			assert.Contains(t, output, tt.message)
			assert.Contains(t, output, FieldDataset)
			assert.Contains(t, output, "transferencias")
		})
	}
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.
		WithField(FieldDataset, "ordenes_compra").
		WithFields(F(FieldColumn, "importe"), F(FieldCount, 3)).
		WithError(errors.New("boom")).
		Error("normalization failed")

	output := buf.String()
	assert.Contains(t, output, "normalization failed")
	assert.Contains(t, output, "ordenes_compra")
	assert.Contains(t, output, "importe")
	assert.Contains(t, output, "boom")
}

func TestToLogrusFields(t *testing.T) {
	got := toLogrusFields([]Field{F("a", "x"), F("b", 42), F("c", true)})
	assert.Len(t, got, 3)
	assert.Equal(t, "x", got["a"])
	assert.Equal(t, 42, got["b"])
	assert.Equal(t, true, got["c"])

	assert.Len(t, toLogrusFields(nil), 0)
}

func TestLogrusAdapter_FilteredLevel(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Debug("cell skipped", F(FieldColumn, "importe"))
	logger.Info("loaded")
	assert.Empty(t, buf.String())

	logger.Warn("column had unparsable cells")
	assert.Contains(t, buf.String(), "column had unparsable cells")
}

func TestNewLogrus_Output(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogrus("info", "JSON", &buf)
	l.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestMockLogger_ChildrenShareEntries(t *testing.T) {
	mock := NewMockLogger()
	child := mock.WithField(FieldDataset, "transferencias")
	child.WithError(errors.New("bad")).Warn("skipped")
	mock.Info("done")

	entries := mock.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, []Field{F(FieldDataset, "transferencias")}, entries[0].Fields)
	assert.EqualError(t, entries[0].Error, "bad")
	assert.True(t, mock.HasEntry("INFO", "done"))
	assert.Len(t, mock.GetEntriesByLevel("WARN"), 1)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.WithField("a", 1).WithFields(F("b", 2)).WithError(errors.New("x")).Error("ignored")
}
