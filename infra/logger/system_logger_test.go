package logger

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []SystemLog
	done    chan struct{}
}

func (s *recordingSink) LogSystemEvent(_ context.Context, entry any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry.(SystemLog))
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return nil
}

func newBufferedLogger(minLevel LogLevel) (*SystemLogger, *bytes.Buffer) {
	l := NewSystemLogger(nil, SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      minLevel,
		Service:       "test-service",
		Version:       "1.0.0",
		Environment:   "test",
	})
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	return l, buf
}

func TestNewSystemLogger(t *testing.T) {
	config := SystemLoggerConfig{
		EnableConsole: true,
		EnableSink:    true,
		MinLevel:      LevelInfo,
		Service:       "test-service",
		Version:       "1.0.0",
		Environment:   "test",
	}

	logger := NewSystemLogger(nil, config)

	assert.NotNil(t, logger)
	assert.True(t, logger.enableConsole)
	assert.False(t, logger.enableSink, "sink stays disabled without a sink")
	assert.Equal(t, LevelInfo, logger.minLevel)
	assert.Equal(t, "test-service", logger.service)
	assert.Equal(t, "1.0.0", logger.version)
	assert.Equal(t, "test", logger.environment)
}

func TestSystemLogger_ShouldLog(t *testing.T) {
	tests := []struct {
		name     string
		minLevel LogLevel
		level    LogLevel
		expected bool
	}{
		{"debug_level_allows_all", LevelDebug, LevelDebug, true},
		{"info_level_blocks_debug", LevelInfo, LevelDebug, false},
		{"info_level_allows_info", LevelInfo, LevelInfo, true},
		{"warn_level_allows_error", LevelWarn, LevelError, true},
		{"error_level_blocks_warn", LevelError, LevelWarn, false},
		{"fatal_level_allows_fatal", LevelFatal, LevelFatal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewSystemLogger(nil, SystemLoggerConfig{MinLevel: tt.minLevel})
			assert.Equal(t, tt.expected, logger.shouldLog(tt.level))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestSystemLogger_ConsoleOutput(t *testing.T) {
	logger, buf := newBufferedLogger(LevelInfo)

	logger.Debug("hidden")
	logger.Error("payment failed", errors.New("gateway down"), LogContext{
		Provider:  "icepay",
		OrderID:   "ORD-1",
		RequestID: "0123456789abcdef",
		Fields:    map[string]any{"method": "ideal"},
	})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "payment failed")
	assert.Contains(t, out, "Error: gateway down")
	assert.Contains(t, out, "provider=icepay")
	assert.Contains(t, out, "order=ORD-1")
	assert.Contains(t, out, "req_id=01234567")
	assert.Contains(t, out, "method: ideal")
}

func TestSystemLogger_ShortRequestID(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	assert.NotPanics(t, func() {
		logger.Info("short id", LogContext{RequestID: "abc"})
	})
	assert.Contains(t, buf.String(), "req_id=abc")
}

func TestSystemLogger_ErrorDoesNotMutateFields(t *testing.T) {
	logger, _ := newBufferedLogger(LevelDebug)
	fields := map[string]any{"key": "value"}

	logger.Error("boom", errors.New("bad"), LogContext{Fields: fields})

	assert.Equal(t, map[string]any{"key": "value"}, fields)
}

func TestSystemLogger_Sink(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{})}
	done := sink.done
	logger := NewSystemLogger(sink, SystemLoggerConfig{
		EnableSink: true,
		MinLevel:   LevelDebug,
		Service:    "icepay",
	})

	logger.Warn("shipped", LogContext{Provider: "icepay"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the entry")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "shipped", sink.entries[0].Message)
	assert.Equal(t, LevelWarn, sink.entries[0].Level)
	assert.Equal(t, "icepay", sink.entries[0].Service)
}

func TestContextLogger(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	cl := logger.WithContext(LogContext{Provider: "icepay"}).
		SetRequestID("req-12345678").
		SetOrderID("ORD-9").
		AddField("attempt", 1)

	cl.Info("with context")

	out := buf.String()
	assert.Contains(t, out, "provider=icepay")
	assert.Contains(t, out, "order=ORD-9")
	assert.Contains(t, out, "attempt: 1")
}

func TestExtractComponent(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"/src/icepay/provider/icepay/icepay.go", "provider/icepay"},
		{"/src/icepay/infra/storage/sqlite.go", "infra/storage"},
		{"/src/icepay/handler/payment.go", "handler"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractComponent(tt.file))
		})
	}
}
