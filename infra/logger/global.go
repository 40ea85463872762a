package logger

import "sync"

const (
	serviceName    = "icepay"
	serviceVersion = "1.0.0"
)

var (
	globalLogger *SystemLogger
	mu           sync.Mutex
)

// InitGlobalLogger initializes the global system logger from the configured level and
// environment. A nil sink keeps logging console-only.
func InitGlobalLogger(sink EventSink, level, environment string) *SystemLogger {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		return globalLogger
	}

	cfg := SystemLoggerConfig{
		EnableConsole: true,
		EnableSink:    sink != nil,
		MinLevel:      ParseLevel(level),
		Service:       serviceName,
		Version:       serviceVersion,
		Environment:   environment,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Environment == "development" {
		cfg.MinLevel = LevelDebug
	}

	globalLogger = NewSystemLogger(sink, cfg)
	return globalLogger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger == nil {
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   "development",
		})
	}
	return globalLogger
}

func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithProvider creates a context logger with provider
func WithProvider(provider string) *ContextLogger {
	return WithContext(LogContext{Provider: provider})
}

// WithRequest creates a context logger for one inbound request
func WithRequest(requestID string) *ContextLogger {
	return WithContext(LogContext{RequestID: requestID})
}
