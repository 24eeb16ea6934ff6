package logger

import (
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// NoopLogger discards every entry; use cases fall back to it in tests
type NoopLogger struct {
	level core.LogLevel
}

var _ core.Logger = (*NoopLogger)(nil)

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{level: core.LogLevelInfo}
}

func (l *NoopLogger) SetLevel(level core.LogLevel) { l.level = level }
func (l *NoopLogger) GetLevel() core.LogLevel      { return l.level }
func (l *NoopLogger) Debug(string, map[string]any) {}
func (l *NoopLogger) Info(string, map[string]any)  {}
func (l *NoopLogger) Warn(string, map[string]any)  {}
func (l *NoopLogger) Error(string, map[string]any) {}
func (l *NoopLogger) Flush() error                 { return nil }
