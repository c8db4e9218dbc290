package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Log levels accepted in log.level.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	globalLevel  zap.AtomicLevel
	once         sync.Once
)

// Get returns the process-wide logger. The level only applies to the first
// call; use SetLevel to change it once configuration is known.
func Get(level string) *Logger {
	once.Do(func() {
		globalLevel = zap.NewAtomicLevelAt(toZapLevel(level))
		globalLogger = newZapLogger(globalLevel)
	})
	return globalLogger
}

// SetLevel changes the level of the process-wide logger in place.
func SetLevel(level string) {
	Get(level)
	globalLevel.SetLevel(toZapLevel(level))
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}

// Nop discards everything. Handy where a component requires a logger.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
