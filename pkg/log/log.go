// Package log provides gbhist's logging façade, a thin wrapper over
// github.com/rs/zerolog offering both the library's native chained API and a
// named, slog-shaped convenience API for package-level loggers.
package log

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	base   = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	inited bool
)

// SetupLogger configures the package-wide logger's minimum level. level is
// one of "debug", "info", "warn", "error"; unrecognized values fall back to
// "info".
func SetupLogger(level string) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(parseLevel(level))
	inited = true
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the shared zerolog.Logger for chained use:
//
//	log.GetLogger().Error().Err(err).Int("n", 3).Msg("failed")
func GetLogger() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !inited {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		inited = true
	}
	return &base
}

// LogError logs err at Error level with msg, the one-line error reporting
// idiom used by the histdemo command.
func LogError(err error, msg string) {
	GetLogger().Error().Err(err).Msg(msg)
}

// Logger is a named logger exposing a slog-style keyvals API over zerolog.
type Logger struct {
	name string
	zl   zerolog.Logger
}

// GetLoggerWithName returns a Logger tagged with a "component" field set to
// name, as used by the histogram builder and the histdemo command.
func GetLoggerWithName(name string) *Logger {
	return &Logger{
		name: name,
		zl:   GetLogger().With().Str("component", name).Logger(),
	}
}

func (l *Logger) event(ev *zerolog.Event, msg string, keyvals ...interface{}) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(msg)
}

// Debug logs msg at Debug level with alternating key/value pairs.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.event(l.zl.Debug(), msg, keyvals...)
}

// Info logs msg at Info level with alternating key/value pairs.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.event(l.zl.Info(), msg, keyvals...)
}

// Warn logs msg at Warn level with alternating key/value pairs.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.event(l.zl.Warn(), msg, keyvals...)
}

// Error logs msg at Error level with alternating key/value pairs.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.event(l.zl.Error(), msg, keyvals...)
}
