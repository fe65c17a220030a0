// Package logger wraps zerolog behind a printf-style interface.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"MercadoPagoGateway/pkg/correlation"

	"github.com/rs/zerolog"
)

// Interface -.
type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
	WithContext(ctx context.Context) Interface
}

// Logger -.
type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

// New -.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter builds a logger that writes JSON lines to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	skipFrameCount := 3
	logger := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + skipFrameCount).
		Logger()

	return &Logger{
		logger: &logger,
	}
}

// NewNop discards everything. Used by tests and the CLI's quiet mode.
func NewNop() *Logger {
	logger := zerolog.Nop()
	return &Logger{logger: &logger}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "error":
		return zerolog.ErrorLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext returns a child logger carrying the request correlation id.
func (l *Logger) WithContext(ctx context.Context) Interface {
	corrID := correlation.FromContext(ctx)
	if corrID == "" {
		return l
	}
	child := l.logger.With().Str("correlation_id", corrID).Logger()
	return &Logger{logger: &child}
}

// Debug -.
func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg("debug", message, args...)
}

// Info -.
func (l *Logger) Info(message string, args ...interface{}) {
	l.log(l.logger.Info(), message, args...)
}

// Warn -.
func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(l.logger.Warn(), message, args...)
}

// Error -.
func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.msg("error", message, args...)
}

// Fatal -.
func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg("fatal", message, args...)

	os.Exit(1)
}

func (l *Logger) log(e *zerolog.Event, message string, args ...interface{}) {
	if len(args) == 0 {
		e.Msg(message)
	} else {
		e.Msgf(message, args...)
	}
}

func (l *Logger) msg(level string, message interface{}, args ...interface{}) {
	var e *zerolog.Event
	switch level {
	case "debug":
		e = l.logger.Debug()
	case "fatal":
		e = l.logger.WithLevel(zerolog.FatalLevel)
	default:
		e = l.logger.Error()
	}

	switch msg := message.(type) {
	case error:
		l.log(e, msg.Error(), args...)
	case string:
		l.log(e, msg, args...)
	default:
		l.log(e, fmt.Sprintf("%s message %v has unknown type %v", level, message, msg), args...)
	}
}
