// Package errors provides error types, handling utilities, and logging for convcom.
package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	// LogLevelError logs only errors.
	LogLevelError LogLevel = iota
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn
	// LogLevelInfo logs info, warnings, and errors.
	LogLevelInfo
	// LogLevelDebug logs everything including debug messages.
	LogLevelDebug
)

// String returns the string representation of LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger provides structured logging with verbose mode support.
// All output goes to stderr so stdout carries nothing but the commit message.
type Logger struct {
	mu      sync.Mutex
	output  io.Writer
	level   LogLevel
	verbose bool
	runID   string
	zl      zerolog.Logger
}

// Global logger instance
var defaultLogger = NewLogger(os.Stderr, false)

// NewLogger creates a new logger with the given configuration.
func NewLogger(output io.Writer, verbose bool) *Logger {
	level := LogLevelError
	if verbose {
		level = LogLevelDebug
	}
	l := &Logger{
		output:  output,
		level:   level,
		verbose: verbose,
	}
	l.rebuild()
	return l
}

// rebuild recreates the zerolog logger from the current settings. Callers hold mu.
func (l *Logger) rebuild() {
	writer := zerolog.ConsoleWriter{
		Out:        l.output,
		TimeFormat: "15:04:05",
		NoColor:    true,
	}
	ctx := zerolog.New(writer).Level(l.level.zerolog()).With().Timestamp()
	if l.runID != "" {
		ctx = ctx.Str("run", l.runID)
	}
	l.zl = ctx.Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	defaultLogger.SetVerbose(verbose)
}

// SetVerbose enables or disables verbose logging on l.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
	if verbose {
		l.level = LogLevelDebug
	} else {
		l.level = LogLevelError
	}
	l.rebuild()
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput sets the output writer for the logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
	defaultLogger.rebuild()
}

// SetRunID tags every subsequent log line with the given invocation id.
func SetRunID(id string) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.runID = id
	defaultLogger.rebuild()
}

func (l *Logger) event(level LogLevel) *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch level {
	case LogLevelWarn:
		return l.zl.Warn()
	case LogLevelInfo:
		return l.zl.Info()
	case LogLevelDebug:
		return l.zl.Debug()
	default:
		return l.zl.Error()
	}
}

// log writes a log message at the given level.
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.event(level).Msg(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func (l *Logger) LogAPIRequest(provider, endpoint, model string, promptLength int) {
	l.event(LogLevelDebug).
		Str("provider", provider).
		Str("endpoint", endpoint).
		Str("model", model).
		Int("prompt_length", promptLength).
		Msg("API request")
}

// LogAPIResponse logs an API response in verbose mode.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	l.event(LogLevelDebug).
		Str("provider", provider).
		Int("status", statusCode).
		Int("response_length", responseLength).
		Dur("duration", duration).
		Msg("API response")
}

// Package-level logging functions using the default logger

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(provider, endpoint, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, endpoint, model, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// MaskAPIKey masks an API key for safe logging, showing only the last 4 characters.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(apiKey)-4) + apiKey[len(apiKey)-4:]
}
