// Package logger provides structured logging built on logrus with
// correlation-ID aware field helpers.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// CorrelationIDHeader is the HTTP header carrying the request correlation ID
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDFieldKey is the field key used for correlation ID in log entries
	CorrelationIDFieldKey = "correlation_id"
)

// LogField represents a structured log field with concrete types
type LogField struct {
	Key   string
	Value string
}

// Logger interface with simplified, focused methods
type Logger interface {
	Info(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)
	Debug(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	WithFields(fields ...LogField) Logger
	WithCorrelationID(id string) Logger
}

// Config represents logger configuration
type Config struct {
	Level   Level
	Format  string
	Service string
	Output  io.Writer // Optional: defaults to os.Stdout if nil
}

// logger implements the Logger interface
type logger struct {
	logrus  *logrus.Logger
	fields  []LogField
	service string
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(config Config) Logger {
	logrusLogger := logrus.New()

	if config.Format == "text" {
		logrusLogger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logrusLogger.SetFormatter(&logrus.JSONFormatter{})
	}

	if config.Output != nil {
		logrusLogger.SetOutput(config.Output)
	} else {
		logrusLogger.SetOutput(os.Stdout)
	}

	switch config.Level {
	case DebugLevel:
		logrusLogger.SetLevel(logrus.DebugLevel)
	case WarnLevel:
		logrusLogger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		logrusLogger.SetLevel(logrus.ErrorLevel)
	default:
		logrusLogger.SetLevel(logrus.InfoLevel)
	}

	var serviceFields []LogField
	if config.Service != "" {
		serviceFields = []LogField{{Key: "service", Value: config.Service}}
	}

	return &logger{
		logrus:  logrusLogger,
		fields:  serviceFields,
		service: config.Service,
	}
}

// WithFields returns a new logger with additional fields (immutable)
func (l *logger) WithFields(fields ...LogField) Logger {
	newFields := make([]LogField, 0, len(l.fields)+len(fields))
	newFields = append(newFields, l.fields...)
	newFields = append(newFields, fields...)

	return &logger{
		logrus:  l.logrus,
		fields:  newFields,
		service: l.service,
	}
}

// WithCorrelationID returns a new logger with correlation ID field
func (l *logger) WithCorrelationID(id string) Logger {
	return l.WithFields(LogField{Key: CorrelationIDFieldKey, Value: id})
}

// Info logs an info message with optional fields
func (l *logger) Info(msg string, fields ...LogField) {
	l.log(logrus.InfoLevel, msg, fields...)
}

// Error logs an error message with optional fields
func (l *logger) Error(msg string, fields ...LogField) {
	l.log(logrus.ErrorLevel, msg, fields...)
}

// Debug logs a debug message with optional fields
func (l *logger) Debug(msg string, fields ...LogField) {
	l.log(logrus.DebugLevel, msg, fields...)
}

// Warn logs a warning message with optional fields
func (l *logger) Warn(msg string, fields ...LogField) {
	l.log(logrus.WarnLevel, msg, fields...)
}

func (l *logger) log(level logrus.Level, msg string, fields ...LogField) {
	allFields := make([]LogField, 0, len(l.fields)+len(fields))
	allFields = append(allFields, l.fields...)
	allFields = append(allFields, fields...)

	logrusFields := make(logrus.Fields, len(allFields))
	for _, field := range allFields {
		logrusFields[field.Key] = field.Value
	}

	entry := l.logrus.WithFields(logrusFields)
	switch level {
	case logrus.InfoLevel:
		entry.Info(msg)
	case logrus.ErrorLevel:
		entry.Error(msg)
	case logrus.DebugLevel:
		entry.Debug(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	}
}

// Helper functions for common field types

// StringField returns a LogField for a string value.
func StringField(key, value string) LogField {
	return LogField{Key: key, Value: value}
}

// IntField returns a LogField for an integer value.
func IntField(key string, value int) LogField {
	return LogField{Key: key, Value: strconv.Itoa(value)}
}

// BoolField returns a LogField for a boolean value.
func BoolField(key string, value bool) LogField {
	return LogField{Key: key, Value: strconv.FormatBool(value)}
}

// DurationField returns a LogField for a time.Duration value.
func DurationField(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value.String()}
}

// ErrorField returns a LogField for an error value.
func ErrorField(err error) LogField {
	if err == nil {
		return LogField{Key: "error", Value: "<nil>"}
	}
	return LogField{Key: "error", Value: err.Error()}
}

// Field creates a log field with automatic type conversion for less common types
func Field[T any](key string, value T) LogField {
	return LogField{Key: key, Value: convertValue(value)}
}

func convertValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case time.Duration:
		return v.String()
	case error:
		if v == nil {
			return "<nil>"
		}
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Common field constructors

// CorrelationIDField returns a LogField for a correlation ID.
func CorrelationIDField(id string) LogField {
	return StringField(CorrelationIDFieldKey, id)
}

// HTTPMethodField returns a LogField for an HTTP method.
func HTTPMethodField(method string) LogField {
	return StringField("http_method", method)
}

// HTTPPathField returns a LogField for an HTTP path.
func HTTPPathField(path string) LogField {
	return StringField("http_path", path)
}

// HTTPStatusField returns a LogField for an HTTP status code.
func HTTPStatusField(status int) LogField {
	return IntField("http_status", status)
}

// ClientIPField returns a LogField for a client IP address.
func ClientIPField(ip string) LogField {
	return StringField("client_ip", ip)
}

