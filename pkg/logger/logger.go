package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the application defaults.
type Logger struct {
	*logrus.Logger
}

// LogLevel represents log levels
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// LogFormat represents log output formats
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config represents logger configuration
type Config struct {
	Level  LogLevel
	Format LogFormat
}

var (
	instance *Logger
	once     sync.Once
)

// Init initializes the global logger from the environment.
func Init() {
	once.Do(func() {
		instance = NewLogger(configFromEnv())
	})
}

// NewLogger creates a new logger instance
func NewLogger(config Config) *Logger {
	logger := &Logger{Logger: logrus.New()}

	logger.SetLevel(getLogrusLevel(config.Level))
	logger.SetOutput(os.Stdout)

	if config.Format == JSONFormat {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func configFromEnv() Config {
	config := Config{
		Level:  InfoLevel,
		Format: JSONFormat,
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = LogFormat(strings.ToLower(format))
	}
	if os.Getenv("APP_ENV") == "development" && config.Format == JSONFormat {
		config.Format = TextFormat
	}

	return config
}

func getLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Global logger functions

func Debug(args ...interface{}) {
	if instance != nil {
		instance.Debug(args...)
	}
}

func Info(args ...interface{}) {
	if instance != nil {
		instance.Info(args...)
	}
}

func Warn(args ...interface{}) {
	if instance != nil {
		instance.Warn(args...)
	}
}

func Error(args ...interface{}) {
	if instance != nil {
		instance.Error(args...)
	}
}

func Fatal(args ...interface{}) {
	if instance != nil {
		instance.Fatal(args...)
	}
}

// WithField creates a logger entry with a field
func WithField(key string, value interface{}) *logrus.Entry {
	if instance != nil {
		return instance.WithField(key, value)
	}
	return logrus.NewEntry(logrus.New())
}

// WithFields creates a logger entry with multiple fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	if instance != nil {
		return instance.WithFields(fields)
	}
	return logrus.NewEntry(logrus.New())
}

// WithError creates a logger entry with an error field
func WithError(err error) *logrus.Entry {
	if instance != nil {
		return instance.WithError(err)
	}
	return logrus.NewEntry(logrus.New())
}

// LogRequest logs HTTP request information
func LogRequest(method, path, ip string, duration time.Duration, statusCode int) {
	WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"ip":          ip,
		"duration_ms": duration.Milliseconds(),
		"status_code": statusCode,
		"type":        "request",
	}).Info("HTTP Request")
}

// LogChatEvent logs message lifecycle events
func LogChatEvent(event, eventID, userID string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"event":    event,
		"event_id": eventID,
		"user_id":  userID,
		"type":     "chat_event",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Info("Chat Event")
}

// LogCallEvent logs call session lifecycle events
func LogCallEvent(event, eventID, userID string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"event":    event,
		"event_id": eventID,
		"user_id":  userID,
		"type":     "call_event",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Info("Call Event")
}

// LogError logs detailed error information
func LogError(err error, context string, metadata map[string]interface{}) {
	fields := logrus.Fields{
		"error":   err.Error(),
		"context": context,
		"type":    "error_detail",
	}
	for k, v := range metadata {
		fields[k] = v
	}

	WithFields(fields).Error("Application Error")
}
