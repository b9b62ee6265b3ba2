package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the minimum log level.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config holds logger configuration.
type Config struct {
	// Level sets the minimum log level
	Level LogLevel

	// Format sets the output format (json or text)
	Format LogFormat

	// AddCaller adds file and line number to log entries
	AddCaller bool

	// EnableColor enables colored output for text format
	EnableColor bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:       InfoLevel,
		Format:      TextFormat,
		AddCaller:   true,
		EnableColor: true,
	}
}

// NewLogger creates a new configured logger instance.
func NewLogger(config Config) *logrus.Logger {
	logger := logrus.New()

	logger.SetLevel(parseLogLevel(config.Level))

	switch config.Format {
	case JSONFormat:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller",
			},
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FullTimestamp:   true,
			ForceColors:     config.EnableColor,
			DisableColors:   !config.EnableColor,
		})
	}

	logger.SetReportCaller(config.AddCaller)
	logger.SetOutput(os.Stdout)

	return logger
}

// NewLoggerFromEnv creates a logger configured from environment variables.
// Reads LOG_LEVEL and LOG_FORMAT environment variables.
func NewLoggerFromEnv() *logrus.Logger {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = LogFormat(strings.ToLower(format))
	}

	return NewLogger(config)
}

// parseLogLevel converts LogLevel to logrus.Level.
func parseLogLevel(level LogLevel) logrus.Level {
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

// WithContext tags base with arbitrary fields. The per-subsystem
// constructors below tag fixed field sets the same way, calling
// WithField/WithFields on base directly.
func WithContext(base logrus.FieldLogger, fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// WorldLogger tags a logger as belonging to an ecs.World, for the one
// component field every entity/column/scheduler log line on that world
// shares.
func WorldLogger(base logrus.FieldLogger) *logrus.Entry {
	return base.WithField("component", "world")
}

// PluginHostLogger tags a logger as belonging to a pluginhost.Host.
func PluginHostLogger(base logrus.FieldLogger) *logrus.Entry {
	return base.WithField("component", "pluginhost")
}

// SystemLogger tags a log line with the system name and lifecycle group
// the scheduler is acting on.
func SystemLogger(base logrus.FieldLogger, name, group string) *logrus.Entry {
	return base.WithFields(logrus.Fields{"system": name, "group": group})
}

// ComponentLogger tags a log line with the component type a vtable
// registration concerns.
func ComponentLogger(base logrus.FieldLogger, typeName string) *logrus.Entry {
	return base.WithField("component_type", typeName)
}

// EntityLogger tags a log line with the entity handle a world lifecycle
// event concerns.
func EntityLogger(base logrus.FieldLogger, id uint32, generation int32) *logrus.Entry {
	return base.WithFields(logrus.Fields{"entity_id": id, "entity_generation": generation})
}

// PluginLogger tags a log line with the plugin prefix and the source file
// path the plugin host is acting on.
func PluginLogger(base logrus.FieldLogger, prefix, path string) *logrus.Entry {
	return base.WithFields(logrus.Fields{"plugin": prefix, "path": path})
}

// TickLogger tags a log line with the completed tick count, for the rare
// diagnostic trace that needs to correlate a log line with a specific
// simulation frame.
func TickLogger(base logrus.FieldLogger, tick uint64) *logrus.Entry {
	return base.WithField("tick", tick)
}
