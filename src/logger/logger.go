package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"stockstreamer/src/models"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides levelled logging for one named component
type Logger struct {
	name   string
	logger zerolog.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout and, when
// cfg.LogFile is set, to a rotating log file. A nil cfg yields INFO console output.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	level := "INFO"
	format := "pretty"
	var writers []io.Writer

	if cfg != nil {
		if cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		if cfg.LogFormat != "" {
			format = cfg.LogFormat
		}
	}

	if format == "json" {
		writers = append(writers, os.Stdout)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})
	}

	if cfg != nil && cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxAge:     14,
			MaxBackups: 5,
			Compress:   true,
		})
	}

	return NewLoggerWithWriter(zerolog.MultiLevelWriter(writers...), level, name)
}

// -----------------------------------------------------------------------------

// NewLoggerWithWriter builds a Logger on an arbitrary sink
func NewLoggerWithWriter(w io.Writer, level, name string) *Logger {
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &Logger{
		name:   name,
		logger: zl,
	}
}

// -----------------------------------------------------------------------------

// NewNop returns a Logger that discards everything
func NewNop() *Logger {
	return &Logger{name: "nop", logger: zerolog.Nop()}
}

// -----------------------------------------------------------------------------

// Named derives a logger for another component sharing the same sink and level
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, logger: l.logger}
}

// -----------------------------------------------------------------------------

// ParseLevel maps the config level names onto zerolog levels.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARNING", "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "CRITICAL", "FATAL":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// -----------------------------------------------------------------------------

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug().Str("component", l.name).Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warn().Str("component", l.name).Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info().Str("component", l.name).Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error().Str("component", l.name).Msg(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.WithLevel(zerolog.FatalLevel).Str("component", l.name).Msg(fmt.Sprintf(format, args...))
	os.Exit(1)
}
