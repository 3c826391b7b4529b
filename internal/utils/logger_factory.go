package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
)

// LogLevel names a supported logging verbosity.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat names a supported logging output encoding.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerOutputs bundles the diagnostic logger with the console logger used
// for human-facing messages. The console logger is a no-op unless console
// format is selected.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory creates zap loggers for the requested level and format.
type LoggerFactory struct{}

// NewLoggerFactory returns a logger factory instance.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLoggerOutputs builds logger outputs writing to standard error.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLevel LogLevel, requestedFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := parseLogLevel(requestedLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	normalizedFormat := LogFormat(strings.ToLower(strings.TrimSpace(string(requestedFormat))))
	if normalizedFormat != LogFormatStructured && normalizedFormat != LogFormatConsole {
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedFormat)
	}

	writeSyncer := zapcore.Lock(os.Stderr)

	var diagnosticEncoder zapcore.Encoder
	if normalizedFormat == LogFormatStructured {
		diagnosticEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		consoleEncoderConfiguration := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		diagnosticEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfiguration)
	}

	diagnosticLogger := zap.New(zapcore.NewCore(diagnosticEncoder, writeSyncer, zapLevel))

	consoleLogger := zap.NewNop()
	if normalizedFormat == LogFormatConsole {
		messageOnlyConfiguration := zapcore.EncoderConfig{
			MessageKey:  "message",
			LineEnding:  zapcore.DefaultLineEnding,
			EncodeLevel: zapcore.LowercaseLevelEncoder,
		}
		consoleLogger = zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(messageOnlyConfiguration), writeSyncer, zapLevel))
	}

	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: consoleLogger}, nil
}

func parseLogLevel(requestedLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(requestedLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLevel)
	}
}
