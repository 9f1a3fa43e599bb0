package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "ZTDASH_LOG_LEVEL"

// Options configures the logger. The dashboard owns stdout while it runs,
// so log entries always go to a rotated file.
type Options struct {
	Level string // empty means: read LogLevelEnvVar, then stay silent
	File  string // path of the log file; required unless the logger is silent
}

// Initialize creates the global logger.
// If neither opts.Level nor ZTDASH_LOG_LEVEL is set, logging is disabled.
func Initialize(opts Options) error {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}
	if opts.File == "" {
		return fmt.Errorf("log level %q set but no log file configured", level)
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, zap.NewAtomicLevelAt(zapLevel))
	logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogRequest logs one backend API call.
func LogRequest(backend, method, path string, status int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("backend", backend),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		Warn("API request failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("API request", fields...)
}

// LogMutation logs the outcome of an operator action against a backend.
func LogMutation(op, networkID, memberID string, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("network_id", networkID),
	}
	if memberID != "" {
		fields = append(fields, zap.String("member_id", memberID))
	}
	if err != nil {
		Warn("Mutation failed", append(fields, zap.Error(err))...)
		return
	}
	Info("Mutation applied", fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
