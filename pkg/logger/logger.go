// Package logger provides opinionated logging capabilities for the triage service
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stdout.
func NewLogger(debug bool) *zap.Logger {
	return newLogger(zapcore.AddSync(os.Stdout), debug)
}

// NewStderrLogger returns a console logger writing to stderr. Commands that
// speak a protocol over stdout (the MCP stdio transport) must use this one.
func NewStderrLogger(debug bool) *zap.Logger {
	return newLogger(zapcore.AddSync(os.Stderr), debug)
}

func newLogger(out zapcore.WriteSyncer, debug bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	// Set log level
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		out,
		level,
	)

	return zap.New(core, zap.AddCaller())
}
