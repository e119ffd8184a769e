// Package observability owns logger construction for the CLI and server.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger for command-line entry points. It defaults to a
// no-op logger until Init is called so library code can log unconditionally.
var CLILogger = zap.NewNop()

// ServerLogger is the logger for the embedded HTTP server.
var ServerLogger = zap.NewNop()

// Init builds the process loggers.
//
// profile "structured" emits production JSON; "console" emits a development
// console encoding.
func Init(level, profile string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch profile {
	case "", "structured":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return fmt.Errorf("unknown logging profile %q", profile)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	CLILogger = logger.Named("cli")
	ServerLogger = logger.Named("server")
	return nil
}

// Sync flushes buffered log entries. Safe to call on no-op loggers.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServerLogger.Sync()
}
