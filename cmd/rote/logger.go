package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/rote/internal/config"
	"github.com/phrazzld/rote/internal/platform/logger"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger configures the application logger from config settings.
// Logs go to stderr; the TUI swaps in a file logger before taking over
// the terminal.
func setupLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, nil
}

// TUILoggerResult contains the results of setting up logging for TUI mode.
type TUILoggerResult struct {
	Logger   *slog.Logger
	LogFile  io.WriteCloser
	FilePath string
}

// Close closes the log file if it was opened.
func (r *TUILoggerResult) Close() error {
	if r.LogFile != nil {
		return r.LogFile.Close()
	}
	return nil
}

// SetupTUILogger creates a logger that writes to a rotating file instead
// of stderr, so log output never corrupts the alternate screen. Uses
// lumberjack for rotation based on the provided config.
func SetupTUILogger(cfg *config.Config) (*TUILoggerResult, error) {
	if err := os.MkdirAll(cfg.Logging.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	debugLogPath := filepath.Join(cfg.Logging.Dir, "rote-debug.log")

	debugLogWriter := &lumberjack.Logger{
		Filename:   debugLogPath,
		MaxSize:    cfg.LogRotation.MaxSizeMB,
		MaxBackups: cfg.LogRotation.MaxBackups,
		MaxAge:     cfg.LogRotation.MaxAgeDays,
		Compress:   cfg.LogRotation.Compress,
	}

	l, err := logger.SetupWithWriter(cfg.Logging, debugLogWriter)
	if err != nil {
		_ = debugLogWriter.Close()
		return nil, fmt.Errorf("failed to set up TUI logger: %w", err)
	}

	return &TUILoggerResult{
		Logger:   l,
		LogFile:  debugLogWriter,
		FilePath: debugLogPath,
	}, nil
}
