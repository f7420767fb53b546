package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/rote/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"mixed case", "DeBuG", slog.LevelDebug},
		{"empty defaults to info", "", slog.LevelInfo},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &TestLogBuffer{}
	logger, err := SetupWithWriter(config.LoggingConfig{Level: "debug"}, buf)
	if err != nil {
		t.Fatalf("SetupWithWriter returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("SetupWithWriter returned nil logger")
	}

	logger.Debug("setup check", slog.String("component", "logger_test"))

	AssertLogContains(t, buf, "setup check")
	AssertLogField(t, buf, "component", "logger_test")
}

func TestSetupRespectsLevel(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &TestLogBuffer{}
	logger, err := SetupWithWriter(config.LoggingConfig{Level: "warn"}, buf)
	if err != nil {
		t.Fatalf("SetupWithWriter returned error: %v", err)
	}

	logger.Info("should be suppressed")
	logger.Warn("should appear")

	entries, err := buf.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	AssertLogContains(t, buf, "should appear")
}

func TestFromContextDefault(t *testing.T) {
	// A bare context yields the default logger, never nil.
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("FromContext returned nil for empty context")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	buf := &TestLogBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the logger stored with WithLogger")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	fallbackBuf := &TestLogBuffer{}
	fallback := slog.New(slog.NewJSONHandler(fallbackBuf, nil))

	// No logger in context: fallback wins.
	if got := FromContextOrDefault(context.Background(), fallback); got != fallback {
		t.Error("Expected fallback logger when context carries none")
	}

	// Logger in context: context wins.
	ctxBuf := &TestLogBuffer{}
	ctxLogger := slog.New(slog.NewJSONHandler(ctxBuf, nil))
	ctx := WithLogger(context.Background(), ctxLogger)
	if got := FromContextOrDefault(ctx, fallback); got != ctxLogger {
		t.Error("Expected context logger to win over fallback")
	}

	// Neither: default, never nil.
	if got := FromContextOrDefault(context.Background(), nil); got == nil {
		t.Fatal("FromContextOrDefault returned nil")
	}
}
