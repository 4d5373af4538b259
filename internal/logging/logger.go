package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// MaxLogSize is the maximum size in bytes before the log file rotates.
	MaxLogSize = 10 * 1024 * 1024

	logFileName = "talos.log"
)

var (
	// Logger is the global logger instance. Until Init is called it discards
	// nothing but writes to stderr, so early errors are still visible.
	Logger = slog.Default()

	logFile *os.File
)

// Init initializes the file-backed JSON logger under dataDir/logs.
func Init(dataDir string) error {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, logFileName)
	rotateIfLarge(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	Logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(Logger)

	Logger.Info("logger initialized", "path", path)
	return nil
}

// rotateIfLarge renames an oversized log file out of the way before opening.
func rotateIfLarge(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < MaxLogSize {
		return
	}
	backup := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102-150405"))
	_ = os.Rename(path, backup)
}

// Close properly closes the log file.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// LogLLMRequest logs an outbound chat completion request.
func LogLLMRequest(backend, model string, messageCount int) {
	Logger.Info("llm request",
		"backend", backend,
		"model", model,
		"messages", messageCount)
}

// LogLLMResponse logs a chat completion response or its failure.
func LogLLMResponse(model string, responseLength int, err error) {
	if err != nil {
		Logger.Error("llm response failed", "model", model, "error", err)
		return
	}
	Logger.Info("llm response", "model", model, "responseLength", responseLength)
}

// LogAppStart logs application startup.
func LogAppStart(version string) {
	Logger.Info("app started", "version", version)
}

// LogAppExit logs application exit.
func LogAppExit() {
	Logger.Info("app exited")
}

// LogError logs an error with optional structured arguments.
func LogError(msg string, args ...any) {
	Logger.Error(msg, args...)
}
