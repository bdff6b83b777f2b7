// Package logging provides categorized zap-based logging for ieltsforge.
// Each subsystem logs through its own named logger; log files are written
// under <workspace>/.ieltsforge/logs/ when file logging is enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and configuration
	CategoryGEPA      Category = "gepa"      // Optimization loop decisions
	CategoryRollout   Category = "rollout"   // Per-topic rollout execution
	CategoryScoring   Category = "scoring"   // Validators and LLM judge
	CategoryLLM       Category = "llm"       // LLM API calls
	CategoryRetrieval Category = "retrieval" // Source retrieval
	CategoryExam      Category = "exam"      // Final exam output
)

// Options configures the logging system.
type Options struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Dir is where per-run log files go. Empty disables file output.
	Dir string
	// Console mirrors all output to stderr.
	Console bool
}

var (
	mu      sync.RWMutex
	root    *zap.Logger
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Initialize builds the root logger. Safe to call once at process start;
// subsequent calls replace the root and drop cached category loggers.
func Initialize(opts Options) error {
	level := zapcore.InfoLevel
	switch opts.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cores []zapcore.Core

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, "ieltsforge.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), level))
	}

	if opts.Console || opts.Dir == "" {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), level))
	}

	mu.Lock()
	defer mu.Unlock()
	root = zap.New(zapcore.NewTee(cores...))
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// Get returns the sugared logger for a category, creating it on first use.
// Works before Initialize by falling back to a no-op logger.
func Get(cat Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}
	base := root
	if base == nil {
		base = zap.NewNop()
	}
	l := base.Named(string(cat)).Sugar()
	loggers[cat] = l
	return l
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if root != nil {
		_ = root.Sync()
	}
}

// GEPA logs an info message to the gepa category.
func GEPA(format string, args ...interface{}) {
	Get(CategoryGEPA).Infof(format, args...)
}

// GEPADebug logs a debug message to the gepa category.
func GEPADebug(format string, args ...interface{}) {
	Get(CategoryGEPA).Debugf(format, args...)
}
