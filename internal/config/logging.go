package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// NewLogger builds the process logger: JSON to stdout at debug level when
// Debug is set, plus a rotated log file when LogDir is set. The returned
// closer releases the log file and is never nil.
func NewLogger(cfg *Config, prefix string) (*slog.Logger, func() error, error) {
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closer := func() error { return nil }

	if cfg.LogDir != "" {
		f, err := SetupLogFile(cfg.LogDir, prefix, cfg.LogMaxFiles)
		if err != nil {
			return nil, closer, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f.Close
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	return logger, closer, nil
}

// SetupLogFile creates a new timestamped log file and cleans up old files.
// Returns the file handle (caller must close) or error.
func SetupLogFile(dir, prefix string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log",
		prefix, time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// Cleanup failure is not fatal, logging still works
	if err := cleanupOldLogs(dir, prefix, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old logs: %v\n", err)
	}

	return f, nil
}

// cleanupOldLogs removes oldest log files when count exceeds maxFiles.
func cleanupOldLogs(dir, prefix string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return err
	}

	if len(files) <= maxFiles {
		return nil
	}

	// Timestamp format sorts chronologically
	sort.Strings(files)

	for i := 0; i < len(files)-maxFiles; i++ {
		if err := os.Remove(files[i]); err != nil {
			return fmt.Errorf("remove %s: %w", files[i], err)
		}
	}

	return nil
}
