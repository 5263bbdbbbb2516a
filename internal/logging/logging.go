// v0
// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
	"os"
)

type DualLogger struct {
	Logger *slog.Logger
	file   *os.File
}

// New creates a slog logger writing to both stdout and a file. The path
// comes from COMPLIANCE_LOGFILE and defaults to "./compliance.log".
func New() (*DualLogger, error) {
	logPath := os.Getenv("COMPLIANCE_LOGFILE")
	if logPath == "" {
		logPath = "./compliance.log"
	}

	writers := []io.Writer{os.Stdout}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	writers = append(writers, file)

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: logLevel()})
	return &DualLogger{Logger: slog.New(handler), file: file}, nil
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Close releases the log file.
func (d *DualLogger) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
