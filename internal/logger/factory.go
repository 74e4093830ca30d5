package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a charm log on stdout that respects the global log level
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// Stderr creates a charm log on stderr.
// Server mode must use this one, stdout carries the IPC stream.
func Stderr(prefix string) *log.Logger {
	return New(prefix, os.Stderr)
}
