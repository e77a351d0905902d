package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is shown on every log line
const Prefix = "pdf-compressor"

// New creates the service logger writing to w at the given level.
// Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          Prefix,
	})

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	// Caller info is only useful while debugging
	if lvl == log.DebugLevel {
		logger.SetReportCaller(true)
	}

	return logger
}

// Discard returns a logger that drops everything, for tests and one-off commands.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
