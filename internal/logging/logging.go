package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level string, json bool) *log.Logger {
	return NewWriter(os.Stderr, level, json)
}

func NewWriter(w io.Writer, level string, json bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}
	if json {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}
