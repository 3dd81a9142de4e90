// Package logging builds the structured logger shared by the CLI, the run
// loop and the backends.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a stderr logger at the named level ("debug", "info", "warn",
// "error"). Unknown levels fall back to info.
func New(level string) *log.Logger {
	return NewWriter(os.Stderr, level)
}

func NewWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "orbitsim",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard returns a logger that drops everything, for tests and benchmarks.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
