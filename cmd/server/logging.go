package main

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger from the global flags
func newLogger(w io.Writer, g *Globals) *log.Logger {
	level := log.InfoLevel
	if g.Debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	if g.LogFormat == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

// seed returns the configured seed, or one taken from the clock
func (g *Globals) seed() int64 {
	if g.Seed != 0 {
		return g.Seed
	}
	return time.Now().UnixNano()
}
