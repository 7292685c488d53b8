// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the structured logger shared by all stages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// New returns a logger writing to w (stderr when nil). Format "json" emits
// one JSON object per line; anything else uses the console writer.
func New(cfg types.LoggingConfig, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if cfg.Level != "" {
		level = log.ParseLevel(strings.ToLower(cfg.Level))
	}

	var writer log.Writer
	if strings.EqualFold(cfg.Format, "json") {
		writer = &log.IOWriter{Writer: w}
	} else {
		writer = &log.ConsoleWriter{
			Writer:         w,
			ColorOutput:    w == os.Stderr,
			EndWithMessage: true,
		}
	}

	return &log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// Or returns l, or the package default logger when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return &log.DefaultLogger
	}
	return l
}
