// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	// Metadata keeps the time and level attributes. With it off, lines
	// carry only the message and the caller's attributes.
	Metadata bool

	// Level is the minimum level logged. Defaults to info.
	Level slog.Leveler
}

// NewCommandLogger creates a structured logger on stderr for CLI
// command operations. See NewLogger.
func NewCommandLogger(options LoggerOptions) *slog.Logger {
	return NewLogger(os.Stderr, options)
}

// NewLogger creates a structured logger writing to w. When w is a
// terminal, uses slog.TextHandler for human-readable output. When w is
// piped or redirected (CI, scripts), uses slog.JSONHandler for
// machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(options).With(
//	    "command", "run",
//	    "branch", branch,
//	)
func NewLogger(w io.Writer, options LoggerOptions) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: options.Level}
	if handlerOptions.Level == nil {
		handlerOptions.Level = slog.LevelInfo
	}
	if !options.Metadata {
		handlerOptions.ReplaceAttr = dropMetadata
	}

	var handler slog.Handler
	if isTerminal(w) {
		handler = slog.NewTextHandler(w, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(w, handlerOptions)
	}
	return slog.New(handler)
}

// dropMetadata removes the built-in time and level attributes.
func dropMetadata(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && (attr.Key == slog.TimeKey || attr.Key == slog.LevelKey) {
		return slog.Attr{}
	}
	return attr
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
