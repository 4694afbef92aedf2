package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger creates the structured logger used for diagnostics. On a terminal
// it writes human-readable text; when stderr is piped or redirected it writes
// JSON so wrapper scripts can parse it. Debug output is enabled by --verbose
// or by setting TREESUM_DEBUG.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || os.Getenv("TREESUM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
