package alloc

import (
	"io"
	"log/slog"
)

// L is the package-level logger. It discards everything until SetLogger is
// called, the same opt-in-by-default shape every diagnostic surface in this
// repository follows.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger installs l as the package logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	L = l
}

// say emits a verbose diagnostic, the Go analog of the original's SAY macro:
// gated on the allocator's own Verbose flag rather than a build tag, so it
// can be toggled at runtime.
func say(verbose bool, msg string, args ...any) {
	if verbose {
		L.Info(msg, args...)
	}
}

// trace emits a trace diagnostic, the analog of the original's TRACE macro.
func trace(enabled bool, msg string, args ...any) {
	if enabled {
		L.Debug(msg, args...)
	}
}
