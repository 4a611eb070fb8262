// Package obslog provides a small structured-logging wrapper around
// log/slog, scoped per component, in the spirit of how the rest of
// the ecosystem wraps slog for consistent, leveled logging across a
// module's subsystems.
package obslog

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	base   slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
)

// Configure sets the minimum log level ("debug", "info", "warn",
// "error") and output format ("text", "json"). The level applies to
// all loggers, including previously obtained ones, since they share
// one level variable. The format and output apply only to loggers
// obtained by For after the call; earlier loggers keep their handler.
func Configure(levelName, format string, out *os.File) {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(levelName) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "json" {
		base = slog.NewJSONHandler(out, opts)
	} else {
		base = slog.NewTextHandler(out, opts)
	}
}

// For returns a logger scoped to a named component, e.g. For("store").
func For(component string) *slog.Logger {
	mu.Lock()
	h := base
	mu.Unlock()
	return slog.New(h).With("component", component)
}
