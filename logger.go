package vmap

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for vmap and its sub-packages.
// By default vmap produces no log output. Pass nil to restore silence.
//
// Log levels used by vmap:
//   - [slog.LevelDebug]: geometry fallbacks (singular inverse mapping)
//   - [slog.LevelInfo]: layout load/save, surface spawn and removal
//   - [slog.LevelWarn]: skipped layout entries, refused removals
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages (session, remote,
// monitor, store) share it through this accessor.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
