package compositor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Its Enabled always reports false, so the
// per-pass statistics in CalculateDrawProperties are never formatted when
// no logger is configured.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var silent = slog.New(discard{})

// passLogger is shared by every layer tree. Passes over different trees
// may run on different goroutines while SetLogger swaps it.
var passLogger atomic.Pointer[slog.Logger]

func init() {
	passLogger.Store(silent)
}

// SetLogger sets the logger used by property tree builds, draw property
// passes and the debugview renderer. Passing nil silences them again,
// which is the default.
//
// A pass logs at two levels:
//   - [slog.LevelDebug]: one record per CalculateDrawProperties call with
//     the pass id, layer and surface counts, skipped subtrees and property
//     tree sizes, and whether the trees were rebuilt
//   - [slog.LevelWarn]: one record per relation the builder had to
//     repair, such as a clip parent outside the tree or a skipped scroll
//     parent, followed by a debug summary of the repairs
//
// To trace a pass on stderr:
//
//	compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	passLogger.Store(l)
}

// Logger returns the logger passes write to.
func Logger() *slog.Logger {
	return passLogger.Load()
}
