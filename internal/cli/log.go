// Package cli implements the roadmap command-line interface.
//
// Commands load a roadmap graph (JSON, YAML, or "-" for stdin), run it
// through the pipeline and print or write the results. Settings come from
// the layered configuration in pkg/config; flags override it only when set.
//
// # Commands
//
// The main commands are:
//   - analyze: Report cycles, depth, critical path and isolated items
//   - layout: Compute a hierarchical or force-directed layout (--watch reruns on change)
//   - render: Draw a layout as SVG, DOT, PNG, PDF or JSON
//   - serve: Run the HTTP API with an editing session
//   - inspect: Browse a graph and its metrics in the terminal
//   - cache, config, version, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging; the level
// otherwise comes from log.level in the config.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Layout written (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
