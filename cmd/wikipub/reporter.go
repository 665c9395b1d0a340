package main

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/alnah/go-wikipub"
)

// logReporter writes diagnostics through slog and counts errors.
type logReporter struct {
	logger   *slog.Logger
	errors   atomic.Int64
	warnings atomic.Int64
}

// newLogReporter logs to w. Quiet drops notices; verbose adds debug output.
func newLogReporter(w io.Writer, quiet, verbose bool) *logReporter {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &logReporter{logger: slog.New(handler)}
}

// Report implements wikipub.Reporter.
func (r *logReporter) Report(d wikipub.Diagnostic) {
	var attrs []slog.Attr
	if d.Page != "" {
		attrs = append(attrs, slog.String("page", d.Page))
	}
	if d.Err != nil && d.Severity >= wikipub.SeverityWarning {
		attrs = append(attrs, slog.String("error", d.Err.Error()))
	}

	msg := d.Message
	if msg == "" && d.Err != nil {
		msg = d.Err.Error()
	}

	switch d.Severity {
	case wikipub.SeverityError:
		r.errors.Add(1)
	case wikipub.SeverityWarning:
		r.warnings.Add(1)
	}
	r.logger.LogAttrs(context.Background(), severityLevel(d.Severity), msg, attrs...)
}

// Errors returns the number of error diagnostics reported so far.
func (r *logReporter) Errors() int { return int(r.errors.Load()) }

// Warnings returns the number of warning diagnostics reported so far.
func (r *logReporter) Warnings() int { return int(r.warnings.Load()) }

// severityLevel maps a diagnostic severity to a slog level.
func severityLevel(s wikipub.Severity) slog.Level {
	switch s {
	case wikipub.SeverityDebug:
		return slog.LevelDebug
	case wikipub.SeverityWarning:
		return slog.LevelWarn
	case wikipub.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Compile-time interface check.
var _ wikipub.Reporter = (*logReporter)(nil)
