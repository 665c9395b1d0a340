package wikipub

import (
	"errors"
	"sync"
)

// Severity ranks a Diagnostic.
type Severity int

// Severity levels, least to most severe. SeverityDebug sits below notice and
// is only shown by verbose sinks.
const (
	SeverityDebug Severity = iota - 1
	SeverityNotice
	SeverityWarning
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a recovered condition surfaced to the caller. Err wraps one of
// the package sentinel errors when the condition is classified.
type Diagnostic struct {
	Severity Severity
	Err      error
	Message  string
	Page     string // reference of the page being parsed, if any
}

// Is reports whether the diagnostic carries target in its error chain.
func (d Diagnostic) Is(target error) bool {
	return d.Err != nil && errors.Is(d.Err, target)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// discardReporter drops everything. Used only when the caller passes nil.
type discardReporter struct{}

func (discardReporter) Report(Diagnostic) {}

// Collector is a Reporter that keeps every diagnostic in memory.
// It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many collected diagnostics carry target.
func (c *Collector) Count(target error) int {
	n := 0
	for _, d := range c.Diagnostics() {
		if d.Is(target) {
			n++
		}
	}
	return n
}

// AtLeast returns the diagnostics whose severity is at least min.
func (c *Collector) AtLeast(min Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Severity >= min {
			out = append(out, d)
		}
	}
	return out
}

// Compile-time interface checks.
var (
	_ Reporter = (*Collector)(nil)
	_ Reporter = ReporterFunc(nil)
	_ Reporter = discardReporter{}
)
