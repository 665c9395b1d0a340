package wikipub

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-wikipub/internal/dateutil"
)

// MagicFunc computes the replacement for a magic variable.
type MagicFunc func() string

// MagicVars maps upper-case keywords to their compute functions. Hosts may
// edit it before a run; parsing only reads it.
type MagicVars map[string]MagicFunc

// DefaultMagicVars returns the built-in keywords. Each value is computed from
// now at substitution time, never cached. A nil now uses time.Now.
func DefaultMagicVars(now func() time.Time) MagicVars {
	if now == nil {
		now = time.Now
	}
	return MagicVars{
		"CURRENTMONTHNAME": func() string { return now().Month().String() },
		"CURRENTDAY":       func() string { return strconv.Itoa(now().Day()) },
		"CURRENTYEAR":      func() string { return strconv.Itoa(now().Year()) },
		"CURRENTMONTH":     func() string { return now().Format("01") },
		"CURRENTDAYNAME":   func() string { return now().Weekday().String() },
		"CURRENTTIME":      func() string { return now().Format("15:04") },
	}
}

// Set registers fn under keyword, replacing any existing entry.
func (m MagicVars) Set(keyword string, fn MagicFunc) {
	m[strings.ToUpper(keyword)] = fn
}

// Static registers a fixed replacement value.
func (m MagicVars) Static(keyword, value string) {
	m.Set(keyword, func() string { return value })
}

// Define registers a manifest value: "auto" and "auto:FORMAT" become clock
// driven, anything else is static.
func (m MagicVars) Define(keyword, value string, now func() time.Time) error {
	if !dateutil.IsAuto(value) {
		m.Static(keyword, value)
		return nil
	}
	layout, err := dateutil.Layout(value)
	if err != nil {
		return fmt.Errorf("magic variable %s: %w", keyword, err)
	}
	if now == nil {
		now = time.Now
	}
	m.Set(keyword, func() string { return now().Format(layout) })
	return nil
}

// Delete removes keyword.
func (m MagicVars) Delete(keyword string) {
	delete(m, strings.ToUpper(keyword))
}

// Lookup returns the compute function for keyword. Keywords are matched
// exactly as written in the page.
func (m MagicVars) Lookup(keyword string) (MagicFunc, bool) {
	fn, ok := m[keyword]
	return fn, ok && fn != nil
}

// Clone returns a shallow copy that can be modified independently.
func (m MagicVars) Clone() MagicVars {
	out := make(MagicVars, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SubstituteMagic replaces every {{KEYWORD}} found in vars. Unknown keywords
// are left verbatim and reported as warnings.
func SubstituteMagic(text string, vars MagicVars, report Reporter) string {
	if report == nil {
		report = discardReporter{}
	}
	return templateRef.ReplaceAllStringFunc(text, func(match string) string {
		keyword := match[2 : len(match)-2]
		fn, ok := vars.Lookup(keyword)
		if !ok {
			report.Report(Diagnostic{
				Severity: SeverityWarning,
				Err:      fmt.Errorf("%w: %s", ErrUnresolvedMagicVariable, match),
				Message:  "Unknown magic variable or missing template: " + match,
			})
			return match
		}
		value := fn()
		report.Report(Diagnostic{
			Severity: SeverityNotice,
			Message:  fmt.Sprintf("Magic variable substitution: %s: %s", match, value),
		})
		return value
	})
}
