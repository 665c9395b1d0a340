// Package dateutil turns user-friendly date format strings into Go layouts.
// It backs the date-valued magic variables declared in a publish manifest.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used for a bare "auto" value.
const DefaultDateFormat = "YYYY-MM-DD"

// autoPrefix marks a value that is computed from the clock.
const autoPrefix = "auto"

// dateTokens maps format tokens to Go layout components.
// Ordered by length descending within each family for greedy matching.
// Tokens are case-sensitive: MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"time":     "HH:mm",
	"datetime": "YYYY-MM-DD HH:mm",
}

// ParseDateFormat converts a format string into a Go time layout.
// Text inside brackets is copied literally: "[Week of] MMMM" keeps "Week of".
// Unrecognised characters pass through unchanged.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var layout strings.Builder
	layout.Grow(len(format) + 10)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			layout.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		n := matchToken(format[i:], &layout)
		if n == 0 {
			layout.WriteByte(format[i])
			n = 1
		}
		i += n
	}

	return layout.String(), nil
}

// matchToken writes the layout for the token at the start of s and returns
// its length, or 0 if s does not start with a token.
func matchToken(s string, layout *strings.Builder) int {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			layout.WriteString(t.goFmt)
			return len(t.token)
		}
	}
	return 0
}

// IsAuto reports whether value asks for a clock-derived date
// ("auto" or "auto:FORMAT", case-insensitive).
func IsAuto(value string) bool {
	lower := strings.ToLower(value)
	return lower == autoPrefix || strings.HasPrefix(lower, autoPrefix+":")
}

// Layout returns the Go layout for an auto value. Presets are matched
// case-insensitively; a bare "auto" uses DefaultDateFormat.
func Layout(value string) (string, error) {
	if !IsAuto(value) {
		return "", fmt.Errorf("%w: %q is not an auto value, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}
	format := DefaultDateFormat
	if len(value) > len(autoPrefix) {
		format = value[len(autoPrefix)+1:]
		if format == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
	}
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	return ParseDateFormat(format)
}

// ResolveDate formats t according to an auto value. Any other value is
// returned unchanged.
func ResolveDate(value string, t time.Time) (string, error) {
	if !IsAuto(value) {
		return value, nil
	}
	layout, err := Layout(value)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
