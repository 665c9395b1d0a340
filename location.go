package wikipub

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// templateNamespace is the namespace assumed for bare {{name}} references.
const templateNamespace = "template"

// trailingParenthetical matches a disambiguation suffix such as "(album)".
var trailingParenthetical = regexp.MustCompile(`\(.*?\)$`)

// Location is a resolved reference to a wiki page or section.
// Build it with ParseLocation; the zero value is an empty, unescaped location.
type Location struct {
	Language   string // ISO 639-1 code, empty if absent
	Namespace  string // lower-case, empty if absent
	Title      string
	Section    string
	HasSection bool // distinguishes "Page#" from "Page"
	Escaped    bool // reference began with ':'
}

// ParseLocation resolves a raw reference (the inner text of [[...]] or
// {{...}}, or a configured page title) into a Location.
//
// An empty title yields the partially parsed Location together with an error
// wrapping ErrInvalidLocation, so callers can report it and carry on.
func ParseLocation(ref string) (Location, error) {
	var loc Location
	rest := ref

	if strings.HasPrefix(rest, ":") {
		loc.Escaped = true
		rest = rest[1:]
	}

	if prefix, remainder, found := strings.Cut(rest, ":"); found {
		rest = remainder
		if IsLanguageCode(prefix) {
			loc.Language = prefix
			if ns, remainder, found := strings.Cut(rest, ":"); found {
				loc.Namespace = ns
				rest = remainder
			}
		} else {
			loc.Namespace = prefix
		}
	}

	// Namespaces are case-insensitive regardless of title capitalization.
	loc.Namespace = strings.ToLower(loc.Namespace)

	if title, section, found := strings.Cut(rest, "#"); found {
		loc.Title = title
		loc.Section = section
		loc.HasSection = true
	} else {
		loc.Title = rest
	}

	if loc.Title == "" {
		return loc, fmt.Errorf("%w: %q", ErrInvalidLocation, ref)
	}
	return loc, nil
}

// MustParseLocation is like ParseLocation but panics on error.
// Intended for package-level fixtures and tests.
func MustParseLocation(ref string) Location {
	loc, err := ParseLocation(ref)
	if err != nil {
		panic(err)
	}
	return loc
}

// WithNamespace returns a copy of l using the given namespace.
func (l Location) WithNamespace(ns string) Location {
	l.Namespace = strings.ToLower(ns)
	return l
}

// IsSameAs reports whether l and other name the same page and section.
// A bare, unescaped location also matches the same title in the template
// namespace, in either direction.
func (l Location) IsSameAs(other Location) bool {
	if l.Title != other.Title || l.Language != other.Language {
		return false
	}
	if l.Section != other.Section {
		return false
	}
	if l.Namespace != other.Namespace &&
		!elidesTemplateNamespace(l, other) &&
		!elidesTemplateNamespace(other, l) {
		return false
	}
	return true
}

// elidesTemplateNamespace reports whether first is a bare reference that
// implicitly names second's template page.
func elidesTemplateNamespace(first, second Location) bool {
	return first.Namespace == "" && !first.Escaped && second.Namespace == templateNamespace
}

// FullTitle returns "lang:Namespace:Title" with absent parts omitted.
func (l Location) FullTitle() string {
	var b strings.Builder
	if l.Language != "" {
		b.WriteString(l.Language)
		b.WriteByte(':')
	}
	if l.Namespace != "" {
		b.WriteString(upperFirst(l.Namespace))
		b.WriteByte(':')
	}
	b.WriteString(l.Title)
	return b.String()
}

// StrippedTitle returns the title without a trailing parenthetical, so
// "Media (album)" is labelled "Media".
func (l Location) StrippedTitle() string {
	return strings.TrimSpace(trailingParenthetical.ReplaceAllString(l.Title, ""))
}

// String renders the location back into reference form. The leading colon is
// included only when withEscape is set and the location is escaped.
func (l Location) String(withEscape bool) string {
	var b strings.Builder
	if withEscape && l.Escaped {
		b.WriteByte(':')
	}
	b.WriteString(l.FullTitle())
	if l.HasSection {
		b.WriteByte('#')
		b.WriteString(l.Section)
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
