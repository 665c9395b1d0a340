package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxHeadingLevel is the deepest heading the parser recognises.
const MaxHeadingLevel = 6

const (
	markerOpen   = "<!-- "
	markerClose  = " -->"
	markerPrefix = "SECTION:"
)

var (
	// headingPatterns[n-1] matches a line bounded by n '=' signs. Trailing
	// blanks after the closing run are dropped, the newline is kept.
	headingPatterns = buildHeadingPatterns()

	// headingLink removes link markup when computing an anchor.
	headingLink = regexp.MustCompile(`\[\[(.*)\]\]`)

	// sectionMarker matches any marker left by FormatHeadings.
	sectionMarker = regexp.MustCompile(`<!-- SECTION:\d:.*? -->`)
)

func buildHeadingPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, MaxHeadingLevel)
	for level := 1; level <= MaxHeadingLevel; level++ {
		run := strings.Repeat("=", level)
		patterns[level-1] = regexp.MustCompile(`(?m)^` + run + `(.+)` + run + `(?:[ \t]|$)`)
	}
	return patterns
}

// FormatHeadings converts ==Heading== lines into anchored <hN> elements,
// each preceded by an invisible section marker. Levels run from 6 down to 1
// so a deeper run is never read as a shallower heading with stray '='.
func FormatHeadings(content string) string {
	for level := MaxHeadingLevel; level >= 1; level-- {
		pattern := headingPatterns[level-1]
		content = pattern.ReplaceAllStringFunc(content, func(match string) string {
			body := pattern.FindStringSubmatch(match)[1]
			return formatHeading(level, strings.TrimSpace(body))
		})
	}
	return content
}

func formatHeading(level int, body string) string {
	anchor := HeadingAnchor(body)
	return fmt.Sprintf("%s%s%d:%s%s<a name=\"%s\"></a><h%d>%s</h%d>",
		markerOpen, markerPrefix, level, anchor, markerClose,
		anchor, level, body, level)
}

// HeadingAnchor returns the anchor id for a heading body: link markup is
// removed and the rest trimmed.
func HeadingAnchor(body string) string {
	return strings.TrimSpace(headingLink.ReplaceAllString(body, ""))
}

// StripSection keeps only the section whose anchor equals wanted: the span
// from its marker up to, not including, the next marker of the same or a
// shallower level, or the end of the text. It returns "" and false when no
// marker carries that anchor.
func StripSection(content, wanted string) (string, bool) {
	parts := strings.Split(content, markerOpen)

	start, startLevel := -1, 0
	for i, part := range parts {
		level, label, ok := parseMarker(part)
		if ok && label == wanted {
			start, startLevel = i, level
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(parts)
	for i := start + 1; i < len(parts); i++ {
		if level, _, ok := parseMarker(parts[i]); ok && level <= startLevel {
			end = i
			break
		}
	}

	return markerOpen + strings.Join(parts[start:end], markerOpen), true
}

// parseMarker reads "SECTION:n:anchor -->..." from the start of a split part.
func parseMarker(part string) (level int, label string, ok bool) {
	rest, found := strings.CutPrefix(part, markerPrefix)
	if !found || len(rest) < 2 || rest[1] != ':' {
		return 0, "", false
	}
	level, err := strconv.Atoi(rest[:1])
	if err != nil {
		return 0, "", false
	}
	label, _, found = strings.Cut(rest[2:], markerClose)
	if !found {
		return 0, "", false
	}
	return level, label, true
}

// RemoveSectionMarkers deletes every marker left by FormatHeadings.
func RemoveSectionMarkers(content string) string {
	return sectionMarker.ReplaceAllString(content, "")
}
