package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Horizontal rule: four or more dashes at the start of a line
	horizontalRule = regexp.MustCompile(`(^|\n)----+`)
)

// NormalizeLineEndings converts \r\n and \r to \n. Wiki exports keep the
// line endings of whoever saved the page last, and every later stage splits
// on \n.
func NormalizeLineEndings(content string) string {
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// FormatLines turns ---- rules into <hr />. Text after the dashes stays on
// the line.
func FormatLines(content string) string {
	return horizontalRule.ReplaceAllString(content, "$1<hr />")
}
