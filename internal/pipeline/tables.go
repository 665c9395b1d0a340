package pipeline

import (
	"regexp"
	"strings"
)

// tableOpen matches "{|" with an optional ":" indent prefix and attributes.
var tableOpen = regexp.MustCompile(`^(:*)\{\|(.*)$`)

// tableFrame tracks the open row and cell of one table. Nested tables push
// a new frame.
type tableFrame struct {
	cellOpen bool
	cellTag  string // td, th or caption
	rowOpen  bool
	rowAttrs string // sanitized attributes for the next <tr>
	indent   int    // number of <dl><dd> wrappers around the table
}

// FormatTables converts {| ... |} pipe tables into HTML tables. Lines
// outside any table pass through untouched; table lines are trimmed first.
// Tables, rows and cells still open at the end are closed in LIFO order.
func FormatTables(content string) string {
	lines := strings.Split(content, "\n")
	var stack []*tableFrame

	for k, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := tableOpen.FindStringSubmatch(line); m != nil {
			indent := len(m[1])
			lines[k] = strings.Repeat("<dl><dd>", indent) +
				"<table" + SanitizeAttributes(m[2], "table") + ">"
			stack = append(stack, &tableFrame{indent: indent})
			continue
		}
		if len(stack) == 0 {
			continue
		}
		top := stack[len(stack)-1]

		switch {
		case strings.HasPrefix(line, "|}"):
			lines[k] = top.closeCell() + top.closeRow() + "</table>" + line[2:] +
				strings.Repeat("</dd></dl>", top.indent)
			stack = stack[:len(stack)-1]

		case strings.HasPrefix(line, "|-"):
			// Any number of dashes is allowed: |-------
			attrs := strings.TrimLeft(line[1:], "-")
			lines[k] = top.closeCell() + top.closeRow()
			top.rowAttrs = SanitizeAttributes(attrs, "tr")

		case strings.HasPrefix(line, "|"), strings.HasPrefix(line, "!"):
			lines[k] = top.formatCells(line)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.cellOpen {
			lines = append(lines, "</"+top.cellTag+">")
		}
		if top.rowOpen {
			lines = append(lines, "</tr>")
		}
		lines = append(lines, "</table>"+strings.Repeat("</dd></dl>", top.indent))
	}

	return strings.Join(lines, "\n")
}

// closeCell returns the end tag of the open cell, if any.
func (f *tableFrame) closeCell() string {
	if !f.cellOpen {
		f.cellTag = ""
		return ""
	}
	tag := f.cellTag
	f.cellOpen, f.cellTag = false, ""
	return "</" + tag + ">"
}

// closeRow returns </tr> if a row is open. Row attributes are consumed.
func (f *tableFrame) closeRow() string {
	f.rowAttrs = ""
	if !f.rowOpen {
		return ""
	}
	f.rowOpen = false
	return "</tr>"
}

// formatCells converts a "|", "!" or "|+" line into one or more cells. A
// cell may start with "attributes|"; a "|" after "[[" is treated as part of
// a link instead.
func (f *tableFrame) formatCells(line string) string {
	kind := line[0]
	if strings.HasPrefix(line, "|+") {
		kind = '+'
		line = line[1:]
	}
	after := line[1:]
	if kind == '!' {
		after = strings.ReplaceAll(after, "!!", "||")
	}

	var out strings.Builder
	for _, cell := range strings.Split(after, "||") {
		var open string
		if kind != '+' {
			if !f.rowOpen {
				open = "<tr" + f.rowAttrs + ">\n"
			}
			f.rowOpen = true
			f.rowAttrs = ""
		}
		if f.cellOpen {
			open = "</" + f.cellTag + ">" + open
		}

		tag := cellTag(kind)
		f.cellTag = tag

		attrs, text, found := strings.Cut(cell, "|")
		if !found || strings.Contains(attrs, "[[") {
			out.WriteString(open + "<" + tag + ">" + cell)
		} else {
			out.WriteString(open + "<" + tag + SanitizeAttributes(attrs, tag) + ">" + text)
		}
		f.cellOpen = true
	}
	return out.String()
}

func cellTag(kind byte) string {
	switch kind {
	case '|':
		return "td"
	case '!':
		return "th"
	default:
		return "caption"
	}
}
