package pipeline

import (
	"regexp"
	"strings"
)

// apostropheRun matches two or more consecutive apostrophes.
var apostropheRun = regexp.MustCompile(`''+`)

// Markup runs after normalization.
const (
	italicRun = "''"
	boldRun   = "'''"
	bothRun   = "'''''"
)

// quoteState is the set of tags currently open on a line. "both" means a
// 5-run opened bold and italic together and the nesting order is not known
// yet, so text is held until the next run decides it.
type quoteState string

const (
	quoteNone       quoteState = ""
	quoteBold       quoteState = "b"
	quoteItalic     quoteState = "i"
	quoteBoldItalic quoteState = "bi" // <b><i>
	quoteItalicBold quoteState = "ib" // <i><b>
	quoteBoth       quoteState = "both"
)

// FormatQuotes applies FormatQuoteLine to every line. State never carries
// from one line to the next.
func FormatQuotes(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = FormatQuoteLine(line)
	}
	return strings.Join(lines, "\n")
}

// FormatQuoteLine converts '' (italic), ''' (bold) and ''''' (both) runs on
// a single line into <i> and <b> tags.
func FormatQuoteLine(line string) string {
	parts := splitApostrophes(line)
	if len(parts) == 1 {
		return line
	}

	italics, bolds := normalizeRuns(parts)
	if bolds%2 == 1 && italics%2 == 1 {
		repairOddRuns(parts)
	}
	return emitQuotes(parts)
}

// splitApostrophes splits line around apostrophe runs, keeping the runs.
// Text pieces sit at even indexes and runs at odd indexes, so the result
// always has odd length.
func splitApostrophes(line string) []string {
	locs := apostropheRun.FindAllStringIndex(line, -1)
	parts := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		parts = append(parts, line[prev:loc[0]], line[loc[0]:loc[1]])
		prev = loc[1]
	}
	return append(parts, line[prev:])
}

// normalizeRuns rewrites 4-runs as a literal apostrophe plus bold, and runs
// longer than 5 as literal apostrophes plus a 5-run. It returns the number
// of italic and bold runs, a 5-run counting as both.
func normalizeRuns(parts []string) (italics, bolds int) {
	for i := 1; i < len(parts); i += 2 {
		switch n := len(parts[i]); {
		case n == 4:
			parts[i-1] += "'"
			parts[i] = boldRun
		case n > 5:
			parts[i-1] += strings.Repeat("'", n-5)
			parts[i] = bothRun
		}

		switch len(parts[i]) {
		case 2:
			italics++
		case 3:
			bolds++
		case 5:
			italics++
			bolds++
		}
	}
	return italics, bolds
}

// repairOddRuns turns one bold run into an apostrophe followed by an italic
// run. The first run after a single-letter word is preferred, then the first
// after a longer word, then the first after a space. A line whose only odd
// run is a 5-run has no candidate and is left alone.
func repairOddRuns(parts []string) {
	singleLetter, multiLetter, space := -1, -1, -1

	for i := 1; i < len(parts); i += 2 {
		if len(parts[i]) != 3 {
			continue
		}
		x1, x2 := lastTwoBytes(parts[i-1])
		switch {
		case x1 == ' ':
			if space == -1 {
				space = i
			}
		case x2 == ' ':
			if singleLetter == -1 {
				singleLetter = i
			}
		default:
			if multiLetter == -1 {
				multiLetter = i
			}
		}
	}

	target := space
	if singleLetter > -1 {
		target = singleLetter
	} else if multiLetter > -1 {
		target = multiLetter
	}
	if target > -1 {
		parts[target] = italicRun
		parts[target-1] += "'"
	}
}

// lastTwoBytes returns the last byte of s and the one before it. A one-byte
// string reports that byte twice; an empty string reports zeros.
func lastTwoBytes(s string) (last, beforeLast byte) {
	switch len(s) {
	case 0:
		return 0, 0
	case 1:
		return s[0], s[0]
	default:
		return s[len(s)-1], s[len(s)-2]
	}
}

// emitQuotes walks the runs through the tag state machine.
func emitQuotes(parts []string) string {
	var out, held strings.Builder
	state := quoteNone

	for i, part := range parts {
		if i%2 == 0 {
			if state == quoteBoth {
				held.WriteString(part)
			} else {
				out.WriteString(part)
			}
			continue
		}

		switch len(part) {
		case 2:
			state = italicTransition(state, &out, held.String())
		case 3:
			state = boldTransition(state, &out, held.String())
		case 5:
			if state == quoteNone {
				held.Reset()
			}
			state = bothTransition(state, &out, held.String())
		}
	}

	switch state {
	case quoteBold:
		out.WriteString("</b>")
	case quoteItalicBold:
		out.WriteString("</b></i>")
	case quoteItalic:
		out.WriteString("</i>")
	case quoteBoldItalic:
		out.WriteString("</i></b>")
	case quoteBoth:
		out.WriteString("<b><i>" + held.String() + "</i></b>")
	}
	return out.String()
}

func italicTransition(state quoteState, out *strings.Builder, held string) quoteState {
	switch state {
	case quoteItalic:
		out.WriteString("</i>")
		return quoteNone
	case quoteBoldItalic:
		out.WriteString("</i>")
		return quoteBold
	case quoteItalicBold:
		out.WriteString("</b></i><b>")
		return quoteBold
	case quoteBoth:
		out.WriteString("<b><i>" + held + "</i>")
		return quoteBold
	case quoteBold:
		out.WriteString("<i>")
		return quoteBoldItalic
	default:
		out.WriteString("<i>")
		return quoteItalic
	}
}

func boldTransition(state quoteState, out *strings.Builder, held string) quoteState {
	switch state {
	case quoteBold:
		out.WriteString("</b>")
		return quoteNone
	case quoteBoldItalic:
		out.WriteString("</i></b><i>")
		return quoteItalic
	case quoteItalicBold:
		out.WriteString("</b>")
		return quoteItalic
	case quoteBoth:
		out.WriteString("<i><b>" + held + "</b>")
		return quoteItalic
	case quoteItalic:
		out.WriteString("<b>")
		return quoteItalicBold
	default:
		out.WriteString("<b>")
		return quoteBold
	}
}

func bothTransition(state quoteState, out *strings.Builder, held string) quoteState {
	switch state {
	case quoteBold:
		out.WriteString("</b><i>")
		return quoteItalic
	case quoteItalic:
		out.WriteString("</i><b>")
		return quoteBold
	case quoteBoldItalic:
		out.WriteString("</i></b>")
		return quoteNone
	case quoteItalicBold:
		out.WriteString("</b></i>")
		return quoteNone
	case quoteBoth:
		// Same nesting as an unterminated 5-run at end of line.
		out.WriteString("<b><i>" + held + "</i></b>")
		return quoteNone
	default:
		return quoteBoth
	}
}
