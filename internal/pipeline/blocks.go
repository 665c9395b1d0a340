package pipeline

import (
	"regexp"
	"strings"
)

// listChars are the prefixes that build nested lists.
const listChars = "*#:;"

var (
	preOpen  = regexp.MustCompile(`(?i)<pre`)
	preClose = regexp.MustCompile(`(?i)</pre`)

	// blockOpenTag and blockCloseTag detect lines that already carry
	// block-level HTML, which must not be wrapped in a paragraph.
	blockOpenTag  = regexp.MustCompile(`(?i)(<table|<blockquote|<h1|<h2|<h3|<h4|<h5|<h6|<pre|<tr|<p|<ul|<li|</tr|</td|</th)`)
	blockCloseTag = regexp.MustCompile(`(?i)(</table|</blockquote|</h1|</h2|</h3|</h4|</h5|</h6|<td|<th|<div|</div|<hr|</pre|</p|</li|</ul)`)
)

// Block sections tracked between lines.
const (
	sectionNone = ""
	sectionP    = "p"
	sectionPre  = "pre"
)

// BlockFormatter builds lists, paragraphs and preformatted blocks from a
// page, one line at a time. It holds state across the lines of one page;
// use a new formatter for every page and never share one between
// goroutines.
type BlockFormatter struct {
	inPre       bool
	lastSection string
	dtOpen      bool
}

// NewBlockFormatter returns a formatter with no open blocks.
func NewBlockFormatter() *BlockFormatter {
	return &BlockFormatter{}
}

// FormatBlocks runs a fresh BlockFormatter over content.
func FormatBlocks(content string) string {
	return NewBlockFormatter().Format(content)
}

// Format converts content. Every line is emitted followed by a newline
// unless it is absorbed into a pending paragraph break; all lists and the
// last paragraph or pre block are closed at the end.
func (f *BlockFormatter) Format(content string) string {
	var out strings.Builder

	var (
		lastPrefix     string
		prefix         string // with ';' as written
		prefixNorm     string // ';' read as ':' for comparison
		inBlockElem    bool
		paragraphStack string // pending paragraph markup, "" when none
	)
	f.dtOpen = false

	for _, line := range strings.Split(content, "\n") {
		lastPrefixLen := len(lastPrefix)
		hasPreClose := preClose.MatchString(line)
		hasPreOpen := preOpen.MatchString(line)

		var text string
		if !f.inPre {
			n := prefixLength(line)
			prefix = line[:n]
			prefixNorm = strings.ReplaceAll(prefix, ";", ":")
			text = line[n:]
			f.inPre = hasPreOpen
		} else {
			// Prefixes mean nothing inside preformatted text.
			prefix, prefixNorm = "", ""
			text = line
		}
		prefixLen := len(prefix)

		switch {
		case prefixLen > 0 && lastPrefix == prefixNorm:
			// Same list level as the previous line.
			last := prefix[prefixLen-1]
			out.WriteString(f.nextItem(last))
			paragraphStack = ""
			if last == ';' {
				if term, definition, ok := splitDefinition(text); ok {
					text = definition
					out.WriteString(term + f.nextItem(':'))
				}
			}

		case prefixLen > 0 || lastPrefixLen > 0:
			common := commonPrefixLength(prefix, lastPrefix)
			paragraphStack = ""

			for ; lastPrefixLen > common; lastPrefixLen-- {
				out.WriteString(f.closeList(lastPrefix[lastPrefixLen-1]))
			}
			if prefixLen <= common && common > 0 {
				out.WriteString(f.nextItem(prefix[common-1]))
			}
			for ; prefixLen > common; common++ {
				char := prefix[common]
				out.WriteString(f.openList(char))
				if char == ';' {
					if term, definition, ok := splitDefinition(text); ok {
						text = definition
						out.WriteString(term + f.nextItem(':'))
					}
				}
			}
			lastPrefix = prefixNorm
		}

		if prefixLen == 0 {
			openMatch := blockOpenTag.MatchString(text)
			closeMatch := blockCloseTag.MatchString(text)

			switch {
			case openMatch || closeMatch:
				paragraphStack = ""
				out.WriteString(f.closeParagraph())
				if hasPreOpen && !hasPreClose {
					f.inPre = true
				}
				inBlockElem = !closeMatch

			case !inBlockElem && !f.inPre:
				blank := strings.TrimSpace(text) == ""
				if strings.HasPrefix(text, " ") && (f.lastSection == sectionPre || !blank) {
					if f.lastSection != sectionPre {
						paragraphStack = ""
						out.WriteString(f.closeParagraph() + "<pre>")
						f.lastSection = sectionPre
					}
					text = text[1:]
					break
				}

				switch {
				case blank && paragraphStack != "":
					out.WriteString(paragraphStack + "<br />")
					paragraphStack = ""
					f.lastSection = sectionP
				case blank && f.lastSection != sectionP:
					out.WriteString(f.closeParagraph())
					f.lastSection = sectionNone
					paragraphStack = "<p>"
				case blank:
					paragraphStack = "</p><p>"
				case paragraphStack != "":
					out.WriteString(paragraphStack)
					paragraphStack = ""
					f.lastSection = sectionP
				case f.lastSection != sectionP:
					out.WriteString(f.closeParagraph() + "<p>")
					f.lastSection = sectionP
				}
			}
		}

		// A closing </pre> always ends preformatted mode.
		if hasPreClose && f.inPre {
			f.inPre = false
		}
		if paragraphStack == "" {
			out.WriteString(text + "\n")
		}
	}

	for n := len(prefixNorm); n > 0; n-- {
		out.WriteString(f.closeList(prefixNorm[n-1]))
	}
	if f.lastSection != sectionNone {
		out.WriteString("</" + f.lastSection + ">")
		f.lastSection = sectionNone
	}

	return out.String()
}

// prefixLength returns the length of the leading run of list characters.
func prefixLength(line string) int {
	for i := 0; i < len(line); i++ {
		if !strings.ContainsRune(listChars, rune(line[i])) {
			return i
		}
	}
	return len(line)
}

func commonPrefixLength(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// closeParagraph ends the current paragraph or pre block.
func (f *BlockFormatter) closeParagraph() string {
	var result string
	if f.lastSection != sectionNone {
		result = "</" + f.lastSection + ">\n"
	}
	f.inPre = false
	f.lastSection = sectionNone
	return result
}

func (f *BlockFormatter) openList(char byte) string {
	result := f.closeParagraph()
	switch char {
	case '*':
		return result + "<ul><li>"
	case '#':
		return result + "<ol><li>"
	case ':':
		return result + "<dl><dd>"
	case ';':
		f.dtOpen = true
		return result + "<dl><dt>"
	default:
		return "<!-- ERR 1 -->"
	}
}

func (f *BlockFormatter) nextItem(char byte) string {
	switch char {
	case '*', '#':
		return "</li><li>"
	case ':', ';':
		closing := "</dd>"
		if f.dtOpen {
			closing = "</dt>"
		}
		if char == ';' {
			f.dtOpen = true
			return closing + "<dt>"
		}
		f.dtOpen = false
		return closing + "<dd>"
	default:
		return "<!-- ERR 2 -->"
	}
}

func (f *BlockFormatter) closeList(char byte) string {
	switch char {
	case '*':
		return "</li></ul>\n"
	case '#':
		return "</li></ol>\n"
	case ':':
		if f.dtOpen {
			f.dtOpen = false
			return "</dt></dl>\n"
		}
		return "</dd></dl>\n"
	default:
		return "<!-- ERR 3 -->"
	}
}

// splitDefinition splits "term : definition" on the first colon that is not
// inside an unclosed <a> or <span>, so link targets keep their colons.
func splitDefinition(s string) (term, definition string, ok bool) {
	for pos := 0; ; {
		idx := strings.IndexByte(s[pos:], ':')
		if idx < 0 {
			return "", "", false
		}
		colon := pos + idx
		before := s[:colon]
		anchorsClosed := strings.Count(before, "<a") <= strings.Count(before, "</a>")
		spansClosed := strings.Count(before, "<span") <= strings.Count(before, "</span>")
		if anchorsClosed && spansClosed {
			return before, s[colon+1:], true
		}
		pos = colon + 1
	}
}
