package wikipub

import (
	"regexp"
	"strconv"
	"strings"
)

// imageSize matches a "200px" style token.
var imageSize = regexp.MustCompile(`^(\d+)px$`)

// substituteLinks replaces every open...close group in content with
// replace(inner). Lines are scanned independently in one pass.
//
// Within a line a group normally ends at the last close on the line, so a
// label may itself contain close markers. When another open marker appears
// before that last close, the group ends at the first close instead and
// scanning resumes after it. Groups with nothing between the markers are
// left as written.
func substituteLinks(content, open, close string, replace func(inner string) string) string {
	if !strings.Contains(content, open) {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = substituteLine(line, open, close, replace)
	}
	return strings.Join(lines, "\n")
}

func substituteLine(line, open, close string, replace func(string) string) string {
	var out strings.Builder
	rest := line
	for {
		start := strings.Index(rest, open)
		if start < 0 {
			break
		}
		body := rest[start+len(open):]
		last := strings.LastIndex(body, close)
		if last < 1 {
			break
		}

		end := last
		if strings.Contains(body[:last], open) {
			end = strings.Index(body, close)
		}

		out.WriteString(rest[:start])
		if inner := body[:end]; inner == "" {
			out.WriteString(open + close)
		} else {
			out.WriteString(replace(inner))
		}
		rest = body[end+len(close):]
	}
	out.WriteString(rest)
	return out.String()
}

// splitExternalLink splits "url label" on the first space.
func splitExternalLink(inner string) (url, label string) {
	url, label, _ = strings.Cut(inner, " ")
	return url, label
}

// parseImageStyles reads the pipe-separated style list of an image link.
// Later tokens override earlier ones; anything that is not a keyword or a
// size becomes the label.
func parseImageStyles(styles []string) Image {
	img := Image{Alignment: AlignNone, Decoration: DecorationNone, Size: -1}
	for _, style := range styles {
		token := strings.ToLower(style)

		if m := imageSize.FindStringSubmatch(token); m != nil {
			if size, err := strconv.Atoi(m[1]); err == nil {
				img.Size = size
			}
			continue
		}

		switch token {
		case AlignCenter, AlignRight, AlignLeft, AlignNone:
			img.Alignment = token
		case "thumbnail":
			img.Decoration = DecorationThumb
		case DecorationThumb, DecorationFrame:
			img.Decoration = token
		default:
			img.Label = style
		}
	}
	return img
}
