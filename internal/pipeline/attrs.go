package pipeline

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// commonAttributes are allowed on every table element.
var commonAttributes = []string{"id", "class", "style", "lang", "dir", "title"}

// tableAttributes lists the extra attributes each table element may carry.
var tableAttributes = map[string][]string{
	"table":   {"summary", "width", "border", "frame", "rules", "cellspacing", "cellpadding", "align", "bgcolor"},
	"caption": {"align"},
	"tr":      {"bgcolor", "align", "valign", "char", "charoff"},
	"td":      {"abbr", "axis", "headers", "scope", "rowspan", "colspan", "nowrap", "width", "height", "bgcolor", "align", "valign", "char", "charoff"},
	"th":      {"abbr", "axis", "headers", "scope", "rowspan", "colspan", "nowrap", "width", "height", "bgcolor", "align", "valign", "char", "charoff"},
}

// unsafeStyle lists CSS fragments that can execute or fetch content.
var unsafeStyle = []string{"expression", "url(", "javascript:", "behavior", "-moz-binding"}

// SanitizeAttributes parses a raw attribute string as written after {|, |-
// or a cell pipe and returns the attributes allowed on tag, rendered as
// ` name="value"` pairs. Unknown attributes are dropped; when a name repeats
// the last value wins. An empty result means no attributes.
func SanitizeAttributes(raw, tag string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	allowed := allowedAttributes(tag)
	z := xhtml.NewTokenizer(strings.NewReader("<" + tag + " " + raw + ">"))
	if tt := z.Next(); tt != xhtml.StartTagToken && tt != xhtml.SelfClosingTagToken {
		return ""
	}
	if _, hasAttr := z.TagName(); !hasAttr {
		return ""
	}

	var order []string
	values := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		name := string(key)
		if _, ok := allowed[name]; ok && safeAttributeValue(name, string(val)) {
			if _, seen := values[name]; !seen {
				order = append(order, name)
			}
			values[name] = string(val)
		}
		if !more {
			break
		}
	}

	var b strings.Builder
	for _, name := range order {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(values[name]))
		b.WriteByte('"')
	}
	return b.String()
}

func allowedAttributes(tag string) map[string]struct{} {
	set := make(map[string]struct{}, len(commonAttributes)+len(tableAttributes[tag]))
	for _, name := range commonAttributes {
		set[name] = struct{}{}
	}
	for _, name := range tableAttributes[tag] {
		set[name] = struct{}{}
	}
	return set
}

func safeAttributeValue(name, value string) bool {
	if name != "style" {
		return true
	}
	lower := strings.ToLower(value)
	for _, bad := range unsafeStyle {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}
