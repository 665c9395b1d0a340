package backend

import "github.com/microcosm-cc/bluemonday"

// newBodyPolicy returns the policy applied to page bodies when sanitizing is
// enabled: user generated content plus the markup the wiki parser emits.
func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("center")
	p.AllowAttrs("name").OnElements("a")
	p.AllowAttrs("class", "style").Globally()
	p.AllowAttrs("align").OnElements("img", "table", "tr", "td", "th", "div", "p")
	p.AllowAttrs("border", "cellpadding", "cellspacing").OnElements("table")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}
