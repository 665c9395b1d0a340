package backend

import (
	"strings"

	"github.com/alnah/go-wikipub"
)

// navigation holds the values substituted into header and footer templates.
type navigation struct {
	Topic         string
	PrevPage      string
	PrevPageTitle string
	NextPage      string
	NextPageTitle string
}

// newNavigation builds the navigation for doc, linking neighbours as
// prefix+filename+"."+ext. The first and last pages get empty links.
func newNavigation(doc *wikipub.Document, prefix, ext string) navigation {
	nav := navigation{Topic: doc.Spec.DisplayTitle()}
	if doc.Prev != nil {
		nav.PrevPage = prefix + doc.Prev.Filename + "." + ext
		nav.PrevPageTitle = doc.Prev.DisplayTitle()
	}
	if doc.Next != nil {
		nav.NextPage = prefix + doc.Next.Filename + "." + ext
		nav.NextPageTitle = doc.Next.DisplayTitle()
	}
	return nav
}

// fill replaces every placeholder in tmpl.
func (n navigation) fill(tmpl string) string {
	if tmpl == "" {
		return ""
	}
	return strings.NewReplacer(
		"{TOPIC}", n.Topic,
		"{PREV_PAGE_TITLE}", n.PrevPageTitle,
		"{PREV_PAGE}", n.PrevPage,
		"{NEXT_PAGE_TITLE}", n.NextPageTitle,
		"{NEXT_PAGE}", n.NextPage,
	).Replace(tmpl)
}
