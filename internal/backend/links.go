package backend

import (
	"fmt"
	"net/url"

	"github.com/alnah/go-wikipub"
)

// linkIndex maps published locations to their output filenames.
type linkIndex map[string]string

// newLinkIndex indexes pages by Location.String(false), so a page published
// as "Guide#Setup" only answers links to that exact section.
func newLinkIndex(pages []wikipub.PageSpec) linkIndex {
	idx := make(linkIndex, len(pages))
	for _, spec := range pages {
		idx[spec.Location.String(false)] = spec.Filename
	}
	return idx
}

// resolve finds the file for loc. A link to a section that was published as
// its own page matches first (exact is true); otherwise the whole page is
// looked up by full title.
func (idx linkIndex) resolve(loc wikipub.Location) (file string, exact, ok bool) {
	if loc.Section != "" {
		if file, ok := idx[loc.String(false)]; ok {
			return file, true, true
		}
	}
	file, ok = idx[loc.FullTitle()]
	return file, false, ok
}

// pageHref builds the address of a resolved file. prefix is prepended to
// the filename; a requested section becomes the fragment.
func pageHref(prefix, file, ext string, loc wikipub.Location, exact bool) string {
	href := prefix + file + "." + ext
	if exact || loc.HasSection {
		href += "#" + url.QueryEscape(loc.Section)
	}
	return href
}

// unresolvedLink reports a link to a page that is not part of the run.
func unresolvedLink(r wikipub.Reporter, backendName, link string) {
	r.Report(wikipub.Diagnostic{
		Severity: wikipub.SeverityWarning,
		Err:      fmt.Errorf("%w: [[%s]]", wikipub.ErrUnresolvedInternalLink, link),
		Message:  backendName + ": Failed to resolve internal link: [[" + link + "]]",
	})
}
