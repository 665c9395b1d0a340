package wikipub

import (
	"context"
	"fmt"
	"regexp"
	"slices"
)

// titleChars is the character class allowed inside {{...}} references.
// It excludes braces, pipes, brackets and '#', so parameterised calls and
// nested braces are never matched.
const titleChars = ` %!"$&'()*,\-./0-9:;=?@A-Z\\^_` + "`" + `a-z~\x{80}-\x{10FFFF}`

// templateRef matches one non-nested {{reference}}.
var templateRef = regexp.MustCompile(`\{\{([` + titleChars + `]+?)\}\}`)

// ExpandTemplates substitutes every {{Template}} reference in text with the
// recursively expanded source of the referenced page.
//
// References that are already being expanded are left verbatim and reported
// as recursion. References matching an excluded location expand to nothing.
// References to pages that do not exist are left verbatim without a warning,
// since they may be magic variables resolved later.
func ExpandTemplates(ctx context.Context, text string, excluded []Location, source PageSource, report Reporter) string {
	if report == nil {
		report = discardReporter{}
	}
	e := &templateExpander{
		ctx:      ctx,
		source:   source,
		excluded: normalizeExcluded(excluded),
		report:   report,
	}
	return e.expand(text)
}

// templateExpander carries the call stack for one page's expansion pass.
type templateExpander struct {
	ctx      context.Context
	source   PageSource
	excluded []Location
	report   Reporter
	stack    []string
}

func (e *templateExpander) expand(text string) string {
	return templateRef.ReplaceAllStringFunc(text, e.substitute)
}

func (e *templateExpander) substitute(match string) string {
	inner := match[2 : len(match)-2]

	if slices.Contains(e.stack, inner) {
		e.report.Report(Diagnostic{
			Severity: SeverityWarning,
			Err:      fmt.Errorf("%w: %s", ErrTemplateRecursion, match),
			Message:  "Template recursion detected: " + match,
		})
		return match
	}
	e.stack = append(e.stack, inner)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	loc, err := ParseLocation(inner)
	if err != nil {
		e.report.Report(Diagnostic{
			Severity: SeverityError,
			Err:      err,
			Message:  "Invalid location specified: " + inner,
		})
		return match
	}
	loc = asTemplate(loc)

	for _, ex := range e.excluded {
		if ex.IsSameAs(loc) {
			return ""
		}
	}

	if e.source == nil {
		return match
	}
	page, err := e.source.Fetch(e.ctx, loc)
	if err != nil {
		e.report.Report(Diagnostic{
			Severity: SeverityWarning,
			Err:      fmt.Errorf("%w: %s: %v", ErrPageFetch, loc.FullTitle(), err),
			Message:  "Failed to fetch template " + loc.FullTitle(),
		})
		return match
	}
	if page == nil || !page.Exists {
		return match
	}

	return e.expand(page.Source)
}

// asTemplate places bare, unescaped references in the template namespace.
func asTemplate(loc Location) Location {
	if !loc.Escaped && loc.Namespace == "" {
		return loc.WithNamespace(templateNamespace)
	}
	return loc
}

func normalizeExcluded(excluded []Location) []Location {
	out := make([]Location, len(excluded))
	for i, ex := range excluded {
		out[i] = asTemplate(ex)
	}
	return out
}
