package wikipub

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/alnah/go-wikipub/internal/pipeline"
)

// Parser turns wiki markup into rendered text. It owns the image cache for
// one publishing run and is not safe for concurrent use.
type Parser struct {
	source   PageSource
	renderer Renderer
	report   Reporter
	excluded []Location
	magic    MagicVars
	now      func() time.Time
	images   map[string]FileInfo
}

// Option configures a Parser.
type Option func(*Parser)

// WithReporter sets the diagnostics sink. Diagnostics are dropped by default.
func WithReporter(r Reporter) Option {
	return func(p *Parser) {
		if r != nil {
			p.report = r
		}
	}
}

// WithExcludedTemplates adds templates that expand to nothing. Bare names
// refer to the template namespace; prefix ":" for a main namespace page.
func WithExcludedTemplates(locs ...Location) Option {
	return func(p *Parser) {
		p.excluded = append(p.excluded, locs...)
	}
}

// WithMagicVars replaces the default magic variable registry.
func WithMagicVars(vars MagicVars) Option {
	return func(p *Parser) {
		if vars != nil {
			p.magic = vars
		}
	}
}

// WithClock sets the time source for the default magic variables.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewParser creates a Parser reading templates from source and formatting
// links through renderer. A nil renderer uses GenericRenderer.
func NewParser(source PageSource, renderer Renderer, opts ...Option) *Parser {
	p := &Parser{
		source:   source,
		renderer: renderer,
		report:   discardReporter{},
		now:      time.Now,
		images:   make(map[string]FileInfo),
	}
	if p.renderer == nil {
		p.renderer = GenericRenderer{}
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.magic == nil {
		p.magic = DefaultMagicVars(p.now)
	}
	return p
}

// ExcludeTemplate parses ref and adds it to the excluded templates.
func (p *Parser) ExcludeTemplate(ref string) error {
	loc, err := ParseLocation(ref)
	if err != nil {
		return err
	}
	p.excluded = append(p.excluded, loc)
	return nil
}

// MagicVars returns the registry used by this parser. Changes made before a
// parse take effect for that parse.
func (p *Parser) MagicVars() MagicVars {
	return p.magic
}

// ParsePage runs the full pipeline over page. When loc names a section,
// only that section is kept; a missing section yields "" and a warning.
//
// Stage order: templates, magic variables, horizontal rules, headings,
// section stripping, marker removal, quotes, internal links, external
// links, tables, block levels.
func (p *Parser) ParsePage(ctx context.Context, page *Page, loc Location) string {
	report := p.pageReporter(loc)
	if page == nil {
		return ""
	}

	text := pipeline.NormalizeLineEndings(page.Source)
	text = ExpandTemplates(ctx, text, p.excluded, p.source, report)
	text = SubstituteMagic(text, p.magic, report)
	text = pipeline.FormatLines(text)
	text = pipeline.FormatHeadings(text)

	if loc.HasSection {
		section, ok := pipeline.StripSection(text, loc.Section)
		if !ok {
			report.Report(Diagnostic{
				Severity: SeverityWarning,
				Err:      fmt.Errorf("%w: %q", ErrSectionNotFound, loc.Section),
				Message:  fmt.Sprintf("Page section %q not found, truncating page.", loc.Section),
			})
		}
		text = section
	}

	text = pipeline.RemoveSectionMarkers(text)
	text = pipeline.FormatQuotes(text)
	text = substituteLinks(text, "[[", "]]", func(inner string) string {
		return p.internalLink(ctx, inner, report)
	})
	text = substituteLinks(text, "[", "]", func(inner string) string {
		return p.renderer.FormatExternalLink(splitExternalLink(inner))
	})
	text = pipeline.FormatTables(text)
	return pipeline.NewBlockFormatter().Format(text)
}

// pageReporter tags every diagnostic with the page being parsed.
func (p *Parser) pageReporter(loc Location) Reporter {
	ref := loc.String(true)
	return ReporterFunc(func(d Diagnostic) {
		if d.Page == "" {
			d.Page = ref
		}
		p.report.Report(d)
	})
}

// internalLink resolves the inside of [[...]].
func (p *Parser) internalLink(ctx context.Context, inner string, report Reporter) string {
	target, label, piped := strings.Cut(inner, "|")

	loc, err := ParseLocation(target)
	if err != nil {
		report.Report(Diagnostic{
			Severity: SeverityError,
			Err:      err,
			Message:  "Invalid location specified: " + target,
		})
	}

	if strings.Contains(loc.Namespace, "image") && !loc.Escaped {
		var styles []string
		if piped {
			styles = strings.Split(label, "|")
		}
		return p.image(ctx, loc, styles, report)
	}

	switch {
	case !piped:
		label = loc.FullTitle()
	case label == "":
		// [[Media (album)|]] is labelled "Media".
		label = loc.StrippedTitle()
	}
	return p.renderer.FormatInternalLink(loc, label, inner)
}

// image resolves an image reference, storing its file on first use.
func (p *Parser) image(ctx context.Context, loc Location, styles []string, report Reporter) string {
	file, cached := p.images[loc.Title]
	if !cached {
		file = p.locateImage(ctx, loc, report)
		p.images[loc.Title] = file

		if err := p.renderer.HandleImageFile(ctx, loc, file); err != nil {
			report.Report(Diagnostic{
				Severity: SeverityWarning,
				Err:      fmt.Errorf("%w: %s: %v", ErrImageFile, file.Filename, err),
				Message:  "Failed to store image " + file.Filename,
			})
		}
	}

	return p.renderer.FormatImage(loc, parseImageStyles(styles), file)
}

// locateImage asks the source for the file behind an image page. Sources
// without that capability, and failed lookups, fall back to the title.
func (p *Parser) locateImage(ctx context.Context, loc Location, report Reporter) FileInfo {
	fallback := FileInfo{Filename: path.Base(loc.Title)}

	locator, ok := p.source.(ImageLocator)
	if !ok {
		return fallback
	}
	file, err := locator.LocateImage(ctx, loc)
	if err != nil {
		report.Report(Diagnostic{
			Severity: SeverityWarning,
			Err:      fmt.Errorf("%w: %s: %v", ErrImageFile, loc.Title, err),
			Message:  "Failed to locate image " + loc.Title,
		})
		return fallback
	}
	if file.Filename == "" {
		file.Filename = fallback.Filename
	}
	return file
}
