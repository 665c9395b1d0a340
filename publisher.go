package wikipub

import (
	"context"
	"fmt"
	"time"
)

// PageSpec names one page to publish.
type PageSpec struct {
	Filename string   // output name without extension, unique per run
	Location Location // page, and optionally section, to publish
	Title    string   // display title, defaults to Location.Title
}

// DisplayTitle returns Title, or the location title when Title is empty.
func (s PageSpec) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Location.Title
}

// Document is one parsed page handed to a backend for output.
type Document struct {
	Spec     PageSpec
	Index    int       // position in the publish order
	Prev     *PageSpec // nil for the first page
	Next     *PageSpec // nil for the last page
	Body     string
	Modified string // last modification reported by the source, RFC 3339
}

// Backend writes published pages in one output format. It formats links and
// images as a Renderer and receives every page in publish order.
type Backend interface {
	Renderer

	// ID is a short URL-friendly identifier such as "xhtml".
	ID() string
	// Name is a human readable name such as "XHTML 1.0".
	Name() string

	// Prepare is called once before any page is parsed, with every page of
	// the run, so internal links can be resolved against the full set.
	Prepare(ctx context.Context, pages []PageSpec) error
	// WriteDocument stores one parsed page.
	WriteDocument(ctx context.Context, doc *Document) error
	// Finish is called after the last page, also when publishing stops
	// early, and releases backend resources.
	Finish(ctx context.Context) error
}

// Publisher fetches pages, parses them and hands them to backends.
type Publisher struct {
	source PageSource
	report Reporter
	opts   []Option
}

// NewPublisher creates a Publisher over source. Parser options such as
// WithExcludedTemplates or WithMagicVars apply to every backend; the
// reporter set with WithReporter also receives publish diagnostics.
func NewPublisher(source PageSource, opts ...Option) *Publisher {
	probe := &Parser{report: discardReporter{}}
	for _, opt := range opts {
		opt(probe)
	}
	return &Publisher{source: source, report: probe.report, opts: opts}
}

// Publish runs every backend in turn over pages. It stops at the first
// backend error; missing or unreadable pages are reported and skipped.
func (pub *Publisher) Publish(ctx context.Context, backends []Backend, pages []PageSpec) error {
	if err := pub.validate(pages); err != nil {
		return err
	}
	for _, backend := range backends {
		if err := pub.PublishBackend(ctx, backend, pages); err != nil {
			return err
		}
	}
	return nil
}

// PublishBackend publishes pages with a single backend.
func (pub *Publisher) PublishBackend(ctx context.Context, backend Backend, pages []PageSpec) (err error) {
	if backend == nil {
		return ErrNilBackend
	}
	if err := pub.validate(pages); err != nil {
		return err
	}

	pub.notice("Running %s backend...", backend.Name())
	if err := backend.Prepare(ctx, pages); err != nil {
		return fmt.Errorf("%s: %w", backend.ID(), err)
	}
	defer func() {
		if finishErr := backend.Finish(ctx); finishErr != nil && err == nil {
			err = fmt.Errorf("%s: %w", backend.ID(), finishErr)
		}
	}()

	parser := NewParser(pub.source, backend, pub.opts...)

	for i, spec := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, ok := pub.fetch(ctx, spec)
		if !ok {
			continue
		}

		pub.notice("%s: Parsing page: [%s] %s", backend.Name(), spec.DisplayTitle(), spec.Location.String(true))
		doc := &Document{
			Spec:  spec,
			Index: i,
			Body:  parser.ParsePage(ctx, page, spec.Location),
		}
		if !page.Modified.IsZero() {
			doc.Modified = page.Modified.Format(time.RFC3339)
		}
		if i > 0 {
			doc.Prev = &pages[i-1]
		}
		if i < len(pages)-1 {
			doc.Next = &pages[i+1]
		}

		if err := backend.WriteDocument(ctx, doc); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteOutput, spec.Filename, err)
		}
	}

	pub.notice("Done.")
	return nil
}

// fetch retrieves a page to publish, reporting failures.
func (pub *Publisher) fetch(ctx context.Context, spec PageSpec) (*Page, bool) {
	ref := spec.Location.String(true)
	page, err := pub.source.Fetch(ctx, spec.Location)
	if err != nil {
		pub.report.Report(Diagnostic{
			Severity: SeverityError,
			Err:      fmt.Errorf("%w: %s: %v", ErrPageFetch, ref, err),
			Message:  "Failed to fetch page " + ref,
			Page:     ref,
		})
		return nil, false
	}
	if page == nil || !page.Exists {
		pub.report.Report(Diagnostic{
			Severity: SeverityError,
			Err:      fmt.Errorf("%w: %s", ErrPageNotFound, ref),
			Message:  "Invalid page source returned for " + ref,
			Page:     ref,
		})
		return nil, false
	}
	return page, true
}

func (pub *Publisher) validate(pages []PageSpec) error {
	if pub.source == nil {
		return ErrNilSource
	}
	if len(pages) == 0 {
		return ErrNoPages
	}
	seen := make(map[string]struct{}, len(pages))
	for _, spec := range pages {
		if spec.Filename == "" {
			return fmt.Errorf("%w: %s", ErrEmptyPageRef, spec.Location.String(true))
		}
		if _, dup := seen[spec.Filename]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, spec.Filename)
		}
		seen[spec.Filename] = struct{}{}
	}
	return nil
}

func (pub *Publisher) notice(format string, args ...any) {
	pub.report.Report(Diagnostic{Severity: SeverityNotice, Message: fmt.Sprintf(format, args...)})
}
