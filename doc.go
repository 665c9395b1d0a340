// Package wikipub converts wiki markup into publishable documents.
//
// # Quick Start
//
// Create a parser over a page source and parse a page:
//
//	source := wikipub.NewMemorySource(map[string]string{
//	    "Template:Note": "''{{CURRENTYEAR}} edition''",
//	})
//	parser := wikipub.NewParser(source, nil)
//
//	page, err := source.Fetch(ctx, wikipub.MustParseLocation("Main Page"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := parser.ParsePage(ctx, page, wikipub.MustParseLocation("Main Page"))
//
// A nil renderer selects GenericRenderer, which writes internal links as
// plain labels. Output backends implement Renderer to resolve links against
// the pages they publish.
//
// # Parsing Pipeline
//
// ParsePage runs these stages in order:
//
//  1. Template expansion ({{Name}} from the Template namespace, recursive)
//  2. Magic variables ({{CURRENTYEAR}} and friends, see MagicVars)
//  3. Horizontal rules (----)
//  4. Headings (= Title = to ====== Title ======) with section anchors
//  5. Section selection, when the location names one ("Page#Section")
//  6. Bold and italic quotes ('' and ''')
//  7. Internal links ([[Page|label]]) and images ([[Image:File.png|thumb]])
//  8. External links ([http://example.org label])
//  9. Tables ({| ... |})
//  10. Lists, paragraphs and preformatted blocks
//
// # Diagnostics
//
// Parsing never fails. Recovered conditions such as a missing template,
// template recursion or an unknown magic variable are sent to the Reporter
// set with WithReporter as a Diagnostic. Classify them with errors.Is on
// Diagnostic.Err or with Diagnostic.Is:
//
//	var diags wikipub.Collector
//	parser := wikipub.NewParser(source, renderer, wikipub.WithReporter(&diags))
//	...
//	if n := diags.Count(wikipub.ErrTemplateRecursion); n > 0 {
//	    ...
//	}
//
// # Publishing
//
// Publisher fetches a list of pages and hands each parsed page to one or
// more Backend values, with previous and next page pointers for
// navigation:
//
//	pub := wikipub.NewPublisher(source, wikipub.WithReporter(reporter))
//	err := pub.Publish(ctx, []wikipub.Backend{xhtml, pdf}, pages)
//
// Each backend gets its own Parser, so image files are stored once per
// backend and run.
package wikipub
