package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/fileutil"
)

const pdfName = "PDF"

// Page size names accepted by PDFOptions.PageSize.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// DefaultPDFTimeout bounds loading one page in the browser.
const DefaultPDFTimeout = 30 * time.Second

// pageDimensions maps page sizes to width and height in inches.
var pageDimensions = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// PDF prints every page to its own PDF file with headless Chrome. Pages are
// laid out like the XHTML output; links between pages point at the
// neighbouring PDF files.
type PDF struct {
	wikipub.GenericRenderer

	outputDir  string
	dir        string
	linkPrefix string // path from outputDir to dir
	header     string
	footer     string
	style      string
	print      pdfOptions
	renderer   pdfRenderer
	report     wikipub.Reporter
	images     *imageStore
	links      linkIndex
}

// NewPDF creates the PDF backend. The browser is started on the first page.
func NewPDF(cfg Config) (*PDF, error) {
	if cfg.OutputDir == "" {
		return nil, ErrEmptyOutputDir
	}

	size := strings.ToLower(strings.TrimSpace(cfg.PDF.PageSize))
	if size == "" {
		size = PageSizeLetter
	}
	dims, ok := pageDimensions[size]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageSize, cfg.PDF.PageSize)
	}

	margin := cfg.PDF.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	if margin < MinMargin || margin > MaxMargin {
		return nil, fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, margin, MinMargin, MaxMargin)
	}

	timeout := cfg.PDF.Timeout
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateDir, err)
	}
	dir := resolveDir(outputDir, cfg.PDF.Dir, DefaultPDFDir)
	imageDir := resolveDir(outputDir, cfg.ImageDir, DefaultImageDir)
	report := reporterOrNop(cfg.Reporter)

	return &PDF{
		// Image and page paths are relative to outputDir until rewritten.
		GenericRenderer: wikipub.GenericRenderer{ImageDir: relativeURL(outputDir, imageDir)},
		outputDir:       outputDir,
		dir:             dir,
		linkPrefix:      relativeURL(outputDir, dir),
		header:          cfg.XHTML.Header,
		footer:          cfg.XHTML.Footer,
		style:           cfg.PDF.Style,
		print: pdfOptions{
			PaperWidth:  dims[0],
			PaperHeight: dims[1],
			Margin:      margin,
			PageNumbers: cfg.PDF.PageNumbers,
		},
		renderer: newRodRenderer(timeout),
		report:   report,
		images: &imageStore{
			backendName: pdfName,
			dir:         imageDir,
			downloader:  cfg.Downloader,
			report:      report,
		},
	}, nil
}

// ID implements wikipub.Backend.
func (p *PDF) ID() string { return IDPDF }

// Name implements wikipub.Backend.
func (p *PDF) Name() string { return pdfName }

// Dir returns the directory PDF files are written to.
func (p *PDF) Dir() string { return p.dir }

// Prepare creates the output directories and indexes pages for links.
func (p *PDF) Prepare(_ context.Context, pages []wikipub.PageSpec) error {
	if err := ensureDirs(p.dir, p.images.dir); err != nil {
		return err
	}
	p.links = newLinkIndex(pages)
	return nil
}

// WriteDocument renders doc to <filename>.pdf.
func (p *PDF) WriteDocument(ctx context.Context, doc *wikipub.Document) error {
	if err := validateFilename(doc.Spec.Filename); err != nil {
		return err
	}

	page, err := p.render(doc)
	if err != nil {
		return err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return err
	}
	defer cleanup()

	opts := p.print
	opts.Title = doc.Spec.DisplayTitle()
	data, err := p.renderer.RenderFromFile(ctx, tmpPath, &opts)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(p.dir, doc.Spec.Filename+".pdf"), data)
}

// render assembles the HTML page for doc with absolute file:// paths.
func (p *PDF) render(doc *wikipub.Document) (string, error) {
	nav := newNavigation(doc, p.linkPrefix, "pdf")
	page := injectCSS(nav.fill(p.header)+doc.Body+nav.fill(p.footer), p.style)
	return rewriteRelativePaths(page, p.outputDir)
}

// Finish shuts the browser down.
func (p *PDF) Finish(context.Context) error {
	return p.renderer.Close()
}

// FormatInternalLink links to the neighbouring PDF file.
func (p *PDF) FormatInternalLink(loc wikipub.Location, label, link string) string {
	file, exact, ok := p.links.resolve(loc)
	if !ok {
		unresolvedLink(p.report, pdfName, link)
		return label
	}
	return `<a href="` + pageHref(p.linkPrefix, file, "pdf", loc, exact) + `">` + label + `</a>`
}

// HandleImageFile downloads the image into the image directory.
func (p *PDF) HandleImageFile(ctx context.Context, _ wikipub.Location, file wikipub.FileInfo) error {
	return p.images.store(ctx, file)
}

// Compile-time interface check.
var _ wikipub.Backend = (*PDF)(nil)
