package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/fileutil"
)

const xhtmlName = "XHTML 1.0"

// XHTML writes one XHTML file per page, wrapped in a header and footer with
// navigation placeholders filled in.
type XHTML struct {
	wikipub.GenericRenderer

	dir    string
	ext    string
	header string
	footer string
	style  string
	policy *bluemonday.Policy // nil unless sanitizing
	report wikipub.Reporter
	images *imageStore
	links  linkIndex
}

// NewXHTML creates the XHTML backend.
func NewXHTML(cfg Config) (*XHTML, error) {
	if cfg.OutputDir == "" {
		return nil, ErrEmptyOutputDir
	}
	ext, err := normalizeExtension(cfg.XHTML.Extension, DefaultXHTMLExtension)
	if err != nil {
		return nil, err
	}

	dir := resolveDir(cfg.OutputDir, cfg.XHTML.Dir, DefaultXHTMLDir)
	imageDir := resolveDir(cfg.OutputDir, cfg.ImageDir, DefaultImageDir)
	report := reporterOrNop(cfg.Reporter)

	x := &XHTML{
		GenericRenderer: wikipub.GenericRenderer{ImageDir: relativeURL(dir, imageDir)},
		dir:             dir,
		ext:             ext,
		header:          cfg.XHTML.Header,
		footer:          cfg.XHTML.Footer,
		style:           cfg.XHTML.Style,
		report:          report,
		images: &imageStore{
			backendName: "XHTML",
			dir:         imageDir,
			downloader:  cfg.Downloader,
			report:      report,
		},
	}
	if cfg.XHTML.Sanitize {
		x.policy = newBodyPolicy()
	}
	return x, nil
}

// normalizeExtension strips a leading dot and validates ext.
func normalizeExtension(ext, def string) (string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return def, nil
	}
	if err := fileutil.ValidateExtension(ext); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidExtension, ext, err)
	}
	return ext, nil
}

// ID implements wikipub.Backend.
func (x *XHTML) ID() string { return IDXHTML }

// Name implements wikipub.Backend.
func (x *XHTML) Name() string { return xhtmlName }

// Dir returns the directory pages are written to.
func (x *XHTML) Dir() string { return x.dir }

// Prepare creates the output directories and indexes pages for links.
func (x *XHTML) Prepare(_ context.Context, pages []wikipub.PageSpec) error {
	if err := ensureDirs(x.dir, x.images.dir); err != nil {
		return err
	}
	x.links = newLinkIndex(pages)
	return nil
}

// WriteDocument writes header, body and footer to <filename>.<ext>.
func (x *XHTML) WriteDocument(_ context.Context, doc *wikipub.Document) error {
	if err := validateFilename(doc.Spec.Filename); err != nil {
		return err
	}
	return writeFile(filepath.Join(x.dir, doc.Spec.Filename+"."+x.ext), []byte(x.render(doc)))
}

// render assembles the complete page for doc.
func (x *XHTML) render(doc *wikipub.Document) string {
	nav := newNavigation(doc, "", x.ext)
	body := doc.Body
	if x.policy != nil {
		body = x.policy.Sanitize(body)
	}
	return injectCSS(nav.fill(x.header)+body+nav.fill(x.footer), x.style)
}

// Finish implements wikipub.Backend.
func (x *XHTML) Finish(context.Context) error { return nil }

// FormatInternalLink links to the published file, with the section as the
// fragment. Links to pages outside the run fall back to the label.
func (x *XHTML) FormatInternalLink(loc wikipub.Location, label, link string) string {
	file, exact, ok := x.links.resolve(loc)
	if !ok {
		unresolvedLink(x.report, "XHTML", link)
		return label
	}
	return `<a href="` + pageHref("", file, x.ext, loc, exact) + `">` + label + `</a>`
}

// HandleImageFile downloads the image into the image directory.
func (x *XHTML) HandleImageFile(ctx context.Context, _ wikipub.Location, file wikipub.FileInfo) error {
	return x.images.store(ctx, file)
}

// Compile-time interface check.
var _ wikipub.Backend = (*XHTML)(nil)
