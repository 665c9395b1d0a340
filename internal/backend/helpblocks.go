package backend

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alnah/go-wikipub"
)

const helpBlocksName = "HelpBlocks"

// helpBlocksExt is the extension of HelpBlocks page sources.
const helpBlocksExt = "htd"

// macroEscaper protects the characters the HelpBlocks preprocessor treats as
// macro syntax inside _HREF arguments.
var macroEscaper = strings.NewReplacer(",", `\,`, "(", `\(`, ")", `\)`)

// HelpBlocks writes page bodies as HelpBlocks .htd sources. Internal links
// become _HREF macros so single-file and multi-file builds both work.
type HelpBlocks struct {
	wikipub.GenericRenderer

	dir    string
	report wikipub.Reporter
	images *imageStore
	links  linkIndex
}

// NewHelpBlocks creates the HelpBlocks backend.
func NewHelpBlocks(cfg Config) (*HelpBlocks, error) {
	if cfg.OutputDir == "" {
		return nil, ErrEmptyOutputDir
	}
	dir := resolveDir(cfg.OutputDir, cfg.HelpBlocks.Dir, DefaultHelpBlocksDir)
	imageDir := resolveDir(cfg.OutputDir, cfg.ImageDir, DefaultImageDir)
	report := reporterOrNop(cfg.Reporter)

	return &HelpBlocks{
		GenericRenderer: wikipub.GenericRenderer{ImageDir: relativeURL(dir, imageDir)},
		dir:             dir,
		report:          report,
		images: &imageStore{
			backendName: helpBlocksName,
			dir:         imageDir,
			downloader:  cfg.Downloader,
			report:      report,
		},
	}, nil
}

// ID implements wikipub.Backend.
func (h *HelpBlocks) ID() string { return IDHelpBlocks }

// Name implements wikipub.Backend.
func (h *HelpBlocks) Name() string { return helpBlocksName }

// Dir returns the directory pages are written to.
func (h *HelpBlocks) Dir() string { return h.dir }

// Prepare creates the output directories and indexes pages for links.
func (h *HelpBlocks) Prepare(_ context.Context, pages []wikipub.PageSpec) error {
	if err := ensureDirs(h.dir, h.images.dir); err != nil {
		return err
	}
	h.links = newLinkIndex(pages)
	return nil
}

// WriteDocument writes the page body to <filename>.htd.
func (h *HelpBlocks) WriteDocument(_ context.Context, doc *wikipub.Document) error {
	if err := validateFilename(doc.Spec.Filename); err != nil {
		return err
	}
	return writeFile(filepath.Join(h.dir, doc.Spec.Filename+"."+helpBlocksExt), []byte(doc.Body))
}

// Finish implements wikipub.Backend.
func (h *HelpBlocks) Finish(context.Context) error { return nil }

// FormatInternalLink emits an _HREF macro. A section of a page published
// whole needs a plain anchor, chosen by the preprocessor per build format.
func (h *HelpBlocks) FormatInternalLink(loc wikipub.Location, label, link string) string {
	file, exact, ok := h.links.resolve(loc)
	if !ok {
		unresolvedLink(h.report, helpBlocksName, link)
		return label
	}
	if !exact && loc.HasSection {
		return "\n#ifdef _FORMAT_SINGLE_FILE\n" +
			`<a href="#` + loc.Section + `">` + label + "</a>" +
			"\n#else\n" +
			`<a href="` + file + ".htm#" + loc.Section + `">` + label + "</a>" +
			"\n#endif\n"
	}
	return "_HREF(" + file + "," + macroEscaper.Replace(label) + ")"
}

// FormatExternalLink opens external links in a new window.
func (h *HelpBlocks) FormatExternalLink(url, label string) string {
	if label == "" {
		label = url
	}
	return `<a href="` + url + `" target="new">` + label + `</a>`
}

// HandleImageFile downloads the image into the image directory.
func (h *HelpBlocks) HandleImageFile(ctx context.Context, _ wikipub.Location, file wikipub.FileInfo) error {
	return h.images.store(ctx, file)
}

// Compile-time interface check.
var _ wikipub.Backend = (*HelpBlocks)(nil)
