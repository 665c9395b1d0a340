package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/fileutil"
)

// Backend identifiers.
const (
	IDXHTML      = "xhtml"
	IDHelpBlocks = "helpblocks"
	IDPDF        = "pdf"
)

// Default locations, relative to Config.OutputDir.
const (
	DefaultImageDir      = "images"
	DefaultXHTMLDir      = "xhtml"
	DefaultHelpBlocksDir = "htd"
	DefaultPDFDir        = "pdf"

	DefaultXHTMLExtension = "htm"
)

// Info describes an available backend.
type Info struct {
	ID          string
	Name        string
	Description string
}

// Available lists every backend in display order.
func Available() []Info {
	return []Info{
		{ID: IDXHTML, Name: xhtmlName, Description: "XHTML pages with header, footer and navigation"},
		{ID: IDHelpBlocks, Name: helpBlocksName, Description: "HelpBlocks .htd sources"},
		{ID: IDPDF, Name: pdfName, Description: "one PDF per page via headless Chrome"},
	}
}

// Downloader copies the file at url into w. *mediawiki.Client implements it.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

// Config holds the settings of every backend. Relative directories are
// resolved against OutputDir.
type Config struct {
	OutputDir  string
	ImageDir   string     // defaults to DefaultImageDir
	Downloader Downloader // nil leaves images undownloaded
	Reporter   wikipub.Reporter

	XHTML      XHTMLOptions
	HelpBlocks HelpBlocksOptions
	PDF        PDFOptions
}

// XHTMLOptions configures the XHTML backend. Header and Footer hold
// template text, not file names; see LoadFragment.
type XHTMLOptions struct {
	Dir       string
	Extension string
	Header    string
	Footer    string
	Style     string // CSS injected into the document head
	Sanitize  bool   // filter page bodies through an HTML policy
}

// HelpBlocksOptions configures the HelpBlocks backend.
type HelpBlocksOptions struct {
	Dir string
}

// PDFOptions configures the PDF backend. Pages are laid out with the XHTML
// header and footer.
type PDFOptions struct {
	Dir         string
	PageSize    string  // "letter", "a4" or "legal"
	Margin      float64 // inches, all sides
	PageNumbers bool    // print "n/total" in the page footer
	Style       string
	Timeout     time.Duration
}

// New creates the backend identified by id.
func New(id string, cfg Config) (wikipub.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case IDXHTML:
		return NewXHTML(cfg)
	case IDHelpBlocks:
		return NewHelpBlocks(cfg)
	case IDPDF:
		return NewPDF(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, id)
	}
}

// resolveDir returns dir under root, or def under root when dir is empty.
// Absolute directories are kept.
func resolveDir(root, dir, def string) string {
	if dir == "" {
		dir = def
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// relativeURL returns the slash-separated path from dir to target with a
// trailing slash, for use as an <img src> prefix.
func relativeURL(dir, target string) string {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return filepath.ToSlash(target) + "/"
	}
	if rel == "." {
		return "./"
	}
	return filepath.ToSlash(rel) + "/"
}

// ensureDirs creates every directory in dirs.
func ensureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateDir, err)
		}
	}
	return nil
}

// validateFilename rejects page filenames that would escape the output
// directory.
func validateFilename(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}

// writeFile replaces path with content.
func writeFile(path string, content []byte) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}

// nopReporter is used when Config.Reporter is nil.
type nopReporter struct{}

func (nopReporter) Report(wikipub.Diagnostic) {}

func reporterOrNop(r wikipub.Reporter) wikipub.Reporter {
	if r == nil {
		return nopReporter{}
	}
	return r
}
