package wikipub

import (
	"context"
	"strings"
)

// Image alignments and decorations recognised in [[Image:...|...]] styles.
const (
	AlignNone   = "none"
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	DecorationNone  = "none"
	DecorationThumb = "thumb"
	DecorationFrame = "frame"
)

// Image carries the styles parsed from an image reference.
type Image struct {
	Label      string // alternate text or caption, may be empty
	Alignment  string // one of the Align constants
	Decoration string // one of the Decoration constants
	Size       int    // max width and height in pixels, -1 when unspecified
}

// Renderer decides how links and images are written to the output. Backends
// implement it; the parser calls it for every link it resolves.
type Renderer interface {
	// FormatInternalLink returns the replacement for [[target|label]]. link
	// is the original text between the brackets, for diagnostics.
	FormatInternalLink(loc Location, label, link string) string

	// FormatExternalLink returns the replacement for [url label]. label may
	// be empty.
	FormatExternalLink(url, label string) string

	// HandleImageFile persists the file behind an image page. It is called
	// once per image title and run; an error is reported, not fatal.
	HandleImageFile(ctx context.Context, loc Location, file FileInfo) error

	// FormatImage returns the replacement markup for an image reference.
	FormatImage(loc Location, img Image, file FileInfo) string
}

// GenericRenderer renders links without resolving them: internal links
// become their label, external links plain anchors and images HTML 4.01
// <img> tags under images/. Backends embed it and override what they need.
type GenericRenderer struct {
	// ImageDir is the path prefix used in <img src>. Defaults to "images/".
	ImageDir string
}

// FormatInternalLink returns the label unchanged.
func (GenericRenderer) FormatInternalLink(_ Location, label, _ string) string {
	return label
}

// FormatExternalLink returns an HTML anchor, showing the URL when there is
// no label.
func (GenericRenderer) FormatExternalLink(url, label string) string {
	if label == "" {
		label = url
	}
	return `<a href="` + url + `">` + label + `</a>`
}

// HandleImageFile does nothing; the generic renderer never stores files.
func (GenericRenderer) HandleImageFile(context.Context, Location, FileInfo) error {
	return nil
}

// FormatImage returns an <img> tag, wrapped in <center> when centered.
func (r GenericRenderer) FormatImage(loc Location, img Image, file FileInfo) string {
	dir := r.ImageDir
	if dir == "" {
		dir = "images/"
	}
	label := img.Label
	if label == "" {
		label = loc.Title
	}

	var extra string
	switch img.Alignment {
	case AlignLeft, AlignRight:
		extra = ` align="` + img.Alignment + `"`
	}

	var b strings.Builder
	if img.Alignment == AlignCenter {
		b.WriteString("<center>")
	}
	b.WriteString(`<img src="` + dir + file.Filename + `" alt="` + label + `"` + extra + `>`)
	if img.Alignment == AlignCenter {
		b.WriteString("</center>")
	}
	return b.String()
}

// Compile-time interface check.
var _ Renderer = GenericRenderer{}
