package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/fileutil"
)

// TemplateLoader loads named header and footer templates.
// *assets.AssetResolver implements it.
type TemplateLoader interface {
	LoadTemplate(name string) (string, error)
}

// LoadFragment returns the header or footer text referenced by ref:
//   - a path to an .html file is read as is
//   - a path to an .md file is converted to HTML
//   - anything else is a template name looked up in loader
//
// An empty ref yields an empty fragment.
func LoadFragment(ctx context.Context, loader TemplateLoader, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !fileutil.IsFilePath(ref) && !strings.Contains(ref, ".") {
		if loader == nil {
			loader = assets.NewEmbeddedLoader()
		}
		return loader.LoadTemplate(ref)
	}

	content, err := os.ReadFile(ref) // #nosec G304 -- user-provided template path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFragmentRead, err)
	}
	if strings.EqualFold(filepath.Ext(ref), ".md") {
		return newFragmentConverter().toHTML(ctx, string(content))
	}
	return string(content), nil
}

// fragmentConverter renders Markdown fragments with goldmark.
type fragmentConverter struct {
	md goldmark.Markdown
}

func newFragmentConverter() *fragmentConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(), // fragments may embed raw HTML
		),
	)
	return &fragmentConverter{md: md}
}

// placeholderEscapes undoes the URL escaping goldmark applies to
// placeholders used as link destinations.
var placeholderEscapes = strings.NewReplacer(
	"%7BPREV_PAGE%7D", "{PREV_PAGE}",
	"%7BNEXT_PAGE%7D", "{NEXT_PAGE}",
	"%7BTOPIC%7D", "{TOPIC}",
)

// toHTML converts Markdown to an HTML fragment. Goldmark has no context
// support, so conversion runs in a goroutine raced against ctx.
func (c *fragmentConverter) toHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: placeholderEscapes.Replace(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
