//go:build integration

package backend

// Notes:
// - Runs headless Chrome through go-rod. Rod downloads Chromium on first
//   run when ROD_BROWSER_BIN is unset and no browser is installed.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-wikipub"
)

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

// ---------------------------------------------------------------------------
// TestRodRenderer_Integration - Real browser rendering
// ---------------------------------------------------------------------------

func TestRodRenderer_Integration(t *testing.T) {
	t.Parallel()

	page := filepath.Join(t.TempDir(), "page.html")
	html := `<!DOCTYPE html>
<html><head><title>Install</title><style>h1 { color: navy; }</style></head>
<body><h1>Install</h1><p>Run the installer.</p></body></html>`
	if err := os.WriteFile(page, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newRodRenderer(DefaultPDFTimeout)
	defer r.Close()

	t.Run("plain", func(t *testing.T) {
		data, err := r.RenderFromFile(context.Background(), page, &pdfOptions{PaperWidth: 8.5, PaperHeight: 11, Margin: 0.5})
		if err != nil {
			t.Fatalf("RenderFromFile() error = %v", err)
		}
		assertValidPDF(t, data)
	})

	t.Run("page numbers", func(t *testing.T) {
		data, err := r.RenderFromFile(context.Background(), page,
			&pdfOptions{PaperWidth: 8.27, PaperHeight: 11.69, Margin: 0.5, PageNumbers: true, Title: "Install"})
		if err != nil {
			t.Fatalf("RenderFromFile() error = %v", err)
		}
		assertValidPDF(t, data)
	})

	t.Run("expired context", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		if _, err := r.RenderFromFile(ctx, page, &pdfOptions{PaperWidth: 8.5, PaperHeight: 11}); err == nil {
			t.Error("expected error for an expired context")
		}
	})
}

// ---------------------------------------------------------------------------
// TestPDF_Integration - Backend writes one PDF per page
// ---------------------------------------------------------------------------

func TestPDF_Integration(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	p, err := NewPDF(Config{OutputDir: outDir, PDF: PDFOptions{PageNumbers: true}})
	if err != nil {
		t.Fatalf("NewPDF() error = %v", err)
	}

	specs := []wikipub.PageSpec{
		{Filename: "Main_Page", Location: wikipub.MustParseLocation("Main Page")},
		{Filename: "Install", Location: wikipub.MustParseLocation("Install")},
	}
	ctx := context.Background()
	if err := p.Prepare(ctx, specs); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer p.Finish(ctx)

	doc := &wikipub.Document{
		Spec: specs[0],
		Next: &specs[1],
		Body: "<h1>Main Page</h1><p>See " + p.FormatInternalLink(specs[1].Location, "Install", "Install") + ".</p>",
	}
	if err := p.WriteDocument(ctx, doc); err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(p.Dir(), "Main_Page.pdf"))
	if err != nil {
		t.Fatalf("expected PDF output: %v", err)
	}
	assertValidPDF(t, data)
}
