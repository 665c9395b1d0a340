package mediawiki

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-wikipub"
)

const exportXML = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.3/" version="0.3">
  <page>
    <title>Main Page</title>
    <revision>
      <timestamp>2024-03-07T09:05:00Z</timestamp>
      <text xml:space="preserve">Hello &amp; welcome
== Intro ==</text>
    </revision>
  </page>
</mediawiki>`

const emptyExportXML = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.3/" version="0.3"></mediawiki>`

// newWiki serves a minimal MediaWiki and counts requests per path.
func newWiki(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/w/index.php/Special:Export/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch strings.TrimPrefix(r.URL.Path, "/w/index.php/Special:Export/") {
		case "Main_Page":
			w.Write([]byte(exportXML))
		case "Broken":
			w.Write([]byte("<mediawiki><page>"))
		case "Down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(emptyExportXML))
		}
	})
	mux.HandleFunc("/w/index.php", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Query().Get("title") {
		case "Image:Logo.png":
			w.Write([]byte("[File]\nType=file\nURL=/w/images/a/ab/Logo_v2.png\n"))
		case "Image:Quoted.png":
			w.Write([]byte("URL=\"http://cdn.example.org/files/q.png\"\n"))
		default:
			w.Write([]byte("[File]\nType=file\n"))
		}
	})
	mux.HandleFunc("/w/images/a/ab/Logo_v2.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PNGDATA"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL+"/w", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// TestNew - base URL validation
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "adds trailing slash", raw: "https://wiki.example.org/w", want: "https://wiki.example.org/w/"},
		{name: "keeps trailing slash", raw: "http://wiki.example.org/", want: "http://wiki.example.org/"},
		{name: "host only", raw: "http://wiki", want: "http://wiki/"},
		{name: "no scheme", raw: "wiki.example.org", wantErr: true},
		{name: "ftp", raw: "ftp://wiki.example.org", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBaseURL) {
					t.Errorf("New(%q) error = %v, want %v", tt.raw, err, ErrInvalidBaseURL)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) unexpected error: %v", tt.raw, err)
			}
			if got := c.BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_URLs(t *testing.T) {
	t.Parallel()

	c, err := New("https://wiki.example.org/w/")
	if err != nil {
		t.Fatal(err)
	}

	loc := wikipub.MustParseLocation("help:Tables & more")
	if got, want := c.ExportURL(loc), "https://wiki.example.org/w/index.php/Special:Export/Help%3ATables_%26_more"; got != want {
		t.Errorf("ExportURL() = %q, want %q", got, want)
	}

	img := wikipub.MustParseLocation("Image:My logo.png")
	if got, want := c.ImageInfoURL(img), "https://wiki.example.org/w/index.php?title=Image:My+logo.png&action=edit&externaledit=true&mode=file"; got != want {
		t.Errorf("ImageInfoURL() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestClient_Fetch - export decoding and caching
// ---------------------------------------------------------------------------

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	srv, hits := newWiki(t)
	var diags wikipub.Collector
	c := newClient(t, srv, WithReporter(&diags))

	page, err := c.Fetch(context.Background(), wikipub.MustParseLocation("Main Page"))
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if !page.Exists || page.Title != "Main Page" {
		t.Errorf("page = %+v, want existing Main Page", page)
	}
	if page.Source != "Hello & welcome\n== Intro ==" {
		t.Errorf("Source = %q", page.Source)
	}
	if want := time.Date(2024, time.March, 7, 9, 5, 0, 0, time.UTC); !page.Modified.Equal(want) {
		t.Errorf("Modified = %v, want %v", page.Modified, want)
	}

	if _, err := c.Fetch(context.Background(), wikipub.MustParseLocation("Main Page#Intro")); err != nil {
		t.Fatalf("second Fetch() unexpected error: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (cached by title)", n)
	}

	d := diags.Diagnostics()
	if len(d) < 1 || d[0].Message != "Fetching: Main Page" {
		t.Errorf("diagnostics = %+v, want a fetch notice first", d)
	}
}

func TestClient_Fetch_Missing(t *testing.T) {
	t.Parallel()

	srv, hits := newWiki(t)
	c := newClient(t, srv)

	for range 2 {
		page, err := c.Fetch(context.Background(), wikipub.MustParseLocation("Template:Nope"))
		if err != nil {
			t.Fatalf("Fetch() unexpected error: %v", err)
		}
		if page.Exists {
			t.Error("Exists = true for a page without <page> element")
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want missing pages cached", n)
	}
}

func TestClient_Fetch_Errors(t *testing.T) {
	t.Parallel()

	srv, hits := newWiki(t)
	c := newClient(t, srv)

	tests := []struct {
		ref     string
		wantErr error
	}{
		{ref: "Broken", wantErr: ErrMalformedExport},
		{ref: "Down", wantErr: ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		_, err := c.Fetch(context.Background(), wikipub.MustParseLocation(tt.ref))
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Fetch(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
		}
	}

	c.Fetch(context.Background(), wikipub.MustParseLocation("Down"))
	if n := hits.Load(); n != 3 {
		t.Errorf("server hit %d times, want failures not cached", n)
	}
}

func TestClient_Fetch_UserAgent(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(emptyExportXML))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithUserAgent("docs-bot/1.0"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Fetch(context.Background(), wikipub.MustParseLocation("X")); err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if ua, _ := got.Load().(string); ua != "docs-bot/1.0" {
		t.Errorf("User-Agent = %q, want %q", ua, "docs-bot/1.0")
	}
}

// ---------------------------------------------------------------------------
// TestClient_LocateImage - external editor INI lookup
// ---------------------------------------------------------------------------

func TestClient_LocateImage(t *testing.T) {
	t.Parallel()

	srv, _ := newWiki(t)
	c := newClient(t, srv)

	file, err := c.LocateImage(context.Background(), wikipub.MustParseLocation("Image:Logo.png"))
	if err != nil {
		t.Fatalf("LocateImage() unexpected error: %v", err)
	}
	if file.Filename != "Logo_v2.png" {
		t.Errorf("Filename = %q, want %q", file.Filename, "Logo_v2.png")
	}
	if want := srv.URL + "/w/images/a/ab/Logo_v2.png"; file.URL != want {
		t.Errorf("URL = %q, want %q", file.URL, want)
	}

	var buf bytes.Buffer
	if err := c.Download(context.Background(), file.URL, &buf); err != nil {
		t.Fatalf("Download() unexpected error: %v", err)
	}
	if buf.String() != "PNGDATA" {
		t.Errorf("Download() wrote %q", buf.String())
	}
}

func TestClient_LocateImage_QuotedAbsolute(t *testing.T) {
	t.Parallel()

	srv, _ := newWiki(t)
	c := newClient(t, srv)

	file, err := c.LocateImage(context.Background(), wikipub.MustParseLocation("Image:Quoted.png"))
	if err != nil {
		t.Fatalf("LocateImage() unexpected error: %v", err)
	}
	if file.URL != "http://cdn.example.org/files/q.png" || file.Filename != "q.png" {
		t.Errorf("file = %+v", file)
	}
}

func TestClient_LocateImage_NoURL(t *testing.T) {
	t.Parallel()

	srv, _ := newWiki(t)
	c := newClient(t, srv)

	_, err := c.LocateImage(context.Background(), wikipub.MustParseLocation("Image:Unknown.png"))
	if !errors.Is(err, ErrNoImageURL) {
		t.Errorf("LocateImage() error = %v, want %v", err, ErrNoImageURL)
	}
}

func TestClient_Download_NotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newWiki(t)
	c := newClient(t, srv)

	err := c.Download(context.Background(), srv.URL+"/w/images/missing.png", &bytes.Buffer{})
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Download() error = %v, want %v", err, ErrUnexpectedStatus)
	}
}

func TestIniValue(t *testing.T) {
	t.Parallel()

	body := []byte("; comment\n[File]\nType = file\nURL = \"x\"\n")
	if v, ok := iniValue(body, "URL"); !ok || v != "x" {
		t.Errorf("iniValue(URL) = %q, %v", v, ok)
	}
	if _, ok := iniValue(body, "Missing"); ok {
		t.Error("iniValue(Missing) found a value")
	}
}
