package mediawiki

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-wikipub"
)

// Client defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "go-wikipub"

	// maxResponseSize caps any single page or file download.
	maxResponseSize = 64 << 20
)

// Client is a wikipub.PageSource and wikipub.ImageLocator backed by a
// MediaWiki installation. Pages and image locations are cached by title for
// the lifetime of the Client, which should match one publishing run.
// A Client is safe for concurrent use.
type Client struct {
	base      *url.URL
	userAgent string
	timeout   time.Duration
	http      *http.Client
	report    wikipub.Reporter

	mu    sync.Mutex
	pages map[string]*wikipub.Page
	files map[string]wikipub.FileInfo
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, for custom transports or tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client. It
// has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReporter sets the sink for fetch notices and debug messages.
func WithReporter(r wikipub.Reporter) Option {
	return func(c *Client) {
		if r != nil {
			c.report = r
		}
	}
}

// New creates a Client for the wiki whose index.php lives under baseURL,
// e.g. "https://wiki.example.org/w/".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      base,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		report:    wikipub.ReporterFunc(func(wikipub.Diagnostic) {}),
		pages:     make(map[string]*wikipub.Page),
		files:     make(map[string]wikipub.FileInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https", ErrInvalidBaseURL, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the normalized wiki base URL, always ending in "/".
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ExportURL returns the Special:Export address for loc's page.
func (c *Client) ExportURL(loc wikipub.Location) string {
	title := strings.ReplaceAll(loc.FullTitle(), " ", "_")
	return c.BaseURL() + "index.php/Special:Export/" + url.QueryEscape(title)
}

// ImageInfoURL returns the external editor address describing the file
// behind an image page.
func (c *Client) ImageInfoURL(loc wikipub.Location) string {
	return c.BaseURL() + "index.php?title=Image:" + url.QueryEscape(loc.Title) +
		"&action=edit&externaledit=true&mode=file"
}

// Fetch implements wikipub.PageSource. Missing pages are cached and returned
// with Exists=false; failures are not cached.
func (c *Client) Fetch(ctx context.Context, loc wikipub.Location) (*wikipub.Page, error) {
	key := loc.FullTitle()

	c.mu.Lock()
	cached, ok := c.pages[key]
	c.mu.Unlock()
	if ok {
		page := *cached
		return &page, nil
	}

	pageURL := c.ExportURL(loc)
	c.notice("Fetching: " + key)
	c.debug("Page URL: " + pageURL)

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	page, err := decodeExport(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if page.Title == "" {
		page.Title = key
	}

	c.mu.Lock()
	c.pages[key] = page
	c.mu.Unlock()

	out := *page
	return &out, nil
}

// LocateImage implements wikipub.ImageLocator. The filename is the last
// path element of the file URL, which may differ from the page title.
func (c *Client) LocateImage(ctx context.Context, loc wikipub.Location) (wikipub.FileInfo, error) {
	c.mu.Lock()
	cached, ok := c.files[loc.Title]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	infoURL := c.ImageInfoURL(loc)
	c.debug("Image URL: " + infoURL)

	body, err := c.get(ctx, infoURL)
	if err != nil {
		return wikipub.FileInfo{}, err
	}
	raw, ok := iniValue(body, "URL")
	if !ok || raw == "" {
		return wikipub.FileInfo{}, fmt.Errorf("%w: %s", ErrNoImageURL, loc.Title)
	}
	fileURL, err := c.base.Parse(raw)
	if err != nil {
		return wikipub.FileInfo{}, fmt.Errorf("%w: %s: %v", ErrNoImageURL, loc.Title, err)
	}

	file := wikipub.FileInfo{URL: fileURL.String(), Filename: path.Base(fileURL.Path)}
	c.mu.Lock()
	c.files[loc.Title] = file
	c.mu.Unlock()
	return file, nil
}

// Download copies the file at fileURL into w.
func (c *Client) Download(ctx context.Context, fileURL string, w io.Writer) error {
	resp, err := c.do(ctx, fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return fmt.Errorf("download %s: %w", fileURL, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}

// do issues a GET and checks the status. The caller closes the body.
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) notice(msg string) {
	c.report.Report(wikipub.Diagnostic{Severity: wikipub.SeverityNotice, Message: msg})
}

func (c *Client) debug(msg string) {
	c.report.Report(wikipub.Diagnostic{Severity: wikipub.SeverityDebug, Message: msg})
}

// export mirrors the parts of the Special:Export schema that are read.
type export struct {
	Pages []exportPage `xml:"page"`
}

type exportPage struct {
	Title     string           `xml:"title"`
	Revisions []exportRevision `xml:"revision"`
}

type exportRevision struct {
	Timestamp string `xml:"timestamp"`
	Text      string `xml:"text"`
}

// decodeExport reads the first page of an export document. A document
// without a <page> element describes a page that does not exist.
func decodeExport(body []byte) (*wikipub.Page, error) {
	var doc export
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExport, err)
	}
	if len(doc.Pages) == 0 {
		return &wikipub.Page{}, nil
	}

	p := doc.Pages[0]
	page := &wikipub.Page{Title: p.Title, Exists: true}
	if n := len(p.Revisions); n > 0 {
		rev := p.Revisions[n-1]
		page.Source = rev.Text
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rev.Timestamp)); err == nil {
			page.Modified = ts
		}
	}
	return page, nil
}

// iniValue returns the value of key from a flat INI document. Section
// headers and comments are skipped; surrounding quotes are removed.
func iniValue(body []byte, key string) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' || line[0] == '[' {
			continue
		}
		name, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(name) != key {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		return value, true
	}
	return "", false
}

// Compile-time interface checks.
var (
	_ wikipub.PageSource   = (*Client)(nil)
	_ wikipub.ImageLocator = (*Client)(nil)
)
