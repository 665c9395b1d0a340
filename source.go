package wikipub

import (
	"context"
	"path"
	"sync"
	"time"
)

// Page is the raw state of a wiki page as reported by a PageSource.
type Page struct {
	Title    string // title reported by the wiki, may differ in case
	Exists   bool
	Source   string
	Modified time.Time
}

// PageSource retrieves page markup. A page that does not exist is reported
// with Exists=false and a nil error; errors are reserved for transport or
// decoding failures. Implementations may cache by title for one run.
type PageSource interface {
	Fetch(ctx context.Context, loc Location) (*Page, error)
}

// FileInfo locates the binary behind an image page.
type FileInfo struct {
	URL      string // where the file can be downloaded
	Filename string // base filename, not always the page title
}

// ImageLocator is an optional PageSource capability that resolves image
// pages to downloadable files.
type ImageLocator interface {
	LocateImage(ctx context.Context, loc Location) (FileInfo, error)
}

// MemorySource is an in-process PageSource keyed by Location.FullTitle.
// It also implements ImageLocator from a separate file table.
type MemorySource struct {
	mu     sync.RWMutex
	pages  map[string]Page
	files  map[string]FileInfo
	counts map[string]int
}

// NewMemorySource creates a MemorySource holding pages keyed by full title
// ("Template:Box", "Main Page").
func NewMemorySource(pages map[string]string) *MemorySource {
	s := &MemorySource{
		pages:  make(map[string]Page, len(pages)),
		files:  make(map[string]FileInfo),
		counts: make(map[string]int),
	}
	for title, src := range pages {
		s.Put(title, src)
	}
	return s
}

// Put stores or replaces a page.
func (s *MemorySource) Put(fullTitle, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[fullTitle] = Page{Title: fullTitle, Exists: true, Source: source}
}

// PutFile registers a downloadable file for an image page title.
func (s *MemorySource) PutFile(title string, file FileInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[title] = file
}

// Fetch implements PageSource.
func (s *MemorySource) Fetch(ctx context.Context, loc Location) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := loc.FullTitle()
	s.counts[key]++
	if p, ok := s.pages[key]; ok {
		return &p, nil
	}
	return &Page{Title: key}, nil
}

// LocateImage implements ImageLocator. Unknown files default to the title
// as filename with no download URL.
func (s *MemorySource) LocateImage(ctx context.Context, loc Location) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.files[loc.Title]; ok {
		return f, nil
	}
	return FileInfo{Filename: path.Base(loc.Title)}, nil
}

// Fetches returns how many times fullTitle was requested.
func (s *MemorySource) Fetches(fullTitle string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[fullTitle]
}

// Compile-time interface checks.
var (
	_ PageSource   = (*MemorySource)(nil)
	_ ImageLocator = (*MemorySource)(nil)
)
