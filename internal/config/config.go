package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/fileutil"
	"github.com/alnah/go-wikipub/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidPage     = errors.New("invalid page entry")
	ErrDuplicateFile   = errors.New("duplicate page file")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidMagic    = errors.New("invalid magic variable")
	ErrTooManyPages    = errors.New("too many pages")
	ErrInvalidBaseURL  = errors.New("wiki base URL must start with http:// or https://")
)

// Field length limits.
const (
	MaxURLLength       = 2048 // Browser limit
	MaxUserAgentLength = 200
	MaxDurationLength  = 20   // "1m30s"
	MaxLocationLength  = 512  // "de:Help:Title#Section"
	MaxFileLength      = 100  // output filename without extension
	MaxTitleLength     = 200  // display title
	MaxPathLength      = 1024 // directories, fragment and style references
	MaxExtensionLength = 10   // "htm", "xhtml"
	MaxKeywordLength   = 64   // magic variable name
	MaxMagicLength     = 500  // magic variable value
	MaxPageSizeLength  = 10   // "letter", "a4", "legal"
	MaxBackendLength   = 20   // "helpblocks"
	MaxPages           = 10000
)

// Defaults applied by DefaultConfig and Normalize.
const (
	DefaultHeader     = assets.HeaderTemplate
	DefaultFooter     = assets.FooterTemplate
	DefaultXHTMLStyle = assets.DefaultStyleName
	DefaultPDFStyle   = assets.PrintStyleName
	DefaultOutputDir  = "output"
	DefaultBackend    = "xhtml"
)

// Config is a publishing manifest: where the wiki lives, which pages to
// publish and how each backend writes them.
type Config struct {
	Wiki             WikiConfig        `yaml:"wiki"`
	Pages            []PageConfig      `yaml:"pages"`
	ExcludeTemplates []string          `yaml:"excludeTemplates"`
	Magic            map[string]string `yaml:"magic"`
	Backends         []string          `yaml:"backends"`
	Output           OutputConfig      `yaml:"output"`
	Assets           AssetsConfig      `yaml:"assets"`
	XHTML            XHTMLConfig       `yaml:"xhtml"`
	HelpBlocks       HelpBlocksConfig  `yaml:"helpblocks"`
	PDF              PDFConfig         `yaml:"pdf"`
}

// WikiConfig defines the MediaWiki installation pages are read from.
type WikiConfig struct {
	BaseURL   string `yaml:"baseURL"`   // directory holding index.php
	UserAgent string `yaml:"userAgent"` // empty = client default
	Timeout   string `yaml:"timeout"`   // Go duration, empty = client default
}

// PageConfig names one page to publish.
type PageConfig struct {
	File     string `yaml:"file"`     // output name without extension (default: derived from location)
	Location string `yaml:"location"` // "[lang:][Namespace:]Title[#Section]"
	Title    string `yaml:"title"`    // display title (default: location title)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // root of every backend directory
	ImageDir string `yaml:"imageDir"` // relative to dir (default: "images")
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// XHTMLConfig defines the XHTML backend. Header, footer and style take an
// embedded asset name or a file path; the header and footer are also used
// by the PDF backend.
type XHTMLConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
	Header    string `yaml:"header"`
	Footer    string `yaml:"footer"`
	Style     string `yaml:"style"`
	Sanitize  bool   `yaml:"sanitize"`
}

// HelpBlocksConfig defines the HelpBlocks backend.
type HelpBlocksConfig struct {
	Dir string `yaml:"dir"`
}

// PDFConfig defines the PDF backend.
type PDFConfig struct {
	Dir         string  `yaml:"dir"`
	PageSize    string  `yaml:"pageSize"` // "letter", "a4", "legal" (default: "letter")
	Margin      float64 `yaml:"margin"`   // inches (default: 0.5)
	PageNumbers bool    `yaml:"pageNumbers"`
	Timeout     string  `yaml:"timeout"` // per page, Go duration
	Style       string  `yaml:"style"`
}

// Validate checks lengths, durations and page entries.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("wiki.baseURL", c.Wiki.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Wiki.BaseURL != "" && !fileutil.IsURL(c.Wiki.BaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Wiki.BaseURL)
	}
	if err := validateFieldLength("wiki.userAgent", c.Wiki.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if _, err := parseDuration("wiki.timeout", c.Wiki.Timeout); err != nil {
		return err
	}

	if err := c.validatePages(); err != nil {
		return err
	}

	for i, ref := range c.ExcludeTemplates {
		field := fmt.Sprintf("excludeTemplates[%d]", i)
		if err := validateFieldLength(field, ref, MaxLocationLength); err != nil {
			return err
		}
		if _, err := wikipub.ParseLocation(ref); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	for keyword, value := range c.Magic {
		field := "magic." + keyword
		if keyword == "" || strings.ContainsAny(keyword, "{}|") {
			return fmt.Errorf("%w: %q", ErrInvalidMagic, keyword)
		}
		if err := validateFieldLength(field, keyword, MaxKeywordLength); err != nil {
			return err
		}
		if err := validateFieldLength(field, value, MaxMagicLength); err != nil {
			return err
		}
		if err := (wikipub.MagicVars{}).Define(keyword, value, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMagic, err)
		}
	}

	for i, id := range c.Backends {
		if err := validateFieldLength(fmt.Sprintf("backends[%d]", i), id, MaxBackendLength); err != nil {
			return err
		}
	}

	paths := []struct {
		field, value string
		max          int
	}{
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"output.imageDir", c.Output.ImageDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"xhtml.dir", c.XHTML.Dir, MaxPathLength},
		{"xhtml.extension", c.XHTML.Extension, MaxExtensionLength},
		{"xhtml.header", c.XHTML.Header, MaxPathLength},
		{"xhtml.footer", c.XHTML.Footer, MaxPathLength},
		{"xhtml.style", c.XHTML.Style, MaxPathLength},
		{"helpblocks.dir", c.HelpBlocks.Dir, MaxPathLength},
		{"pdf.dir", c.PDF.Dir, MaxPathLength},
		{"pdf.pageSize", c.PDF.PageSize, MaxPageSizeLength},
		{"pdf.style", c.PDF.Style, MaxPathLength},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.field, p.value, p.max); err != nil {
			return err
		}
	}

	if c.PDF.Margin < 0 {
		return fmt.Errorf("pdf.margin: must not be negative, got %.2f", c.PDF.Margin)
	}
	if _, err := parseDuration("pdf.timeout", c.PDF.Timeout); err != nil {
		return err
	}

	return nil
}

func (c *Config) validatePages() error {
	if len(c.Pages) > MaxPages {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyPages, len(c.Pages), MaxPages)
	}

	seen := make(map[string]int, len(c.Pages))
	for i, page := range c.Pages {
		field := fmt.Sprintf("pages[%d]", i)
		if err := validateFieldLength(field+".location", page.Location, MaxLocationLength); err != nil {
			return err
		}
		if err := validateFieldLength(field+".file", page.File, MaxFileLength); err != nil {
			return err
		}
		if err := validateFieldLength(field+".title", page.Title, MaxTitleLength); err != nil {
			return err
		}

		if strings.TrimSpace(page.Location) == "" {
			return fmt.Errorf("%w: %s: location is required", ErrInvalidPage, field)
		}
		loc, err := wikipub.ParseLocation(page.Location)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPage, field, err)
		}
		if page.File != "" && !isValidFile(page.File) {
			return fmt.Errorf("%w: %s: file %q must not contain path separators", ErrInvalidPage, field, page.File)
		}

		file := page.filename(loc)
		if prev, dup := seen[file]; dup {
			return fmt.Errorf("%w: %q used by pages[%d] and %s", ErrDuplicateFile, file, prev, field)
		}
		seen[file] = i
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// parseDuration parses an optional duration field. Empty yields zero.
func parseDuration(fieldName, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s: %q", ErrInvalidDuration, fieldName, value)
	}
	return d, nil
}

// WikiTimeout returns the parsed wiki request timeout, zero when unset.
func (c *Config) WikiTimeout() time.Duration {
	d, _ := parseDuration("wiki.timeout", c.Wiki.Timeout)
	return d
}

// PDFTimeout returns the parsed per-page PDF timeout, zero when unset.
func (c *Config) PDFTimeout() time.Duration {
	d, _ := parseDuration("pdf.timeout", c.PDF.Timeout)
	return d
}

// PageSpecs converts the page list to publish specs, in manifest order.
func (c *Config) PageSpecs() ([]wikipub.PageSpec, error) {
	specs := make([]wikipub.PageSpec, 0, len(c.Pages))
	for i, page := range c.Pages {
		loc, err := wikipub.ParseLocation(page.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: pages[%d]: %v", ErrInvalidPage, i, err)
		}
		specs = append(specs, wikipub.PageSpec{
			Filename: page.filename(loc),
			Location: loc,
			Title:    page.Title,
		})
	}
	return specs, nil
}

// ExcludedLocations parses the excluded template references.
func (c *Config) ExcludedLocations() ([]wikipub.Location, error) {
	locs := make([]wikipub.Location, 0, len(c.ExcludeTemplates))
	for i, ref := range c.ExcludeTemplates {
		loc, err := wikipub.ParseLocation(ref)
		if err != nil {
			return nil, fmt.Errorf("excludeTemplates[%d]: %w", i, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// filename returns File, or a name derived from loc.
func (p PageConfig) filename(loc wikipub.Location) string {
	if p.File != "" {
		return p.File
	}
	return DeriveFilename(loc)
}

// DeriveFilename builds an output name from the full title and section.
// Characters outside letters, digits, '-', '_' and '.' become '_'.
func DeriveFilename(loc wikipub.Location) string {
	name := loc.FullTitle()
	if loc.Section != "" {
		name += "-" + loc.Section
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
	if len(name) > MaxFileLength {
		name = name[:MaxFileLength]
	}
	return strings.Trim(name, ".")
}

func isValidFile(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, "/\\\x00")
}

// DefaultConfig returns a configuration publishing nothing to ./output with
// the xhtml backend and the embedded header, footer and styles.
func DefaultConfig() *Config {
	return &Config{
		Backends: []string{DefaultBackend},
		Output:   OutputConfig{Dir: DefaultOutputDir},
		XHTML: XHTMLConfig{
			Header: DefaultHeader,
			Footer: DefaultFooter,
			Style:  DefaultXHTMLStyle,
		},
		PDF: PDFConfig{Style: DefaultPDFStyle},
	}
}

// Normalize fills empty fields with the DefaultConfig values. Set a
// fragment or style to "none" to publish without it.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if len(c.Backends) == 0 {
		c.Backends = def.Backends
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	c.XHTML.Header = withDefault(c.XHTML.Header, def.XHTML.Header)
	c.XHTML.Footer = withDefault(c.XHTML.Footer, def.XHTML.Footer)
	c.XHTML.Style = withDefault(c.XHTML.Style, def.XHTML.Style)
	c.PDF.Style = withDefault(c.PDF.Style, def.PDF.Style)
}

// NoAsset disables a header, footer or style.
const NoAsset = "none"

func withDefault(value, def string) string {
	switch {
	case value == "":
		return def
	case strings.EqualFold(value, NoAsset):
		return ""
	default:
		return value
	}
}

// ApplyEnv overrides the wiki URL and output directory from WIKIPUB_URL and
// WIKIPUB_OUTPUT. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("WIKIPUB_URL"); ok && v != "" {
		c.Wiki.BaseURL = v
	}
	if v, ok := lookup("WIKIPUB_OUTPUT"); ok && v != "" {
		c.Output.Dir = v
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-wikipub/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-wikipub", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
