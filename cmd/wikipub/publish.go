package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/backend"
	"github.com/alnah/go-wikipub/internal/config"
	"github.com/alnah/go-wikipub/internal/fileutil"
	"github.com/alnah/go-wikipub/internal/mediawiki"
)

// Sentinel errors for the publish command.
var (
	ErrNoWikiURL   = errors.New("no wiki URL configured")
	ErrReadStyle   = errors.New("failed to read style")
	ErrPagesFailed = errors.New("some pages could not be published")
)

// envConfigName names the manifest used when --config is not given.
const envConfigName = "WIKIPUB_CONFIG"

// runPublish publishes every page of the manifest with every selected backend.
func runPublish(ctx context.Context, flags *publishFlags, args []string, env *Environment) error {
	cfg, err := loadManifest(flags, args, env)
	if err != nil {
		return err
	}
	if cfg.Wiki.BaseURL == "" {
		return ErrNoWikiURL
	}

	specs, err := cfg.PageSpecs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return wikipub.ErrNoPages
	}
	excluded, err := cfg.ExcludedLocations()
	if err != nil {
		return err
	}

	report := newLogReporter(env.Stderr, flags.common.quiet, flags.common.verbose)

	clientOpts := []mediawiki.Option{
		mediawiki.WithUserAgent(cfg.Wiki.UserAgent),
		mediawiki.WithTimeout(cfg.WikiTimeout()),
		mediawiki.WithReporter(report),
	}
	if env.HTTPClient != nil {
		clientOpts = append(clientOpts, mediawiki.WithHTTPClient(env.HTTPClient))
	}
	client, err := mediawiki.New(cfg.Wiki.BaseURL, clientOpts...)
	if err != nil {
		return err
	}

	magic := wikipub.DefaultMagicVars(env.Now)
	for keyword, value := range cfg.Magic {
		if err := magic.Define(keyword, value, env.Now); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidMagic, err)
		}
	}

	bcfg, err := buildBackendConfig(ctx, cfg, client, report)
	if err != nil {
		return err
	}
	backends, err := buildBackends(cfg.Backends, bcfg)
	if err != nil {
		return err
	}

	pub := wikipub.NewPublisher(client,
		wikipub.WithReporter(report),
		wikipub.WithExcludedTemplates(excluded...),
		wikipub.WithMagicVars(magic),
		wikipub.WithClock(env.Now),
	)
	if err := pub.Publish(ctx, backends, specs); err != nil {
		return err
	}

	if n := report.Errors(); n > 0 {
		return fmt.Errorf("%w: %d error(s), %d warning(s)", ErrPagesFailed, n, report.Warnings())
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Published %d page(s) with %s to %s\n",
			len(specs), strings.Join(cfg.Backends, ", "), cfg.Output.Dir)
	}
	return nil
}

// loadManifest loads the manifest named by --config or WIKIPUB_CONFIG, or
// the defaults when neither is set, then applies environment and flag
// overrides. Positional args replace the manifest page list.
func loadManifest(flags *publishFlags, args []string, env *Environment) (*config.Config, error) {
	name := flags.common.config
	if name == "" {
		name = env.getenv(envConfigName)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if env.LookupEnv != nil {
		cfg.ApplyEnv(env.LookupEnv)
	}
	mergeFlags(flags, args, cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies CLI overrides. Flags take precedence over the manifest
// and the environment.
func mergeFlags(flags *publishFlags, args []string, cfg *config.Config) {
	if flags.wiki.url != "" {
		cfg.Wiki.BaseURL = flags.wiki.url
	}
	if flags.wiki.userAgent != "" {
		cfg.Wiki.UserAgent = flags.wiki.userAgent
	}
	if flags.wiki.timeout != "" {
		cfg.Wiki.Timeout = flags.wiki.timeout
	}
	if flags.output.dir != "" {
		cfg.Output.Dir = flags.output.dir
	}
	if len(flags.output.backends) > 0 {
		cfg.Backends = flags.output.backends
	}
	if flags.output.assetPath != "" {
		cfg.Assets.BasePath = flags.output.assetPath
	}
	if flags.output.sanitize {
		cfg.XHTML.Sanitize = true
	}
	cfg.ExcludeTemplates = append(cfg.ExcludeTemplates, flags.exclude...)

	if len(args) > 0 {
		pages := make([]config.PageConfig, 0, len(args))
		for _, ref := range args {
			pages = append(pages, config.PageConfig{Location: ref})
		}
		cfg.Pages = pages
	}
}

// buildBackendConfig resolves templates and styles and maps the manifest to
// backend settings.
func buildBackendConfig(ctx context.Context, cfg *config.Config, downloader backend.Downloader, report wikipub.Reporter) (backend.Config, error) {
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return backend.Config{}, err
	}

	header, err := backend.LoadFragment(ctx, resolver, cfg.XHTML.Header)
	if err != nil {
		return backend.Config{}, fmt.Errorf("header: %w", err)
	}
	footer, err := backend.LoadFragment(ctx, resolver, cfg.XHTML.Footer)
	if err != nil {
		return backend.Config{}, fmt.Errorf("footer: %w", err)
	}
	xhtmlStyle, err := loadStyle(resolver, cfg.XHTML.Style)
	if err != nil {
		return backend.Config{}, fmt.Errorf("xhtml.style: %w", err)
	}
	pdfStyle, err := loadStyle(resolver, cfg.PDF.Style)
	if err != nil {
		return backend.Config{}, fmt.Errorf("pdf.style: %w", err)
	}

	return backend.Config{
		OutputDir:  cfg.Output.Dir,
		ImageDir:   cfg.Output.ImageDir,
		Downloader: downloader,
		Reporter:   report,
		XHTML: backend.XHTMLOptions{
			Dir:       cfg.XHTML.Dir,
			Extension: cfg.XHTML.Extension,
			Header:    header,
			Footer:    footer,
			Style:     xhtmlStyle,
			Sanitize:  cfg.XHTML.Sanitize,
		},
		HelpBlocks: backend.HelpBlocksOptions{Dir: cfg.HelpBlocks.Dir},
		PDF: backend.PDFOptions{
			Dir:         cfg.PDF.Dir,
			PageSize:    cfg.PDF.PageSize,
			Margin:      cfg.PDF.Margin,
			PageNumbers: cfg.PDF.PageNumbers,
			Style:       pdfStyle,
			Timeout:     cfg.PDFTimeout(),
		},
	}, nil
}

// loadStyle returns the stylesheet referenced by ref: a path to a .css file
// is read as is, anything else is a style name looked up in loader.
func loadStyle(loader assets.AssetLoader, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if fileutil.IsFilePath(ref) || strings.EqualFold(filepath.Ext(ref), ".css") {
		content, err := os.ReadFile(ref) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadStyle, err)
		}
		return string(content), nil
	}
	return loader.LoadStyle(ref)
}

// buildBackends creates the backends in the order given, skipping repeats.
func buildBackends(ids []string, cfg backend.Config) ([]wikipub.Backend, error) {
	seen := make(map[string]bool, len(ids))
	backends := make([]wikipub.Backend, 0, len(ids))
	for _, id := range ids {
		key := strings.ToLower(strings.TrimSpace(id))
		if seen[key] {
			continue
		}
		seen[key] = true

		b, err := backend.New(key, cfg)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}
