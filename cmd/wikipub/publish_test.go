package main

// Notes:
// - runPublish: end-to-end against an httptest wiki with the xhtml and
//   helpblocks backends. The pdf backend needs Chrome and is covered by the
//   backend package tests.
// - mergeFlags/loadManifest: precedence is flags > environment > manifest.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/backend"
	"github.com/alnah/go-wikipub/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake wiki
// ---------------------------------------------------------------------------

const mainPageExport = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.3/" version="0.3">
  <page>
    <title>Main Page</title>
    <revision>
      <timestamp>2024-03-07T09:05:00Z</timestamp>
      <text xml:space="preserve">Welcome to the '''manual'''.
== Setup ==
See [[Install]] first.</text>
    </revision>
  </page>
</mediawiki>`

const installExport = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.3/" version="0.3">
  <page>
    <title>Install</title>
    <revision>
      <timestamp>2024-03-08T10:00:00Z</timestamp>
      <text xml:space="preserve">Run the installer.</text>
    </revision>
  </page>
</mediawiki>`

// newTestWiki serves Main_Page and Install; every other page is missing.
func newTestWiki(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/w/index.php/Special:Export/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/w/index.php/Special:Export/") {
		case "Main_Page":
			w.Write([]byte(mainPageExport))
		case "Install":
			w.Write([]byte(installExport))
		default:
			w.Write([]byte(`<mediawiki version="0.3"></mediawiki>`))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// parseFlags parses publish flags or fails the test.
func parseFlags(t *testing.T, args ...string) (*publishFlags, []string) {
	t.Helper()
	env, _, stderr := testEnv()
	flags, positional, err := parsePublishFlags("publish", args, env.Stderr, printPublishUsage)
	if err != nil {
		t.Fatalf("parsePublishFlags(%v) error = %v\n%s", args, err, stderr.String())
	}
	return flags, positional
}

// ---------------------------------------------------------------------------
// TestRunPublish - End-to-end publishing
// ---------------------------------------------------------------------------

func TestRunPublish(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	outDir := t.TempDir()

	env, stdout, stderr := testEnv()
	env.HTTPClient = srv.Client()
	flags, args := parseFlags(t, "-q", "-u", srv.URL+"/w/", "-o", outDir,
		"-b", "xhtml", "-b", "helpblocks", "Main Page", "Install")

	if err := runPublish(context.Background(), flags, args, env); err != nil {
		t.Fatalf("runPublish() error = %v\nstderr: %s", err, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run should print nothing, got %q", stdout.String())
	}

	page := filepath.Join(outDir, backend.DefaultXHTMLDir, "Main_Page."+backend.DefaultXHTMLExtension)
	content, err := os.ReadFile(page)
	if err != nil {
		t.Fatalf("expected XHTML page: %v", err)
	}
	for _, want := range []string{"manual", "Setup", "Install"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("page missing %q", want)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, backend.DefaultXHTMLDir, "Install."+backend.DefaultXHTMLExtension)); err != nil {
		t.Errorf("expected second XHTML page: %v", err)
	}

	htd, err := filepath.Glob(filepath.Join(outDir, "*", "*.htd"))
	if err != nil || len(htd) != 2 {
		t.Errorf("expected 2 HelpBlocks files, got %v (err %v)", htd, err)
	}
}

func TestRunPublish_Summary(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	outDir := t.TempDir()

	env, stdout, _ := testEnv()
	env.HTTPClient = srv.Client()
	env.LookupEnv = withLookup(map[string]string{"WIKIPUB_URL": srv.URL + "/w/", "WIKIPUB_OUTPUT": outDir})
	flags, args := parseFlags(t, "Main Page")

	if err := runPublish(context.Background(), flags, args, env); err != nil {
		t.Fatalf("runPublish() error = %v", err)
	}
	if want := "Published 1 page(s) with xhtml to " + outDir; !strings.Contains(stdout.String(), want) {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunPublish_MissingPage(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	env, _, stderr := testEnv()
	env.HTTPClient = srv.Client()
	flags, args := parseFlags(t, "-u", srv.URL+"/w/", "-o", t.TempDir(), "Main Page", "Nowhere")

	err := runPublish(context.Background(), flags, args, env)
	if !errors.Is(err, ErrPagesFailed) {
		t.Fatalf("runPublish() error = %v, want ErrPagesFailed", err)
	}
	if exitCodeFor(err) != ExitGeneral {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitGeneral)
	}
	if !strings.Contains(stderr.String(), "Nowhere") {
		t.Errorf("stderr should name the missing page:\n%s", stderr.String())
	}
}

func TestRunPublish_Manifest(t *testing.T) {
	t.Parallel()

	srv := newTestWiki(t)
	outDir := t.TempDir()
	manifest := filepath.Join(t.TempDir(), "manual.yaml")
	data := "wiki:\n  baseURL: " + srv.URL + "/w/\n" +
		"pages:\n  - location: Main Page\n    file: index\n    title: Start\n" +
		"output:\n  dir: " + outDir + "\n" +
		"xhtml:\n  extension: html\n"
	if err := os.WriteFile(manifest, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	env, _, stderr := testEnv()
	env.HTTPClient = srv.Client()
	flags, args := parseFlags(t, "-q", "-c", manifest)

	if err := runPublish(context.Background(), flags, args, env); err != nil {
		t.Fatalf("runPublish() error = %v\nstderr: %s", err, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, backend.DefaultXHTMLDir, "index.html")); err != nil {
		t.Errorf("expected manifest file name and extension: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flag overrides
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Wiki.BaseURL = "https://old.example.org/"
	cfg.Pages = []config.PageConfig{{Location: "Old"}}
	cfg.ExcludeTemplates = []string{"Template:Nav"}

	flags, args := parseFlags(t, "-u", "https://new.example.org/w/", "--user-agent", "bot/1.0",
		"-t", "5s", "-o", "site", "-b", "pdf", "--asset-path", "theme", "--sanitize",
		"--exclude", "Template:Ad", "Main Page", "de:Hilfe")
	mergeFlags(flags, args, cfg)

	if cfg.Wiki.BaseURL != "https://new.example.org/w/" {
		t.Errorf("BaseURL = %q", cfg.Wiki.BaseURL)
	}
	if cfg.Wiki.UserAgent != "bot/1.0" || cfg.Wiki.Timeout != "5s" {
		t.Errorf("wiki = %+v", cfg.Wiki)
	}
	if cfg.Output.Dir != "site" || cfg.Assets.BasePath != "theme" || !cfg.XHTML.Sanitize {
		t.Errorf("output = %+v, assets = %+v, sanitize = %v", cfg.Output, cfg.Assets, cfg.XHTML.Sanitize)
	}
	if len(cfg.Backends) != 1 || cfg.Backends[0] != "pdf" {
		t.Errorf("Backends = %v, want [pdf]", cfg.Backends)
	}
	if len(cfg.ExcludeTemplates) != 2 || cfg.ExcludeTemplates[1] != "Template:Ad" {
		t.Errorf("ExcludeTemplates = %v", cfg.ExcludeTemplates)
	}
	if len(cfg.Pages) != 2 || cfg.Pages[0].Location != "Main Page" || cfg.Pages[1].Location != "de:Hilfe" {
		t.Errorf("Pages = %+v, want positional pages", cfg.Pages)
	}
}

func TestMergeFlags_KeepsManifest(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Wiki.BaseURL = "https://wiki.example.org/"
	cfg.Pages = []config.PageConfig{{Location: "Main Page"}}

	flags, args := parseFlags(t)
	mergeFlags(flags, args, cfg)

	if cfg.Wiki.BaseURL != "https://wiki.example.org/" || len(cfg.Pages) != 1 {
		t.Errorf("empty flags changed manifest: %+v", cfg)
	}
	if len(cfg.Backends) != 1 || cfg.Backends[0] != config.DefaultBackend {
		t.Errorf("Backends = %v, want default", cfg.Backends)
	}
}

// ---------------------------------------------------------------------------
// TestLoadManifest - Config name resolution and precedence
// ---------------------------------------------------------------------------

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	manifest := filepath.Join(t.TempDir(), "wiki.yaml")
	data := "wiki:\n  baseURL: https://file.example.org/\noutput:\n  dir: from-file\n"
	if err := os.WriteFile(manifest, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("config from environment", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		env.LookupEnv = withLookup(map[string]string{envConfigName: manifest})
		flags, args := parseFlags(t)

		cfg, err := loadManifest(flags, args, env)
		if err != nil {
			t.Fatalf("loadManifest() error = %v", err)
		}
		if cfg.Wiki.BaseURL != "https://file.example.org/" || cfg.Output.Dir != "from-file" {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("flag beats environment beats file", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		env.LookupEnv = withLookup(map[string]string{
			"WIKIPUB_URL":    "https://env.example.org/",
			"WIKIPUB_OUTPUT": "from-env",
		})
		flags, args := parseFlags(t, "-c", manifest, "-o", "from-flag")

		cfg, err := loadManifest(flags, args, env)
		if err != nil {
			t.Fatalf("loadManifest() error = %v", err)
		}
		if cfg.Wiki.BaseURL != "https://env.example.org/" {
			t.Errorf("BaseURL = %q, want env value", cfg.Wiki.BaseURL)
		}
		if cfg.Output.Dir != "from-flag" {
			t.Errorf("Output.Dir = %q, want flag value", cfg.Output.Dir)
		}
	})

	t.Run("defaults without config", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		flags, args := parseFlags(t)

		cfg, err := loadManifest(flags, args, env)
		if err != nil {
			t.Fatalf("loadManifest() error = %v", err)
		}
		if cfg.Output.Dir != config.DefaultOutputDir || cfg.XHTML.Style != config.DefaultXHTMLStyle {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})

	t.Run("invalid page", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		flags, args := parseFlags(t, "#Setup")

		_, err := loadManifest(flags, args, env)
		if exitCodeFor(err) != ExitUsage {
			t.Errorf("loadManifest(#Setup) error = %v, want usage error", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestLoadStyle - Style names and files
// ---------------------------------------------------------------------------

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	resolver, err := assets.NewAssetResolver("")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		got, err := loadStyle(resolver, "")
		if err != nil || got != "" {
			t.Errorf("loadStyle(\"\") = %q, %v", got, err)
		}
	})

	t.Run("embedded name", func(t *testing.T) {
		t.Parallel()

		got, err := loadStyle(resolver, assets.DefaultStyleName)
		if err != nil || got == "" {
			t.Errorf("loadStyle(default) = %d bytes, %v", len(got), err)
		}
	})

	t.Run("css file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.css")
		if err := os.WriteFile(path, []byte("body { color: navy; }"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := loadStyle(resolver, path)
		if err != nil || !strings.Contains(got, "navy") {
			t.Errorf("loadStyle(file) = %q, %v", got, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := loadStyle(resolver, filepath.Join(t.TempDir(), "missing.css"))
		if !errors.Is(err, ErrReadStyle) {
			t.Errorf("loadStyle(missing) error = %v, want ErrReadStyle", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		_, err := loadStyle(resolver, "nonexistent")
		if !errors.Is(err, assets.ErrStyleNotFound) {
			t.Errorf("loadStyle(nonexistent) error = %v, want ErrStyleNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildBackends - Order, case and repeats
// ---------------------------------------------------------------------------

func TestBuildBackends(t *testing.T) {
	t.Parallel()

	cfg := backend.Config{OutputDir: t.TempDir()}

	got, err := buildBackends([]string{"HelpBlocks", "xhtml", "helpblocks"}, cfg)
	if err != nil {
		t.Fatalf("buildBackends() error = %v", err)
	}
	if len(got) != 2 || got[0].ID() != backend.IDHelpBlocks || got[1].ID() != backend.IDXHTML {
		ids := make([]string, len(got))
		for i, b := range got {
			ids[i] = b.ID()
		}
		t.Errorf("buildBackends() ids = %v, want [helpblocks xhtml]", ids)
	}

	if _, err := buildBackends([]string{"epub"}, cfg); !errors.Is(err, backend.ErrUnknownBackend) {
		t.Errorf("buildBackends(epub) error = %v, want ErrUnknownBackend", err)
	}
}

// ---------------------------------------------------------------------------
// TestRunConfigCmd - Effective manifest output
// ---------------------------------------------------------------------------

func TestRunConfigCmd(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	flags, args := parseFlags(t, "-u", "https://wiki.example.org/w/", "Main Page")

	if err := runConfigCmd(flags, args, env); err != nil {
		t.Fatalf("runConfigCmd() error = %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"baseURL:", "wiki.example.org/w/", "Main Page", "- xhtml"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
