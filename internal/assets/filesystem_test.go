package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeAsset creates dir/sub/name under a temporary base directory.
func writeAsset(t *testing.T, base, sub, name, content string) {
	t.Helper()
	dir := filepath.Join(base, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFilesystemLoader(t.TempDir()); err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFilesystemLoader(""); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want %v", err, ErrInvalidBasePath)
		}
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		t.Parallel()

		if _, err := NewFilesystemLoader("/nonexistent/path/abc123xyz"); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want %v", err, ErrInvalidBasePath)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFilesystemLoader(file); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want %v", err, ErrInvalidBasePath)
		}
	})
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "corporate.css", "body { color: navy; }")
	writeAsset(t, base, "templates", "header.html", "<h1>{TOPIC}</h1>")

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}

	if got, err := loader.LoadStyle("corporate"); err != nil || got != "body { color: navy; }" {
		t.Errorf("LoadStyle() = %q, %v", got, err)
	}
	if got, err := loader.LoadTemplate("header"); err != nil || got != "<h1>{TOPIC}</h1>" {
		t.Errorf("LoadTemplate() = %q, %v", got, err)
	}
	if _, err := loader.LoadStyle("missing"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(missing) error = %v, want %v", err, ErrStyleNotFound)
	}
	if _, err := loader.LoadTemplate("footer"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(footer) error = %v, want %v", err, ErrTemplateNotFound)
	}
	if _, err := loader.LoadStyle("../x"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(../x) error = %v, want %v", err, ErrInvalidAssetName)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeAsset(t, outside, "", "secret.css", "secret")

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "styles", "evil.css")
	if err := os.Symlink(filepath.Join(outside, "secret.css"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(evil) error = %v, want %v", err, ErrPathTraversal)
	}
}
