// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-wikipub/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for PDF backend browser errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the wiki or PDF timeouts.
func ForTimeout() string {
	return format("for slow wikis or long pages, raise wiki.timeout or pdf.timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-wikipub/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/manual.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "go-wikipub/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForWikiURL returns a hint for a missing or unreachable wiki.
func ForWikiURL() string {
	return format("set wiki.baseURL, --url or WIKIPUB_URL to the directory holding index.php")
}

// ForNoPages returns a hint for a manifest without pages.
func ForNoPages() string {
	return format("list pages under 'pages:' in the manifest or pass titles as arguments")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownBackend lists the backend ids that can be selected.
func ForUnknownBackend(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available backends: " + strings.Join(available, ", "))
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
