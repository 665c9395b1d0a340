package main

import (
	"errors"
	"os"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/backend"
	"github.com/alnah/go-wikipub/internal/config"
	"github.com/alnah/go-wikipub/internal/mediawiki"
)

// Exit codes for the wikipub CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every page published
	ExitGeneral = 1 // General error, or pages that failed to publish
	ExitUsage   = 2 // Invalid flags, manifest, or validation
	ExitIO      = 3 // Output or template files not readable or writable
	ExitBrowser = 4 // Browser/Chrome errors of the PDF backend
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, backend.ErrBrowserConnect) ||
		errors.Is(err, backend.ErrPageCreate) ||
		errors.Is(err, backend.ErrPageLoad) ||
		errors.Is(err, backend.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, backend.ErrCreateDir) ||
		errors.Is(err, backend.ErrFragmentRead) ||
		errors.Is(err, ErrReadStyle) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidPage) ||
		errors.Is(err, config.ErrDuplicateFile) ||
		errors.Is(err, config.ErrInvalidDuration) ||
		errors.Is(err, config.ErrInvalidMagic) ||
		errors.Is(err, config.ErrTooManyPages) ||
		errors.Is(err, config.ErrInvalidBaseURL) ||
		errors.Is(err, mediawiki.ErrInvalidBaseURL) ||
		errors.Is(err, backend.ErrUnknownBackend) ||
		errors.Is(err, backend.ErrEmptyOutputDir) ||
		errors.Is(err, backend.ErrInvalidExtension) ||
		errors.Is(err, backend.ErrInvalidPageSize) ||
		errors.Is(err, backend.ErrInvalidMargin) ||
		errors.Is(err, backend.ErrInvalidFilename) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, wikipub.ErrNoPages) ||
		errors.Is(err, wikipub.ErrDuplicateID) ||
		errors.Is(err, wikipub.ErrInvalidLocation) ||
		errors.Is(err, ErrNoWikiURL) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}
