package wikipub

import "errors"

// Sentinel errors for parsing diagnostics. None of these abort a page; they
// travel inside a Diagnostic so callers can classify them with errors.Is.
var (
	ErrInvalidLocation         = errors.New("invalid location")
	ErrTemplateRecursion       = errors.New("template recursion detected")
	ErrUnresolvedMagicVariable = errors.New("unknown magic variable or missing template")
	ErrUnresolvedInternalLink  = errors.New("failed to resolve internal link")
	ErrSectionNotFound         = errors.New("page section not found")
	ErrPageFetch               = errors.New("failed to fetch page")
	ErrPageNotFound            = errors.New("page does not exist")
	ErrImageFile               = errors.New("failed to handle image file")

	// Publish errors.
	ErrNoPages      = errors.New("no pages to publish")
	ErrNilBackend   = errors.New("backend cannot be nil")
	ErrNilSource    = errors.New("page source cannot be nil")
	ErrWriteOutput  = errors.New("failed to write output")
	ErrDuplicateID  = errors.New("duplicate output filename")
	ErrEmptyPageRef = errors.New("page filename cannot be empty")
)
