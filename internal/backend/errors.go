package backend

import "errors"

// Sentinel errors for backend construction and output.
var (
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrEmptyOutputDir   = errors.New("output directory cannot be empty")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrInvalidFilename  = errors.New("invalid output filename")
	ErrCreateDir        = errors.New("failed to create output directory")
	ErrImageDownload    = errors.New("failed to download image")
	ErrFragmentRead     = errors.New("failed to read header or footer")
	ErrHTMLConversion   = errors.New("markdown conversion failed")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidMargin    = errors.New("invalid margin")
)

// Browser errors of the PDF backend.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
