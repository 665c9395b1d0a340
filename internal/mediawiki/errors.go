package mediawiki

import "errors"

// Sentinel errors for wiki access.
var (
	ErrInvalidBaseURL   = errors.New("invalid wiki base URL")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrMalformedExport  = errors.New("malformed export XML")
	ErrNoImageURL       = errors.New("image information has no URL")
)
