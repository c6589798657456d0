package analyses

import (
	"errors"

	"resume-analyzer/internal/extract"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("analysis already exists")
	ErrAlreadyTerminal = errors.New("analysis already in a terminal state")
	ErrInvalidID       = errors.New("invalid analysis id")
	ErrTooLarge        = errors.New("file too large")
	ErrStorage         = errors.New("storage failure")

	// ErrUnsupportedFormat is shared with the extractor so either layer matches.
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat
)

const (
	ErrorCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrorCodeParseFailure      = "PARSE_FAILURE"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
