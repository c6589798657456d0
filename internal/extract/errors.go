package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for filenames whose suffix has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrParseFailure matches every *ParseError.
	ErrParseFailure = errors.New("parse failure")
)

// ParseError reports a document that could not be read despite a supported suffix.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format.Label(), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets callers test with errors.Is(err, ErrParseFailure).
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func parseErr(format Format, err error) error {
	return &ParseError{Format: format, Err: err}
}
