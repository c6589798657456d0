package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Label is the upper-case name used in error messages.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

var extensions = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
}

// SupportedExtensions lists the suffixes the extractor handles, sorted.
func SupportedExtensions() []string {
	return []string{".docx", ".pdf"}
}

// FormatFor resolves the document format from the filename suffix, case-insensitively.
func FormatFor(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filename)
	}
	format, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Extractor converts document bytes into plain text. The zero value is ready
// to use and safe for concurrent use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the filename suffix. Parser errors and panics are
// reported as *ParseError.
func (x *Extractor) Extract(data []byte, filename string) (text string, err error) {
	format, err := FormatFor(filename)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", parseErr(format, errors.New("empty document"))
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = parseErr(format, fmt.Errorf("panic: %v", r))
		}
	}()

	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	}
	if err != nil {
		return "", parseErr(format, err)
	}
	return text, nil
}
