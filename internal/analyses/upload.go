package analyses

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/util"
)

// UploadValidator checks an upload's extension and size before any parsing.
type UploadValidator struct {
	maxBytes int64
	allowed  map[string]struct{}
	list     []string
}

// NewUploadValidator builds a validator from config. Every allowed extension
// must be one the extractor handles.
func NewUploadValidator(cfg config.UploadConfig) (*UploadValidator, error) {
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("upload max bytes must be positive, got %d", cfg.MaxBytes)
	}
	supported := make(map[string]struct{})
	for _, ext := range extract.SupportedExtensions() {
		supported[ext] = struct{}{}
	}

	v := &UploadValidator{maxBytes: cfg.MaxBytes, allowed: make(map[string]struct{})}
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := supported[ext]; !ok {
			return nil, fmt.Errorf("upload extension %s has no extractor", ext)
		}
		if _, dup := v.allowed[ext]; dup {
			continue
		}
		v.allowed[ext] = struct{}{}
		v.list = append(v.list, ext)
	}
	if len(v.list) == 0 {
		return nil, fmt.Errorf("no upload extensions allowed")
	}
	sort.Strings(v.list)
	return v, nil
}

// Allowed lists the accepted extensions, sorted.
func (v *UploadValidator) Allowed() []string {
	return append([]string(nil), v.list...)
}

// MaxBytes is the size ceiling.
func (v *UploadValidator) MaxBytes() int64 {
	return v.maxBytes
}

// CheckName rejects filenames without an allowed extension.
func (v *UploadValidator) CheckName(filename string) error {
	ext := util.Ext(filename)
	if ext == "" {
		return fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filename)
	}
	if _, ok := v.allowed[ext]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

// CheckSize measures the file by seeking to its end and rewinding, so the
// stream is left at the start.
func (v *UploadValidator) CheckSize(file io.Seeker) (int64, error) {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind upload: %w", err)
	}
	if size > v.maxBytes {
		return size, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, size, v.maxBytes)
	}
	return size, nil
}
