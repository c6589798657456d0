package util

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the base name of a client-supplied filename and
// strips separators and control characters.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "." || s == "/" || s == ".." {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	if r := []rune(s); len(r) > maxFileNameRunes {
		s = string(r[len(r)-maxFileNameRunes:])
	}
	return s, nil
}

// Ext returns the lowercased extension of name including the leading dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
