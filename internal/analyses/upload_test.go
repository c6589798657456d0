package analyses

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/shared/config"
)

func newTestValidator(t *testing.T, maxBytes int64) *UploadValidator {
	t.Helper()
	v, err := NewUploadValidator(config.UploadConfig{MaxBytes: maxBytes, AllowedExtensions: []string{".pdf", "DOCX"}})
	require.NoError(t, err)
	return v
}

func TestUploadValidatorNames(t *testing.T) {
	v := newTestValidator(t, 10)
	assert.Equal(t, []string{".docx", ".pdf"}, v.Allowed())

	for _, ok := range []string{"resume.pdf", "RESUME.PDF", "cv.Docx"} {
		assert.NoError(t, v.CheckName(ok), ok)
	}
	for _, bad := range []string{"resume.txt", "resume", "resume.doc", "archive.pdf.zip"} {
		assert.ErrorIs(t, v.CheckName(bad), ErrUnsupportedFormat, bad)
	}
}

func TestUploadValidatorSizeRewinds(t *testing.T) {
	v := newTestValidator(t, 10)
	r := bytes.NewReader([]byte("0123456789"))

	size, err := v.CheckSize(r)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(rest))
}

func TestUploadValidatorTooLarge(t *testing.T) {
	v := newTestValidator(t, 10)
	size, err := v.CheckSize(bytes.NewReader(make([]byte, 11)))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, int64(11), size)
}

func TestNewUploadValidatorRejectsBadConfig(t *testing.T) {
	_, err := NewUploadValidator(config.UploadConfig{MaxBytes: 10, AllowedExtensions: []string{".pdf", ".txt"}})
	assert.Error(t, err)

	_, err = NewUploadValidator(config.UploadConfig{MaxBytes: 0, AllowedExtensions: []string{".pdf"}})
	assert.Error(t, err)

	_, err = NewUploadValidator(config.UploadConfig{MaxBytes: 10})
	assert.Error(t, err)
}
