package analyses

import (
	"context"
	"strings"
	"unicode/utf8"

	"resume-analyzer/internal/shared/telemetry"
)

const (
	DefaultContentSampleChars = 500
	TruncationMarker          = "..."
)

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	Extract(data []byte, filename string) (string, error)
}

// SkillDetector finds skill keywords in text.
type SkillDetector interface {
	Detect(text string) []string
}

// Pipeline runs extraction, word count and skill detection for one document.
type Pipeline struct {
	extractor   TextExtractor
	detector    SkillDetector
	sampleChars int
}

// NewPipeline builds a Pipeline. A non-positive sampleChars uses the default.
func NewPipeline(extractor TextExtractor, detector SkillDetector, sampleChars int) *Pipeline {
	if sampleChars <= 0 {
		sampleChars = DefaultContentSampleChars
	}
	return &Pipeline{extractor: extractor, detector: detector, sampleChars: sampleChars}
}

// Analyze makes a single attempt; extraction errors are returned unchanged.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, filename string) (Result, error) {
	text, err := p.extractor.Extract(data, filename)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Filename:  filename,
		WordCount: WordCount(text),
		Skills:    p.detector.Detect(text),
		Content:   ContentSample(text, p.sampleChars),
		RawText:   text,
	}
	telemetry.Info("analysis.pipeline", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"filename":    filename,
		"word_count":  result.WordCount,
		"skill_count": len(result.Skills),
	})
	return result, nil
}

// WordCount counts whitespace-separated runs.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ContentSample keeps the first limit characters and appends TruncationMarker
// when text is longer.
func ContentSample(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultContentSampleChars
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}
