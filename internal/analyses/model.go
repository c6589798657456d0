package analyses

import "time"

// Status is the lifecycle state of an analysis record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is one persisted resume submission.
type Record struct {
	ID               string         `json:"id"`
	OriginalFilename string         `json:"original_filename"`
	Status           Status         `json:"status"`
	WordCount        *int           `json:"word_count"`
	Skills           []string       `json:"skills"`
	RawContent       *string        `json:"raw_content,omitempty"`
	AnalysisResult   map[string]any `json:"analysis_result"`
	Checksum         string         `json:"checksum"`
	SizeBytes        int64          `json:"size_bytes"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// Meta carries upload facts stored alongside a new record.
type Meta struct {
	Checksum  string
	SizeBytes int64
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Filename  string
	WordCount int
	Skills    []string
	Content   string
	RawText   string
}

// Payload renders the analysis_result stored for a completed record.
func (r Result) Payload() map[string]any {
	skills := r.Skills
	if skills == nil {
		skills = []string{}
	}
	return map[string]any{
		"filename":   r.Filename,
		"word_count": r.WordCount,
		"skills":     skills,
		"content":    r.Content,
	}
}

// Failure describes why a record ended in the failed state.
type Failure struct {
	Filename string
	Code     string
	Message  string
}

// Payload renders the analysis_result stored for a failed record.
func (f Failure) Payload() map[string]any {
	return map[string]any{
		"filename": f.Filename,
		"error": map[string]any{
			"code":    f.Code,
			"message": f.Message,
		},
	}
}
