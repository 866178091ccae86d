package translations

import "time"

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Page holds the per-page result of a translation job. PageImage carries a
// client-provided rendering URL when one exists; the server never rasterizes.
type Page struct {
	PageNumber     int    `json:"pageNumber"`
	OriginalText   string `json:"originalText"`
	TranslatedText string `json:"translatedText"`
	PageImage      string `json:"pageImage,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Translation represents a document translation job.
type Translation struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"documentId"`
	UserID         string     `json:"userId"`
	TargetLanguage string     `json:"targetLanguage"`
	Provider       string     `json:"provider,omitempty"`
	Model          string     `json:"model,omitempty"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	PageCount      int        `json:"pageCount,omitempty"`
	Pages          []Page     `json:"pages,omitempty"`
	ErrorCode      string     `json:"errorCode,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	Retryable      *bool      `json:"retryable,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Terminal reports whether the job reached a final status.
func (t Translation) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}
