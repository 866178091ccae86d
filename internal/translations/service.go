package translations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/pdfpages"
	"github.com/spergel/translation-stuff-sub001/internal/queue"
	"github.com/spergel/translation-stuff-sub001/internal/shared/metrics"
	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object"
	"github.com/spergel/translation-stuff-sub001/internal/shared/telemetry"
	"github.com/spergel/translation-stuff-sub001/internal/translator"
)

// PlanSource resolves a user's current subscription plan.
type PlanSource interface {
	PlanFor(ctx context.Context, userID string) string
}

// Service contains business logic for translation jobs.
type Service struct {
	Repo     Repo
	DocRepo  documents.DocumentsRepo
	Store    object.ObjectStore
	Full     translator.Client
	Lite     translator.Client
	Queue    queue.Client
	Plans    PlanSource
	Provider string
}

// Create enqueues a translation job for a document. With a queue configured
// the job goes to the worker fleet; otherwise an in-process goroutine runs it.
func (s *Service) Create(ctx context.Context, userID, documentID, targetLanguage string) (Translation, error) {
	if userID == "" || documentID == "" {
		return Translation{}, errors.New("documentID and userID are required")
	}
	targetLanguage = strings.TrimSpace(targetLanguage)
	if targetLanguage == "" {
		return Translation{}, fmt.Errorf("validation: target language is required")
	}

	// Ownership check doubles as existence check.
	doc, err := s.DocRepo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Translation{}, err
	}

	tr := Translation{
		ID:             uuid.NewString(),
		DocumentID:     doc.ID,
		UserID:         userID,
		TargetLanguage: targetLanguage,
		Provider:       s.provider(),
		Status:         StatusQueued,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, tr); err != nil {
		return Translation{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			TranslationID: tr.ID,
			RequestID:     requestIDFromContext(ctx),
			EnqueuedAt:    time.Now().UTC().Format(time.RFC3339),
			Version:       1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.failTranslation(ctx, tr.ID, userID, doc.ID, fmt.Errorf("enqueue: storage: %w", err), nil)
			return Translation{}, err
		}
		telemetry.Info("translation.enqueued", map[string]any{
			"request_id":     requestIDFromContext(ctx),
			"translation_id": tr.ID,
			"document_id":    doc.ID,
		})
		return tr, nil
	}

	go func(bg context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.failTranslation(bg, tr.ID, userID, doc.ID, fmt.Errorf("panic: %v", r), nil)
			}
		}()
		_ = s.Process(bg, tr.ID)
	}(backgroundWithRequestID(ctx))

	return tr, nil
}

// Get returns a translation by ID scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, translationID string) (Translation, error) {
	if translationID == "" {
		return Translation{}, errors.New("translationID is required")
	}
	tr, err := s.Repo.GetByID(ctx, translationID)
	if err != nil {
		return Translation{}, err
	}
	if tr.UserID != userID {
		return Translation{}, ErrNotFound
	}
	return tr, nil
}

// List returns translations for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Translation, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, filter)
}

// ClaimGuest reassigns a guest's translations to an authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	return s.Repo.ClaimGuest(ctx, guestUserID, authedUserID)
}

// Process runs the translation pipeline for one job: load the PDF, extract
// page text, translate each page, persist progress as it goes. A page that
// fails to translate is recorded in its notes and the job continues.
func (s *Service) Process(ctx context.Context, translationID string) error {
	startedAt := time.Now().UTC()

	tr, err := s.Repo.GetByID(ctx, translationID)
	if err != nil {
		wrapped := fmt.Errorf("translation lookup: storage: %w", err)
		s.failTranslation(ctx, translationID, "", "", wrapped, &startedAt)
		return wrapped
	}
	if tr.Terminal() {
		// Redelivered message; nothing to do.
		return nil
	}

	plan := "free"
	if s.Plans != nil {
		plan = s.Plans.PlanFor(ctx, tr.UserID)
	}
	client := s.clientForPlan(plan)

	if err := s.Repo.MarkProcessing(ctx, translationID, client.Model(), 0, startedAt); err != nil {
		wrapped := fmt.Errorf("set processing: storage: %w", err)
		s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
		return wrapped
	}
	metrics.IncTranslationStarted()
	telemetry.Info("translation.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           tr.UserID,
		"document_id":       tr.DocumentID,
		"translation_id":    tr.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
		"model":             client.Model(),
		"plan":              plan,
	})

	doc, err := s.DocRepo.GetByID(ctx, tr.UserID, tr.DocumentID)
	if err != nil {
		wrapped := fmt.Errorf("document lookup id=%s: storage: %w", tr.DocumentID, err)
		s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
		return wrapped
	}

	pageTexts, err := pdfpages.ExtractPages(ctx, s.Store, doc.StorageKey)
	if err != nil {
		wrapped := fmt.Errorf("extract document %s: storage: %w", doc.ID, err)
		s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
		return wrapped
	}
	if len(pageTexts) == 0 {
		wrapped := fmt.Errorf("document %s: invalid output: no pages", doc.ID)
		s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
		return wrapped
	}

	if err := s.Repo.MarkProcessing(ctx, translationID, client.Model(), len(pageTexts), startedAt); err != nil {
		telemetry.Error("translation.page_count", err, map[string]any{"translation_id": tr.ID})
	}

	pages := make([]Page, 0, len(pageTexts))
	translated := 0
	for i, text := range pageTexts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			wrapped := fmt.Errorf("translation timeout after %d/%d pages: %w", i, len(pageTexts), ctxErr)
			s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
			return wrapped
		}

		page := Page{PageNumber: i + 1, OriginalText: text}
		if strings.TrimSpace(text) == "" {
			page.Notes = "no extractable text"
		} else {
			out, err := client.Translate(ctx, translator.Input{
				Text:           text,
				TargetLanguage: tr.TargetLanguage,
				PageNumber:     i + 1,
			})
			if err != nil {
				page.Notes = "translation error: " + sanitizeError(err)
				metrics.IncPageFailed()
				telemetry.Error("translation.page", err, map[string]any{
					"translation_id": tr.ID,
					"page":           i + 1,
				})
			} else {
				page.TranslatedText = out
				translated++
			}
		}
		pages = append(pages, page)

		progress := int(float64(len(pages)) / float64(len(pageTexts)) * 100)
		if err := s.Repo.UpdateProgress(ctx, translationID, progress, pages); err != nil {
			// Progress is advisory; the final Complete write is what counts.
			telemetry.Error("translation.progress", err, map[string]any{"translation_id": tr.ID})
		}
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.Complete(ctx, translationID, pages, completedAt); err != nil {
		wrapped := fmt.Errorf("set translation result: storage: %w", err)
		s.failTranslation(ctx, translationID, tr.UserID, tr.DocumentID, wrapped, &startedAt)
		return wrapped
	}
	metrics.IncTranslationCompleted()
	metrics.AddPagesTranslated(translated)
	metrics.ObserveTranslationDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("translation.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           tr.UserID,
		"document_id":       tr.DocumentID,
		"translation_id":    tr.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"pages":             len(pages),
		"pages_translated":  translated,
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

func (s *Service) clientForPlan(plan string) translator.Client {
	full := s.Full
	lite := s.Lite
	if full == nil {
		full = translator.PlaceholderClient{}
	}
	if lite == nil {
		lite = full
	}
	if translator.ModelForPlan(plan, "full", "lite") == "full" {
		return full
	}
	return lite
}

func (s *Service) provider() string {
	if strings.TrimSpace(s.Provider) == "" {
		return "gemini"
	}
	return s.Provider
}

func (s *Service) failTranslation(ctx context.Context, translationID, userID, documentID string, err error, startedAt *time.Time) {
	code, retryable := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.Fail(context.Background(), translationID, code, msg, retryable, completedAt); updateErr != nil {
		telemetry.Error("translation.fail_update", updateErr, map[string]any{
			"translation_id": translationID,
			"original_error": msg,
		})
	}
	metrics.IncTranslationFailed()
	if startedAt != nil {
		metrics.ObserveTranslationDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("translation.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"document_id":       documentID,
		"translation_id":    translationID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        code,
		"retryable":         retryable,
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCodeTimeout, true
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "gemini request timeout"), strings.Contains(msg, "translation timeout"):
		return ErrorCodeTimeout, true
	case strings.Contains(msg, "invalid output"), strings.Contains(msg, "empty translation response"):
		return ErrorCodeInvalidOutput, false
	case strings.Contains(msg, "validation"):
		return ErrorCodeValidation, false
	case strings.Contains(msg, "storage"), strings.Contains(msg, "document"), strings.Contains(msg, "extract"):
		return ErrorCodeStorage, true
	default:
		return ErrorCodeInternal, false
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
