package translations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spergel/translation-stuff-sub001/internal/documents"
	"github.com/spergel/translation-stuff-sub001/internal/shared/storage/object/local"
)

func setupRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func handlerService(t *testing.T) (*Service, *MemoryRepo, string) {
	t.Helper()
	store := local.New(t.TempDir())
	docRepo := documents.NewMemoryRepo()
	trRepo := NewMemoryRepo()

	key, _, _, err := store.Save(context.Background(), "user-1", "book.pdf", bytes.NewReader(buildPDF(t, []string{"alpha"})))
	if err != nil {
		t.Fatalf("save pdf: %v", err)
	}
	doc := documents.Document{
		ID:         "doc-1",
		UserID:     "user-1",
		FileName:   "book.pdf",
		StorageKey: key,
		CreatedAt:  time.Now().UTC(),
	}
	if err := docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("create doc: %v", err)
	}

	svc := &Service{
		Repo:    trRepo,
		DocRepo: docRepo,
		Store:   store,
		Full:    fakeTranslator{},
		Lite:    fakeTranslator{},
		Queue:   &fakeQueue{},
	}
	return svc, trRepo, doc.ID
}

func TestCreateTranslationAccepted(t *testing.T) {
	svc, _, docID := handlerService(t)
	router := setupRouter(t, svc)

	body := strings.NewReader(`{"targetLanguage":"French"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/translations", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Translation
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != StatusQueued {
		t.Fatalf("expected queued, got %s", created.Status)
	}
}

func TestCreateTranslationRequiresTargetLanguage(t *testing.T) {
	svc, _, docID := handlerService(t)
	router := setupRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID+"/translations", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateTranslationUnknownDocument(t *testing.T) {
	svc, _, _ := handlerService(t)
	router := setupRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/nope/translations", strings.NewReader(`{"targetLanguage":"French"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestListReturnsSummariesWithoutPages(t *testing.T) {
	svc, repo, docID := handlerService(t)
	router := setupRouter(t, svc)

	now := time.Now().UTC()
	tr := Translation{
		ID:             "tr-1",
		DocumentID:     docID,
		UserID:         "user-1",
		TargetLanguage: "French",
		Status:         StatusCompleted,
		Progress:       100,
		Pages:          []Page{{PageNumber: 1, OriginalText: "alpha", TranslatedText: "alpha-fr"}},
		CreatedAt:      now,
		CompletedAt:    &now,
	}
	if err := repo.Create(context.Background(), tr); err != nil {
		t.Fatalf("create translation: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/translations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "alpha-fr") {
		t.Fatalf("list view must not include page bodies: %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "tr-1") {
		t.Fatalf("expected translation summary in list")
	}
}

func TestEventsStreamsTerminalStatus(t *testing.T) {
	svc, repo, docID := handlerService(t)
	router := setupRouter(t, svc)

	now := time.Now().UTC()
	tr := Translation{
		ID:             "tr-done",
		DocumentID:     docID,
		UserID:         "user-1",
		TargetLanguage: "French",
		Status:         StatusCompleted,
		Progress:       100,
		PageCount:      1,
		CreatedAt:      now,
		CompletedAt:    &now,
	}
	if err := repo.Create(context.Background(), tr); err != nil {
		t.Fatalf("create translation: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/translations/tr-done/events", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", got)
	}
	body := resp.Body.String()
	if !strings.HasPrefix(body, "data: ") || !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("malformed SSE frame: %q", body)
	}
	var frame event
	if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(body, "data:"))), &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Status != StatusCompleted || frame.Progress != 100 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestEventsUnknownTranslation(t *testing.T) {
	svc, _, _ := handlerService(t)
	router := setupRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/translations/nope/events", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
