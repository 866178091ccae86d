package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spergel/translation-stuff-sub001/internal/translator"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gemini-2.0-flash"); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewClient("key", ""); err == nil {
		t.Fatalf("expected error without model")
	}

	c, err := NewClient("key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Model() != "gemini-2.0-flash" {
		t.Fatalf("unexpected model: %q", c.Model())
	}
}

func TestTranslateReturnsJoinedCandidateText(t *testing.T) {
	oldURL := apiURLFormat
	t.Cleanup(func() { apiURLFormat = oldURL })

	var bodyMu sync.Mutex
	var lastBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		bodyMu.Lock()
		lastBody = payload
		bodyMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Bon"},{"text":"jour  "}]}}]}`))
	}))
	defer server.Close()

	apiURLFormat = server.URL + "/models/%s:generateContent"
	client, err := NewClient("test-key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := client.Translate(context.Background(), translator.Input{
		Text:           "Hello",
		TargetLanguage: "French",
		PageNumber:     1,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "Bonjour" {
		t.Fatalf("expected trimmed joined text, got %q", got)
	}

	bodyMu.Lock()
	defer bodyMu.Unlock()
	raw, _ := json.Marshal(lastBody)
	if !strings.Contains(string(raw), "Translate the following text to French") {
		t.Fatalf("prompt missing from request body: %s", raw)
	}
}

func TestTranslateSurfacesErrorEnvelope(t *testing.T) {
	oldURL := apiURLFormat
	t.Cleanup(func() { apiURLFormat = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	apiURLFormat = server.URL + "/models/%s:generateContent"
	client, err := NewClient("test-key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Translate(context.Background(), translator.Input{Text: "Hello", TargetLanguage: "French"})
	if err == nil {
		t.Fatalf("expected error from error envelope")
	}
	if !strings.Contains(err.Error(), "quota exceeded") || !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Fatalf("expected envelope message and status, got %v", err)
	}
}

func TestTranslateEmptyCandidates(t *testing.T) {
	oldURL := apiURLFormat
	t.Cleanup(func() { apiURLFormat = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	apiURLFormat = server.URL + "/models/%s:generateContent"
	client, err := NewClient("test-key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Translate(context.Background(), translator.Input{Text: "Hello", TargetLanguage: "French"})
	if !errors.Is(err, translator.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestTranslateWhitespaceOnlyCandidate(t *testing.T) {
	oldURL := apiURLFormat
	t.Cleanup(func() { apiURLFormat = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`))
	}))
	defer server.Close()

	apiURLFormat = server.URL + "/models/%s:generateContent"
	client, err := NewClient("test-key", "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Translate(context.Background(), translator.Input{Text: "Hello", TargetLanguage: "French"})
	if !errors.Is(err, translator.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewClientTimeoutOverride(t *testing.T) {
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "5")
	c, err := NewClient("key", "gemini-1.5-flash-8b")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.httpClient.Timeout.Seconds() != 5 {
		t.Fatalf("expected 5s timeout, got %s", c.httpClient.Timeout)
	}
}
