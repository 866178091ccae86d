package translator

import (
	"context"
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Page text 1.5%", "French")
	if !strings.HasPrefix(got, "Translate the following text to French. Preserve any formatting, numbers, and special characters: ") {
		t.Fatalf("unexpected prompt prefix: %q", got)
	}
	if !strings.HasSuffix(got, "Page text 1.5%") {
		t.Fatalf("expected source text at end: %q", got)
	}
}

func TestModelForPlan(t *testing.T) {
	tests := []struct {
		plan string
		want string
	}{
		{"pro", "full"},
		{"enterprise", "full"},
		{" PRO ", "full"},
		{"basic", "lite"},
		{"free", "lite"},
		{"", "lite"},
		{"unknown", "lite"},
	}
	for _, tt := range tests {
		if got := ModelForPlan(tt.plan, "full", "lite"); got != tt.want {
			t.Fatalf("ModelForPlan(%q) = %q, want %q", tt.plan, got, tt.want)
		}
	}
}

func TestPlaceholderClientAlwaysFails(t *testing.T) {
	var c Client = PlaceholderClient{}
	if _, err := c.Translate(context.Background(), Input{Text: "x", TargetLanguage: "French"}); err == nil {
		t.Fatalf("expected error from placeholder client")
	}
	if c.Model() != "" {
		t.Fatalf("expected empty model name")
	}
}
