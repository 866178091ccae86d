package translator

import (
	"context"
	"errors"
	"strings"
)

// Input is one page of text to translate.
type Input struct {
	Text           string
	TargetLanguage string
	PageNumber     int
}

// Client translates a single page of text.
type Client interface {
	Translate(ctx context.Context, in Input) (string, error)
	Model() string
}

// ErrEmptyResponse indicates the provider returned no translated text.
var ErrEmptyResponse = errors.New("empty translation response")

// BuildPrompt renders the translation instruction for a page. The phrasing
// asks the model to keep formatting, numbers, and special characters intact.
func BuildPrompt(text, targetLanguage string) string {
	var b strings.Builder
	b.WriteString("Translate the following text to ")
	b.WriteString(targetLanguage)
	b.WriteString(". Preserve any formatting, numbers, and special characters: ")
	b.WriteString(text)
	return b.String()
}

// ModelForPlan picks the translation model by subscription tier. Paid tiers
// get the full model, everyone else the light one.
func ModelForPlan(plan, fullModel, liteModel string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case "pro", "enterprise":
		return fullModel
	default:
		return liteModel
	}
}

// PlaceholderClient fails every call; used when no provider is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Translate(ctx context.Context, in Input) (string, error) {
	_ = ctx
	_ = in
	return "", errors.New("translator client not configured")
}

func (PlaceholderClient) Model() string { return "" }
