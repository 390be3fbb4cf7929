package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiKeyEnv = "GEMINI_API_KEY"

// Gemini generates through the Google generative AI API.
type Gemini struct{}

// NewGemini creates the Gemini provider.
func NewGemini() *Gemini {
	return &Gemini{}
}

// Name returns the registry key.
func (g *Gemini) Name() string { return "gemini" }

// Available reports whether the API key is configured.
func (g *Gemini) Available(ctx context.Context) error {
	if os.Getenv(geminiKeyEnv) == "" {
		return fmt.Errorf("%s is not set", geminiKeyEnv)
	}
	return nil
}

// Generate produces one completion for prompt on the named model.
func (g *Gemini) Generate(ctx context.Context, model, prompt string) (string, error) {
	if err := g.Available(ctx); err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv(geminiKeyEnv)))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text")
	}
	return sb.String(), nil
}

var _ Provider = (*Gemini)(nil)
