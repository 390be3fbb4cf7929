package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicKeyEnv = "ANTHROPIC_API_KEY"

// maxReplyTokens caps single-shot generations from the chat providers.
const maxReplyTokens = 4096

// Anthropic generates through the Anthropic messages API.
type Anthropic struct{}

// NewAnthropic creates the Anthropic provider.
func NewAnthropic() *Anthropic {
	return &Anthropic{}
}

// Name returns the registry key.
func (a *Anthropic) Name() string { return "anthropic" }

// Available reports whether the API key is configured.
func (a *Anthropic) Available(ctx context.Context) error {
	if os.Getenv(anthropicKeyEnv) == "" {
		return fmt.Errorf("%s is not set", anthropicKeyEnv)
	}
	return nil
}

// Generate produces one completion for prompt on the named model.
func (a *Anthropic) Generate(ctx context.Context, model, prompt string) (string, error) {
	if err := a.Available(ctx); err != nil {
		return "", err
	}

	client := anthropic.NewClient(option.WithAPIKey(os.Getenv(anthropicKeyEnv)))
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxReplyTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic returned no text")
	}
	return sb.String(), nil
}

var _ Provider = (*Anthropic)(nil)
