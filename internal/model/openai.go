package model

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openaiKeyEnv = "OPENAI_API_KEY"

// OpenAI generates through the OpenAI chat completions API.
type OpenAI struct{}

// NewOpenAI creates the OpenAI provider.
func NewOpenAI() *OpenAI {
	return &OpenAI{}
}

// Name returns the registry key.
func (o *OpenAI) Name() string { return "openai" }

// Available reports whether the API key is configured.
func (o *OpenAI) Available(ctx context.Context) error {
	if os.Getenv(openaiKeyEnv) == "" {
		return fmt.Errorf("%s is not set", openaiKeyEnv)
	}
	return nil
}

// Generate produces one completion for prompt on the named model.
func (o *OpenAI) Generate(ctx context.Context, model, prompt string) (string, error) {
	if err := o.Available(ctx); err != nil {
		return "", err
	}

	client := openai.NewClient(option.WithAPIKey(os.Getenv(openaiKeyEnv)))
	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

var _ Provider = (*OpenAI)(nil)
