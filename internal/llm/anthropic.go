package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	anthropicMaxTokens    = 4096
)

// Anthropic calls the Messages API through the official SDK.
type Anthropic struct {
	client sdk.Client
	model  string
}

func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *Anthropic) Name() string { return "anthropic" }

func (p *Anthropic) Extract(ctx context.Context, systemPrompt, userPrompt, url string) (string, error) {
	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(p.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: sdk.Float(0.1),
		System:      []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic call for %s: %w", url, err)
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: no text content")
	}
	return sb.String(), nil
}
