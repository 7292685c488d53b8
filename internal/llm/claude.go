// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Claude completes prompts with the Anthropic Messages API.
type Claude struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewClaude returns a Claude completer. Extra options are passed to the SDK
// client (tests point it at a local server).
func NewClaude(cfg types.AIConfig, opts ...option.RequestOption) (*Claude, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: missing anthropic api key", types.ErrConfiguration)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.AnthropicAPIKey)}, opts...)
	return &Claude{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one user turn with the prompt's system text.
func (c *Claude) Complete(ctx context.Context, p index.Prompt) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: claude: %v", types.ErrExternalService, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: claude returned no text", types.ErrExternalService)
	}
	return b.String(), nil
}
