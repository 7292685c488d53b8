// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// geminiBaseURL overrides the API endpoint when set.
var geminiBaseURL string

// Gemini embeds text and completes prompts with the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	embedModel  string
	dimension   int
	temperature float64
}

// NewGemini returns a Gemini client.
func NewGemini(ctx context.Context, cfg types.AIConfig) (*Gemini, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: missing gemini api key", types.ErrConfiguration)
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if geminiBaseURL != "" {
		cc.HTTPOptions.BaseURL = geminiBaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: creating gemini client: %v", types.ErrExternalService, err)
	}
	return &Gemini{
		client:      client,
		model:       cfg.Model,
		embedModel:  cfg.EmbedModel,
		dimension:   cfg.EmbedDimension,
		temperature: cfg.Temperature,
	}, nil
}

// Embed returns the embedding of text, checked against the configured dimension.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	conf := &genai.EmbedContentConfig{}
	if g.dimension > 0 {
		dim := int32(g.dimension)
		conf.OutputDimensionality = &dim
	}
	result, err := g.client.Models.EmbedContent(ctx, g.embedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embedding: %v", types.ErrExternalService, err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no embedding", types.ErrExternalService)
	}
	values := result.Embeddings[0].Values
	if g.dimension > 0 && len(values) != g.dimension {
		return nil, fmt.Errorf("%w: embedding dimension %d, want %d", types.ErrExternalService, len(values), g.dimension)
	}
	return values, nil
}

// Complete generates a response with the prompt's system instruction.
func (g *Gemini) Complete(ctx context.Context, p index.Prompt) (string, error) {
	conf := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.temperature)),
	}
	if p.System != "" {
		conf.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}, conf)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", types.ErrExternalService, err)
	}

	var b strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				b.WriteString(part.Text)
			}
			if b.Len() > 0 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text", types.ErrExternalService)
	}
	return b.String(), nil
}
