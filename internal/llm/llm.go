// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm adapts hosted model APIs to the index capabilities: Claude
// and Gemini for completion, Gemini or a local feature-hashing model for
// embeddings.
package llm

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// NewCompleter returns the completion backend selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg types.AIConfig) (index.Completer, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewClaude(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown ai.provider %q", types.ErrConfiguration, cfg.Provider)
	}
}

// NewEmbedder returns the embedding backend selected by cfg.EmbedProvider.
func NewEmbedder(ctx context.Context, cfg types.AIConfig) (index.Embedder, error) {
	switch cfg.EmbedProvider {
	case "gemini":
		return NewGemini(ctx, cfg)
	case "hash":
		return NewHashEmbedder(cfg.EmbedDimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown ai.embed_provider %q", types.ErrConfiguration, cfg.EmbedProvider)
	}
}
