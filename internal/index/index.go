// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds a per-job retrieval index over document sections and
// answers one query per section with a two-stage synthesis: a text QA pass
// over each chunk followed by recursive tree summarization of the answers.
//
// An Index owns a private in-memory SQLite database and is discarded with
// Close when the job ends.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	defaultChunkWords   = 2048
	defaultChunkOverlap = 128
	defaultContextWords = 3000
	defaultConcurrency  = 4
)

// Embedder turns text into a vector. Every call for one index must return
// vectors of the same non-zero length.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer answers a prompt with generated text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Builder creates indexes with fixed capabilities and settings.
type Builder struct {
	embedder  Embedder
	completer Completer
	cfg       types.IndexConfig
	logger    *log.Logger
}

// NewBuilder returns a Builder. Zero settings take their defaults.
func NewBuilder(emb Embedder, llm Completer, cfg types.IndexConfig, logger *log.Logger) *Builder {
	if cfg.ChunkWords <= 0 {
		cfg.ChunkWords = defaultChunkWords
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkWords {
		cfg.ChunkOverlap = min(defaultChunkOverlap, cfg.ChunkWords/2)
	}
	if cfg.ContextWords <= 0 {
		cfg.ContextWords = defaultContextWords
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Builder{embedder: emb, completer: llm, cfg: cfg, logger: logging.Or(logger)}
}

// Index answers section-scoped queries.
type Index struct {
	store     *store
	embedder  Embedder
	completer Completer
	cfg       types.IndexConfig
	logger    *log.Logger
}

// Build chunks and embeds every section. Any failure returns
// types.ErrIndexBuild and no index.
func (b *Builder) Build(ctx context.Context, sections []types.Section) (*Index, error) {
	if b.embedder == nil || b.completer == nil {
		return nil, fmt.Errorf("%w: missing embedder or completer", types.ErrIndexBuild)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", types.ErrIndexBuild)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexBuild, err)
	}
	idx := &Index{
		store:     st,
		embedder:  b.embedder,
		completer: b.completer,
		cfg:       b.cfg,
		logger:    b.logger,
	}
	if err := idx.load(ctx, sections); err != nil {
		st.close()
		return nil, fmt.Errorf("%w: %v", types.ErrIndexBuild, err)
	}

	nSections, nChunks, _ := st.count(ctx)
	b.logger.Debug().Int("sections", nSections).Int("chunks", nChunks).Msg("index built")
	return idx, nil
}

func (ix *Index) load(ctx context.Context, sections []types.Section) error {
	seen := make(map[int]bool, len(sections))
	dim := 0
	for _, s := range sections {
		if seen[s.Index] {
			return fmt.Errorf("duplicate section index %d", s.Index)
		}
		seen[s.Index] = true

		texts := splitWords(sectionText(s), ix.cfg.ChunkWords, ix.cfg.ChunkOverlap)
		vectors, err := ix.embedAll(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding section %d: %w", s.Index, err)
		}

		chunks := make([]chunk, len(texts))
		for i, t := range texts {
			v := vectors[i]
			if len(v) == 0 {
				return fmt.Errorf("empty embedding for section %d", s.Index)
			}
			if dim == 0 {
				dim = len(v)
			} else if len(v) != dim {
				return fmt.Errorf("embedding dimension %d, want %d", len(v), dim)
			}
			chunks[i] = chunk{ID: uuid.NewString(), Section: s.Index, Position: i, Text: t, Embedding: v}
		}
		if err := ix.store.insert(ctx, s.Index, s.Number, s.Title, s.Body, chunks); err != nil {
			return err
		}
	}
	if dim == 0 {
		return errors.New("no section has text")
	}
	return nil
}

func (ix *Index) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Concurrency)
	for i, t := range texts {
		g.Go(func() error {
			v, err := ix.embedder.Embed(gctx, t)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// sectionText is the indexed text of a section: heading then body.
func sectionText(s types.Section) string {
	return strings.TrimSpace(s.Title + "\n\n" + s.Body)
}

// Close releases the index storage. The index is unusable afterwards.
func (ix *Index) Close() error {
	if ix == nil || ix.store == nil {
		return nil
	}
	return ix.store.close()
}

// Query answers query from the chunks of one section only. An index that
// does not contain sectionIndex, or a section without text, yields
// types.ErrSectionQuery.
func (ix *Index) Query(ctx context.Context, sectionIndex int, query string) (string, error) {
	chunks, err := ix.store.sectionChunks(ctx, sectionIndex)
	if errors.Is(err, errUnknownSection) {
		return "", fmt.Errorf("%w: section %d not in index", types.ErrSectionQuery, sectionIndex)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrSectionQuery, err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: section %d has no text", types.ErrSectionQuery, sectionIndex)
	}

	if ix.cfg.TopK > 0 && len(chunks) > ix.cfg.TopK {
		chunks, err = ix.nearest(ctx, chunks, query)
		if err != nil {
			return "", err
		}
	}

	contexts := make([]string, len(chunks))
	for i, c := range chunks {
		contexts[i] = c.Text
	}
	answer, err := ix.synthesize(ctx, contexts, query)
	if err != nil {
		return "", fmt.Errorf("querying section %d: %w", sectionIndex, err)
	}
	ix.logger.Debug().Int("section", sectionIndex).Int("chunks", len(chunks)).Msg("section answered")
	return answer, nil
}

// nearest keeps the TopK chunks most similar to query, restored to position order.
func (ix *Index) nearest(ctx context.Context, chunks []chunk, query string) ([]chunk, error) {
	qv, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	type scored struct {
		c     chunk
		score float64
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{c, cosine(qv, c.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := make([]chunk, ix.cfg.TopK)
	for i := range top {
		top[i] = ranked[i].c
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Position < top[j].Position })
	return top, nil
}

// synthesize answers each context with the text QA prompt, then combines the
// answers with tree summarization until one remains.
func (ix *Index) synthesize(ctx context.Context, contexts []string, query string) (string, error) {
	answers, err := ix.fanOut(ctx, len(contexts), func(i int) (Prompt, error) {
		return textQAPrompt(contexts[i], query)
	})
	if err != nil {
		return "", err
	}

	for len(answers) > 1 {
		groups := pack(answers, ix.cfg.ContextWords)
		answers, err = ix.fanOut(ctx, len(groups), func(i int) (Prompt, error) {
			return treeSummarizePrompt(groups[i], query)
		})
		if err != nil {
			return "", err
		}
	}
	return answers[0], nil
}

// fanOut runs n completions concurrently and returns answers by slot index.
func (ix *Index) fanOut(ctx context.Context, n int, prompt func(i int) (Prompt, error)) ([]string, error) {
	out := make([]string, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			p, err := prompt(i)
			if err != nil {
				return err
			}
			answer, err := ix.completer.Complete(gctx, p)
			if err != nil {
				return err
			}
			out[i] = clean(answer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
