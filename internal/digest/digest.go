// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest posts a short overview of recent papers for each configured
// keyword. Each paper message carries its entry URL on a fixed line so a
// mention in its thread can start a summarization job.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/internal/arxiv"
	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Searcher finds papers. *arxiv.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, q arxiv.Query) ([]types.Paper, error)
}

// Poster writes one message to a channel. *slackbot.Poster satisfies it.
type Poster interface {
	Post(ctx context.Context, channel, text string) error
}

// Digest runs keyword digests.
type Digest struct {
	search     Searcher
	llm        index.Completer
	post       Poster
	cfg        types.DigestConfig
	categories []string
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *log.Logger
}

// New returns a Digest that searches within categories.
func New(search Searcher, llm index.Completer, post Poster, cfg types.DigestConfig, categories []string, logger *log.Logger) *Digest {
	limit := rate.Inf
	if cfg.PostInterval > 0 {
		limit = rate.Every(cfg.PostInterval)
	}
	return &Digest{
		search:     search,
		llm:        llm,
		post:       post,
		cfg:        cfg,
		categories: categories,
		limiter:    rate.NewLimiter(limit, 1),
		now:        time.Now,
		logger:     logging.Or(logger),
	}
}

// Run posts the digest for every keyword. A keyword that fails is logged
// and the next one is tried; the first error is returned at the end.
func (d *Digest) Run(ctx context.Context) error {
	var first error
	for _, kw := range d.cfg.Keywords {
		n, err := d.RunKeyword(ctx, kw)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error().Err(err).Str("keyword", kw).Msg("digest failed")
			if first == nil {
				first = err
			}
			continue
		}
		d.logger.Info().Str("keyword", kw).Int("papers", n).Msg("digest posted")
	}
	return first
}

// RunKeyword searches the last Days days for keyword and posts a header
// message followed by one message per paper. It returns the paper count.
func (d *Digest) RunKeyword(ctx context.Context, keyword string) (int, error) {
	to := d.now().UTC()
	days := d.cfg.Days
	if days <= 0 {
		days = 7
	}
	papers, err := d.search.Search(ctx, arxiv.Query{
		Keyword:    keyword,
		Categories: d.categories,
		From:       to.AddDate(0, 0, -days),
		To:         to,
		MaxResults: d.cfg.MaxResults,
	})
	if err != nil {
		return 0, fmt.Errorf("searching %q: %w", keyword, err)
	}

	if err := d.send(ctx, Header(keyword, len(papers))); err != nil {
		return 0, err
	}
	for i, p := range papers {
		overview, err := d.overview(ctx, p)
		if err != nil {
			d.logger.Warn().Err(err).Str("paper", p.ID).Msg("overview failed, posting title only")
			overview = ""
		}
		if err := d.send(ctx, Message(keyword, i+1, len(papers), p, overview)); err != nil {
			return i, err
		}
	}
	return len(papers), nil
}

func (d *Digest) send(ctx context.Context, text string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	return d.post.Post(ctx, d.cfg.Channel, text)
}

func (d *Digest) overview(ctx context.Context, p types.Paper) (string, error) {
	prompt, err := overviewPrompt(p, d.cfg.Language)
	if err != nil {
		return "", err
	}
	out, err := d.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
