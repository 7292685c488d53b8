// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/slack-go/slack"

	"github.com/pdiddy/paper-digest/internal/arxiv"
	"github.com/pdiddy/paper-digest/internal/grobid"
	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/lock"
	"github.com/pdiddy/paper-digest/internal/notion"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/pkg/types"
)

func newArxiv() *arxiv.Client {
	return arxiv.New(&http.Client{Timeout: cfg.Arxiv.Timeout}, cfg.Arxiv, logger)
}

// newLocker returns the Redis lock when an address is configured and the
// in-process lock otherwise. The returned func closes the connection.
func newLocker(ctx context.Context) (lock.Locker, func(), error) {
	if cfg.Lock.RedisAddr == "" {
		return lock.NewMemory(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Lock.RedisAddr,
		Password: cfg.Lock.RedisPassword,
		DB:       cfg.Lock.RedisDB,
	})
	l := lock.NewRedis(client)
	if err := l.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("%w: redis %s: %v", types.ErrExternalService, cfg.Lock.RedisAddr, err)
	}
	return l, func() { client.Close() }, nil
}

// newRunner wires every pipeline stage from cfg.
func newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	if err := cfg.ValidateJob(); err != nil {
		return nil, nil, err
	}
	completer, err := llm.NewCompleter(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}
	proc, err := grobid.New(cfg.Grobid, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	pub, err := notion.NewPublisher(cfg.Notion, logger)
	if err != nil {
		return nil, nil, err
	}
	locker, closeLock, err := newLocker(ctx)
	if err != nil {
		return nil, nil, err
	}

	runner := pipeline.New(cfg, pipeline.Deps{
		Fetcher:   newArxiv(),
		Grobid:    proc,
		Builder:   index.NewBuilder(embedder, completer, cfg.Index, logger),
		Publisher: pub,
		Locker:    locker,
	}, logger)
	return runner, closeLock, nil
}

func newSlack() *slack.Client {
	opts := []slack.Option{}
	if cfg.Slack.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.Slack.AppToken))
	}
	return slack.New(cfg.Slack.BotToken, opts...)
}
