// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package slackbot

import (
	"context"
	"fmt"

	"github.com/phuslu/log"
	"github.com/slack-go/slack"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Poster writes messages through the Web API with retries.
type Poster struct {
	api    *slack.Client
	cfg    types.SlackConfig
	logger *log.Logger
}

// NewPoster returns a Poster using api.
func NewPoster(api *slack.Client, cfg types.SlackConfig, logger *log.Logger) *Poster {
	return &Poster{api: api, cfg: cfg, logger: logging.Or(logger)}
}

// Post writes text to channel.
func (p *Poster) Post(ctx context.Context, channel, text string) error {
	return p.post(ctx, channel, slack.MsgOptionText(text, false))
}

// Reply writes text into the thread rooted at threadTS.
func (p *Poster) Reply(ctx context.Context, channel, threadTS, text string) error {
	return p.post(ctx, channel, slack.MsgOptionText(text, false), slack.MsgOptionTS(threadTS))
}

func (p *Poster) post(ctx context.Context, channel string, opts ...slack.MsgOption) error {
	err := httputil.Retry(ctx, p.cfg.Attempts, p.cfg.RetryDelay, func(ctx context.Context) error {
		_, _, err := p.api.PostMessageContext(ctx, channel, opts...)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: posting to %s: %v", types.ErrExternalService, channel, err)
	}
	return nil
}
