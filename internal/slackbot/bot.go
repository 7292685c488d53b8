// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slackbot is the chat front-end. It listens for app mentions over
// Socket Mode, reads the paper identifier from the thread root and replies
// with the outcome of the summarization job.
package slackbot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/phuslu/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Runner runs one summarization job. *pipeline.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, entryID string) (pipeline.Result, error)
}

// Mention is the part of an app_mention event the bot acts on.
type Mention struct {
	Channel  string
	User     string
	Text     string
	TS       string
	ThreadTS string
}

// MentionFromEvent converts a Socket Mode app_mention payload.
func MentionFromEvent(ev *slackevents.AppMentionEvent) Mention {
	return Mention{
		Channel:  ev.Channel,
		User:     ev.User,
		Text:     ev.Text,
		TS:       ev.TimeStamp,
		ThreadTS: ev.ThreadTimeStamp,
	}
}

// Bot answers mentions.
type Bot struct {
	api    *slack.Client
	poster *Poster
	runner Runner
	cfg    types.SlackConfig
	logger *log.Logger
	jobs   sync.WaitGroup
}

// New returns a Bot. api must carry the app-level token for Serve.
func New(api *slack.Client, runner Runner, cfg types.SlackConfig, logger *log.Logger) *Bot {
	logger = logging.Or(logger)
	return &Bot{
		api:    api,
		poster: NewPoster(api, cfg, logger),
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Handle processes one mention and writes exactly one reply into its
// thread. Mentions whose thread root carries a subtype are ignored.
func (b *Bot) Handle(ctx context.Context, m Mention) error {
	threadTS := m.ThreadTS
	root := slack.Message{Msg: slack.Msg{Text: m.Text, Timestamp: m.TS}}
	if threadTS == "" {
		threadTS = m.TS
	} else {
		var err error
		root, err = b.threadRoot(ctx, m.Channel, threadTS)
		if err != nil {
			b.logger.Error().Err(err).Str("channel", m.Channel).Str("thread", threadTS).Msg("reading thread")
			return b.poster.Reply(ctx, m.Channel, threadTS, "Could not read the thread messages.")
		}
	}
	if root.SubType != "" {
		b.logger.Debug().Str("subtype", root.SubType).Msg("ignoring thread")
		return nil
	}

	cmd := ParseCommand(m.Text)
	b.logger.Info().Str("user", m.User).Str("command", cmd.String()).Str("thread", threadTS).Msg("mention")

	var reply string
	switch cmd {
	case CommandPing:
		reply = fmt.Sprintf("<@%s> pong :robot_face:", m.User)
	case CommandSummarize:
		reply = b.summarize(ctx, m.User, root.Text)
	default:
		reply = fmt.Sprintf("<@%s> Unrecognized request. Mention me with \"summarize\", \"pdf\" or \"ping\".", m.User)
	}
	return b.poster.Reply(ctx, m.Channel, threadTS, reply)
}

func (b *Bot) summarize(ctx context.Context, user, rootText string) string {
	entry, err := EntryIDFromThread(rootText, b.cfg.EntryLine)
	if err != nil {
		b.logger.Warn().Err(err).Msg("no entry in thread")
		return fmt.Sprintf("<@%s> Could not find an arXiv entry on line %d of the thread.", user, b.cfg.EntryLine+1)
	}

	res, err := b.runner.Run(ctx, entry)
	if err != nil {
		b.logger.Error().Err(err).Str("entry", entry).Str("job", res.JobID).Msg("summarization failed")
		return fmt.Sprintf("<@%s> %s", user, pipeline.UserMessage(err))
	}
	return fmt.Sprintf("<@%s> Summary finished :robot_face: %s", user, res.PageURL)
}

func (b *Bot) threadRoot(ctx context.Context, channel, threadTS string) (slack.Message, error) {
	var msgs []slack.Message
	err := httputil.Retry(ctx, b.cfg.Attempts, b.cfg.RetryDelay, func(ctx context.Context) error {
		var err error
		msgs, _, _, err = b.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channel,
			Timestamp: threadTS,
			Limit:     1,
		})
		return err
	})
	if err != nil {
		return slack.Message{}, fmt.Errorf("%w: %v", types.ErrExternalService, err)
	}
	if len(msgs) == 0 {
		return slack.Message{}, fmt.Errorf("%w: thread %s is empty", types.ErrExternalService, threadTS)
	}
	return msgs[0], nil
}

// Serve connects over Socket Mode and handles mentions until ctx ends. Each
// mention runs in its own goroutine; Serve waits for them before returning.
func (b *Bot) Serve(ctx context.Context) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: slack auth: %v", types.ErrConfiguration, err)
	}
	b.logger.Info().Str("user", auth.User).Str("team", auth.Team).Msg("slack authenticated")

	ctx, cancel := context.WithCancel(ctx)
	client := socketmode.New(b.api)
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		b.dispatch(ctx, client)
	}()

	err = client.RunContext(ctx)
	cancel()
	<-dispatched
	b.jobs.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (b *Bot) dispatch(ctx context.Context, client *socketmode.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-client.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				b.logger.Debug().Msg("socket mode connecting")
			case socketmode.EventTypeConnected:
				b.logger.Info().Msg("socket mode connected")
			case socketmode.EventTypeConnectionError:
				b.logger.Warn().Msg("socket mode connection error")
			case socketmode.EventTypeEventsAPI:
				ev, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				if evt.Request != nil {
					client.Ack(*evt.Request)
				}
				if ev.Type != slackevents.CallbackEvent {
					continue
				}
				mention, ok := ev.InnerEvent.Data.(*slackevents.AppMentionEvent)
				if !ok {
					continue
				}
				m := MentionFromEvent(mention)
				b.jobs.Add(1)
				go func() {
					defer b.jobs.Done()
					if err := b.Handle(ctx, m); err != nil {
						b.logger.Error().Err(err).Str("channel", m.Channel).Msg("replying")
					}
				}()
			}
		}
	}
}
