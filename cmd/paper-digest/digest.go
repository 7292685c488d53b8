// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/digest"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/slackbot"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Post overviews of recent papers for the configured keywords",
	Long: `Digest searches arXiv for each configured keyword, asks the LLM for a
translated title and three key points per paper and posts one Slack message
per paper. Without --once it runs on the configured cron schedule.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().Bool("once", false, "run one digest now and exit")
	digestCmd.Flags().StringSlice("keyword", nil, "keywords to search (default from config)")

	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	if kws, _ := cmd.Flags().GetStringSlice("keyword"); len(kws) > 0 {
		cfg.Digest.Keywords = kws
	}
	if err := cfg.ValidateDigest(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := llm.NewCompleter(ctx, cfg.AI)
	if err != nil {
		return err
	}
	poster := slackbot.NewPoster(newSlack(), cfg.Slack, logger)
	d := digest.New(newArxiv(), completer, poster, cfg.Digest, cfg.Arxiv.Categories, logger)

	if once, _ := cmd.Flags().GetBool("once"); once {
		return d.Run(ctx)
	}

	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	_, err = c.AddFunc(cfg.Digest.Schedule, func() {
		if err := d.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled digest")
		}
	})
	if err != nil {
		return fmt.Errorf("%w: digest.schedule %q: %v", types.ErrConfiguration, cfg.Digest.Schedule, err)
	}
	c.Start()
	logger.Info().Str("schedule", cfg.Digest.Schedule).Strs("keywords", cfg.Digest.Keywords).Msg("digest scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
