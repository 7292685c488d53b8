// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/slackbot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer Slack mentions over Socket Mode",
	Long: `Serve connects to Slack over Socket Mode. Mentioning the bot in a thread
with "summarize", "要約" or "pdf" summarizes the paper whose entry URL is on
the configured line of the thread root; "ping" answers pong.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateSlack(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, closeRunner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	bot := slackbot.New(newSlack(), runner, cfg.Slack, logger)
	return bot.Serve(ctx)
}
