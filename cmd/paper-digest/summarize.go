// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [identifiers...]",
	Short: "Summarize arXiv papers and publish them to Notion",
	Long: `Summarize runs the full job for each identifier (arXiv ID or abs URL):
download, GROBID conversion, section extraction, per-section summaries and
publication as a Notion page. Jobs run one after another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("archive-dir", "", "also keep summary.md and metadata.yaml under this directory")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if dir, _ := cmd.Flags().GetString("archive-dir"); dir != "" {
		cfg.Job.ArchiveDir = dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, closeRunner, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeRunner()

	var lastErr error
	failed := 0
	for _, id := range args {
		res, err := runner.Run(ctx, id)
		if err != nil {
			failed++
			lastErr = err
			fmt.Fprintf(os.Stdout, "FAIL %s: %v\n", id, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "OK   %s: %d/%d sections summarized -> %s\n",
			res.PaperID, res.Summarized, res.Summarized+res.Skipped, res.PageURL)
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed: %s", failed, pipeline.UserMessage(lastErr))
	}
	return nil
}
