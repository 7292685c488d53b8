// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/arxiv"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search arXiv for recent papers matching a keyword",
	Long: `Search matches the keyword as a phrase against titles and abstracts,
keeps papers in the configured categories and prints them newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("days", 0, "only papers submitted in the last N days (0 = no limit)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default from config)")
	searchCmd.Flags().StringSlice("category", nil, "subject classes to keep (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	categories, _ := cmd.Flags().GetStringSlice("category")
	if len(categories) == 0 {
		categories = cfg.Arxiv.Categories
	}

	q := arxiv.Query{Keyword: args[0], Categories: categories, MaxResults: maxResults}
	if days > 0 {
		q.To = time.Now().UTC()
		q.From = q.To.AddDate(0, 0, -days)
	}

	papers, err := newArxiv().Search(context.Background(), q)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-16s  %-10s  %s\n", "ID", "Published", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, p := range papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-16s  %-10s  %s\n", p.ID, p.Published.Format(time.DateOnly), title)
	}
	return nil
}
