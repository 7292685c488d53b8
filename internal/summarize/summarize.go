// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize assembles per-section answers into one ordered Markdown
// document.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultQuery is the instruction sent for every section.
const DefaultQuery = "Summarize the substance of the provided text."

// Querier answers a query scoped to one section. *index.Index satisfies it.
type Querier interface {
	Query(ctx context.Context, sectionIndex int, query string) (string, error)
}

// Report is the outcome of one assembly.
type Report struct {
	Markdown   string
	Summarized int
	Skipped    int
}

// Assembler queries sections one at a time in input order.
type Assembler struct {
	Query  string
	Logger *log.Logger
}

// Assemble is shorthand for an Assembler using DefaultQuery.
func Assemble(ctx context.Context, q Querier, sections []types.Section, logger *log.Logger) (Report, error) {
	return Assembler{Logger: logger}.Assemble(ctx, q, sections)
}

// Assemble appends "### <number>. <title>" and the answer for each section
// whose query succeeds. A failed section is logged and left out. Only a nil
// querier or a cancelled context is returned as an error, with an empty report.
func (a Assembler) Assemble(ctx context.Context, q Querier, sections []types.Section) (Report, error) {
	if q == nil {
		return Report{}, errors.New("summarize: nil querier")
	}
	query := a.Query
	if query == "" {
		query = DefaultQuery
	}
	logger := logging.Or(a.Logger)

	var b strings.Builder
	var rep Report
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		answer, err := q.Query(ctx, s.Index, query)
		if err != nil {
			if ctx.Err() != nil {
				return Report{}, ctx.Err()
			}
			logger.Error().Err(err).Int("section", s.Index).Str("title", s.Title).Msg("section summary failed")
			rep.Skipped++
			continue
		}
		fmt.Fprintf(&b, "### %s. %s\n%s\n\n", s.Label(), s.Title, answer)
		rep.Summarized++
	}
	rep.Markdown = b.String()
	return rep, nil
}
