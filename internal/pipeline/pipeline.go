// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one summarization job for one paper: fetch,
// download, GROBID, extraction, metadata merge, indexing, assembly,
// translation and publishing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/pdiddy/paper-digest/internal/arxiv"
	"github.com/pdiddy/paper-digest/internal/grobid"
	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/internal/lock"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/metadata"
	"github.com/pdiddy/paper-digest/internal/notion"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/internal/tei"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Fetcher resolves and downloads papers. *arxiv.Client satisfies it.
type Fetcher interface {
	FetchByID(ctx context.Context, id string) (types.Paper, error)
	Download(ctx context.Context, p types.Paper, root string) (dir, file, name string, err error)
}

// Builder creates the per-job index. *index.Builder satisfies it.
type Builder interface {
	Build(ctx context.Context, sections []types.Section) (*index.Index, error)
}

// Publisher stores the finished summary. *notion.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, meta types.DocumentMetadata, blocks []types.Block) (string, error)
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Fetcher   Fetcher
	Grobid    grobid.Processor
	Builder   Builder
	Publisher Publisher
	Locker    lock.Locker
}

// Result describes a finished job.
type Result struct {
	JobID      string
	PaperID    string
	Title      string
	PageURL    string
	Sections   int
	Summarized int
	Skipped    int
}

// Runner executes jobs. It is safe for concurrent use; jobs for the same
// paper are serialized by the lock.
type Runner struct {
	deps   Deps
	cfg    types.Config
	logger *log.Logger
}

// New returns a Runner. A nil Locker uses an in-process lock.
func New(cfg types.Config, deps Deps, logger *log.Logger) *Runner {
	if deps.Locker == nil {
		deps.Locker = lock.NewMemory()
	}
	return &Runner{deps: deps, cfg: cfg, logger: logging.Or(logger)}
}

// Run summarizes the paper identified by entryID and publishes the result.
func (r *Runner) Run(ctx context.Context, entryID string) (Result, error) {
	paperID := arxiv.NormalizeID(entryID)
	if paperID == "" {
		return Result{}, fmt.Errorf("no paper identifier in %q", entryID)
	}
	res := Result{JobID: uuid.NewString(), PaperID: paperID}
	logger := r.logger
	start := time.Now()

	lockName := "paper:" + paperID
	ok, err := r.deps.Locker.Acquire(ctx, lockName, r.cfg.Lock.TTL)
	if err != nil {
		return res, fmt.Errorf("%w: %v", types.ErrExternalService, err)
	}
	if !ok {
		return res, fmt.Errorf("%w: %s", types.ErrJobInProgress, paperID)
	}
	defer func() {
		if err := r.deps.Locker.Release(context.WithoutCancel(ctx), lockName); err != nil {
			logger.Warn().Err(err).Str("paper", paperID).Msg("releasing lock")
		}
	}()

	workDir := filepath.Join(r.cfg.Job.WorkDir, res.JobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return res, fmt.Errorf("creating work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn().Err(err).Str("dir", workDir).Msg("removing work directory")
		}
	}()

	logger.Info().Str("job", res.JobID).Str("paper", paperID).Msg("job started")

	paper, err := r.deps.Fetcher.FetchByID(ctx, paperID)
	if err != nil {
		return res, fmt.Errorf("fetching %s: %w", paperID, err)
	}
	res.Title = paper.Title

	dir, _, name, err := r.deps.Fetcher.Download(ctx, paper, workDir)
	if err != nil {
		return res, err
	}

	teiPath, err := r.deps.Grobid.Process(ctx, dir, name)
	if err != nil {
		return res, err
	}

	sections, extracted, err := tei.ExtractFile(teiPath, tei.OptionsFrom(r.cfg.Extraction))
	if err != nil {
		return res, err
	}
	res.Sections = len(sections)
	if len(sections) == 0 {
		return res, fmt.Errorf("%w: no sections extracted", types.ErrNoContent)
	}

	merged := metadata.Merge(*extracted, metadata.FromPaper(paper))
	sections = metadata.Attach(sections, &merged)

	idx, err := r.deps.Builder.Build(ctx, sections)
	if err != nil {
		return res, err
	}
	defer idx.Close()

	report, err := summarize.Assembler{Query: r.cfg.Index.Query, Logger: logger}.Assemble(ctx, idx, sections)
	if err != nil {
		return res, err
	}
	res.Summarized, res.Skipped = report.Summarized, report.Skipped
	if report.Summarized == 0 {
		return res, fmt.Errorf("%w: all %d sections failed", types.ErrNoContent, len(sections))
	}

	blocks := notion.Translate(report.Markdown)

	if r.cfg.Job.ArchiveDir != "" {
		if err := archive(r.cfg.Job.ArchiveDir, name, merged, report.Markdown); err != nil {
			logger.Warn().Err(err).Str("paper", paperID).Msg("archiving summary")
		}
	}

	url, err := r.deps.Publisher.Publish(ctx, merged, blocks)
	if err != nil {
		return res, err
	}
	res.PageURL = url

	logger.Info().
		Str("job", res.JobID).
		Str("paper", paperID).
		Int("summarized", res.Summarized).
		Int("skipped", res.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("job finished")
	return res, nil
}

// UserMessage renders a job error for a chat reply.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrJobInProgress):
		return "This paper is already being summarized."
	case errors.Is(err, types.ErrStructuralExtraction):
		return "Could not read the structure of the paper (PDF conversion failed)."
	case errors.Is(err, types.ErrIndexBuild):
		return "Could not index the paper."
	case errors.Is(err, types.ErrNoContent):
		return "No section of the paper could be summarized."
	case errors.Is(err, types.ErrConfiguration):
		return "The summarizer is misconfigured. Please contact the administrator."
	case errors.Is(err, types.ErrExternalService):
		return "An external service failed. Please try again later."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Summarization was interrupted."
	default:
		return "Summarization failed."
	}
}
