// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/grobid"
	"github.com/pdiddy/paper-digest/internal/index"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/lock"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var testPaper = types.Paper{
	ID:         "2303.01234v2",
	EntryID:    "http://arxiv.org/abs/2303.01234v2",
	Title:      "Sparse Attention for Long Documents",
	Authors:    []string{"Ada B Lovelace", "Alan Turing"},
	Published:  time.Date(2023, 3, 2, 17, 0, 0, 0, time.UTC),
	Updated:    time.Date(2023, 3, 5, 10, 0, 0, 0, time.UTC),
	Categories: []string{"cs.CL"},
	PDFURL:     "http://arxiv.org/pdf/2303.01234v2",
}

type fakeFetcher struct {
	fetchErr error
	dirs     []string
}

func (f *fakeFetcher) FetchByID(_ context.Context, id string) (types.Paper, error) {
	if f.fetchErr != nil {
		return types.Paper{}, f.fetchErr
	}
	p := testPaper
	p.ID = id
	return p, nil
}

func (f *fakeFetcher) Download(_ context.Context, p types.Paper, root string) (string, string, string, error) {
	name := "Sparse_Attention_for_Long_Documents"
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", err
	}
	file := filepath.Join(dir, name+".pdf")
	if err := os.WriteFile(file, []byte("%PDF-1.4"), 0o644); err != nil {
		return "", "", "", err
	}
	f.dirs = append(f.dirs, dir)
	return dir, file, name, nil
}

// copyGrobid stands in for GROBID by copying a fixed TEI document.
type copyGrobid struct {
	src string
	err error
}

func (g copyGrobid) Process(_ context.Context, dir, name string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	data, err := os.ReadFile(g.src)
	if err != nil {
		return "", err
	}
	out := grobid.TEIPath(dir, name)
	return out, os.WriteFile(out, data, 0o644)
}

// echoCompleter answers every prompt with a short fixed summary and fails
// prompts whose context contains fail.
type echoCompleter struct{ fail string }

func (c echoCompleter) Complete(_ context.Context, p index.Prompt) (string, error) {
	if c.fail != "" && strings.Contains(p.User, c.fail) {
		return "", errors.New("model unavailable")
	}
	return "Short summary.", nil
}

type fakePublisher struct {
	mu     sync.Mutex
	meta   types.DocumentMetadata
	blocks []types.Block
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, meta types.DocumentMetadata, blocks []types.Block) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.meta, p.blocks = meta, blocks
	return "https://www.notion.so/page-1", nil
}

type fixture struct {
	cfg       types.Config
	fetcher   *fakeFetcher
	publisher *fakePublisher
	deps      Deps
}

func newFixture(t *testing.T, llmFail string) *fixture {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Job.WorkDir = t.TempDir()
	f := &fixture{cfg: cfg, fetcher: &fakeFetcher{}, publisher: &fakePublisher{}}
	f.deps = Deps{
		Fetcher:   f.fetcher,
		Grobid:    copyGrobid{src: filepath.Join("..", "tei", "testdata", "paper.tei.xml")},
		Builder:   index.NewBuilder(llm.NewHashEmbedder(32), echoCompleter{fail: llmFail}, cfg.Index, nil),
		Publisher: f.publisher,
		Locker:    lock.NewMemory(),
	}
	return f
}

func (f *fixture) runner() *Runner {
	return New(f.cfg, f.deps, nil)
}

func TestRun_PublishesOrderedSummary(t *testing.T) {
	f := newFixture(t, "")

	res, err := f.runner().Run(context.Background(), "<http://arxiv.org/abs/2303.01234v2|arXiv>")
	require.NoError(t, err)

	assert.Equal(t, "2303.01234v2", res.PaperID)
	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, "https://www.notion.so/page-1", res.PageURL)
	assert.Equal(t, 4, res.Sections)
	assert.Equal(t, 4, res.Summarized)
	assert.Equal(t, 0, res.Skipped)

	var headings []string
	for _, b := range f.publisher.blocks {
		if b.Kind == types.BlockHeading {
			assert.Equal(t, 3, b.Level)
			headings = append(headings, b.Text)
		}
	}
	assert.Equal(t, []string{"1. Introduction", "2. Method", "2.1. Routing", "4. "}, headings)

	// provenance overrides the TEI record, TEI fills the rest
	assert.Equal(t, "2023-03-02", f.publisher.meta.PublishedDate)
	assert.Equal(t, "http://arxiv.org/abs/2303.01234v2", f.publisher.meta.CanonicalURL)
	assert.Equal(t, "en", f.publisher.meta.Language)
}

func TestRun_RemovesWorkDir(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.runner().Run(context.Background(), "2303.01234v2")
	require.NoError(t, err)

	require.Len(t, f.fetcher.dirs, 1)
	assert.NoDirExists(t, f.fetcher.dirs[0])
	entries, err := os.ReadDir(f.cfg.Job.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_SkipsFailedSections(t *testing.T) {
	f := newFixture(t, "Tokens pick a block")

	res, err := f.runner().Run(context.Background(), "2303.01234v2")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Summarized)
	assert.Equal(t, 1, res.Skipped)

	for _, b := range f.publisher.blocks {
		assert.NotContains(t, b.Text, "Routing")
	}
}

func TestRun_NoSummariesIsNoContent(t *testing.T) {
	f := newFixture(t, " ")

	_, err := f.runner().Run(context.Background(), "2303.01234v2")
	assert.ErrorIs(t, err, types.ErrNoContent)
	assert.Nil(t, f.publisher.blocks)
}

func TestRun_LockHeld(t *testing.T) {
	f := newFixture(t, "")
	locker := lock.NewMemory()
	ok, err := locker.Acquire(context.Background(), "paper:2303.01234v2", 0)
	require.NoError(t, err)
	require.True(t, ok)
	f.deps.Locker = locker

	_, err = f.runner().Run(context.Background(), "2303.01234v2")
	assert.ErrorIs(t, err, types.ErrJobInProgress)
	assert.Empty(t, f.fetcher.dirs)
}

func TestRun_ReleasesLockOnFailure(t *testing.T) {
	f := newFixture(t, "")
	f.deps.Grobid = copyGrobid{err: types.ErrStructuralExtraction}
	r := f.runner()

	_, err := r.Run(context.Background(), "2303.01234v2")
	assert.ErrorIs(t, err, types.ErrStructuralExtraction)

	ok, err := f.deps.Locker.Acquire(context.Background(), "paper:2303.01234v2", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_FetchError(t *testing.T) {
	f := newFixture(t, "")
	f.fetcher.fetchErr = types.ErrExternalService

	_, err := f.runner().Run(context.Background(), "2303.01234v2")
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Nil(t, f.publisher.blocks)
}

func TestRun_EmptyIdentifier(t *testing.T) {
	f := newFixture(t, "")
	_, err := f.runner().Run(context.Background(), "  ")
	assert.Error(t, err)
}

func TestRun_Archive(t *testing.T) {
	f := newFixture(t, "")
	f.cfg.Job.ArchiveDir = t.TempDir()

	_, err := f.runner().Run(context.Background(), "2303.01234v2")
	require.NoError(t, err)

	dir := filepath.Join(f.cfg.Job.ArchiveDir, "Sparse_Attention_for_Long_Documents")
	md, err := os.ReadFile(filepath.Join(dir, summaryFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "### 1. Introduction\nShort summary.\n\n"))

	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	require.NoError(t, err)
	var meta types.DocumentMetadata
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, "Sparse Attention for Long Documents", meta.Title)
	assert.Equal(t, []string{"Ada B Lovelace", "Alan Turing"}, meta.Authors)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(types.ErrJobInProgress), "already")
	assert.Contains(t, UserMessage(errors.Join(errors.New("x"), types.ErrNoContent)), "No section")
	assert.Contains(t, UserMessage(types.ErrStructuralExtraction), "PDF")
	assert.Equal(t, "Summarization failed.", UserMessage(errors.New("boom")))
}
