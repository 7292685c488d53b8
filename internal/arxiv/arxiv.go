// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv searches the arXiv API, fetches single entries and downloads
// their PDFs.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// apiBase is the arXiv query endpoint. Tests point it at an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Query selects papers by keyword and submission window.
type Query struct {
	// Keyword is matched as a phrase against titles and abstracts.
	Keyword string

	// Categories keeps only papers in at least one of these subject classes.
	// Empty keeps everything.
	Categories []string

	// From and To bound the submission date. Zero values leave the bound open.
	From time.Time
	To   time.Time

	// MaxResults caps the number of entries requested. Zero uses the client default.
	MaxResults int
}

// Client talks to the arXiv API. Calls are spaced by RequestInterval.
type Client struct {
	http    *http.Client
	cfg     types.ArxivConfig
	limiter *rate.Limiter
	logger  *log.Logger
}

// New returns a Client. A nil httpClient uses one with cfg.Timeout.
func New(httpClient *http.Client, cfg types.ArxivConfig, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}
	return &Client{
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.Or(logger),
	}
}

// Search returns matching papers, newest submission first.
func (c *Client) Search(ctx context.Context, q Query) ([]types.Paper, error) {
	if strings.TrimSpace(q.Keyword) == "" {
		return nil, fmt.Errorf("empty arXiv keyword")
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("search_query", buildSearchQuery(q))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	papers, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var out []types.Paper
	for _, p := range papers {
		if p.InCategories(q.Categories) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FetchByID returns the entry for id. id may be a bare identifier
// ("2303.01234v1"), an abs URL, or a Slack-style link "<...>".
func (c *Client) FetchByID(ctx context.Context, id string) (types.Paper, error) {
	norm := NormalizeID(id)
	if norm == "" {
		return types.Paper{}, fmt.Errorf("empty arXiv identifier %q", id)
	}
	params := url.Values{}
	params.Set("id_list", norm)

	papers, err := c.query(ctx, params)
	if err != nil {
		return types.Paper{}, err
	}
	if len(papers) == 0 {
		return types.Paper{}, fmt.Errorf("%w: arXiv entry %s not found", types.ErrExternalService, norm)
	}
	return papers[0], nil
}

// NormalizeID reduces a URL or link to the trailing identifier segment.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	if i := strings.Index(id, "|"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSuffix(id, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return strings.TrimSuffix(id, ".pdf")
}

func (c *Client) query(ctx context.Context, params url.Values) ([]types.Paper, error) {
	var feed atomFeed
	err := httputil.Retry(ctx, c.cfg.Attempts, c.cfg.RetryDelay, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return httputil.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), nil)
		if err != nil {
			return httputil.Permanent(fmt.Errorf("creating request: %w", err))
		}
		if c.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.cfg.UserAgent)
		}

		resp, err := httputil.Do(ctx, c.http, req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		feed = atomFeed{}
		if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
			return fmt.Errorf("parsing arXiv response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExternalService, err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if p, ok := e.paper(); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// buildSearchQuery matches the keyword phrase in title or abstract within
// the submission window.
func buildSearchQuery(q Query) string {
	kw := strings.ReplaceAll(strings.TrimSpace(q.Keyword), `"`, "")
	s := fmt.Sprintf(`(ti:"%s" OR abs:"%s")`, kw, kw)
	if !q.From.IsZero() || !q.To.IsZero() {
		from, to := "*", "*"
		if !q.From.IsZero() {
			from = q.From.UTC().Format("200601021504")
		}
		if !q.To.IsZero() {
			to = q.To.UTC().Format("200601021504")
		}
		s += fmt.Sprintf(" AND submittedDate:[%s TO %s]", from, to)
	}
	return s
}

// Download fetches the PDF of p into root/<dir>/<name>.pdf and returns the
// directory, file path and base name. The name is the title with spaces
// turned into underscores and path-hostile punctuation removed.
func (c *Client) Download(ctx context.Context, p types.Paper, root string) (dir, file, name string, err error) {
	name = FileName(p.Title)
	if name == "" {
		name = strings.ReplaceAll(p.ID, "/", "_")
	}
	dir = filepath.Join(root, name)
	file = filepath.Join(dir, name+".pdf")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	pdfURL := p.PDFURL
	if pdfURL == "" {
		pdfURL = "https://arxiv.org/pdf/" + p.ID
	}

	err = httputil.Retry(ctx, c.cfg.Attempts, c.cfg.RetryDelay, func(ctx context.Context) error {
		c.logger.Info().Str("paper", p.ID).Str("file", file).Msg("downloading")
		return c.downloadFile(ctx, pdfURL, file)
	})
	if err != nil {
		return "", "", "", fmt.Errorf("%w: downloading %s: %v", types.ErrExternalService, p.ID, err)
	}
	return dir, file, name, nil
}

// FileName derives a directory and file base name from a paper title.
func FileName(title string) string {
	name := strings.Join(strings.Fields(title), "_")
	return strings.NewReplacer(":", "", ",", "", "/", "", "\\", "", "?", "", "*", "").Replace(name)
}

// downloadFile writes url to dest through a temporary file renamed on success.
func (c *Client) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return httputil.Permanent(fmt.Errorf("creating request: %w", err))
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.Do(ctx, c.http, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %v", firstErr(copyErr, closeErr))
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
