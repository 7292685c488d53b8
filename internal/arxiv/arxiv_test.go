// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func testConfig() types.ArxivConfig {
	cfg := types.DefaultConfig().Arxiv
	cfg.RequestInterval = 0
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func feedServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	feed, err := os.ReadFile(filepath.Join("testdata", "feed.xml"))
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write(feed)
	}))
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })
	return ts
}

func TestSearch(t *testing.T) {
	var query, sortBy, maxResults string
	feedServer(t, func(r *http.Request) {
		query = r.URL.Query().Get("search_query")
		sortBy = r.URL.Query().Get("sortBy")
		maxResults = r.URL.Query().Get("max_results")
	})

	c := New(nil, testConfig(), nil)
	from := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	papers, err := c.Search(context.Background(), Query{
		Keyword:    "sparse attention",
		Categories: []string{"cs.CL", "cs.AI"},
		From:       from,
		To:         to,
		MaxResults: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, `(ti:"sparse attention" OR abs:"sparse attention") AND submittedDate:[202303030000 TO 202303100000]`, query)
	assert.Equal(t, "submittedDate", sortBy)
	assert.Equal(t, "5", maxResults)

	require.Len(t, papers, 1, "math.PR entry is filtered out")
	p := papers[0]
	assert.Equal(t, "2303.01234v1", p.ID)
	assert.Equal(t, "http://arxiv.org/abs/2303.01234v1", p.EntryID)
	assert.Equal(t, "Sparse Attention for Long Documents", p.Title)
	assert.Equal(t, "We study sparse attention.", p.Summary)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.Equal(t, "12 pages, 3 figures", p.Comment)
	assert.Equal(t, []string{"cs.CL", "cs.LG"}, p.Categories)
	assert.Equal(t, "http://arxiv.org/pdf/2303.01234v1", p.PDFURL)
	assert.Equal(t, time.Date(2023, 3, 10, 17, 59, 0, 0, time.UTC), p.Published)
}

func TestSearch_EmptyKeyword(t *testing.T) {
	_, err := New(nil, testConfig(), nil).Search(context.Background(), Query{Keyword: "  "})
	assert.Error(t, err)
}

func TestFetchByID(t *testing.T) {
	var idList string
	feedServer(t, func(r *http.Request) { idList = r.URL.Query().Get("id_list") })

	p, err := New(nil, testConfig(), nil).FetchByID(context.Background(), "<http://arxiv.org/abs/2303.01234v1>")
	require.NoError(t, err)
	assert.Equal(t, "2303.01234v1", idList)
	assert.Equal(t, "2303.01234v1", p.ID)
}

func TestFetchByID_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"><entry><id>http://arxiv.org/api/errors#bad_id</id></entry></feed>`))
	}))
	defer ts.Close()
	old := apiBase
	apiBase = ts.URL
	defer func() { apiBase = old }()

	_, err := New(nil, testConfig(), nil).FetchByID(context.Background(), "9999.99999")
	assert.ErrorIs(t, err, types.ErrExternalService)
}

func TestQuery_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	old := apiBase
	apiBase = ts.URL
	defer func() { apiBase = old }()

	_, err := New(nil, testConfig(), nil).FetchByID(context.Background(), "2303.01234")
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDownload(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		w.Write([]byte("%PDF-1.5 test"))
	}))
	defer ts.Close()

	root := t.TempDir()
	p := types.Paper{ID: "2303.01234v1", Title: "ALGAN: Time Series, Anomaly Detection", PDFURL: ts.URL + "/pdf/2303.01234v1"}

	dir, file, name, err := New(nil, testConfig(), nil).Download(context.Background(), p, root)
	require.NoError(t, err)

	assert.Equal(t, "ALGAN_Time_Series_Anomaly_Detection", name)
	assert.Equal(t, filepath.Join(root, name), dir)
	assert.Equal(t, filepath.Join(root, name, name+".pdf"), file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 test", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files remain")
}

func TestDownload_RateLimitedStopsAfterAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	p := types.Paper{ID: "1", Title: "T", PDFURL: ts.URL}
	_, _, _, err := New(nil, testConfig(), nil).Download(context.Background(), p, t.TempDir())
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDownload_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := types.Paper{ID: "1", Title: "T", PDFURL: ts.URL}
	_, _, _, err := New(nil, testConfig(), nil).Download(context.Background(), p, t.TempDir())
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQuery_RateLimitedStopsAfterAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	old := apiBase
	apiBase = ts.URL
	defer func() { apiBase = old }()

	_, err := New(nil, testConfig(), nil).FetchByID(context.Background(), "2303.01234")
	assert.ErrorIs(t, err, types.ErrExternalService)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNormalizeID(t *testing.T) {
	tests := map[string]string{
		"2303.01234v1":                          "2303.01234v1",
		"http://arxiv.org/abs/2303.01234v1":     "2303.01234v1",
		"<http://arxiv.org/abs/2303.01234v1>":   "2303.01234v1",
		"<http://arxiv.org/abs/2303.01234|abs>": "2303.01234",
		"https://arxiv.org/pdf/2303.01234.pdf":  "2303.01234",
		"  ":                                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeID(in), in)
	}
}

func TestBuildSearchQuery_OpenWindow(t *testing.T) {
	assert.Equal(t, `(ti:"GAN" OR abs:"GAN")`, buildSearchQuery(Query{Keyword: "GAN"}))
	assert.Equal(t, `(ti:"GAN" OR abs:"GAN") AND submittedDate:[* TO 202301020304]`,
		buildSearchQuery(Query{Keyword: `"GAN"`, To: time.Date(2023, 1, 2, 3, 4, 0, 0, time.UTC)}))
}
