// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// redirect sends every request to the test server.
type redirect struct{ target *url.URL }

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type recorded struct {
	method string
	path   string
	body   map[string]any
}

type fakeNotion struct {
	mu        sync.Mutex
	requests  []recorded
	failFirst int
}

func (f *fakeNotion) handler(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, body})
	fail := f.failFirst > 0
	if fail {
		f.failFirst--
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, `{"object":"error","status":502,"code":"internal_server_error","message":"upstream"}`)
		return
	}
	if r.URL.Path == "/v1/pages" {
		io.WriteString(w, `{"object":"page","id":"page-1","url":"https://www.notion.so/page-1","properties":{}}`)
		return
	}
	io.WriteString(w, `{"object":"list","results":[]}`)
}

func newTestPublisher(t *testing.T, f *fakeNotion) *Publisher {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(ts.Close)
	target, err := url.Parse(ts.URL)
	require.NoError(t, err)

	cfg := types.DefaultConfig().Notion
	cfg.APIKey = "secret_test"
	cfg.DatabaseID = "db-1"
	cfg.RetryDelay = time.Millisecond

	p, err := NewPublisher(cfg, nil, notionapi.WithHTTPClient(&http.Client{Transport: redirect{target}}))
	require.NoError(t, err)
	return p
}

func testMeta() types.DocumentMetadata {
	return types.DocumentMetadata{
		Title:         "Sparse Attention",
		Authors:       []string{"Ada Lovelace", "Alan Turing"},
		PublishedDate: "12 Mar 2023",
		CanonicalURL:  "http://arxiv.org/abs/2303.01234v1",
	}
}

func TestPublish_SingleBatch(t *testing.T) {
	f := &fakeNotion{}
	p := newTestPublisher(t, f)

	blocks := Translate("### 1. Intro\nSummary.\n")
	pageURL, err := p.Publish(context.Background(), testMeta(), blocks)
	require.NoError(t, err)
	assert.Equal(t, "https://www.notion.so/page-1", pageURL)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/v1/pages", req.path)

	parent := req.body["parent"].(map[string]any)
	assert.Equal(t, "db-1", parent["database_id"])

	children := req.body["children"].([]any)
	require.Len(t, children, 3)
	assert.Equal(t, "heading_3", children[0].(map[string]any)["type"])
	assert.Equal(t, "paragraph", children[1].(map[string]any)["type"])

	empty := children[2].(map[string]any)["paragraph"].(map[string]any)
	assert.Equal(t, []any{}, empty["rich_text"], "empty lines keep an empty rich_text array")

	icon := req.body["icon"].(map[string]any)
	assert.Equal(t, "emoji", icon["type"])
}

func TestPublish_BatchesChildren(t *testing.T) {
	f := &fakeNotion{}
	p := newTestPublisher(t, f)

	var md strings.Builder
	for i := 0; i < 250; i++ {
		fmt.Fprintf(&md, "line %d\n", i)
	}
	blocks := Translate(strings.TrimSuffix(md.String(), "\n"))
	require.Len(t, blocks, 250)

	_, err := p.Publish(context.Background(), testMeta(), blocks)
	require.NoError(t, err)

	require.Len(t, f.requests, 3)
	assert.Len(t, f.requests[0].body["children"], 100)
	assert.Equal(t, http.MethodPatch, f.requests[1].method)
	assert.Equal(t, "/v1/blocks/page-1/children", f.requests[1].path)
	assert.Len(t, f.requests[1].body["children"], 100)
	assert.Len(t, f.requests[2].body["children"], 50)
}

func TestPublish_RetriesServerErrors(t *testing.T) {
	f := &fakeNotion{failFirst: 2}
	p := newTestPublisher(t, f)

	pageURL, err := p.Publish(context.Background(), testMeta(), Translate("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://www.notion.so/page-1", pageURL)
}

func TestPublish_GivesUp(t *testing.T) {
	f := &fakeNotion{failFirst: 100}
	p := newTestPublisher(t, f)

	_, err := p.Publish(context.Background(), testMeta(), Translate("x"))
	assert.ErrorIs(t, err, types.ErrExternalService)
}

func TestNewPublisher_RequiresCredentials(t *testing.T) {
	_, err := NewPublisher(types.NotionConfig{DatabaseID: "db"}, nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestBuildProperties(t *testing.T) {
	cfg := types.DefaultConfig().Notion
	props := BuildProperties(testMeta(), cfg)

	title := props["Name"].(notionapi.TitleProperty)
	assert.Equal(t, "Sparse Attention", title.Title[0].Text.Content)

	author := props["Author"].(notionapi.RichTextProperty)
	assert.Equal(t, "Ada Lovelace, Alan Turing", author.RichText[0].Text.Content)

	assert.Equal(t, "http://arxiv.org/abs/2303.01234v1", props["URL"].(notionapi.URLProperty).URL)
	assert.Equal(t, "paper", props["Type"].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "arXiv", props["Conference"].(notionapi.SelectProperty).Select.Name)

	assert.Equal(t, DateProperty{Start: "2023-03-12"}, props["Published"])
	data, err := json.Marshal(props["Published"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"date","date":{"start":"2023-03-12"}}`, string(data))
}

func TestBuildProperties_FreshPerCall(t *testing.T) {
	cfg := types.DefaultConfig().Notion
	a := BuildProperties(testMeta(), cfg)

	other := testMeta()
	other.Title = "Other"
	other.PublishedDate = "unknown"
	b := BuildProperties(other, cfg)

	assert.Equal(t, "Sparse Attention", a["Name"].(notionapi.TitleProperty).Title[0].Text.Content)
	assert.Equal(t, "Other", b["Name"].(notionapi.TitleProperty).Title[0].Text.Content)
	assert.Contains(t, a, "Published")
	assert.NotContains(t, b, "Published")
}

func TestRichTextSplitsLongText(t *testing.T) {
	long := strings.Repeat("é", 4500)
	rt := richText(long)
	require.Len(t, rt, 3)
	assert.Equal(t, 2000, len([]rune(rt[0].Text.Content)))
	assert.Equal(t, 500, len([]rune(rt[2].Text.Content)))
	assert.NotNil(t, richText(""))
	assert.Empty(t, richText(""))
}
