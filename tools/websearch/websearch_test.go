package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

const resultsPage = `<html><body>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=abc">The Go Programming Language</a></h2>
  <a class="result__snippet" href="#">Go is an <b>open source</b> programming language.</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://pkg.go.dev/">Go Packages</a></h2>
  <a class="result__snippet" href="#">Discover packages.</a>
</div>
<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="https://tour.golang.org/">A Tour of Go</a></h2>
  <a class="result__snippet" href="#">Learn Go.</a>
</div>
</body></html>`

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func toolCtx() *core.ToolContext {
	rc := core.NewRunContext(context.Background(), "search", nil, 0, logging.NoOpLogger{})
	return core.NewToolContext(rc, "1", "web_search", 0)
}

func TestSearch(t *testing.T) {
	srv := newServer(t, http.StatusOK, resultsPage)
	s := New(func(o *Options) { o.BaseURL = srv.URL })

	results, err := s.Search(context.Background(), "golang", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "The Go Programming Language", results[0].Title)
	assert.Equal(t, "https://go.dev/", results[0].Href)
	assert.Contains(t, results[0].Body, "open source")
	assert.Equal(t, "https://pkg.go.dev/", results[1].Href)
}

func TestTool(t *testing.T) {
	srv := newServer(t, http.StatusOK, resultsPage)
	s := New(func(o *Options) { o.BaseURL = srv.URL; o.MaxResults = 1 })

	out, err := s.Tool().Call(toolCtx(), map[string]any{"query": "golang"})
	require.NoError(t, err)
	assert.Regexp(t, `^Results for 'golang':\n- The Go Programming Language: .*open source.* \(https://go.dev/\)$`, out)
}

func TestTool_NoResults(t *testing.T) {
	srv := newServer(t, http.StatusOK, "<html><body></body></html>")
	s := New(func(o *Options) { o.BaseURL = srv.URL })

	out, err := s.Tool().Call(toolCtx(), map[string]any{"query": "golang"})
	require.NoError(t, err)
	assert.Equal(t, "No results.", out)
}

func TestTool_SearchError(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, "")
	s := New(func(o *Options) { o.BaseURL = srv.URL })

	out, err := s.Tool().Call(toolCtx(), map[string]any{"query": "golang"})
	require.NoError(t, err)
	assert.Equal(t, "Search error: unexpected status 503", out)
}

func TestResolveHref(t *testing.T) {
	assert.Equal(t, "https://example.com/a b", resolveHref("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%20b"))
	assert.Equal(t, "https://example.com", resolveHref("//example.com"))
	assert.Equal(t, "https://x.org/", resolveHref("https://x.org/"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "No results.", Format("x", nil))
	assert.Equal(t, "Results for 'x':\n- A: b (c)\n- D: e (f)", Format("x", []Result{{"A", "b", "c"}, {"D", "e", "f"}}))
}
