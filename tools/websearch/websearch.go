// Package websearch implements the web_search tool over the DuckDuckGo HTML
// endpoint.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/tool"
)

const (
	DefaultBaseURL    = "https://html.duckduckgo.com/html/"
	DefaultUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultMaxResults = 5
)

// Result is one search hit.
type Result struct {
	Title string
	Body  string
	Href  string
}

// Options configure a Searcher.
type Options struct {
	BaseURL    string
	UserAgent  string
	MaxResults int
	HTTPClient *http.Client
}

// Searcher queries the DuckDuckGo HTML frontend and parses the result list.
type Searcher struct {
	opts Options
}

// New creates a Searcher.
func New(optFns ...func(o *Options)) *Searcher {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		UserAgent:  DefaultUserAgent,
		MaxResults: DefaultMaxResults,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Searcher{opts: opts}
}

// Search returns at most maxResults hits. maxResults <= 0 uses the
// configured default.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = s.opts.MaxResults
	}

	u, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	return parseResults(doc, maxResults), nil
}

func parseResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result

	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")

		results = append(results, Result{
			Title: title,
			Body:  snippet(sel.Find(".result__snippet").First()),
			Href:  resolveHref(href),
		})

		return len(results) < maxResults
	})

	return results
}

func snippet(sel *goquery.Selection) string {
	html, err := sel.Html()
	if err != nil || html == "" {
		return strings.TrimSpace(sel.Text())
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}

	return strings.Join(strings.Fields(md), " ")
}

// resolveHref unwraps DuckDuckGo redirect links ("//duckduckgo.com/l/?uddg=...").
func resolveHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}

	if target := u.Query().Get("uddg"); target != "" {
		return target
	}

	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	return href
}

// Format renders results under a "Results for '{query}':" header, one per
// line as "- {title}: {body} ({href})".
func Format(query string, results []Result) string {
	if len(results) == 0 {
		return "No results."
	}

	lines := make([]string, 0, len(results)+1)
	lines = append(lines, fmt.Sprintf("Results for '%s':", query))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", r.Title, r.Body, r.Href))
	}

	return strings.Join(lines, "\n")
}

// Args are the web_search arguments.
type Args struct {
	Query      string `json:"query" description:"search query" validate:"required"`
	MaxResults int    `json:"max_results,omitempty" description:"maximum number of results (default 5)" validate:"omitempty,min=1,max=25"`
}

// Tool returns the web_search tool. Search failures are reported to the model
// as text rather than failing the run.
func (s *Searcher) Tool() tool.Tool {
	return tool.NewTypedTool("web_search", "Search the web with DuckDuckGo and return titles, snippets and links.",
		func(tc *core.ToolContext, in Args) (string, error) {
			results, err := s.Search(tc.Context(), in.Query, in.MaxResults)
			if err != nil {
				if ctxErr := tc.Context().Err(); ctxErr != nil {
					return "", ctxErr
				}
				tc.Logger().Warn("websearch.failed", "query", in.Query, "error", err.Error())
				return "Search error: " + err.Error(), nil
			}
			return Format(in.Query, results), nil
		})
}
