package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Client queries DuckDuckGo. Text search scrapes the no-JS HTML frontend,
// news goes through the news.js JSON endpoint, which needs a vqd token
// fetched from the main page first.
type Client struct {
	http     *http.Client
	htmlBase string
	siteBase string
	region   string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		http:     httpClient,
		htmlBase: "https://html.duckduckgo.com",
		siteBase: "https://duckduckgo.com",
		region:   "in-en",
	}
}

// Search runs a text search and returns up to max results.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("kl", c.region)

	body, err := c.get(ctx, c.htmlBase+"/html/?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	results, err := parseHTMLResults(body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse search page")
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// News returns recent news articles for the query.
func (c *Client) News(ctx context.Context, query string, max int) ([]Result, error) {
	vqd, err := c.fetchToken(ctx, query)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("l", c.region)
	q.Set("o", "json")
	q.Set("noamp", "1")
	q.Set("q", query)
	q.Set("vqd", vqd)

	body, err := c.get(ctx, c.siteBase+"/news.js?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			Excerpt string `json:"excerpt"`
			URL     string `json:"url"`
			Date    int64  `json:"date"`
			Source  string `json:"source"`
		} `json:"results"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode news response")
	}

	results := make([]Result, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(results) == max {
			break
		}
		res := Result{
			Title:   r.Title,
			Snippet: stripTags(r.Excerpt),
			URL:     r.URL,
			Source:  r.Source,
		}
		if res.Source == "" {
			res.Source = "News"
		}
		if r.Date > 0 {
			res.Date = time.Unix(r.Date, 0).UTC().Format("2006-01-02")
		}
		results = append(results, res)
	}
	return results, nil
}

var vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)`)

func (c *Client) fetchToken(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("iar", "news")

	body, err := c.get(ctx, c.siteBase+"/?"+q.Encode())
	if err != nil {
		return "", err
	}
	defer body.Close()

	page, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read token page")
	}

	m := vqdPattern.FindSubmatch(page)
	if m == nil {
		return "", goerr.New("vqd token not found", goerr.V("query", query))
	}
	return string(m[1]), nil
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create search request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "search request failed")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, goerr.New("search backend returned error", goerr.V("status", resp.StatusCode))
	}
	return resp.Body, nil
}

// parseHTMLResults walks the no-JS result page. Each hit is an anchor with
// class result__a whose href is a /l/?uddg= redirect, with the snippet in a
// sibling node of class result__snippet.
func parseHTMLResults(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []Result
	var current *Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			if current != nil {
				results = append(results, *current)
			}
			current = &Result{
				Title:  strings.TrimSpace(textContent(n)),
				URL:    decodeRedirect(attr(n, "href")),
				Source: "DuckDuckGo",
			}
		}
		if n.Type == html.ElementNode && hasClass(n, "result__snippet") && current != nil && current.Snippet == "" {
			current.Snippet = strings.TrimSpace(textContent(n))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if current != nil {
		results = append(results, *current)
	}
	return results, nil
}

// decodeRedirect unwraps DuckDuckGo's /l/?uddg=<encoded> indirection.
func decodeRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
