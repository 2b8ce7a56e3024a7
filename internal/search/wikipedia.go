package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

// Wikipedia looks up article summaries through the REST API, with per
// language hosts for English, Hindi and Gujarati queries.
type Wikipedia struct {
	http *http.Client
	base string // host template, {lang} is substituted
}

func NewWikipedia(httpClient *http.Client) *Wikipedia {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Wikipedia{
		http: httpClient,
		base: "https://{lang}.wikipedia.org",
	}
}

// question phrasing stripped from queries before they become article titles
var titleNoise = []string{
	"what is ", "what are ", "who is ", "who are ",
	"tell me about ", "explain ", "describe ",
	"definition of ", "meaning of ", "history of ",
	"क्या है ", "कौन है ", "बताओ ", "के बारे में ",
	"શું છે ", "કોણ છે ", "વિશે જણાવો ",
}

// Lookup resolves the query to an article and returns its summary trimmed to
// the first four sentences. A nil slice with nil error means no article
// matched any title variant.
func (w *Wikipedia) Lookup(ctx context.Context, query, language string) ([]Result, error) {
	title := cleanTitle(query)
	if title == "" {
		return nil, nil
	}

	variants := []string{
		title,
		strings.ToLower(title),
		strings.ReplaceAll(title, " ", "_"),
	}
	if i := strings.IndexByte(title, ' '); i > 0 {
		variants = append(variants, title[:i])
	}

	var lastErr error
	for _, v := range variants {
		res, err := w.summary(ctx, v, language)
		if err != nil {
			lastErr = err
			continue
		}
		if res != nil {
			return []Result{*res}, nil
		}
	}
	return nil, lastErr
}

func cleanTitle(query string) string {
	t := strings.ToLower(strings.TrimSpace(query))
	for _, noise := range titleNoise {
		t = strings.ReplaceAll(t, noise, "")
	}
	t = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(t), "?"))
	return titleCase(t)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

type wikiSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// summary fetches one title. Missing articles return (nil, nil) so the
// caller can move on to the next variant.
func (w *Wikipedia) summary(ctx context.Context, title, language string) (*Result, error) {
	host := strings.ReplaceAll(w.base, "{lang}", langOrEnglish(language))
	endpoint := host + "/api/rest_v1/page/summary/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create wikipedia request")
	}
	req.Header.Set("User-Agent", "Vani-Assistant/1.0")

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "wikipedia request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, goerr.New("wikipedia returned error", goerr.V("status", resp.StatusCode))
	}

	var page wikiSummary
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, goerr.Wrap(err, "failed to decode wikipedia summary")
	}
	if page.Extract == "" {
		return nil, nil
	}

	return &Result{
		Title:   page.Title,
		Snippet: firstSentences(page.Extract, 4),
		URL:     page.ContentURLs.Desktop.Page,
		Source:  "Wikipedia",
	}, nil
}

func langOrEnglish(language string) string {
	switch language {
	case "hi", "gu":
		return language
	default:
		return "en"
	}
}

func firstSentences(text string, n int) string {
	parts := strings.Split(text, ".")
	var sentences []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sentences = append(sentences, p)
		if len(sentences) == n {
			break
		}
	}
	if len(sentences) == 0 {
		return text
	}
	return strings.Join(sentences, ". ") + "."
}
