package search_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"vani/internal/search"
)

func TestFormatEmpty(t *testing.T) {
	gt.V(t, search.Format(nil, "en")).Equal("")
}

func TestFormatEnglish(t *testing.T) {
	out := search.Format([]search.Result{
		{Title: "First hit", Snippet: "short snippet", URL: "https://a.example", Source: "DuckDuckGo"},
		{Title: "Second hit", Snippet: "another snippet", Source: "Wikipedia"},
	}, "en")

	gt.True(t, strings.HasPrefix(out, "Search Results:"))
	gt.S(t, out).Contains("1. First hit")
	gt.S(t, out).Contains("short snippet...")
	gt.S(t, out).Contains("2. Second hit")
	gt.S(t, out).Contains("Source: Wikipedia")
	gt.True(t, strings.HasSuffix(out, "Use this information to provide an accurate answer."))
}

func TestFormatLocalizedHeaders(t *testing.T) {
	results := []search.Result{{Title: "t", Snippet: "s"}}

	gt.True(t, strings.HasPrefix(search.Format(results, "hi"), "इंटरनेट खोज परिणाम:"))
	gt.True(t, strings.HasPrefix(search.Format(results, "gu"), "ઇન્ટરનેટ શોધ પરિણામો:"))
	gt.True(t, strings.HasPrefix(search.Format(results, "fr"), "Search Results:"))
}

func TestFormatTruncatesAndCaps(t *testing.T) {
	long := strings.Repeat("x", 450)
	var results []search.Result
	for i := 0; i < 7; i++ {
		results = append(results, search.Result{Title: "entry", Snippet: long})
	}

	out := search.Format(results, "en")
	gt.V(t, strings.Count(out, "entry")).Equal(5)
	gt.S(t, out).Contains(strings.Repeat("x", 400) + "...")
	gt.V(t, strings.Contains(out, strings.Repeat("x", 401))).Equal(false)
}

func TestFormatNewsMetadata(t *testing.T) {
	out := search.Format([]search.Result{
		{Title: "Breaking", Snippet: "body", Date: "2026-08-30", Source: "Example Times"},
	}, "en")
	gt.S(t, out).Contains("Date: 2026-08-30 | Source: Example Times")
}
