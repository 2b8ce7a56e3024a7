package search

import (
	"fmt"
	"strings"
)

const maxFormatted = 5
const snippetLimit = 400

var resultHeaders = map[string]string{
	"en": "Search Results:",
	"hi": "इंटरनेट खोज परिणाम:",
	"gu": "ઇન્ટરનેટ શોધ પરિણામો:",
}

// Format renders results as a plain text block for prompt assembly. Empty
// input yields an empty string so callers can append unconditionally.
func Format(results []Result, language string) string {
	if len(results) == 0 {
		return ""
	}
	if len(results) > maxFormatted {
		results = results[:maxFormatted]
	}

	header, ok := resultHeaders[language]
	if !ok {
		header = resultHeaders["en"]
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	for i, r := range results {
		if r.Title != "" {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		}
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s...\n", truncateRunes(r.Snippet, snippetLimit))
		}

		var meta []string
		if r.Date != "" {
			meta = append(meta, "Date: "+r.Date)
		}
		if r.Source != "" {
			meta = append(meta, "Source: "+r.Source)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(meta, " | "))
		}
	}

	b.WriteString("\nUse this information to provide an accurate answer.")
	return b.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
