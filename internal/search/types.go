// Package search retrieves current information from DuckDuckGo and Wikipedia
// and formats it as context for the language model.
package search

// Result is one search hit, from whichever backend produced it.
type Result struct {
	Title   string
	Snippet string
	URL     string
	Source  string
	Date    string // news results only
}
