package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

const resultPage = `<html><body>
<div class="result">
  <h2 class="result__title">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fgo&amp;rut=abc">Go Programming</a>
  </h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fgo">Go is an <b>open source</b> language.</a>
</div>
<div class="result">
  <h2 class="result__title">
    <a class="result__a" href="https://other.example/page">Second Result</a>
  </h2>
  <a class="result__snippet" href="https://other.example/page">Another snippet here.</a>
</div>
</body></html>`

func TestParseHTMLResults(t *testing.T) {
	results, err := parseHTMLResults(strings.NewReader(resultPage))
	gt.NoError(t, err)
	gt.A(t, results).Length(2)

	gt.V(t, results[0].Title).Equal("Go Programming")
	gt.V(t, results[0].URL).Equal("https://example.com/go")
	gt.V(t, results[0].Snippet).Equal("Go is an open source language.")
	gt.V(t, results[0].Source).Equal("DuckDuckGo")

	gt.V(t, results[1].Title).Equal("Second Result")
	gt.V(t, results[1].URL).Equal("https://other.example/page")
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.URL.Query().Get("q")).Equal("golang")
		gt.V(t, r.URL.Query().Get("kl")).Equal("in-en")
		w.Write([]byte(resultPage))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.htmlBase = srv.URL

	results, err := c.Search(context.Background(), "golang", 1)
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.V(t, results[0].Title).Equal("Go Programming")
}

func TestNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<script>vqd="4-1234567890";</script>`))
			return
		}
		gt.V(t, r.URL.Path).Equal("/news.js")
		gt.V(t, r.URL.Query().Get("vqd")).Equal("4-1234567890")
		w.Write([]byte(`{"results":[
			{"title":"Election update","excerpt":"The <b>vote</b> count continues.","url":"https://news.example/1","date":1756512000,"source":"Example Times"},
			{"title":"Second story","excerpt":"More news.","url":"https://news.example/2","date":0,"source":""}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.siteBase = srv.URL

	results, err := c.News(context.Background(), "election", 5)
	gt.NoError(t, err)
	gt.A(t, results).Length(2)

	gt.V(t, results[0].Title).Equal("Election update")
	gt.V(t, results[0].Snippet).Equal("The vote count continues.")
	gt.V(t, results[0].Date).Equal("2025-08-30")
	gt.V(t, results[0].Source).Equal("Example Times")
	gt.V(t, results[1].Source).Equal("News")
	gt.V(t, results[1].Date).Equal("")
}

func TestNewsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>no token here</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client())
	c.siteBase = srv.URL

	_, err := c.News(context.Background(), "anything", 5)
	gt.Error(t, err)
}
