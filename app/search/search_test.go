package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"vidqueue/app/parser"
)

const resultsPage = `<html><body>
<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.youtube.com%2Fwatch%3Fv%3DdQw4w9WgXcQ&rut=abc">First</a>
<a class="result__a" href="https://www.youtube.com/watch?v=aaaaaaaaaaa">Second</a>
<a class="other" href="https://example.com/ignored">Ad</a>
</body></html>`

func newTestSearcher(handler http.HandlerFunc) (*Searcher, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewSearcher(&http.Client{Timeout: 5 * time.Second}, server.URL, "test-agent"), server
}

func TestSearch_ParsesResults(t *testing.T) {
	var gotQuery string
	s, server := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		io.WriteString(w, resultsPage)
	})
	defer server.Close()

	urls, err := s.Search(context.Background(), parser.PlatformYouTube, "Epic Adventure")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotQuery != "site:youtube.com Epic Adventure" {
		t.Errorf("Unexpected query sent: %q", gotQuery)
	}
	if len(urls) != 2 {
		t.Fatalf("Expected 2 results, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("Expected redirect link unwrapped, got %q", urls[0])
	}
	if urls[1] != "https://www.youtube.com/watch?v=aaaaaaaaaaa" {
		t.Errorf("Expected direct link passed through, got %q", urls[1])
	}
}

func TestSearch_FirstClauseRetry(t *testing.T) {
	var queries []string
	s, server := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if strings.Contains(q, "Full Interview") {
			fmt.Fprint(w, "<html><body></body></html>")
			return
		}
		io.WriteString(w, resultsPage)
	})
	defer server.Close()

	urls, err := s.Search(context.Background(), parser.PlatformYouTube, "Epic Adventure: Full Interview")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("Expected 2 queries, got %d: %v", len(queries), queries)
	}
	if queries[1] != "site:youtube.com Epic Adventure" {
		t.Errorf("Expected retry with first clause, got %q", queries[1])
	}
	if len(urls) == 0 {
		t.Error("Expected results from the retry")
	}
}

func TestSearch_HTTPError(t *testing.T) {
	s, server := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer server.Close()

	if _, err := s.Search(context.Background(), parser.PlatformYouTube, "anything"); err == nil {
		t.Error("Expected an error on HTTP 403")
	}
}

func TestSearch_UnsupportedPlatform(t *testing.T) {
	s, server := newTestSearcher(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, resultsPage)
	})
	defer server.Close()

	if _, err := s.Search(context.Background(), "vimeo", "anything"); err == nil {
		t.Error("Expected an error for an unsupported platform")
	}
}

func TestResolveResultURL(t *testing.T) {
	wrapped := "//duckduckgo.com/l/?uddg=" + url.QueryEscape("https://rutube.ru/video/abc/") + "&rut=xyz"
	if got := resolveResultURL(wrapped); got != "https://rutube.ru/video/abc/" {
		t.Errorf("Expected unwrapped target, got %q", got)
	}

	direct := "https://vk.com/video-1_2"
	if got := resolveResultURL(direct); got != direct {
		t.Errorf("Expected direct link unchanged, got %q", got)
	}

	if got := resolveResultURL("/html/?q=next"); got != "" {
		t.Errorf("Expected empty result for a non-result link, got %q", got)
	}
}

func TestFirstClause(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Epic Adventure: Full Interview", "Epic Adventure"},
		{"Part one. Part two", "Part one"},
		{"Big news! More inside", "Big news"},
		{"Name - Topic | Channel", "Name"},
		{"No separators here", "No separators here"},
	}

	for _, tc := range cases {
		if got := firstClause(tc.input); got != tc.want {
			t.Errorf("firstClause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
