// Package search finds candidate watch-page URLs for a title on a given
// platform via a site-scoped HTML web search.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"vidqueue/app/parser"
)

const maxResults = 10

type Searcher struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	limiter    *rate.Limiter
}

func NewSearcher(httpClient *http.Client, endpoint, userAgent string) *Searcher {
	return &Searcher{
		httpClient: httpClient,
		endpoint:   endpoint,
		userAgent:  userAgent,
		// The search endpoint throttles aggressively; one query a second
		// with a small burst keeps us under its radar.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Search returns candidate URLs for the title on the platform's site. When
// the full title yields nothing it retries once with the title's first
// clause; that is the only graceful-degradation retry.
func (s *Searcher) Search(ctx context.Context, platform, title string) ([]string, error) {
	urls, err := s.query(ctx, platform, title)
	if err != nil {
		return nil, err
	}

	if len(urls) == 0 {
		if clause := firstClause(title); clause != "" && clause != title {
			return s.query(ctx, platform, clause)
		}
	}

	return urls, nil
}

func (s *Searcher) query(ctx context.Context, platform, query string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	domain := siteDomain(platform)
	if domain == "" {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}

	endpoint := fmt.Sprintf("%s?q=%s", s.endpoint,
		url.QueryEscape(fmt.Sprintf("site:%s %s", domain, query)))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if resolved := resolveResultURL(href); resolved != "" {
			urls = append(urls, resolved)
		}
		return len(urls) < maxResults
	})

	return urls, nil
}

// resolveResultURL unwraps the search engine's redirect links (the target
// is carried in the uddg query parameter); direct links pass through.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		parsed, err := url.Parse(href)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
		return href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("uddg")
}

// firstClause shortens a title to its first clause, split on sentence
// punctuation.
func firstClause(title string) string {
	clause := title
	for _, sep := range []string{".", "!", "?", "|", " - ", ":", ";"} {
		if idx := strings.Index(clause, sep); idx > 0 {
			clause = clause[:idx]
		}
	}
	return strings.TrimSpace(clause)
}

func siteDomain(platform string) string {
	switch platform {
	case parser.PlatformYouTube:
		return "youtube.com"
	case parser.PlatformRutube:
		return "rutube.ru"
	case parser.PlatformVK:
		return "vk.com"
	}
	return ""
}
