package resolver

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const maxPageSize = 2 << 20 // 2 MiB is plenty for a watch page's head

// fetchPageMeta downloads a watch page under the given user agent, corrects
// its encoding and extracts the Open Graph title/image/duration tags.
func (r *Resolver) fetchPageMeta(ctx context.Context, pageURL, userAgent string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, err
	}

	body = decodeToUTF8(body, resp.Header.Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	m := &Metadata{
		Title:        metaContent(doc, "og:title"),
		ThumbnailURL: metaContent(doc, "og:image"),
	}
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if raw := metaContent(doc, "og:video:duration"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			m.DurationSeconds = &seconds
		}
	}

	return m, nil
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return strings.TrimSpace(content)
}

var metaCharsetPattern = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([A-Za-z0-9_.-]+)`)

// decodeToUTF8 converts a page body to UTF-8 based on the Content-Type
// header or the page's own meta charset. VK still serves windows-1251 to
// some user agents; regex and tag extraction over raw bytes would silently
// mangle those titles.
func decodeToUTF8(body []byte, contentType string) []byte {
	name := charsetFromContentType(contentType)
	if name == "" {
		if m := metaCharsetPattern.FindSubmatch(body); m != nil {
			name = string(m[1])
		}
	}
	if name == "" || strings.EqualFold(name, "utf-8") {
		return body
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return body
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return body
	}
	return decoded
}

func charsetFromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
