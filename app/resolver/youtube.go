package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"vidqueue/app/parser"
)

func (r *Resolver) youtubeStrategies() []strategy {
	return []strategy{
		{name: "oembed", run: r.youtubeOEmbed},
	}
}

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// youtubeOEmbed hits the official keyless oEmbed endpoint. It carries no
// duration, so an accepted result is enriched from community mirrors in a
// separate best-effort pass. The cross-source merge is deliberate: duration
// is the only field allowed to come from a second source.
func (r *Resolver) youtubeOEmbed(ctx context.Context, externalID string) (*Metadata, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json",
		r.endpoints.YouTubeOEmbed,
		url.QueryEscape(parser.CanonicalURL(parser.PlatformYouTube, externalID)))

	var resp oembedResponse
	if err := r.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	m := &Metadata{
		Title:        resp.Title,
		Channel:      resp.AuthorName,
		ThumbnailURL: resp.ThumbnailURL,
	}
	if acceptable(m) {
		r.enrichDuration(ctx, externalID, m)
	}
	return m, nil
}

type mirrorVideoResponse struct {
	LengthSeconds int `json:"lengthSeconds"`
}

// enrichDuration tries the known mirror hosts in sequence; the first
// positive duration wins and every failure is ignored.
func (r *Resolver) enrichDuration(ctx context.Context, externalID string, m *Metadata) {
	for _, host := range r.endpoints.MirrorHosts {
		endpoint := fmt.Sprintf("%s/api/v1/videos/%s?fields=lengthSeconds", host, externalID)

		var resp mirrorVideoResponse
		if err := r.getJSON(ctx, endpoint, &resp); err != nil {
			slog.Debug("Duration mirror lookup failed", "host", host, "id", externalID, "error", err)
			continue
		}
		if resp.LengthSeconds > 0 {
			duration := resp.LengthSeconds
			m.DurationSeconds = &duration
			return
		}
	}
}
