package resolver

import (
	"context"
	"fmt"
	"net/url"

	"vidqueue/app/parser"
)

func (r *Resolver) rutubeStrategies() []strategy {
	return []strategy{
		{name: "api", run: r.rutubeAPI},
		{name: "oembed", run: r.rutubeOEmbed},
	}
}

type rutubeVideoResponse struct {
	Title  string `json:"title"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
}

// rutubeAPI is preferred over oEmbed because it also carries the duration.
func (r *Resolver) rutubeAPI(ctx context.Context, externalID string) (*Metadata, error) {
	endpoint := fmt.Sprintf("%s/%s/", r.endpoints.RutubeAPI, externalID)

	var resp rutubeVideoResponse
	if err := r.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	m := &Metadata{
		Title:        resp.Title,
		Channel:      resp.Author.Name,
		ThumbnailURL: resp.ThumbnailURL,
	}
	if resp.Duration > 0 {
		duration := int(resp.Duration)
		m.DurationSeconds = &duration
	}
	return m, nil
}

func (r *Resolver) rutubeOEmbed(ctx context.Context, externalID string) (*Metadata, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json",
		r.endpoints.RutubeOEmbed,
		url.QueryEscape(parser.CanonicalURL(parser.PlatformRutube, externalID)))

	var resp oembedResponse
	if err := r.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	return &Metadata{
		Title:        resp.Title,
		Channel:      resp.AuthorName,
		ThumbnailURL: resp.ThumbnailURL,
	}, nil
}
