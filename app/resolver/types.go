package resolver

import (
	"context"
)

// Metadata is the common shape every platform strategy must produce. Title
// is mandatory for a result to count as a successful resolution; a nil
// duration or empty thumbnail is an acceptable partial result.
type Metadata struct {
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	ThumbnailURL    string `json:"thumbnail_url"`
	DurationSeconds *int   `json:"duration_seconds"`
}

// strategy is one self-contained retrieval method within a platform's chain.
// Strategies fail soft: an error means "try the next one".
type strategy struct {
	name string
	run  func(ctx context.Context, externalID string) (*Metadata, error)
}
