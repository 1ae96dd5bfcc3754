package api

import (
	"time"

	"vidqueue/app/database"
)

type VideoResponse struct {
	ID              string    `json:"id"`
	Platform        string    `json:"platform"`
	ExternalID      string    `json:"external_id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Channel         string    `json:"channel"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	DurationSeconds *int      `json:"duration_seconds"`
	IsWatched       bool      `json:"is_watched"`
	ParentID        *string   `json:"parent_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func toVideoResponse(v database.Video) VideoResponse {
	return VideoResponse{
		ID:              v.ID,
		Platform:        v.Platform,
		ExternalID:      v.ExternalID,
		URL:             v.URL,
		Title:           v.Title,
		Channel:         v.ChannelName,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		IsWatched:       v.IsWatched,
		ParentID:        v.ParentID,
		CreatedAt:       v.CreatedAt,
	}
}

type ProgressResponse struct {
	VideoID         string `json:"video_id"`
	PositionSeconds *int   `json:"position_seconds"`
}

type SaveProgressRequest struct {
	VideoID         string `json:"video_id" binding:"required"`
	PositionSeconds int    `json:"position_seconds" binding:"min=0"`
}
