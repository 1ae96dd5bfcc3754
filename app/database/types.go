package database

import (
	"time"
)

type User struct {
	ID        int64 // Telegram user ID
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Video struct {
	ID              string // Database UUID
	UserID          int64
	Platform        string // youtube, rutube, vk
	ExternalID      string
	URL             string // Canonical URL rebuilt from the external ID
	Title           string
	ChannelName     string
	ThumbnailURL    string
	DurationSeconds *int
	IsWatched       bool
	ParentID        *string // Family root, NULL when this row is its own root
	CreatedAt       time.Time
}

type Progress struct {
	ID              string
	UserID          int64
	VideoID         string // Always a canonical/family id
	PositionSeconds int
	UpdatedAt       time.Time
}
