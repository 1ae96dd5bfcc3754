package database

type UserRepository interface {
	UpsertUser(user User) error
	GetUser(id int64) (*User, error)
	GetUserCount() (int, error)
}

type VideoRepository interface {
	InsertVideo(video Video) (*Video, error)
	GetVideo(id string) (*Video, error)
	GetVideoByExternalID(userID int64, platform, externalID string) (*Video, error)
	GetVideosByUser(userID int64) ([]Video, error)
	SetWatched(id string, watched bool) (*Video, error)
	DeleteVideo(id string) (bool, error)
	VideoExists(id string) (bool, error)
	GetVideoCount() (int, error)
}

type ProgressRepository interface {
	GetProgress(userID int64, videoID string) (*Progress, error)
	UpsertProgress(userID int64, videoID string, positionSeconds int) error
}
