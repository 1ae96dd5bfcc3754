package database

import (
	"database/sql"
	"fmt"
)

var _ VideoRepository = (*VideoRepositoryImpl)(nil)

// VideoRepositoryImpl handles database operations for videos
type VideoRepositoryImpl struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepositoryImpl {
	return &VideoRepositoryImpl{db: db}
}

const videoColumns = `id, user_id, platform, external_id, url, title,
	COALESCE(channel_name, ''), COALESCE(thumbnail_url, ''), duration_seconds,
	is_watched, parent_id, created_at`

// InsertVideo stores a video row. Re-adding the same link is idempotent:
// the (user_id, platform, external_id) conflict refreshes metadata instead
// of creating a duplicate.
func (r *VideoRepositoryImpl) InsertVideo(video Video) (*Video, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO videos (user_id, platform, external_id, url, title,
			channel_name, thumbnail_url, duration_seconds, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, platform, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			channel_name = EXCLUDED.channel_name,
			thumbnail_url = EXCLUDED.thumbnail_url,
			duration_seconds = EXCLUDED.duration_seconds
		RETURNING id
	`, video.UserID, video.Platform, video.ExternalID, video.URL, video.Title,
		video.ChannelName, video.ThumbnailURL, video.DurationSeconds, video.ParentID).Scan(&id)

	if err != nil {
		return nil, fmt.Errorf("failed to insert video: %w", err)
	}

	return r.GetVideo(id)
}

func (r *VideoRepositoryImpl) GetVideo(id string) (*Video, error) {
	var video Video
	err := r.db.QueryRow(`
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = $1
	`, id).Scan(
		&video.ID, &video.UserID, &video.Platform, &video.ExternalID, &video.URL,
		&video.Title, &video.ChannelName, &video.ThumbnailURL, &video.DurationSeconds,
		&video.IsWatched, &video.ParentID, &video.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

func (r *VideoRepositoryImpl) GetVideoByExternalID(userID int64, platform, externalID string) (*Video, error) {
	var video Video
	err := r.db.QueryRow(`
		SELECT `+videoColumns+`
		FROM videos
		WHERE user_id = $1 AND platform = $2 AND external_id = $3
	`, userID, platform, externalID).Scan(
		&video.ID, &video.UserID, &video.Platform, &video.ExternalID, &video.URL,
		&video.Title, &video.ChannelName, &video.ThumbnailURL, &video.DurationSeconds,
		&video.IsWatched, &video.ParentID, &video.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video by external id: %w", err)
	}

	return &video, nil
}

func (r *VideoRepositoryImpl) GetVideosByUser(userID int64) ([]Video, error) {
	rows, err := r.db.Query(`
		SELECT `+videoColumns+`
		FROM videos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var video Video
		err := rows.Scan(
			&video.ID, &video.UserID, &video.Platform, &video.ExternalID, &video.URL,
			&video.Title, &video.ChannelName, &video.ThumbnailURL, &video.DurationSeconds,
			&video.IsWatched, &video.ParentID, &video.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video rows: %w", err)
	}

	return videos, nil
}

func (r *VideoRepositoryImpl) SetWatched(id string, watched bool) (*Video, error) {
	_, err := r.db.Exec(`
		UPDATE videos
		SET is_watched = $2
		WHERE id = $1
	`, id, watched)

	if err != nil {
		return nil, fmt.Errorf("failed to set watched flag: %w", err)
	}

	return r.GetVideo(id)
}

// DeleteVideo removes exactly one row. Children of a deleted root survive:
// their parent_id is set to NULL by the foreign key.
func (r *VideoRepositoryImpl) DeleteVideo(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete video: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *VideoRepositoryImpl) VideoExists(id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check video existence: %w", err)
	}
	return exists, nil
}

func (r *VideoRepositoryImpl) GetVideoCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get video count: %w", err)
	}
	return count, nil
}
