package database

import (
	"database/sql"
	"fmt"
)

var _ ProgressRepository = (*ProgressRepositoryImpl)(nil)

// ProgressRepositoryImpl handles database operations for watch progress
type ProgressRepositoryImpl struct {
	db *DB
}

func NewProgressRepository(db *DB) *ProgressRepositoryImpl {
	return &ProgressRepositoryImpl{db: db}
}

func (r *ProgressRepositoryImpl) GetProgress(userID int64, videoID string) (*Progress, error) {
	var progress Progress
	err := r.db.QueryRow(`
		SELECT id, user_id, video_id, position_seconds, updated_at
		FROM progress
		WHERE user_id = $1 AND video_id = $2
	`, userID, videoID).Scan(
		&progress.ID, &progress.UserID, &progress.VideoID,
		&progress.PositionSeconds, &progress.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return &progress, nil
}

func (r *ProgressRepositoryImpl) UpsertProgress(userID int64, videoID string, positionSeconds int) error {
	_, err := r.db.Exec(`
		INSERT INTO progress (user_id, video_id, position_seconds)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, video_id) DO UPDATE SET
			position_seconds = EXCLUDED.position_seconds,
			updated_at = NOW()
	`, userID, videoID, positionSeconds)

	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}
