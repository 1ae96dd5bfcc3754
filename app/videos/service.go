package videos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vidqueue/app/database"
	"vidqueue/app/matcher"
	"vidqueue/app/parser"
	"vidqueue/app/resolver"
	"vidqueue/app/search"
	"vidqueue/app/tasks"
)

var (
	// ErrNotVideoLink means the text carried no recognizable video URL.
	// Callers turn it into a friendly message, not a failure.
	ErrNotVideoLink = errors.New("not a video link")

	// ErrAlreadyQueued means the same (owner, platform, external id) row
	// already exists.
	ErrAlreadyQueued = errors.New("video already queued")

	// ErrNotFound covers both a missing row and a row owned by someone
	// else; the two are indistinguishable to the caller on purpose.
	ErrNotFound = errors.New("video not found")
)

// Service orchestrates intake (parse, resolve, persist, schedule the
// alternative search) and the canonical-progress mapping that lets every
// member of a family share one watch position.
type Service struct {
	urlParser    *parser.Parser
	resolver     *resolver.Resolver
	searcher     *search.Searcher
	matcherCfg   matcher.Config
	scheduler    tasks.TaskSchedulerInterface
	videoRepo    database.VideoRepository
	progressRepo database.ProgressRepository
}

func NewService(urlParser *parser.Parser, metaResolver *resolver.Resolver,
	searcher *search.Searcher, matcherCfg matcher.Config,
	scheduler tasks.TaskSchedulerInterface,
	videoRepo database.VideoRepository, progressRepo database.ProgressRepository) *Service {
	return &Service{
		urlParser:    urlParser,
		resolver:     metaResolver,
		searcher:     searcher,
		matcherCfg:   matcherCfg,
		scheduler:    scheduler,
		videoRepo:    videoRepo,
		progressRepo: progressRepo,
	}
}

// Intake turns a chat message into a persisted video row. The row is
// visible to the user immediately; mirrors on the other platforms appear
// later through the detached background search.
func (s *Service) Intake(ctx context.Context, userID int64, text string) (*database.Video, error) {
	link := s.urlParser.Parse(text)
	if link == nil {
		return nil, ErrNotVideoLink
	}

	existing, err := s.videoRepo.GetVideoByExternalID(userID, link.Platform, link.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing video: %w", err)
	}
	if existing != nil {
		return existing, ErrAlreadyQueued
	}

	meta := s.resolver.Resolve(ctx, link.Platform, link.ExternalID)

	video, err := s.videoRepo.InsertVideo(database.Video{
		UserID:          userID,
		Platform:        link.Platform,
		ExternalID:      link.ExternalID,
		URL:             link.CanonicalURL,
		Title:           meta.Title,
		ChannelName:     meta.Channel,
		ThumbnailURL:    meta.ThumbnailURL,
		DurationSeconds: meta.DurationSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist video: %w", err)
	}

	// Only YouTube roots trigger the mirror search; by convention the
	// family root is the entry that came in through the primary host.
	if video.Platform == parser.PlatformYouTube && video.ParentID == nil {
		task := tasks.NewFindAlternativesTask(*video, s.urlParser, s.resolver,
			s.searcher, s.matcherCfg, s.videoRepo)
		if err := s.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue alternative search", "video_id", video.ID, "error", err)
		}
	}

	return video, nil
}

func (s *Service) List(userID int64) ([]database.Video, error) {
	return s.videoRepo.GetVideosByUser(userID)
}

func (s *Service) ToggleWatched(userID int64, videoID string) (*database.Video, error) {
	video, err := s.ownedVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	return s.videoRepo.SetWatched(video.ID, !video.IsWatched)
}

func (s *Service) Delete(userID int64, videoID string) error {
	if _, err := s.ownedVideo(userID, videoID); err != nil {
		return err
	}

	deleted, err := s.videoRepo.DeleteVideo(videoID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// CanonicalID maps any family member to the id progress is stored under:
// the parent when it still exists, the video's own id otherwise. A child
// orphaned by root deletion becomes its own progress root instead of
// erroring.
func (s *Service) CanonicalID(video *database.Video) (string, error) {
	if video.ParentID == nil {
		return video.ID, nil
	}

	parent, err := s.videoRepo.GetVideo(*video.ParentID)
	if err != nil {
		return "", fmt.Errorf("failed to look up family root: %w", err)
	}
	if parent == nil {
		return video.ID, nil
	}
	return parent.ID, nil
}

// GetProgress returns the stored position for a video, reading through the
// canonical id so every member of a family resumes at the same point. A nil
// result means no position has been saved yet.
func (s *Service) GetProgress(userID int64, videoID string) (*database.Progress, error) {
	video, err := s.ownedVideo(userID, videoID)
	if err != nil {
		return nil, err
	}

	canonicalID, err := s.CanonicalID(video)
	if err != nil {
		return nil, err
	}

	return s.progressRepo.GetProgress(userID, canonicalID)
}

// SaveProgress upserts the watch position. Ownership is checked against the
// caller-supplied id even though the storage key is the canonical id: the
// authorization target and the storage key are deliberately separate.
func (s *Service) SaveProgress(userID int64, videoID string, positionSeconds int) error {
	video, err := s.ownedVideo(userID, videoID)
	if err != nil {
		return err
	}

	canonicalID, err := s.CanonicalID(video)
	if err != nil {
		return err
	}

	return s.progressRepo.UpsertProgress(userID, canonicalID, positionSeconds)
}

func (s *Service) ownedVideo(userID int64, videoID string) (*database.Video, error) {
	video, err := s.videoRepo.GetVideo(videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || video.UserID != userID {
		return nil, ErrNotFound
	}
	return video, nil
}
