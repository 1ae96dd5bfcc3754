package tasks

import (
	"context"
	"log/slog"
	"sync"

	"vidqueue/app/database"
	"vidqueue/app/matcher"
	"vidqueue/app/parser"
	"vidqueue/app/resolver"
	"vidqueue/app/search"
)

const maxCandidatesPerPlatform = 5

// FindAlternativesTask searches the two non-originating platforms for
// mirrors of an already-persisted root video and links accepted matches as
// children of the root. Partial search failure is tolerated: absence of
// mirrors is an acceptable outcome, never an error, so Execute only fails
// on the enqueue-level impossibilities (root gone).
type FindAlternativesTask struct {
	Task
	root       database.Video
	urlParser  *parser.Parser
	resolver   *resolver.Resolver
	searcher   *search.Searcher
	matcherCfg matcher.Config
	videoRepo  database.VideoRepository
}

func NewFindAlternativesTask(root database.Video, urlParser *parser.Parser,
	metaResolver *resolver.Resolver, searcher *search.Searcher,
	matcherCfg matcher.Config, videoRepo database.VideoRepository) *FindAlternativesTask {
	return &FindAlternativesTask{
		Task:       NewTask(TaskTypeFindAlternatives, root.ID),
		root:       root,
		urlParser:  urlParser,
		resolver:   metaResolver,
		searcher:   searcher,
		matcherCfg: matcherCfg,
		videoRepo:  videoRepo,
	}
}

func (t *FindAlternativesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The root may have been deleted while the task sat in the queue.
	exists, err := t.videoRepo.VideoExists(t.root.ID)
	if err != nil {
		return err
	}
	if !exists {
		slog.Debug("Root video deleted before alternative search", "video_id", t.root.ID)
		return nil
	}

	targets := otherPlatforms(t.root.Platform)

	// The two platform searches are independent; candidate resolution and
	// scoring within each stays sequential.
	var wg sync.WaitGroup
	linked := make([]int, len(targets))
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			linked[i] = t.findOnPlatform(ctx, target)
		}(i, target)
	}
	wg.Wait()

	total := 0
	for _, n := range linked {
		total += n
	}

	slog.Info("Task completed",
		"type", "FindAlternatives",
		"video_id", t.root.ID,
		"duration", t.GetDuration(),
		"title", t.root.Title,
		"linked", total)

	return nil
}

func (t *FindAlternativesTask) findOnPlatform(ctx context.Context, platform string) int {
	urls, err := t.searcher.Search(ctx, platform, t.root.Title)
	if err != nil {
		slog.Warn("Alternative search failed", "platform", platform, "video_id", t.root.ID, "error", err)
		return 0
	}

	linked := 0
	seen := make(map[string]bool)
	examined := 0
	for _, rawURL := range urls {
		if examined >= maxCandidatesPerPlatform {
			break
		}

		link := t.urlParser.Parse(rawURL)
		if link == nil || link.Platform != platform || seen[link.ExternalID] {
			continue
		}
		seen[link.ExternalID] = true
		examined++

		meta := t.resolver.Resolve(ctx, link.Platform, link.ExternalID)

		channelSim := matcher.ChannelSimilarity(t.root.ChannelName, meta.Channel)
		titleOverlap := matcher.TitleOverlap(t.root.Title, meta.Title, t.matcherCfg.NearMatchRatio)

		if !t.matcherCfg.Accept(channelSim, titleOverlap) {
			slog.Debug("Alternative candidate rejected",
				"platform", platform,
				"candidate", link.ExternalID,
				"channel_similarity", channelSim,
				"title_overlap", titleOverlap)
			continue
		}

		existing, err := t.videoRepo.GetVideoByExternalID(t.root.UserID, link.Platform, link.ExternalID)
		if err != nil {
			slog.Warn("Duplicate check failed", "platform", platform, "candidate", link.ExternalID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		child := database.Video{
			UserID:          t.root.UserID,
			Platform:        link.Platform,
			ExternalID:      link.ExternalID,
			URL:             link.CanonicalURL,
			Title:           meta.Title,
			ChannelName:     meta.Channel,
			ThumbnailURL:    meta.ThumbnailURL,
			DurationSeconds: meta.DurationSeconds,
			ParentID:        &t.root.ID,
		}

		if _, err := t.videoRepo.InsertVideo(child); err != nil {
			slog.Warn("Failed to persist alternative", "platform", platform, "candidate", link.ExternalID, "error", err)
			continue
		}

		slog.Info("Alternative linked",
			"platform", platform,
			"candidate", link.ExternalID,
			"root", t.root.ID,
			"score", t.matcherCfg.Score(channelSim, titleOverlap))
		linked++
	}

	return linked
}

func otherPlatforms(platform string) []string {
	all := []string{parser.PlatformYouTube, parser.PlatformRutube, parser.PlatformVK}
	var out []string
	for _, p := range all {
		if p != platform {
			out = append(out, p)
		}
	}
	return out
}
