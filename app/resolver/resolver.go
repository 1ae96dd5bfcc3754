package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"vidqueue/app/cache"
	"vidqueue/app/parser"
)

const (
	strategyTimeout  = 8 * time.Second
	metadataCacheTTL = 6 * time.Hour
)

// Resolver walks an ordered list of retrieval strategies per platform and
// returns the first result whose title is present and not a generic
// placeholder. It never fails: when every strategy is exhausted the caller
// gets a stub so a video row can always be persisted.
type Resolver struct {
	httpClient *http.Client
	cache      cache.Cache
	userAgent  string

	vkServiceToken string

	endpoints Endpoints
}

// Endpoints collects the upstream URL bases so tests can point the chains
// at local fixtures.
type Endpoints struct {
	YouTubeOEmbed string
	MirrorHosts   []string
	RutubeAPI     string
	RutubeOEmbed  string
	VKAPI         string
	VKPage        string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		YouTubeOEmbed: "https://www.youtube.com/oembed",
		MirrorHosts: []string{
			"https://inv.nadeko.net",
			"https://yewtu.be",
			"https://invidious.nerdvpn.de",
		},
		RutubeAPI:    "https://rutube.ru/api/video",
		RutubeOEmbed: "https://rutube.ru/api/oembed/",
		VKAPI:        "https://api.vk.com/method/video.get",
		VKPage:       "https://vk.com/video",
	}
}

func NewResolver(httpClient *http.Client, metaCache cache.Cache, userAgent, vkServiceToken string) *Resolver {
	return NewResolverWithEndpoints(httpClient, metaCache, userAgent, vkServiceToken, DefaultEndpoints())
}

func NewResolverWithEndpoints(httpClient *http.Client, metaCache cache.Cache, userAgent, vkServiceToken string, endpoints Endpoints) *Resolver {
	return &Resolver{
		httpClient:     httpClient,
		cache:          metaCache,
		userAgent:      userAgent,
		vkServiceToken: vkServiceToken,
		endpoints:      endpoints,
	}
}

// Resolve fetches metadata for a video. The chain runs strictly
// sequentially: each strategy is tried only after the previous one failed
// or produced a placeholder.
func (r *Resolver) Resolve(ctx context.Context, platform, externalID string) Metadata {
	cacheKey := "meta:" + platform + ":" + externalID
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		var m Metadata
		if err := json.Unmarshal([]byte(cached), &m); err == nil {
			return m
		}
	}

	var strategies []strategy
	switch platform {
	case parser.PlatformYouTube:
		strategies = r.youtubeStrategies()
	case parser.PlatformRutube:
		strategies = r.rutubeStrategies()
	case parser.PlatformVK:
		strategies = r.vkStrategies()
	}

	for _, s := range strategies {
		strategyCtx, cancel := context.WithTimeout(ctx, strategyTimeout)
		m, err := s.run(strategyCtx, externalID)
		cancel()

		if err != nil {
			slog.Warn("Metadata strategy failed", "platform", platform, "strategy", s.name, "id", externalID, "error", err)
			continue
		}
		if !acceptable(m) {
			slog.Debug("Metadata strategy rejected", "platform", platform, "strategy", s.name, "id", externalID)
			continue
		}

		slog.Info("Metadata resolved", "platform", platform, "strategy", s.name, "id", externalID, "title", m.Title)

		if encoded, err := json.Marshal(m); err == nil {
			r.cache.Set(ctx, cacheKey, string(encoded), metadataCacheTTL)
		}
		return *m
	}

	slog.Warn("All metadata strategies failed, using stub", "platform", platform, "id", externalID)
	return r.stub(platform, externalID)
}

// stub is the hard fallback; stubs are never cached so a later intake can
// retry the full chain.
func (r *Resolver) stub(platform, externalID string) Metadata {
	switch platform {
	case parser.PlatformYouTube:
		return Metadata{
			Title:        "YouTube Video",
			Channel:      "YouTube",
			ThumbnailURL: "https://i.ytimg.com/vi/" + externalID + "/hqdefault.jpg",
		}
	case parser.PlatformRutube:
		return Metadata{
			Title:        "Rutube Video",
			Channel:      "Rutube",
			ThumbnailURL: "https://rutube.ru/api/video/" + externalID + "/thumbnail/?redirect=1",
		}
	case parser.PlatformVK:
		return Metadata{
			Title:   "VK Video",
			Channel: "VK",
		}
	}
	return Metadata{Title: "Video"}
}

// genericTitles are titles a block page or login wall reports as its own:
// resolving to one of these means the strategy was served a non-content
// page, not data.
var genericTitles = map[string]bool{
	"vk":              true,
	"vk video":        true,
	"вконтакте":       true,
	"видео вконтакте": true,
	"video":           true,
	"видео":           true,
	"untitled":        true,
	"без названия":    true,
	"rutube":          true,
	"youtube":         true,
}

var genericTitlePattern = regexp.MustCompile(`(?i)^(видео\s+)?(вконтакте|vk video|vk)(\s*\|.*)?$`)

func isGenericTitle(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return true
	}
	if genericTitles[normalized] {
		return true
	}
	return genericTitlePattern.MatchString(normalized)
}

func acceptable(m *Metadata) bool {
	return m != nil && !isGenericTitle(m.Title)
}

func (r *Resolver) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.status, http.StatusText(e.status))
}
