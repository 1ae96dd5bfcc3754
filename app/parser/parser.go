package parser

import (
	"fmt"
	"regexp"
)

const (
	PlatformYouTube = "youtube"
	PlatformRutube  = "rutube"
	PlatformVK      = "vk"
)

// Link is the canonical form of a recognized video URL.
type Link struct {
	Platform     string
	ExternalID   string
	CanonicalURL string
}

// Parser recognizes video links from the supported platforms and normalizes
// every historical URL shape of one platform to the same external id.
type Parser struct {
	youtubePatterns []*regexp.Regexp
	rutubePatterns  []*regexp.Regexp
	vkPatterns      []*regexp.Regexp
}

func NewParser() *Parser {
	return &Parser{
		youtubePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:www\.|m\.)?youtube(?:-nocookie)?\.com/watch\?(?:[^\s]*&)?v=([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
			regexp.MustCompile(`(?:www\.|m\.)?youtube(?:-nocookie)?\.com/(?:embed|shorts|live|v)/([A-Za-z0-9_-]{11})`),
		},
		rutubePatterns: []*regexp.Regexp{
			regexp.MustCompile(`rutube\.ru/video/([0-9a-f]{32})`),
			regexp.MustCompile(`rutube\.ru/play/embed/([0-9a-f]{32})`),
			regexp.MustCompile(`rutube\.ru/shorts/([0-9a-f]{32})`),
		},
		// VK video ids are a composite owner_content pair; owner can be
		// negative for community-owned videos.
		vkPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:vk\.com|vkvideo\.ru|vk\.ru)/video(-?\d+)_(\d+)`),
			regexp.MustCompile(`(?:vk\.com|vkvideo\.ru|vk\.ru)/video_ext\.php\?(?:[^\s]*&)?oid=(-?\d+)&id=(\d+)`),
			regexp.MustCompile(`[?&]z=video(-?\d+)_(\d+)`),
			regexp.MustCompile(`(?:vk\.com|vkvideo\.ru)/(?:clip|shorts/video)(-?\d+)_(\d+)`),
		},
	}
}

// Parse extracts the first recognized video link from raw text. It returns
// nil when no pattern matches, which callers treat as "not a video link"
// rather than a failure.
func (p *Parser) Parse(raw string) *Link {
	for _, pattern := range p.youtubePatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return &Link{
				Platform:     PlatformYouTube,
				ExternalID:   m[1],
				CanonicalURL: CanonicalURL(PlatformYouTube, m[1]),
			}
		}
	}

	for _, pattern := range p.rutubePatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return &Link{
				Platform:     PlatformRutube,
				ExternalID:   m[1],
				CanonicalURL: CanonicalURL(PlatformRutube, m[1]),
			}
		}
	}

	for _, pattern := range p.vkPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			externalID := m[1] + "_" + m[2]
			return &Link{
				Platform:     PlatformVK,
				ExternalID:   externalID,
				CanonicalURL: CanonicalURL(PlatformVK, externalID),
			}
		}
	}

	return nil
}

// CanonicalURL rebuilds the canonical watch-page URL for a platform and
// external id.
func CanonicalURL(platform, externalID string) string {
	switch platform {
	case PlatformYouTube:
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", externalID)
	case PlatformRutube:
		return fmt.Sprintf("https://rutube.ru/video/%s/", externalID)
	case PlatformVK:
		return fmt.Sprintf("https://vk.com/video%s", externalID)
	}
	return ""
}
