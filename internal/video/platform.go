// Package video extracts recipes from cooking videos: deterministic parsing
// of the description first, generative passes over description and
// transcript after, and a best-effort synthesis from the title last.
package video

import (
	"net/url"
	"strings"
)

// Platform identifies a supported video host.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
)

var platformHosts = map[string]Platform{
	"youtube.com":   PlatformYouTube,
	"m.youtube.com": PlatformYouTube,
	"youtu.be":      PlatformYouTube,
	"tiktok.com":    PlatformTikTok,
	"vm.tiktok.com": PlatformTikTok,
	"t.tiktok.com":  PlatformTikTok,
}

// Classify reports which video platform a URL belongs to. Non-video URLs
// report false and flow through the regular web pipeline.
func Classify(rawURL string) (Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	platform, ok := platformHosts[host]

	return platform, ok
}
