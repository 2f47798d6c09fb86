package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

const watchBase = "https://www.youtube.com/watch?v="

// WatchURL returns the canonical watch page for a video id
func WatchURL(videoID string) string {
	return watchBase + videoID
}

func parseLoose(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return url.Parse(raw)
}

// ExtractVideoID returns the video id from watch, short, embed and shorts links
func ExtractVideoID(videoURL string) (string, error) {
	u, err := parseLoose(videoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	host := strings.ToLower(u.Host)

	if strings.Contains(host, "youtu.be") {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL")
	}

	if strings.Contains(host, "youtube.com") {
		if strings.HasPrefix(u.Path, "/watch") {
			if id := u.Query().Get("v"); id != "" {
				return id, nil
			}
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", videoURL)
}

// IsVideoURL reports whether s points at youtube.com or youtu.be
func IsVideoURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	u, err := parseLoose(s)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}
