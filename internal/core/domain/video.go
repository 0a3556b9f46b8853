package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Thumbnail qualities served by img.youtube.com.
const (
	ThumbnailDefault = "default"
	ThumbnailMedium  = "mqdefault"
	ThumbnailHigh    = "hqdefault"
	ThumbnailSD      = "sddefault"
	ThumbnailMaxRes  = "maxresdefault"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoInfo is a metadata snapshot of a video taken at fetch time.
type VideoInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel,omitempty"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	PublishedAt  time.Time `json:"published_at,omitzero"`
	ViewCount    uint64    `json:"view_count"`
	LikeCount    uint64    `json:"like_count"`
	CommentCount uint64    `json:"comment_count"`
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ThumbnailURL returns the static thumbnail URL for a video ID.
// Unknown qualities fall back to hqdefault.
func ThumbnailURL(id, quality string) string {
	switch quality {
	case ThumbnailDefault, ThumbnailMedium, ThumbnailHigh, ThumbnailSD, ThumbnailMaxRes:
	default:
		quality = ThumbnailHigh
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", id, quality)
}

// ExtractVideoID returns the 11-character video ID from a YouTube URL or a
// bare ID. Supported URL forms are watch, youtu.be, shorts, embed and live
// links on youtube.com, www.youtube.com, m.youtube.com and music.youtube.com.
// Anything else returns ErrInvalidURL.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	var id string
	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
		id = idFromYouTubePath(u)
	default:
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidURL, host)
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, raw)
	}
	return id, nil
}

func idFromYouTubePath(u *url.URL) string {
	if u.Path == "/watch" {
		return u.Query().Get("v")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return ""
	}
	switch parts[0] {
	case "shorts", "embed", "live", "v":
		return parts[1]
	default:
		return ""
	}
}
