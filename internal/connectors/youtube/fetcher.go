package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.CommentFetcher = (*Fetcher)(nil)

// MaxPageSize is the largest page the commentThreads endpoint returns.
const MaxPageSize = 100

// Config configures the fetcher.
type Config struct {
	// APIKey is the YouTube Data API key.
	APIKey string

	// PageSize is the number of comment threads requested per page.
	PageSize int

	// RateLimit paces requests.
	RateLimit RateLimitConfig

	// Endpoint overrides the API base URL.
	Endpoint string

	// HTTPClient replaces the default transport. The library does not attach
	// the API key to a caller-supplied client.
	HTTPClient *http.Client
}

// ConfigFromSettings maps settings to fetcher configuration.
func ConfigFromSettings(s domain.YouTubeSettings) Config {
	return Config{
		APIKey:    s.APIKey,
		PageSize:  s.PageSize,
		RateLimit: RateLimitConfig{RequestsPerSecond: s.RequestsPerSecond},
	}
}

// Fetcher retrieves video metadata and top-level comments.
type Fetcher struct {
	service  *youtube.Service
	limiter  *RateLimiter
	pageSize int
}

// NewFetcher creates a fetcher backed by the YouTube Data API.
func NewFetcher(ctx context.Context, cfg Config) (*Fetcher, error) {
	if cfg.APIKey == "" && cfg.HTTPClient == nil {
		return nil, fmt.Errorf("%w: YouTube API key required", domain.ErrInvalidInput)
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create YouTube service: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &Fetcher{
		service:  service,
		limiter:  NewRateLimiter(cfg.RateLimit),
		pageSize: pageSize,
	}, nil
}

// Fetch returns the video snapshot and up to limit top-level comments in
// API order. A limit of zero or less fetches metadata only.
func (f *Fetcher) Fetch(ctx context.Context, videoID string, limit int) (*domain.VideoInfo, []domain.Comment, error) {
	video, err := f.fetchVideo(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}

	comments, err := f.fetchComments(ctx, videoID, limit)
	if err != nil {
		return nil, nil, err
	}
	return video, comments, nil
}

func (f *Fetcher) fetchVideo(ctx context.Context, videoID string) (*domain.VideoInfo, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, f.classify("videos.list", err)
	}
	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, fmt.Errorf("%w: video %s", domain.ErrNotFound, videoID)
	}

	item := resp.Items[0]
	if item.Snippet == nil {
		return nil, fmt.Errorf("%w: video %s has no snippet", domain.ErrUpstream, videoID)
	}

	info := &domain.VideoInfo{
		ID:           videoID,
		Title:        item.Snippet.Title,
		Channel:      item.Snippet.ChannelTitle,
		URL:          domain.WatchURL(videoID),
		ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails, videoID),
		PublishedAt:  parseTime(item.Snippet.PublishedAt),
	}
	if stats := item.Statistics; stats != nil {
		info.ViewCount = stats.ViewCount
		info.LikeCount = stats.LikeCount
		info.CommentCount = stats.CommentCount
	}
	return info, nil
}

func (f *Fetcher) fetchComments(ctx context.Context, videoID string, limit int) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0, min(max(limit, 0), 1000))
	pageToken := ""

	for len(comments) < limit {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		pageSize := min(f.pageSize, limit-len(comments))
		call := f.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(int64(pageSize)).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, f.classify("commentThreads.list", err)
		}

		for _, thread := range resp.Items {
			c, err := toComment(thread)
			if err != nil {
				return nil, err
			}
			comments = append(comments, c)
			if len(comments) == limit {
				break
			}
		}
		logger.Debug("Fetched %d comments (page of %d)", len(comments), len(resp.Items))

		pageToken = resp.NextPageToken
		if pageToken == "" || len(resp.Items) == 0 {
			break
		}
	}
	return comments, nil
}

// classify maps an API error to the domain taxonomy and starts a backoff on
// quota errors.
func (f *Fetcher) classify(op string, err error) error {
	wrapped := WrapError(err)
	if errors.Is(wrapped, domain.ErrQuotaExceeded) {
		f.limiter.RecordQuotaError(retryAfter(err))
	}
	return fmt.Errorf("%s: %w", op, wrapped)
}

func toComment(thread *youtube.CommentThread) (domain.Comment, error) {
	if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil ||
		thread.Snippet.TopLevelComment.Snippet == nil {
		return domain.Comment{}, fmt.Errorf("%w: comment thread without snippet", domain.ErrUpstream)
	}
	s := thread.Snippet.TopLevelComment.Snippet
	text := s.TextOriginal
	if text == "" {
		text = s.TextDisplay
	}
	return domain.Comment{
		Author:      s.AuthorDisplayName,
		Text:        text,
		LikeCount:   s.LikeCount,
		PublishedAt: parseTime(s.PublishedAt),
	}, nil
}

// thumbnailURL prefers the API's high-quality thumbnail.
func thumbnailURL(t *youtube.ThumbnailDetails, videoID string) string {
	if t != nil {
		for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
			if th != nil && th.Url != "" {
				return th.Url
			}
		}
	}
	return domain.ThumbnailURL(videoID, domain.ThumbnailHigh)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
