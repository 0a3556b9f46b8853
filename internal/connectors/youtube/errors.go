package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// YouTube API error reasons with a specific meaning.
const (
	ReasonVideoNotFound      = "videoNotFound"
	ReasonCommentsDisabled   = "commentsDisabled"
	ReasonQuotaExceeded      = "quotaExceeded"
	ReasonRateLimitExceeded  = "rateLimitExceeded"
	ReasonDailyLimitExceeded = "dailyLimitExceeded"
)

// hasReason reports whether any error item carries one of the reasons.
func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		for _, r := range reasons {
			if item.Reason == r {
				return true
			}
		}
	}
	return false
}

// IsNotFound returns true if the error indicates a missing video or
// disabled comments.
func IsNotFound(err error) bool {
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound ||
			hasReason(gerr, ReasonVideoNotFound, ReasonCommentsDisabled)
	}
	return false
}

// IsQuotaExceeded returns true if the error indicates quota or rate limiting.
func IsQuotaExceeded(err error) bool {
	if errors.Is(err, domain.ErrQuotaExceeded) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests ||
			hasReason(gerr, ReasonQuotaExceeded, ReasonRateLimitExceeded, ReasonDailyLimitExceeded)
	}
	return false
}

// IsTimeout returns true if the error is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, domain.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// WrapError converts a YouTube API error to a domain error. The original
// error stays in the chain.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsTimeout(err):
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case IsNotFound(err):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case IsQuotaExceeded(err):
		return fmt.Errorf("%w: %w", domain.ErrQuotaExceeded, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
}

// retryAfter returns the Retry-After delay carried by an API error, if any.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
