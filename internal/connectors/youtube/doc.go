// Package youtube fetches video metadata and top-level comments from the
// YouTube Data API v3.
//
// Requests are authenticated with an API key, paced by a token-bucket rate
// limiter, and never retried. API failures are classified into the domain
// error taxonomy:
//   - videoNotFound, commentsDisabled or HTTP 404 report domain.ErrNotFound
//   - quota and rate limit reasons or HTTP 429 report domain.ErrQuotaExceeded
//   - deadlines and network timeouts report domain.ErrTimeout
//   - anything else reports domain.ErrUpstream
package youtube
