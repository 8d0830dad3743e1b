package fetcher

import (
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const (
	// UserAgent identifies the brief against upstream APIs
	UserAgent = "daily-brief/1.0"

	defaultTimeout          = 10 * time.Second
	defaultRetryCount       = 2
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 8 * time.Second
)

// NewHTTPClient creates an HTTP client with a bounded timeout, retry logic
// with exponential backoff, and an optional per-API rate limiter that gates
// every outgoing request.
func NewHTTPClient(baseURL string, limiter *rate.Limiter) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", UserAgent).
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	if limiter != nil {
		client.AddRequestMiddleware(func(c *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx), rate limit (429) and request timeout (408)
	switch {
	case r.StatusCode() >= 500:
		return true
	case r.StatusCode() == 429:
		return true
	case r.StatusCode() == 408:
		return true
	}

	return false
}

// retryHook logs retry attempts for observability
func retryHook(r *resty.Response, err error) {
	evt := log.Debug().Str("url", r.Request.URL).Int("attempt", r.Request.Attempt)
	if err != nil {
		evt.Err(err).Msg("retrying request after error")
		return
	}
	evt.Int("status_code", r.StatusCode()).Msg("retrying request after status code")
}
