// Package remote fetches JSON payloads from the public demo APIs.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const userAgent = "backoffice/1.0"

// Fetcher retrieves the raw body served at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// FiberFetcher issues GET requests through Fiber's fasthttp client agent.
// Timeout bounds every request; zero leaves it to the context deadline.
type FiberFetcher struct {
	Timeout time.Duration
}

// NewFiberFetcher returns a fetcher with the given per-request timeout.
func NewFiberFetcher(timeout time.Duration) *FiberFetcher {
	return &FiberFetcher{Timeout: timeout}
}

// Fetch performs the request. The agent is not context aware, so the
// remaining context deadline is folded into the request timeout.
func (f *FiberFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := f.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Get(url).
		UserAgent(userAgent).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout > 0 {
		agent = agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("GET %s: %w", url, errors.Join(errs...))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &StatusError{URL: url, Code: code}
	}
	return body, nil
}

var _ Fetcher = (*FiberFetcher)(nil)
