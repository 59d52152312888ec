// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
)

// quota follows the X-RateLimit-Remaining and X-RateLimit-Reset headers
// of every response. A long wait polls one run every few seconds for up
// to half an hour on the developer's own token, so once the quota is
// spent the next request is held until the window resets instead of
// failing the wait.
type quota struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	observed  bool

	clock  clock.Clock
	logger *slog.Logger
}

func newQuota(clk clock.Clock, logger *slog.Logger) *quota {
	return &quota{clock: clk, logger: logger}
}

// observe records the quota headers of a response. Responses without
// them (some 304s, errors from proxies) leave the state unchanged.
func (q *quota) observe(header http.Header) {
	remaining, err := strconv.Atoi(header.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}
	resetUnix, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.remaining = remaining
	q.reset = time.Unix(resetUnix, 0)
	q.observed = true
}

// await holds a request for subject until the quota window resets, if
// the last response reported it exhausted.
func (q *quota) await(ctx context.Context, subject string) error {
	q.mu.Lock()
	exhausted := q.observed && q.remaining <= 0
	delay := q.reset.Sub(q.clock.Now())
	q.mu.Unlock()

	if !exhausted || delay <= 0 {
		return nil
	}
	q.logger.Warn("GitHub rate limit exhausted, holding request until reset",
		"subject", subject, "delay", delay)
	return q.sleep(ctx, delay)
}

// backoff returns how long to wait before retrying a rate-limited
// request: Retry-After for secondary limits, else the time until
// X-RateLimit-Reset. Zero means the response carried no usable hint.
func (q *quota) backoff(header http.Header) time.Duration {
	if seconds, err := strconv.Atoi(header.Get("Retry-After")); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if resetUnix, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if delay := time.Unix(resetUnix, 0).Sub(q.clock.Now()); delay > 0 {
			return delay
		}
	}
	return 0
}

func (q *quota) sleep(ctx context.Context, delay time.Duration) error {
	select {
	case <-q.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rateLimited reports whether a response is a rate limit rejection.
// Secondary limits answer 429; the primary limit answers 403, which
// GitHub also uses for permission errors, so the body decides.
func rateLimited(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	if statusCode != http.StatusForbidden {
		return false
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "abuse detection")
}
