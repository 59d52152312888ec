// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
)

func TestRateLimited(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		expected   bool
	}{
		{"secondary limit", 429, `{"message":"Too Many Requests"}`, true},
		{"primary limit", 403, `{"message":"API rate limit exceeded for user ID 1"}`, true},
		{"abuse detection", 403, `{"message":"You have triggered an abuse detection mechanism"}`, true},
		{"permission denied", 403, `{"message":"Resource not accessible by personal access token"}`, false},
		{"not found", 404, `{"message":"rate limit"}`, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := rateLimited(test.statusCode, []byte(test.body)); got != test.expected {
				t.Errorf("rateLimited = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestQuotaBackoff(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := newQuota(fakeClock, nil)

	retryAfter := http.Header{}
	retryAfter.Set("Retry-After", "45")
	if got := q.backoff(retryAfter); got != 45*time.Second {
		t.Errorf("Retry-After backoff = %v, want 45s", got)
	}

	reset := http.Header{}
	reset.Set("X-RateLimit-Reset", strconv.FormatInt(fakeClock.Now().Add(2*time.Minute).Unix(), 10))
	if got := q.backoff(reset); got != 2*time.Minute {
		t.Errorf("reset backoff = %v, want 2m", got)
	}

	if got := q.backoff(http.Header{}); got != 0 {
		t.Errorf("backoff without hints = %v, want 0", got)
	}
}

func TestQuotaObserveIgnoresPartialHeaders(t *testing.T) {
	q := newQuota(clock.Fake(time.Unix(0, 0)), nil)
	header := http.Header{}
	header.Set("X-RateLimit-Remaining", "0")
	q.observe(header)
	if q.observed {
		t.Error("observe recorded a quota without a reset time")
	}
}
