// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
)

// newTestClient creates a Client backed by the given httptest.Server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		HTTPClient: server.Client(),
		Clock:      clock.Real(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClient_HTTPSEnforcement(t *testing.T) {
	_, err := NewClient(Config{
		BaseURL: "http://api.github.com",
		Token:   "test",
	})
	if err == nil {
		t.Fatal("expected error for HTTP URL")
	}
	if got := err.Error(); got != `github: API client requires HTTPS (got "http://api.github.com")` {
		t.Errorf("unexpected error: %s", got)
	}
}

func TestNewClient_NoToken(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://api.github.com"})
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client, err := NewClient(Config{Token: "test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultBaseURL)
	}
}

func TestClient_Headers(t *testing.T) {
	var receivedAuth, receivedAccept, receivedVersion string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedAuth = request.Header.Get("Authorization")
		receivedAccept = request.Header.Get("Accept")
		receivedVersion = request.Header.Get("X-GitHub-Api-Version")
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"login":"octocat","id":1}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.GetAuthenticatedUser(context.Background()); err != nil {
		t.Fatalf("GetAuthenticatedUser: %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if receivedAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q, want %q", receivedAccept, "application/vnd.github+json")
	}
	if receivedVersion != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q, want %q", receivedVersion, "2022-11-28")
	}
}

func TestClient_RateLimitBackoff(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	requestCount := 0
	resetTime := fakeClock.Now().Add(30 * time.Second)

	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount++
		if requestCount == 1 {
			writer.Header().Set("X-RateLimit-Remaining", "0")
			writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
			writer.Header().Set("Retry-After", "30")
			writer.WriteHeader(http.StatusForbidden)
			json.NewEncoder(writer).Encode(map[string]string{
				"message": "API rate limit exceeded",
			})
			return
		}
		writer.Header().Set("X-RateLimit-Remaining", "4999")
		writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Add(time.Hour).Unix(), 10))
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":42,"status":"in_progress"}`))
	}))
	defer server.Close()

	var logs bytes.Buffer
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		HTTPClient: server.Client(),
		Clock:      fakeClock,
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	done := make(chan error, 1)
	var run *WorkflowRun
	go func() {
		var requestErr error
		run, requestErr = client.GetWorkflowRun(context.Background(), "owner", "repo", 42)
		done <- requestErr
	}()

	// The backoff registers a clock.After; advance past Retry-After.
	fakeClock.WaitForTimers(1)
	fakeClock.Advance(31 * time.Second)

	if err := <-done; err != nil {
		t.Fatalf("GetWorkflowRun: %v", err)
	}
	if requestCount != 2 {
		t.Errorf("expected 2 requests (rate limited + retry), got %d", requestCount)
	}
	if run == nil || run.ID != 42 {
		t.Errorf("expected run 42, got %+v", run)
	}
	if !strings.Contains(logs.String(), `subject="run 42"`) {
		t.Errorf("backoff log does not name the run:\n%s", logs.String())
	}
}

func TestClient_HoldsRequestWhenQuotaExhausted(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	resetTime := fakeClock.Now().Add(time.Minute)
	requestCount := 0

	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount++
		writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(1-requestCount))
		writer.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
		writer.Write([]byte(`{"id":5,"status":"in_progress"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		HTTPClient: server.Client(),
		Clock:      fakeClock,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// The first response reports the quota spent.
	if _, err := client.GetWorkflowRun(context.Background(), "owner", "repo", 5); err != nil {
		t.Fatalf("first GetWorkflowRun: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, requestErr := client.GetWorkflowRun(context.Background(), "owner", "repo", 5)
		done <- requestErr
	}()

	fakeClock.WaitForTimers(1)
	if requestCount != 1 {
		t.Fatalf("request sent before the quota reset (count %d)", requestCount)
	}
	fakeClock.Advance(time.Minute)
	if err := <-done; err != nil {
		t.Fatalf("second GetWorkflowRun: %v", err)
	}
	if requestCount != 2 {
		t.Errorf("requestCount = %d, want 2", requestCount)
	}
}

func TestClient_ETagCaching(t *testing.T) {
	requestCount := 0
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestCount++
		if request.Header.Get("If-None-Match") == `"etag-123"` {
			writer.WriteHeader(http.StatusNotModified)
			return
		}
		writer.Header().Set("ETag", `"etag-123"`)
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"id":7,"status":"queued"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	ctx := context.Background()

	// Polling the same run twice: the second read is served from cache.
	for attempt := 1; attempt <= 2; attempt++ {
		run, err := client.GetWorkflowRun(ctx, "owner", "repo", 7)
		if err != nil {
			t.Fatalf("GetWorkflowRun attempt %d: %v", attempt, err)
		}
		if run.Status != "queued" {
			t.Errorf("attempt %d: status = %q, want queued", attempt, run.Status)
		}
	}
	if requestCount != 2 {
		t.Errorf("expected 2 HTTP requests, got %d", requestCount)
	}
}

func TestClient_ConditionalReadsOnlyForRuns(t *testing.T) {
	var conditional []string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Header.Get("If-None-Match") != "" {
			conditional = append(conditional, request.URL.Path)
		}
		writer.Header().Set("ETag", `"etag-1"`)
		switch request.URL.Path {
		case "/user":
			writer.Write([]byte(`{"login":"octocat"}`))
		default:
			writer.Write([]byte(`{"id":8,"status":"queued"}`))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	ctx := context.Background()
	for range 2 {
		if _, err := client.GetAuthenticatedUser(ctx); err != nil {
			t.Fatalf("GetAuthenticatedUser: %v", err)
		}
		if _, err := client.GetWorkflowRun(ctx, "owner", "repo", 8); err != nil {
			t.Fatalf("GetWorkflowRun: %v", err)
		}
	}
	if len(conditional) != 1 || conditional[0] != "/repos/owner/repo/actions/runs/8" {
		t.Errorf("conditional requests = %q, want only the second run read", conditional)
	}
}

func TestClient_ErrorParsing(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]any{
			"message":           "Not Found",
			"documentation_url": "https://docs.github.com/rest",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.GetWorkflowRun(context.Background(), "owner", "repo", 999)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !IsNotFound(err) {
		t.Errorf("expected IsNotFound, got: %v", err)
	}
}
