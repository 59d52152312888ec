// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bureau-foundation/exprun/lib/clock"
	"github.com/bureau-foundation/exprun/lib/netutil"
)

// githubAPIVersion is the GitHub REST API version header. Pinning the
// version ensures consistent behavior as GitHub evolves the API.
const githubAPIVersion = "2022-11-28"

// defaultBaseURL is the base URL for the public GitHub API.
const defaultBaseURL = "https://api.github.com"

// Config holds configuration for creating a GitHub API Client.
type Config struct {
	// BaseURL is the root URL for API requests. Defaults to
	// "https://api.github.com". Must use HTTPS. GitHub Enterprise
	// servers use "https://<host>/api/v3".
	BaseURL string

	// Token is a personal access token or fine-grained token with
	// actions:write on the target repository. Required.
	Token string

	// HTTPClient is used for all HTTP requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Clock provides time operations. Defaults to clock.Real().
	// Inject clock.Fake() in tests for deterministic behavior.
	Clock clock.Clock

	// Logger receives rate limit waits. Defaults to a logger that
	// discards output.
	Logger *slog.Logger
}

// Client is a typed client for the GitHub Actions REST endpoints exprun
// drives: workflow dispatch, run listing, single-run polling, and the
// authenticated user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authHeader string
	quota      *quota
	runs       *runCache
	logger     *slog.Logger
}

// NewClient creates a GitHub API client from the given configuration.
// Returns an error if no token is configured or the base URL is not
// HTTPS.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}
	if config.Token == "" {
		return nil, fmt.Errorf("github: no authentication configured (set Token)")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		authHeader: "Bearer " + config.Token,
		quota:      newQuota(clk, logger),
		runs:       newRunCache(),
		logger:     logger,
	}, nil
}

// call is one API request. subject names what the request is about
// ("workflow build.yaml", "run 42") in logs.
type call struct {
	method      string
	url         string
	body        any
	ifNoneMatch string
	subject     string
}

// reply is a response that was not an error: 2xx, or 304 to a
// conditional request.
type reply struct {
	statusCode int
	header     http.Header
	body       []byte
}

// do sends c, backing off and retrying once if GitHub rate limits it.
// Non-2xx responses other than 304 become *APIError.
func (client *Client) do(ctx context.Context, c call) (reply, error) {
	for attempt := 1; ; attempt++ {
		r, err := client.send(ctx, c)
		if err != nil {
			return reply{}, err
		}
		if r.statusCode == http.StatusNotModified || (r.statusCode >= 200 && r.statusCode < 300) {
			return r, nil
		}

		if attempt == 1 && rateLimited(r.statusCode, r.body) {
			if delay := client.quota.backoff(r.header); delay > 0 {
				client.logger.Info("rate limited by GitHub, backing off",
					"subject", c.subject,
					"method", c.method,
					"delay", delay,
				)
				if err := client.quota.sleep(ctx, delay); err != nil {
					return reply{}, err
				}
				continue
			}
		}
		return reply{}, parseAPIError(r.statusCode, r.body)
	}
}

// send performs one HTTP exchange and reads the bounded body.
func (client *Client) send(ctx context.Context, c call) (reply, error) {
	if err := client.quota.await(ctx, c.subject); err != nil {
		return reply{}, err
	}

	var bodyReader io.Reader
	if c.body != nil {
		encoded, err := json.Marshal(c.body)
		if err != nil {
			return reply{}, fmt.Errorf("github: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, c.method, c.url, bodyReader)
	if err != nil {
		return reply{}, fmt.Errorf("github: creating request: %w", err)
	}
	request.Header.Set("Authorization", client.authHeader)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if c.body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.ifNoneMatch != "" {
		request.Header.Set("If-None-Match", c.ifNoneMatch)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return reply{}, fmt.Errorf("github: %s %s: %w", c.method, c.url, err)
	}
	defer response.Body.Close()
	client.quota.observe(response.Header)

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return reply{}, fmt.Errorf("github: reading response body: %w", err)
	}
	return reply{statusCode: response.StatusCode, header: response.Header, body: body}, nil
}

// get decodes a JSON object from path.
func (client *Client) get(ctx context.Context, path, subject string, result any) error {
	r, err := client.do(ctx, call{method: http.MethodGet, url: client.baseURL + path, subject: subject})
	if err != nil {
		return err
	}
	return json.Unmarshal(r.body, result)
}

// list creates a PageIterator for a paginated GET endpoint whose pages
// are decoded by decode.
func list[T any](client *Client, path, subject string, decode func([]byte) ([]T, error)) *PageIterator[T] {
	return &PageIterator[T]{
		client:  client,
		nextURL: client.baseURL + path,
		subject: subject,
		decode:  decode,
	}
}
