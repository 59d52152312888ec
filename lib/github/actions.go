// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DispatchWorkflowRequest contains the fields for triggering a GitHub
// Actions workflow.
type DispatchWorkflowRequest struct {
	// Ref is the git reference to run the workflow on (branch, tag, or SHA).
	Ref string `json:"ref"`

	// Inputs are the workflow input parameters. Keys must match the
	// workflow's workflow_dispatch input definitions.
	Inputs map[string]string `json:"inputs,omitempty"`
}

// DispatchWorkflow triggers a GitHub Actions workflow via the
// workflow_dispatch event. The workflowID can be the workflow file name
// (e.g., "ci.yml") or the workflow's numeric ID.
//
// GitHub returns 204 No Content and no run ID. The resulting run must
// be discovered by listing runs, and the listing lags the dispatch by a
// few seconds.
func (client *Client) DispatchWorkflow(ctx context.Context, owner, repo, workflowID string, request DispatchWorkflowRequest) error {
	path := fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/dispatches", owner, repo, url.PathEscape(workflowID))

	_, err := client.do(ctx, call{
		method:  http.MethodPost,
		url:     client.baseURL + path,
		body:    request,
		subject: "workflow " + workflowID,
	})
	if err != nil {
		return fmt.Errorf("dispatching workflow %s in %s/%s: %w", workflowID, owner, repo, err)
	}
	return nil
}

// GetWorkflowRun retrieves a single workflow run by ID. Repeated reads
// of the same run are conditional: while the run is unchanged GitHub
// answers 304 and the previous state is returned without spending rate
// limit quota.
func (client *Client) GetWorkflowRun(ctx context.Context, owner, repo string, runID int64) (*WorkflowRun, error) {
	path := fmt.Sprintf("/repos/%s/%s/actions/runs/%d", owner, repo, runID)
	c := call{
		method:  http.MethodGet,
		url:     client.baseURL + path,
		subject: fmt.Sprintf("run %d", runID),
	}
	cached, haveCached := client.runs.lookup(runID)
	if haveCached {
		c.ifNoneMatch = cached.etag
	}

	r, err := client.do(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("getting workflow run %d in %s/%s: %w", runID, owner, repo, err)
	}
	if r.statusCode == http.StatusNotModified {
		if !haveCached {
			return nil, fmt.Errorf("getting workflow run %d in %s/%s: 304 Not Modified for an uncached run", runID, owner, repo)
		}
		run := cached.run
		return &run, nil
	}

	var run WorkflowRun
	if err := json.Unmarshal(r.body, &run); err != nil {
		return nil, fmt.Errorf("decoding workflow run %d: %w", runID, err)
	}
	client.runs.store(runID, r.header.Get("ETag"), run)
	return &run, nil
}

// ListWorkflowRunsOptions filters a workflow run listing. Zero values
// are omitted from the query.
type ListWorkflowRunsOptions struct {
	// Branch restricts runs to those whose head branch matches.
	Branch string

	// Actor restricts runs to those triggered by this login.
	Actor string

	// Event restricts runs to a trigger event, e.g. "workflow_dispatch".
	Event string

	// HeadSHA restricts runs to those of one commit.
	HeadSHA string

	// PerPage is the page size (GitHub caps it at 100).
	PerPage int
}

func (options ListWorkflowRunsOptions) queryParams() string {
	values := url.Values{}
	if options.Branch != "" {
		values.Set("branch", options.Branch)
	}
	if options.Actor != "" {
		values.Set("actor", options.Actor)
	}
	if options.Event != "" {
		values.Set("event", options.Event)
	}
	if options.HeadSHA != "" {
		values.Set("head_sha", options.HeadSHA)
	}
	if options.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(options.PerPage))
	}
	return values.Encode()
}

// ListWorkflowRuns returns an iterator over the runs of one workflow,
// newest first.
func (client *Client) ListWorkflowRuns(owner, repo, workflowID string, options ListWorkflowRunsOptions) *PageIterator[WorkflowRun] {
	path := fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/runs", owner, repo, url.PathEscape(workflowID))
	if query := options.queryParams(); query != "" {
		path += "?" + query
	}
	return list(client, path, "runs of workflow "+workflowID, decodeWorkflowRuns)
}

// decodeWorkflowRuns unwraps the {"total_count":N,"workflow_runs":[...]}
// envelope the run listing endpoints return.
func decodeWorkflowRuns(body []byte) ([]WorkflowRun, error) {
	var envelope struct {
		WorkflowRuns []WorkflowRun `json:"workflow_runs"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding workflow runs: %w", err)
	}
	return envelope.WorkflowRuns, nil
}
