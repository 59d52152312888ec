// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/exprun/lib/github"
)

// RESTBackend drives GitHub Actions through the REST API.
type RESTBackend struct {
	Client *github.Client
	Owner  string
	Repo   string
}

// Dispatch posts a workflow_dispatch event.
func (b *RESTBackend) Dispatch(ctx context.Context, workflowName, ref string, inputs Inputs) error {
	return b.Client.DispatchWorkflow(ctx, b.Owner, b.Repo, workflowName, github.DispatchWorkflowRequest{
		Ref:    ref,
		Inputs: inputs,
	})
}

// LatestRun returns the newest workflow_dispatch run of commit on
// branch. A 404 from the listing is reported as ErrNoRuns, the same as
// an empty page.
func (b *RESTBackend) LatestRun(ctx context.Context, workflowName, branch, commit string) (Run, error) {
	runs, err := b.Client.ListWorkflowRuns(b.Owner, b.Repo, workflowName, github.ListWorkflowRunsOptions{
		Branch:  branch,
		Event:   "workflow_dispatch",
		HeadSHA: commit,
		PerPage: 1,
	}).Next(ctx)
	if github.IsNotFound(err) {
		return Run{}, fmt.Errorf("%w: %v", ErrNoRuns, err)
	}
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return fromWorkflowRun(workflowName, runs[0]), nil
}

// RunStatus fetches the run and maps its status and conclusion.
func (b *RESTBackend) RunStatus(ctx context.Context, runID int64) (Status, error) {
	run, err := b.Client.GetWorkflowRun(ctx, b.Owner, b.Repo, runID)
	if err != nil {
		return "", err
	}
	return statusFromGitHub(run.Status, run.Conclusion), nil
}

// CurrentUser returns the login the token belongs to.
func (b *RESTBackend) CurrentUser(ctx context.Context) (string, error) {
	user, err := b.Client.GetAuthenticatedUser(ctx)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}

// ListRuns returns up to limit runs of workflowName triggered by user.
func (b *RESTBackend) ListRuns(ctx context.Context, workflowName, user string, limit int) ([]Run, error) {
	perPage := limit
	if perPage > 100 {
		perPage = 100
	}
	iterator := b.Client.ListWorkflowRuns(b.Owner, b.Repo, workflowName, github.ListWorkflowRunsOptions{
		Actor:   user,
		PerPage: perPage,
	})

	result := make([]Run, 0, limit)
	for len(result) < limit {
		page, err := iterator.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, run := range page {
			if len(result) == limit {
				break
			}
			result = append(result, fromWorkflowRun(workflowName, run))
		}
	}
	return result, nil
}

func fromWorkflowRun(workflowName string, run github.WorkflowRun) Run {
	return Run{
		ID:         run.ID,
		Workflow:   workflowName,
		Branch:     run.HeadBranch,
		Commit:     run.HeadSHA,
		Title:      run.DisplayTitle,
		Status:     statusFromGitHub(run.Status, run.Conclusion),
		Conclusion: run.Conclusion,
		CreatedAt:  run.CreatedAt,
		URL:        run.HTMLURL,
	}
}
