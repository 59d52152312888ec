// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
)

// ErrNoRuns is returned by Backend.LatestRun when no dispatched run of
// the workflow matches the branch and commit. Right after a dispatch it
// usually means the run is not listed yet.
var ErrNoRuns = errors.New("no workflow runs found")

// Backend is the remote CI system.
type Backend interface {
	// Dispatch triggers workflow on ref with inputs. A nil error means
	// the remote system accepted the request.
	Dispatch(ctx context.Context, workflow, ref string, inputs Inputs) error

	// LatestRun returns the most recent workflow_dispatch run of
	// workflow on branch for commit.
	LatestRun(ctx context.Context, workflow, branch, commit string) (Run, error)

	// RunStatus queries the current status of a run.
	RunStatus(ctx context.Context, runID int64) (Status, error)

	// CurrentUser returns the login of the authenticated user.
	CurrentUser(ctx context.Context) (string, error)

	// ListRuns returns up to limit recent runs of workflow triggered
	// by user, newest first.
	ListRuns(ctx context.Context, workflow, user string, limit int) ([]Run, error)
}
