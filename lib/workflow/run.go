// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "time"

// Status is the lifecycle state of a workflow run as seen by exprun.
type Status string

const (
	// StatusPending is a run that is queued or waiting for a runner.
	StatusPending Status = "pending"
	// StatusRunning is a run that has started and not finished.
	StatusRunning Status = "running"
	// StatusSucceeded is a run that completed successfully.
	StatusSucceeded Status = "succeeded"
	// StatusFailed is a run that completed unsuccessfully, including
	// cancellation.
	StatusFailed Status = "failed"
	// StatusTimedOut is assigned locally when polling gives up.
	StatusTimedOut Status = "timed_out"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// Run is one execution of a remote workflow. exprun never changes a
// run; the remote system owns its state.
type Run struct {
	ID         int64     `json:"id"`
	Workflow   string    `json:"workflow"`
	Branch     string    `json:"branch"`
	Commit     string    `json:"commit,omitempty"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	Conclusion string    `json:"conclusion,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	URL        string    `json:"url"`
}

// statusFromGitHub maps a GitHub Actions status/conclusion pair onto
// Status. Both the REST API and gh report the same lowercase values.
func statusFromGitHub(status, conclusion string) Status {
	switch status {
	case "completed":
		switch conclusion {
		case "success", "neutral":
			return StatusSucceeded
		default:
			// failure, cancelled, timed_out, startup_failure,
			// action_required, skipped, stale.
			return StatusFailed
		}
	case "in_progress":
		return StatusRunning
	case "queued", "waiting", "requested", "pending":
		return StatusPending
	default:
		return StatusRunning
	}
}
