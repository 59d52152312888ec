// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/exprun/lib/process"
)

// runFields are the gh run list/view JSON fields decoded into ghRun.
const runFields = "databaseId,displayTitle,headBranch,headSha,status,conclusion,createdAt,url,workflowName"

// GHBackend drives GitHub Actions through the gh CLI. It inherits the
// developer's gh login and, without Repository, the repository gh
// infers from the working directory.
type GHBackend struct {
	// Runner executes gh. Typically process.Exec rooted at the
	// repository checkout.
	Runner process.Runner

	// Repository is an optional "owner/name" passed as --repo.
	Repository string

	// Binary overrides the gh executable name.
	Binary string
}

// ghRun is the shape of one run in gh's --json output.
type ghRun struct {
	DatabaseID   int64     `json:"databaseId"`
	DisplayTitle string    `json:"displayTitle"`
	HeadBranch   string    `json:"headBranch"`
	HeadSHA      string    `json:"headSha"`
	Status       string    `json:"status"`
	Conclusion   string    `json:"conclusion"`
	CreatedAt    time.Time `json:"createdAt"`
	URL          string    `json:"url"`
	WorkflowName string    `json:"workflowName"`
}

func (r ghRun) toRun(workflowName string) Run {
	if workflowName == "" {
		workflowName = r.WorkflowName
	}
	return Run{
		ID:         r.DatabaseID,
		Workflow:   workflowName,
		Branch:     r.HeadBranch,
		Commit:     r.HeadSHA,
		Title:      r.DisplayTitle,
		Status:     statusFromGitHub(r.Status, r.Conclusion),
		Conclusion: r.Conclusion,
		CreatedAt:  r.CreatedAt,
		URL:        r.URL,
	}
}

// Dispatch runs "gh workflow run <workflow> --ref <ref> -f KEY=VALUE...".
func (b *GHBackend) Dispatch(ctx context.Context, workflowName, ref string, inputs Inputs) error {
	args := []string{"workflow", "run", workflowName, "--ref", ref}
	for _, key := range inputs.Keys() {
		args = append(args, "-f", key+"="+inputs[key])
	}
	_, err := b.run(ctx, args...)
	return err
}

// LatestRun runs "gh run list --workflow <workflow> --branch <branch>
// --commit <sha> --event workflow_dispatch --limit 1" and returns the
// single result.
func (b *GHBackend) LatestRun(ctx context.Context, workflowName, branch, commit string) (Run, error) {
	output, err := b.run(ctx, "run", "list",
		"--workflow", workflowName,
		"--branch", branch,
		"--commit", commit,
		"--event", "workflow_dispatch",
		"--limit", "1",
		"--json", runFields)
	if err != nil {
		return Run{}, err
	}
	var runs []ghRun
	if err := json.Unmarshal([]byte(output), &runs); err != nil {
		return Run{}, fmt.Errorf("decoding gh run list output: %w", err)
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0].toRun(workflowName), nil
}

// RunStatus runs "gh run view <id> --json status,conclusion".
func (b *GHBackend) RunStatus(ctx context.Context, runID int64) (Status, error) {
	output, err := b.run(ctx, "run", "view", strconv.FormatInt(runID, 10), "--json", "status,conclusion")
	if err != nil {
		return "", err
	}
	var view struct {
		Status     string `json:"status"`
		Conclusion string `json:"conclusion"`
	}
	if err := json.Unmarshal([]byte(output), &view); err != nil {
		return "", fmt.Errorf("decoding gh run view output: %w", err)
	}
	return statusFromGitHub(view.Status, view.Conclusion), nil
}

// CurrentUser runs "gh api user" and returns the login.
func (b *GHBackend) CurrentUser(ctx context.Context) (string, error) {
	result, err := b.exec(ctx, "api", "user")
	if err != nil {
		return "", err
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal([]byte(result), &user); err != nil {
		return "", fmt.Errorf("decoding gh api user output: %w", err)
	}
	if user.Login == "" {
		return "", fmt.Errorf("gh api user returned no login")
	}
	return user.Login, nil
}

// ListRuns runs "gh run list --workflow <workflow> --user <user>
// --limit <limit>".
func (b *GHBackend) ListRuns(ctx context.Context, workflowName, user string, limit int) ([]Run, error) {
	output, err := b.run(ctx, "run", "list",
		"--workflow", workflowName,
		"--user", user,
		"--limit", strconv.Itoa(limit),
		"--json", runFields)
	if err != nil {
		return nil, err
	}
	var runs []ghRun
	if err := json.Unmarshal([]byte(output), &runs); err != nil {
		return nil, fmt.Errorf("decoding gh run list output: %w", err)
	}
	result := make([]Run, 0, len(runs))
	for _, run := range runs {
		result = append(result, run.toRun(workflowName))
	}
	return result, nil
}

// run executes a gh subcommand scoped to Repository.
func (b *GHBackend) run(ctx context.Context, args ...string) (string, error) {
	if b.Repository != "" {
		args = append(args, "--repo", b.Repository)
	}
	return b.exec(ctx, args...)
}

// exec executes gh and returns stdout, turning a non-zero exit into an
// error.
func (b *GHBackend) exec(ctx context.Context, args ...string) (string, error) {
	binary := b.Binary
	if binary == "" {
		binary = "gh"
	}
	result, err := b.Runner.Run(ctx, binary, args...)
	if err != nil {
		return "", fmt.Errorf("running %s %s: %w", binary, args[0], err)
	}
	if !result.Success() {
		return "", fmt.Errorf("%s %s %s: %s", binary, args[0], args[1], process.Describe(result))
	}
	return result.Stdout, nil
}
