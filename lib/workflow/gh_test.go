// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
	"github.com/bureau-foundation/exprun/lib/process"
)

// scriptedRunner answers each invocation by matching the joined
// argument list against prefixes.
type scriptedRunner struct {
	responses map[string]process.Result
	calls     []string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) (process.Result, error) {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	for prefix, result := range r.responses {
		if strings.HasPrefix(call, prefix) {
			return result, nil
		}
	}
	return process.Result{}, errors.New("unexpected command: " + call)
}

func TestGHBackend_Dispatch(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]process.Result{"gh workflow run": {}}}
	backend := &GHBackend{Runner: runner, Repository: "acme/chain"}

	inputs := Inputs{"PROFILE": "release", "GIT_SHA": "abc"}
	if err := backend.Dispatch(context.Background(), "build.yaml", "exp/main", inputs); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	want := "gh workflow run build.yaml --ref exp/main -f GIT_SHA=abc -f PROFILE=release --repo acme/chain"
	if len(runner.calls) != 1 || runner.calls[0] != want {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}
}

func TestGHBackend_DispatchNonZeroExit(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]process.Result{
		"gh workflow run": {ExitCode: 1, Stderr: "could not find any workflows named build.yaml"},
	}}
	backend := &GHBackend{Runner: runner}

	err := backend.Dispatch(context.Background(), "build.yaml", "exp/main", Inputs{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "could not find any workflows") {
		t.Errorf("error = %v, want gh's stderr", err)
	}
}

func TestGHBackend_LatestRun(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]process.Result{
		"gh run list --workflow build.yaml --branch exp/main --commit abc123 --event workflow_dispatch --limit 1 --json " + runFields: {Stdout: `[{
			"databaseId": 1234,
			"displayTitle": "docker-build-test",
			"headBranch": "exp/main",
			"headSha": "abc123",
			"status": "in_progress",
			"conclusion": "",
			"createdAt": "2026-03-01T12:00:00Z",
			"url": "https://github.com/acme/chain/actions/runs/1234"
		}]`},
	}}
	backend := &GHBackend{Runner: runner}

	run, err := backend.LatestRun(context.Background(), "build.yaml", "exp/main", "abc123")
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != 1234 || run.Status != StatusRunning || run.Branch != "exp/main" || run.Workflow != "build.yaml" || run.Commit != "abc123" {
		t.Errorf("run = %+v", run)
	}
	if !run.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", run.CreatedAt, epoch)
	}
}

func TestGHBackend_LatestRunEmpty(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]process.Result{"gh run list": {Stdout: "[]"}}}
	backend := &GHBackend{Runner: runner}

	_, err := backend.LatestRun(context.Background(), "build.yaml", "exp/main", "abc123")
	if !errors.Is(err, ErrNoRuns) {
		t.Fatalf("error = %v, want ErrNoRuns", err)
	}
}

func TestGHBackend_WaitSkipsStaleRun(t *testing.T) {
	// The listing returns an earlier commit's finished run on the
	// reused branch. It must not be taken as this dispatch's result.
	runner := &scriptedRunner{responses: map[string]process.Result{
		"gh workflow run": {},
		"gh run list": {Stdout: `[{"databaseId":1,"headBranch":"exp/main","headSha":"oldsha","status":"completed","conclusion":"success"}]`},
		"gh run view":  {Stdout: `{"status":"completed","conclusion":"success"}`},
	}}
	fake := clock.Fake(epoch)
	dispatcher := NewDispatcher(&GHBackend{Runner: runner}, fake, nil, Options{PollInterval: time.Second, Timeout: time.Minute})

	err, _ := runOnClock(t, fake, time.Second, func() error {
		return dispatcher.DispatchBuild(context.Background(), "build.yaml", "exp/main", BuildParams{Commit: "newsha"}, true)
	})
	if !errors.Is(err, ErrRunLookup) {
		t.Fatalf("error = %v, want ErrRunLookup", err)
	}
	for _, call := range runner.calls {
		if strings.HasPrefix(call, "gh run view") {
			t.Errorf("polled the stale run: %q", call)
		}
		if strings.HasPrefix(call, "gh run list") && !strings.Contains(call, "--commit newsha --event workflow_dispatch") {
			t.Errorf("run list not filtered to the dispatched commit: %q", call)
		}
	}
}

func TestGHBackend_RunStatus(t *testing.T) {
	tests := []struct {
		output string
		want   Status
	}{
		{`{"status":"queued","conclusion":""}`, StatusPending},
		{`{"status":"in_progress","conclusion":""}`, StatusRunning},
		{`{"status":"completed","conclusion":"success"}`, StatusSucceeded},
		{`{"status":"completed","conclusion":"failure"}`, StatusFailed},
		{`{"status":"completed","conclusion":"cancelled"}`, StatusFailed},
	}
	for _, test := range tests {
		runner := &scriptedRunner{responses: map[string]process.Result{"gh run view 99 --json status,conclusion": {Stdout: test.output}}}
		backend := &GHBackend{Runner: runner}
		got, err := backend.RunStatus(context.Background(), 99)
		if err != nil {
			t.Fatalf("RunStatus(%s): %v", test.output, err)
		}
		if got != test.want {
			t.Errorf("RunStatus(%s) = %q, want %q", test.output, got, test.want)
		}
	}
}

func TestGHBackend_CurrentUserAndListRuns(t *testing.T) {
	runner := &scriptedRunner{responses: map[string]process.Result{
		"gh api user": {Stdout: `{"login":"octocat","id":1}`},
		"gh run list --workflow build.yaml --user octocat --limit 2": {Stdout: `[
			{"databaseId":2,"displayTitle":"second","headBranch":"exp/b","status":"completed","conclusion":"success","createdAt":"2026-03-01T12:00:00Z","url":"u2"},
			{"databaseId":1,"displayTitle":"first","headBranch":"exp/a","status":"completed","conclusion":"failure","createdAt":"2026-02-28T12:00:00Z","url":"u1"}
		]`},
	}}
	backend := &GHBackend{Runner: runner}

	user, err := backend.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user != "octocat" {
		t.Fatalf("user = %q", user)
	}
	runs, err := backend.ListRuns(context.Background(), "build.yaml", user, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != 2 || runs[0].Status != StatusSucceeded || runs[1].Status != StatusFailed {
		t.Errorf("runs = %+v", runs)
	}
	if runner.calls[0] != "gh api user" {
		t.Errorf("CurrentUser ran %q; gh api does not take --repo", runner.calls[0])
	}
}
