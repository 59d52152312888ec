// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
)

// fakeBackend is a scripted Backend. Statuses are returned in order by
// RunStatus; the last one repeats. When listed is set, LatestRun returns
// its entries in order (the last one repeating) instead of latest; an
// entry with ID 0 is an empty listing.
type fakeBackend struct {
	mu sync.Mutex

	dispatchErr error
	latest      Run
	latestErr   error
	listed      []Run
	statuses    []Status
	statusErrs  []error
	user        string
	runs        []Run

	dispatches    []dispatchCall
	lookups       int
	lookupCommits []string
	statusQueries int
}

type dispatchCall struct {
	workflow string
	ref      string
	inputs   Inputs
}

func (f *fakeBackend) Dispatch(_ context.Context, workflowName, ref string, inputs Inputs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatches = append(f.dispatches, dispatchCall{workflow: workflowName, ref: ref, inputs: inputs})
	return f.dispatchErr
}

func (f *fakeBackend) LatestRun(_ context.Context, workflowName, branch, commit string) (Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index := f.lookups
	f.lookups++
	f.lookupCommits = append(f.lookupCommits, commit)
	if len(f.listed) > 0 {
		if index >= len(f.listed) {
			index = len(f.listed) - 1
		}
		if f.listed[index].ID == 0 {
			return Run{}, ErrNoRuns
		}
		return f.listed[index], nil
	}
	return f.latest, f.latestErr
}

func (f *fakeBackend) RunStatus(_ context.Context, runID int64) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index := f.statusQueries
	f.statusQueries++
	var err error
	if index < len(f.statusErrs) {
		err = f.statusErrs[index]
	}
	if err != nil {
		return "", err
	}
	if len(f.statuses) == 0 {
		return StatusRunning, nil
	}
	if index >= len(f.statuses) {
		index = len(f.statuses) - 1
	}
	return f.statuses[index], nil
}

func (f *fakeBackend) CurrentUser(context.Context) (string, error) {
	return f.user, nil
}

func (f *fakeBackend) ListRuns(_ context.Context, workflowName, user string, limit int) ([]Run, error) {
	if len(f.runs) > limit {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

// runOnClock runs fn in a goroutine and advances fake by step whenever
// fn is blocked on a timer. It returns fn's error and the fake time
// that elapsed.
func runOnClock(t *testing.T, fake *clock.FakeClock, step time.Duration, fn func() error) (error, time.Duration) {
	t.Helper()
	start := fake.Now()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-done:
			return err, fake.Now().Sub(start)
		case <-deadline:
			t.Fatal("timed out driving the fake clock")
			return nil, 0
		case <-time.After(time.Millisecond):
			if fake.PendingTimers() > 0 {
				fake.Advance(step)
			}
		}
	}
}
