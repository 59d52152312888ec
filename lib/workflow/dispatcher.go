// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/exprun/lib/clock"
)

var (
	// ErrDispatchFailed is returned when the remote system rejects a
	// dispatch. The dispatcher never polls or retries after it.
	ErrDispatchFailed = errors.New("workflow dispatch failed")

	// ErrRunLookup is returned when the run created by a dispatch
	// cannot be found.
	ErrRunLookup = errors.New("workflow run lookup failed")

	// ErrRunFailed is returned when a run reaches a definitive
	// unsuccessful conclusion.
	ErrRunFailed = errors.New("workflow run failed")

	// ErrRunTimedOut is returned when a run has not finished within
	// the polling timeout.
	ErrRunTimedOut = errors.New("timed out waiting for workflow run")
)

// Default polling parameters.
const (
	DefaultPollInterval     = 10 * time.Second
	DefaultTimeout          = 30 * time.Minute
	DefaultPropagationDelay = 5 * time.Second
)

// lookupAttempts bounds how many times Wait lists runs while the
// dispatched run is not listed yet. Attempts are one PollInterval apart.
const lookupAttempts = 3

// Options configures a Dispatcher. A zero PollInterval or Timeout takes
// the default; a zero PropagationDelay disables the delay.
type Options struct {
	// DryRun logs each dispatch instead of performing it.
	DryRun bool

	// PollInterval is the sleep between status queries.
	PollInterval time.Duration

	// Timeout bounds the total time spent polling one run. The number
	// of status queries is Timeout / PollInterval, at least one.
	Timeout time.Duration

	// PropagationDelay is slept after every accepted dispatch, before
	// the run is looked up.
	PropagationDelay time.Duration
}

// Dispatcher triggers workflows through a Backend and optionally waits
// for the resulting runs.
type Dispatcher struct {
	backend Backend
	clock   clock.Clock
	logger  *slog.Logger
	options Options
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(backend Backend, clk clock.Clock, logger *slog.Logger, options Options) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.PropagationDelay < 0 {
		options.PropagationDelay = 0
	}
	return &Dispatcher{
		backend: backend,
		clock:   clk,
		logger:  logger,
		options: options,
	}
}

// DryRun reports whether dispatches are only logged.
func (d *Dispatcher) DryRun() bool {
	return d.options.DryRun
}

// DispatchBuild triggers the image build pipeline for params on branch.
// With wait set it blocks until the run finishes.
func (d *Dispatcher) DispatchBuild(ctx context.Context, workflowName, branch string, params BuildParams, wait bool) error {
	return d.dispatch(ctx, workflowName, branch, params.Commit, params.Inputs(), wait)
}

// DispatchTest triggers the forge test pipeline for params on branch.
// With wait set it blocks until the run finishes.
func (d *Dispatcher) DispatchTest(ctx context.Context, workflowName, branch string, params TestParams, wait bool) error {
	return d.dispatch(ctx, workflowName, branch, params.Commit, params.Inputs(), wait)
}

func (d *Dispatcher) dispatch(ctx context.Context, workflowName, branch, commit string, inputs Inputs, wait bool) error {
	logger := d.logger.With("workflow", workflowName, "ref", branch)

	if d.options.DryRun {
		logger.Info("dry run: skipping workflow dispatch", "inputs", inputsValue(inputs), "wait", wait)
		return nil
	}

	logger.Info("dispatching workflow", "inputs", inputsValue(inputs))
	if err := d.backend.Dispatch(ctx, workflowName, branch, inputs); err != nil {
		logger.Error("workflow dispatch failed", "error", err)
		return fmt.Errorf("%w: %s on %s: %v", ErrDispatchFailed, workflowName, branch, err)
	}

	// The run listing lags the dispatch.
	if err := d.sleep(ctx, d.options.PropagationDelay); err != nil {
		return err
	}

	if !wait {
		logger.Info("workflow dispatched")
		return nil
	}

	_, err := d.Wait(ctx, workflowName, branch, commit)
	return err
}

// Wait finds the run of workflowName dispatched on branch for commit
// and polls it until it succeeds, fails, or the timeout elapses. Runs
// of other commits on the same branch are never waited on. The
// returned Run carries the last observed status.
func (d *Dispatcher) Wait(ctx context.Context, workflowName, branch, commit string) (Run, error) {
	logger := d.logger.With("workflow", workflowName, "ref", branch, "commit", commit)

	run, err := d.findRun(ctx, logger, workflowName, branch, commit)
	if err != nil {
		return Run{}, err
	}
	logger = logger.With("run_id", run.ID)
	if run.URL != "" {
		logger.Info("waiting for workflow run", "url", run.URL)
	}

	iterations := int(d.options.Timeout / d.options.PollInterval)
	if iterations < 1 {
		iterations = 1
	}

	for attempt := 1; attempt <= iterations; attempt++ {
		status, err := d.backend.RunStatus(ctx, run.ID)
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			logger.Warn("querying run status failed, still waiting",
				"error", err, "attempt", attempt, "of", iterations)
		} else {
			run.Status = status
			if status.Terminal() {
				if status == StatusSucceeded {
					logger.Info("workflow run succeeded")
					return run, nil
				}
				logger.Error("workflow run failed", "status", string(status))
				return run, fmt.Errorf("%w: run %d of %s on %s", ErrRunFailed, run.ID, workflowName, branch)
			}
			logger.Info("still waiting for workflow run",
				"status", string(status), "attempt", attempt, "of", iterations)
		}

		if err := d.sleep(ctx, d.options.PollInterval); err != nil {
			return run, err
		}
	}

	run.Status = StatusTimedOut
	logger.Error("timed out waiting for workflow run", "timeout", d.options.Timeout)
	return run, fmt.Errorf("%w: run %d of %s on %s after %s",
		ErrRunTimedOut, run.ID, workflowName, branch, d.options.Timeout)
}

// findRun lists the newest run for commit, re-listing while the run is
// not visible yet. Any other lookup error fails immediately.
func (d *Dispatcher) findRun(ctx context.Context, logger *slog.Logger, workflowName, branch, commit string) (Run, error) {
	for attempt := 1; ; attempt++ {
		run, err := d.backend.LatestRun(ctx, workflowName, branch, commit)
		if err == nil && commit != "" && run.Commit != "" && run.Commit != commit {
			err = fmt.Errorf("%w: newest run %d is for commit %s", ErrNoRuns, run.ID, run.Commit)
		}
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, ErrNoRuns) || attempt == lookupAttempts {
			logger.Error("looking up workflow run failed", "error", err, "attempts", attempt)
			return Run{}, fmt.Errorf("%w: %s on %s at %s: %v", ErrRunLookup, workflowName, branch, commit, err)
		}
		logger.Info("dispatched run not listed yet", "attempt", attempt, "of", lookupAttempts)
		if err := d.sleep(ctx, d.options.PollInterval); err != nil {
			return Run{}, err
		}
	}
}

// CurrentUser returns the login runs are attributed to.
func (d *Dispatcher) CurrentUser(ctx context.Context) (string, error) {
	return d.backend.CurrentUser(ctx)
}

// ListRuns returns up to limit recent runs of workflowName triggered
// by user. Listing is read-only and ignores DryRun.
func (d *Dispatcher) ListRuns(ctx context.Context, workflowName, user string, limit int) ([]Run, error) {
	return d.backend.ListRuns(ctx, workflowName, user, limit)
}

// sleep waits on the injected clock, returning early with the context's
// error on cancellation.
func (d *Dispatcher) sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	select {
	case <-d.clock.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// inputsValue renders inputs as a log group with stable key order.
func inputsValue(inputs Inputs) slog.Value {
	attrs := make([]slog.Attr, 0, len(inputs))
	for _, key := range inputs.Keys() {
		attrs = append(attrs, slog.String(key, inputs[key]))
	}
	return slog.GroupValue(attrs...)
}
