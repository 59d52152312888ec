// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/exprun/lib/config"
	"github.com/bureau-foundation/exprun/lib/workflow"
)

var (
	// ErrDirtyTree is returned when the working tree has uncommitted
	// changes and they were not explicitly ignored.
	ErrDirtyTree = errors.New("working tree has uncommitted changes")

	// ErrBranchOutOfSync is returned when the current branch's local
	// head differs from the canonical remote's.
	ErrBranchOutOfSync = errors.New("local branch is not in sync with the remote")
)

// VCS is the version control surface the driver needs.
// *git.Repository implements it.
type VCS interface {
	IsClean(ctx context.Context) (bool, error)
	CurrentBranch(ctx context.Context) (string, error)
	CommitHash(ctx context.Context, ref string) (string, error)
	CreateAndPushBranch(ctx context.Context, remote, name string) error
	RemoteURL(ctx context.Context, remote string) (string, error)
	RemoteMatches(ctx context.Context, repoURL, branch string) (bool, error)
	DeleteRemoteBranch(ctx context.Context, remote, name string) error
}

// Registry reports whether an image tag has been published.
// *registry.Client implements it.
type Registry interface {
	Exists(ctx context.Context, image, tag string) (bool, error)
}

// Dispatcher triggers the remote pipelines. *workflow.Dispatcher
// implements it.
type Dispatcher interface {
	DryRun() bool
	DispatchBuild(ctx context.Context, workflowName, branch string, params workflow.BuildParams, wait bool) error
	DispatchTest(ctx context.Context, workflowName, branch string, params workflow.TestParams, wait bool) error
	CurrentUser(ctx context.Context) (string, error)
	ListRuns(ctx context.Context, workflowName, user string, limit int) ([]workflow.Run, error)
}

// RunOptions are the per-invocation choices of an experiment run.
type RunOptions struct {
	// Features are passed to the build pipeline joined with commas.
	Features []string

	// Profile is the build profile.
	Profile string

	// IgnoreUncommittedChanges proceeds with a dirty working tree.
	// Uncommitted changes are not part of the experiment.
	IgnoreUncommittedChanges bool

	// Wait blocks until each dispatched run finishes.
	Wait bool

	// WithForge dispatches the forge test pipeline after the build.
	// It implies Wait.
	WithForge bool

	// ForgeDurationSeconds is the forge runner's load duration.
	ForgeDurationSeconds int

	// ForgeTestSuite names the forge suite to run.
	ForgeTestSuite string
}

// Driver orchestrates an experiment. All fields are required.
type Driver struct {
	VCS        VCS
	Registry   Registry
	Dispatcher Dispatcher
	Config     *config.Config
	Logger     *slog.Logger
}

// Run performs one experiment. See the package documentation for the
// sequence. Errors wrap ErrDirtyTree, ErrBranchOutOfSync, or the
// workflow package's dispatch and polling sentinels.
func (d *Driver) Run(ctx context.Context, options RunOptions) (err error) {
	logger := d.Logger

	clean, err := d.VCS.IsClean(ctx)
	if err != nil {
		return fmt.Errorf("checking working tree: %w", err)
	}
	if !clean {
		if !options.IgnoreUncommittedChanges {
			return fmt.Errorf("%w (commit or stash them, or pass --ignore-uncommitted-changes)", ErrDirtyTree)
		}
		logger.Warn("ignoring uncommitted changes; they are not part of the experiment")
	}

	current, err := d.VCS.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("determining current branch: %w", err)
	}
	branch := d.Config.BranchPrefix + current
	logger = logger.With("branch", branch)

	if err := d.VCS.CreateAndPushBranch(ctx, d.Config.Remote, branch); err != nil {
		return fmt.Errorf("creating experimental branch: %w", err)
	}
	logger.Info("pushed experimental branch", "remote", d.Config.Remote)

	lease := newBranchLease(d.VCS, d.Config.Remote, branch, logger)
	defer func() {
		err = lease.settle(ctx, err)
	}()

	if err := d.checkSync(ctx, current); err != nil {
		return err
	}

	commit, err := d.VCS.CommitHash(ctx, "HEAD")
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	logger = logger.With("commit", commit)

	wait := options.Wait
	if options.WithForge && !wait {
		logger.Warn("--with-forge implies --wait; waiting for each run")
		wait = true
	}

	image := d.Config.ImageReference()
	exists, err := d.Registry.Exists(ctx, image, commit)
	if err != nil {
		return fmt.Errorf("checking registry for %s:%s: %w", image, commit, err)
	}
	if exists {
		logger.Info("image already exists, skipping build", "image", image)
	} else {
		build := workflow.BuildParams{
			Commit:   commit,
			Features: options.Features,
			Profile:  options.Profile,
		}
		if err := d.Dispatcher.DispatchBuild(ctx, d.Config.Workflows.Build, branch, build, wait); err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
	}

	if options.WithForge {
		test := workflow.TestParams{
			Commit:          commit,
			DurationSeconds: options.ForgeDurationSeconds,
			Suite:           options.ForgeTestSuite,
			Cluster:         d.Config.Forge.Cluster,
		}
		if err := d.Dispatcher.DispatchTest(ctx, d.Config.Workflows.Test, branch, test, wait); err != nil {
			return fmt.Errorf("forge pipeline: %w", err)
		}
	}

	if d.Dispatcher.DryRun() {
		logger.Info("dry run complete; no pipeline was triggered and the branch stays on the remote")
		return nil
	}
	logger.Info("experiment dispatched; the branch stays on the remote for manual re-runs",
		"build_workflow", d.Config.Workflows.Build)
	return nil
}

// checkSync confirms the original branch's local head matches the
// canonical remote.
func (d *Driver) checkSync(ctx context.Context, branch string) error {
	repoURL := d.Config.RepositoryURL
	if repoURL == "" {
		url, err := d.VCS.RemoteURL(ctx, d.Config.Remote)
		if err != nil {
			return fmt.Errorf("resolving remote %s: %w", d.Config.Remote, err)
		}
		repoURL = url
	}
	matches, err := d.VCS.RemoteMatches(ctx, repoURL, branch)
	if err != nil {
		return fmt.Errorf("comparing %s with %s: %w", branch, repoURL, err)
	}
	if !matches {
		return fmt.Errorf("%w: push %s to %s first", ErrBranchOutOfSync, branch, repoURL)
	}
	return nil
}

// List returns the caller's most recent build pipeline runs.
func (d *Driver) List(ctx context.Context, limit int) ([]workflow.Run, error) {
	user, err := d.Dispatcher.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving current user: %w", err)
	}
	runs, err := d.Dispatcher.ListRuns(ctx, d.Config.Workflows.Build, user, limit)
	if err != nil {
		return nil, fmt.Errorf("listing %s runs for %s: %w", d.Config.Workflows.Build, user, err)
	}
	return runs, nil
}
