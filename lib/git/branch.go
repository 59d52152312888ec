// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD does not
// point at a named branch.
var ErrDetachedHead = errors.New("HEAD is not on a named branch")

// CurrentBranch returns the short name of the checked-out branch.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.Run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDetachedHead, err)
	}
	name := strings.TrimSpace(output)
	if name == "" {
		return "", ErrDetachedHead
	}
	return name, nil
}

// BranchExists reports whether a local branch called name exists.
func (r *Repository) BranchExists(ctx context.Context, name string) (bool, error) {
	output, err := r.Run(ctx, "branch", "--list", name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// IsClean reports whether the working tree has no uncommitted changes
// to tracked files. Untracked files do not make a tree dirty: they
// cannot reach the pushed branch.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	output, err := r.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) == "", nil
}

// CommitHash resolves ref to a full commit hash.
func (r *Repository) CommitHash(ctx context.Context, ref string) (string, error) {
	output, err := r.Run(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// CreateAndPushBranch points a fresh local branch called name at HEAD,
// force-pushes it to remote, and switches back to the branch that was
// checked out before the call. A stale local branch of the same name is
// force-deleted first.
//
// Every step must succeed. If a step fails after the new branch was
// checked out, the original branch is restored before returning.
func (r *Repository) CreateAndPushBranch(ctx context.Context, remote, name string) (err error) {
	original, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if original == name {
		return fmt.Errorf("cannot recreate %q while it is checked out", name)
	}

	exists, err := r.BranchExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		r.logger.Warn("deleting stale local branch", "branch", name)
		if _, err := r.Run(ctx, "branch", "-D", name); err != nil {
			return err
		}
	}

	if _, err := r.Run(ctx, "checkout", "-b", name); err != nil {
		return err
	}
	defer func() {
		if _, checkoutErr := r.Run(ctx, "checkout", original); checkoutErr != nil {
			err = errors.Join(err, fmt.Errorf("returning to %s: %w", original, checkoutErr))
		}
	}()

	if _, err := r.Run(ctx, "push", "--force", remote, "refs/heads/"+name+":refs/heads/"+name); err != nil {
		return err
	}
	return nil
}

// RemoteURL returns the fetch URL configured for remote.
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	output, err := r.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RemoteMatches reports whether the local branch and the same branch on
// repoURL point at the same commit. repoURL may be a URL or a remote
// name. A branch missing from the remote does not match.
func (r *Repository) RemoteMatches(ctx context.Context, repoURL, branch string) (bool, error) {
	local, err := r.CommitHash(ctx, "refs/heads/"+branch)
	if err != nil {
		return false, err
	}

	output, err := r.Run(ctx, "ls-remote", repoURL, "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return false, nil
	}
	return fields[0] == local, nil
}

// DeleteRemoteBranch removes name from remote.
func (r *Repository) DeleteRemoteBranch(ctx context.Context, remote, name string) error {
	_, err := r.Run(ctx, "push", remote, "--delete", name)
	return err
}
