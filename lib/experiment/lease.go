// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// cleanupTimeout bounds the remote branch deletion. Cleanup runs on a
// context detached from the caller's so that an interrupted run still
// removes its branch.
const cleanupTimeout = 30 * time.Second

// branchLease owns a pushed experimental branch until the run settles.
type branchLease struct {
	vcs      VCS
	remote   string
	name     string
	logger   *slog.Logger
	released bool
}

func newBranchLease(vcs VCS, remote, name string, logger *slog.Logger) *branchLease {
	return &branchLease{vcs: vcs, remote: remote, name: name, logger: logger}
}

// settle ends the lease. On success the branch is kept; on failure it
// is deleted from the remote and any deletion error is joined to
// runErr. Only the first call has an effect.
func (l *branchLease) settle(ctx context.Context, runErr error) error {
	if l.released {
		return runErr
	}
	l.released = true
	if runErr == nil {
		return nil
	}

	l.logger.Error("experiment failed, deleting experimental branch", "error", runErr)
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := l.vcs.DeleteRemoteBranch(cleanupCtx, l.remote, l.name); err != nil {
		l.logger.Error("deleting experimental branch failed", "remote", l.remote, "error", err)
		return errors.Join(runErr, fmt.Errorf("cleaning up branch %s: %w", l.name, err))
	}
	return runErr
}
