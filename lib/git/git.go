// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for the branch
// operations exprun performs on a developer checkout: querying the
// current branch and working tree, publishing a disposable branch to a
// remote, and checking that local history matches what the remote
// holds. All commands target a specific repository directory via the
// -C flag, which every Repository method injects.
package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Repository represents a git working tree at a specific directory.
// There is no default directory: callers always say which checkout
// they mean.
type Repository struct {
	dir    string
	logger *slog.Logger
}

// NewRepository returns a Repository targeting dir. A nil logger
// discards the warnings Repository emits.
func NewRepository(dir string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{dir: dir, logger: logger}
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
