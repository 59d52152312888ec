// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package experiment runs an uncommitted idea through CI without a
// pull request.
//
// [Driver.Run] snapshots the current branch onto a disposable
// experimental branch (BranchPrefix + current branch), pushes it,
// confirms the original branch is in sync with the canonical remote,
// and dispatches the build pipeline for HEAD unless the registry
// already holds an image tagged with that commit. With WithForge it
// then dispatches the forge test pipeline against the same commit.
//
// The experimental branch is held by a lease from the moment it is
// pushed. Any fatal error after that point deletes the remote branch
// exactly once; a successful run leaves it in place so runs can be
// re-triggered manually.
//
// [Driver.List] shows the caller's recent build pipeline runs.
package experiment
