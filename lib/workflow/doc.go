// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow dispatches remote CI pipelines and waits for their
// runs to finish.
//
// A [Dispatcher] triggers a named workflow on a branch with a set of
// string inputs, the way a caller would issue an RPC that only returns
// "accepted". The remote system assigns a run ID that the dispatch call
// does not return, so after a short propagation delay the Dispatcher
// looks the run up by (workflow, branch) and polls its status.
//
// Status queries are tri-state ([StatusRunning], [StatusSucceeded],
// [StatusFailed]). A definitive failure ends the wait immediately
// rather than spinning until the timeout.
//
// The remote system is reached through a [Backend]. [GHBackend] drives
// the gh CLI and reuses the developer's existing login; [RESTBackend]
// calls the GitHub REST API with a token and suits CI environments
// without gh installed.
//
// Dry-run is a property of the Dispatcher: with [Options.DryRun] set,
// every dispatch is logged and reported successful without touching
// the backend.
package workflow
