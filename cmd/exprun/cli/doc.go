// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for exprun.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a params struct whose tagged
// fields become flags (see [BindFlags]), and a Run function. Commands are
// assembled into a tree in cmd/exprun/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// structured help output with examples.
//
// A command with both Params and Subcommands parses its own flags only up
// to the first positional argument. This is how global flags such as
// --log-metadata work: "exprun --log-metadata=false run --wait" parses
// --log-metadata on the root and --wait on run.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Run functions receive the logger built by the root's NewLogger after
// every flag has been parsed, so global logging flags take effect before
// the first log line.
package cli
