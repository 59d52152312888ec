// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the exprun command tree.
//
// [Root] returns the top-level command with the global flags
// (--log-metadata, --config) and the run and list subcommands. Every
// external dependency a command reaches (output streams, the git
// checkout, the gh binary, the image registry, the REST API) comes from
// an [Environment], so tests drive the real command tree against
// temporary repositories and scripted fakes.
package commands
