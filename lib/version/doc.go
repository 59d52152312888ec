// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for exprun.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/exprun/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/exprun
//
// Without ldflags, [Get] falls back to the VCS stamp the Go toolchain
// embeds in module builds.
package version
