// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package github provides a typed Go client for the part of the GitHub
// REST API that exprun uses to drive GitHub Actions: dispatching a
// workflow, listing and reading workflow runs, and resolving the
// authenticated user.
//
// The client authenticates with a personal access or fine-grained
// token. It handles rate limiting (X-RateLimit-* headers with one
// automatic backoff), pagination (RFC 5988 Link headers), and
// structured error mapping. Polling the same run repeatedly is cheap:
// run reads are conditional, and an unchanged run comes back as 304
// without consuming rate limit quota.
//
// All requests are made over HTTPS. The client refuses non-HTTPS base URLs.
package github
