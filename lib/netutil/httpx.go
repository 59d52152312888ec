// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response body reads for exprun's JSON API
// clients. Every read stops at MaxResponseSize so a misbehaving server
// cannot exhaust memory on a developer machine.
package netutil

import "io"

// MaxResponseSize is the bound on JSON API response body reads. The
// largest legitimate response exprun reads is a page of workflow runs,
// which is orders of magnitude smaller.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
