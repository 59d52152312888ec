// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for exprun packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve around channel operations in tests that run goroutines against
// a fake clock: the wait is bounded by real time, so a deadlocked
// goroutine fails the test instead of hanging it.
package testutil
