// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source used by exprun's waiting
// code: the post-dispatch propagation delay and the run polling loop.
//
// Production code receives Real(). Tests receive Fake(), whose time
// only moves when Advance is called, so a thirty-minute polling timeout
// runs in microseconds:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { done <- dispatcher.Wait(ctx, "build.yaml", "exp/main") }()
//	fake.WaitForTimers(1)
//	fake.Advance(10 * time.Second)
//
// WaitForTimers blocks until the goroutine under test has registered
// its sleep, which removes the race between registration and Advance.
package clock
