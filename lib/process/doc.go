// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process runs the external command-line tools exprun drives
// (the gh CLI, registry tooling) and provides the binary entrypoint
// error helper.
//
// [Runner] is the seam tests replace: components that shell out accept
// a Runner and never call os/exec themselves. [Exec] is the production
// implementation. A non-zero exit status is not a Go error from Run;
// it is reported in [Result.ExitCode] so callers can distinguish "the
// tool said no" from "the tool could not be started".
package process
