// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// exprun runs an experimental build (and optionally a forge test) of
// the current commit in CI without opening a pull request.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/exprun/cmd/exprun/commands"
	"github.com/bureau-foundation/exprun/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands that log their own failure return an ExitError with
		// the desired exit code. Don't print a redundant error line.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Root(commands.DefaultEnvironment()).Execute(ctx, os.Args[1:])
}
