// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/exprun/cmd/exprun/cli"
	"github.com/bureau-foundation/exprun/lib/version"
)

type versionParams struct {
	cli.JSONOutput
}

func versionCommand(env *Environment) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "exprun version [--json]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("version takes no arguments (got %q)", args)
			}
			if done, err := params.EmitJSON(env.Stdout, version.Get()); done {
				return err
			}
			fmt.Fprintln(env.Stdout, version.Full())
			return nil
		},
	}
}
