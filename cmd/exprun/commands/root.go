// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/bureau-foundation/exprun/cmd/exprun/cli"
)

// globalParams are the flags accepted before the subcommand name.
type globalParams struct {
	LogMetadata bool   `flag:"log-metadata" desc:"include time and level in log lines" default:"true"`
	ConfigPath  string `flag:"config" desc:"path to a YAML or JSONC config file (default $EXPRUN_CONFIG)"`
}

// Root returns the exprun command tree bound to env.
func Root(env *Environment) *cli.Command {
	var globals globalParams

	return &cli.Command{
		Name:    "exprun",
		Summary: "Run experimental builds and tests in CI without a pull request",
		Description: `Run experimental builds and tests in CI without a pull request.

exprun pushes the current commit to a disposable experimental branch,
dispatches the image build pipeline for it (skipped when the registry
already has an image for the commit), and optionally the forge test
pipeline. The branch is deleted again if anything fails.`,
		Params: func() any { return &globals },
		NewLogger: func() *slog.Logger {
			return cli.NewLogger(env.Stderr, cli.LoggerOptions{Metadata: globals.LogMetadata}).
				With("invocation", uuid.NewString())
		},
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			runCommand(env, &globals),
			listCommand(env, &globals),
			versionCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Build the current commit with a feature enabled and wait for it",
				Command:     "exprun run -f failpoints --wait",
			},
			{
				Description: "Build and run the land-blocking forge suite",
				Command:     "exprun run --with-forge",
			},
			{
				Description: "Plain log lines for piping into other tools",
				Command:     "exprun --log-metadata=false list",
			},
		},
	}
}
