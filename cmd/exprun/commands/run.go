// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/exprun/cmd/exprun/cli"
	"github.com/bureau-foundation/exprun/lib/experiment"
)

type runParams struct {
	Features                 []string `flag:"feature,f" desc:"feature flag to enable in the build (repeatable)"`
	Profile                  string   `flag:"profile" desc:"build profile" default:"release"`
	IgnoreUncommittedChanges bool     `flag:"ignore-uncommitted-changes" desc:"run even if tracked files have uncommitted changes (they are not included; untracked files never block a run)"`
	Wait                     bool     `flag:"wait" desc:"wait for each dispatched run to finish"`
	DryRun                   bool     `flag:"dry-run" desc:"push the branch and check the registry, but only log the dispatches"`
	WithForge                bool     `flag:"with-forge" desc:"run the forge test pipeline after the build (implies --wait, for the build too)"`
	ForgeRunnerDurationSecs  int      `flag:"forge-runner-duration-secs" desc:"forge load duration in seconds" default:"480"`
	ForgeTestSuite           string   `flag:"forge-test-suite" desc:"forge test suite to run" default:"land_blocking"`
}

func runCommand(env *Environment, globals *globalParams) *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "run",
		Summary: "Push an experimental branch and dispatch CI for HEAD",
		Description: `Push HEAD to an experimental branch and dispatch CI for it.

The working tree must be clean unless --ignore-uncommitted-changes is
given, and the current branch must already be pushed: the experiment
builds the commit the remote has. Untracked files do not count as
uncommitted changes. The build is skipped when the registry already
holds an image tagged with the commit.

--with-forge implies --wait for both pipelines: the build is waited on
before the forge test is dispatched, so the test never starts against
an image that is still being built.

On failure the experimental branch is deleted from the remote. On
success it is left in place so runs can be re-triggered by hand.`,
		Usage:  "exprun run [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Build with two features, waiting for the result",
				Command:     "exprun run -f failpoints -f indexer --wait",
			},
			{
				Description: "Run a longer forge suite against the current commit",
				Command:     "exprun run --with-forge --forge-test-suite realistic_env --forge-runner-duration-secs 1800",
			},
			{
				Description: "See what would be dispatched",
				Command:     "exprun run --dry-run",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("run takes no arguments (got %q)", args)
			}
			if params.Profile == "" {
				return cli.Validation("--profile must not be empty")
			}
			if params.WithForge && params.ForgeRunnerDurationSecs <= 0 {
				return cli.Validation("--forge-runner-duration-secs must be positive (got %d)", params.ForgeRunnerDurationSecs)
			}

			cfg, err := env.loadConfig(globals.ConfigPath)
			if err != nil {
				return err
			}
			logger = logger.With("command", "run")

			driver, err := env.newDriver(cfg, params.DryRun, logger)
			if err != nil {
				return err
			}

			err = driver.Run(ctx, experiment.RunOptions{
				Features:                 params.Features,
				Profile:                  params.Profile,
				IgnoreUncommittedChanges: params.IgnoreUncommittedChanges,
				Wait:                     params.Wait,
				WithForge:                params.WithForge,
				ForgeDurationSeconds:     params.ForgeRunnerDurationSecs,
				ForgeTestSuite:           params.ForgeTestSuite,
			})
			if err != nil {
				logger.Error("experiment failed", "error", err)
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
