// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/bureau-foundation/exprun/cmd/exprun/cli"
	"github.com/bureau-foundation/exprun/lib/clock"
	"github.com/bureau-foundation/exprun/lib/config"
	"github.com/bureau-foundation/exprun/lib/experiment"
	"github.com/bureau-foundation/exprun/lib/git"
	"github.com/bureau-foundation/exprun/lib/github"
	"github.com/bureau-foundation/exprun/lib/process"
	"github.com/bureau-foundation/exprun/lib/registry"
	"github.com/bureau-foundation/exprun/lib/workflow"
)

// Environment is everything the commands touch outside the process.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the repository checkout. Empty means the working
	// directory.
	Dir string

	Clock  clock.Clock
	Getenv func(string) string

	// GH runs the gh CLI. Nil means process.Exec in Dir.
	GH process.Runner

	// Registry checks for existing images. Nil means a
	// go-containerregistry client using the default keychain.
	Registry experiment.Registry

	// HTTPClient is used by the REST backend. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
}

// DefaultEnvironment returns the Environment of a real invocation.
func DefaultEnvironment() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Clock:  clock.Real(),
		Getenv: os.Getenv,
	}
}

// loadConfig loads the config named by --config or EXPRUN_CONFIG.
func (env *Environment) loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cli.NotFound("%w", err).
			WithHint("Pass an existing file to --config, or unset --config and $" + config.EnvironmentVariable + " to use the defaults.")
	}
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint("Fix the config file, or unset --config and $" + config.EnvironmentVariable + " to use the defaults.")
	}
	return cfg, nil
}

// newBackend selects the workflow backend named by cfg.Backend.
func (env *Environment) newBackend(cfg *config.Config, logger *slog.Logger) (workflow.Backend, error) {
	switch cfg.Backend {
	case config.BackendREST:
		owner, name, err := cfg.OwnerAndName()
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		token := env.Getenv(cfg.TokenEnv)
		if token == "" {
			return nil, cli.Validation("the rest backend needs a token in $%s", cfg.TokenEnv)
		}
		client, err := github.NewClient(github.Config{
			BaseURL:    cfg.APIURL,
			Token:      token,
			HTTPClient: env.HTTPClient,
			Clock:      env.Clock,
			Logger:     logger,
		})
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		return &workflow.RESTBackend{Client: client, Owner: owner, Repo: name}, nil
	default:
		runner := env.GH
		if runner == nil {
			runner = process.Exec{Dir: env.Dir}
		}
		return &workflow.GHBackend{Runner: runner, Repository: cfg.Repository}, nil
	}
}

// newDriver wires the experiment driver for cfg.
func (env *Environment) newDriver(cfg *config.Config, dryRun bool, logger *slog.Logger) (*experiment.Driver, error) {
	backend, err := env.newBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	imageRegistry := env.Registry
	if imageRegistry == nil {
		imageRegistry = registry.New(registry.Config{Logger: logger})
	}

	dispatcher := workflow.NewDispatcher(backend, env.Clock, logger, workflow.Options{
		DryRun:           dryRun,
		PollInterval:     cfg.Poll.Interval,
		Timeout:          cfg.Poll.Timeout,
		PropagationDelay: cfg.Poll.PropagationDelay,
	})

	return &experiment.Driver{
		VCS:        git.NewRepository(env.Dir, logger),
		Registry:   imageRegistry,
		Dispatcher: dispatcher,
		Config:     cfg,
		Logger:     logger,
	}, nil
}
