// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/exprun/cmd/exprun/cli"
	"github.com/bureau-foundation/exprun/lib/workflow"
)

type listParams struct {
	cli.JSONOutput
	Limit int `flag:"limit" desc:"maximum number of runs to show" default:"20"`
}

func listCommand(env *Environment, globals *globalParams) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List your recent build pipeline runs",
		Description: `List your recent runs of the build pipeline, newest first.

Runs are those triggered by the user the backend is logged in as (the
gh login, or the owner of the REST token).`,
		Usage:  "exprun list [flags]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Show the five most recent runs",
				Command:     "exprun list --limit 5",
			},
			{
				Description: "Machine-readable output",
				Command:     "exprun list --json",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("list takes no arguments (got %q)", args)
			}
			if params.Limit <= 0 {
				return cli.Validation("--limit must be positive (got %d)", params.Limit)
			}

			cfg, err := env.loadConfig(globals.ConfigPath)
			if err != nil {
				return err
			}
			logger = logger.With("command", "list")

			driver, err := env.newDriver(cfg, false, logger)
			if err != nil {
				return err
			}
			runs, err := driver.List(ctx, params.Limit)
			if err != nil {
				return cli.Transient("listing runs: %w", err).
					WithHint("Check that the backend is logged in (gh auth status, or the token in $" + cfg.TokenEnv + ") and retry.")
			}

			if done, err := params.EmitJSON(env.Stdout, runs); done {
				return err
			}
			writeRunTable(env.Stdout, runs, env.Clock.Now())
			return nil
		},
	}
}

const (
	branchWidth = 32
	titleWidth  = 60
	statusWidth = 10
)

// writeRunTable prints runs as a fixed-width table. Status is colored
// when w is a color terminal.
func writeRunTable(w io.Writer, runs []workflow.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	renderer := lipgloss.NewRenderer(w)
	if termenv.EnvNoColor() {
		renderer.SetColorProfile(termenv.Ascii)
	}

	fmt.Fprintf(w, "%-12s  %-*s  %-*s  %-16s  %s\n",
		"ID", statusWidth, "STATUS", branchWidth, "BRANCH", "CREATED", "TITLE")
	for _, run := range runs {
		status := statusStyle(renderer, run.Status).Width(statusWidth).Render(string(run.Status))
		created := "-"
		if !run.CreatedAt.IsZero() {
			created = humanize.RelTime(run.CreatedAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%-12d  %s  %-*s  %-16s  %s\n",
			run.ID,
			status,
			branchWidth, ansi.Truncate(run.Branch, branchWidth, "…"),
			created,
			ansi.Truncate(run.Title, titleWidth, "…"))
	}
}

func statusStyle(renderer *lipgloss.Renderer, status workflow.Status) lipgloss.Style {
	style := renderer.NewStyle()
	switch status {
	case workflow.StatusSucceeded:
		return style.Foreground(lipgloss.Color("2"))
	case workflow.StatusFailed, workflow.StatusTimedOut:
		return style.Foreground(lipgloss.Color("1"))
	case workflow.StatusRunning:
		return style.Foreground(lipgloss.Color("3"))
	default:
		return style.Faint(true)
	}
}
