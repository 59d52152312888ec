// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// describeWidth bounds the command output quoted by Describe.
const describeWidth = 400

// Result is the captured outcome of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner executes an external program and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec is the os/exec backed Runner. Dir, when set, is the working
// directory for every command.
type Exec struct {
	Dir string
}

// Run starts name with args and waits for it. The returned error is
// non-nil only when the program could not be started or the context
// ended; a non-zero exit is reported through Result.ExitCode.
func (e Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = e.Dir
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) && ctx.Err() == nil {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("running %s %s: %w", name, strings.Join(args, " "), err)
}

// Describe formats a failed result for an error message: the exit code
// and the trimmed stderr, falling back to stdout when stderr is empty.
// Long output is cut to describeWidth cells on a character boundary.
func Describe(result Result) string {
	output := strings.TrimSpace(result.Stderr)
	if output == "" {
		output = strings.TrimSpace(result.Stdout)
	}
	output = ansi.Truncate(output, describeWidth, "...")
	if output == "" {
		return fmt.Sprintf("exit status %d", result.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", result.ExitCode, output)
}
