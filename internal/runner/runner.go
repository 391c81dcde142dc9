// Package runner executes the watched command through a shell and captures
// its standard output.
package runner

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/Iron-Ham/diffwatch/internal/errors"
)

// DefaultShell is the shell used when none is configured.
const DefaultShell = "bash"

// Runner runs a command string to completion and returns its standard output.
type Runner interface {
	// Run executes command synchronously. The exit status of the command is
	// ignored; only a failure to start the shell is returned, as a
	// *errors.LaunchError.
	Run(ctx context.Context, command string) ([]byte, error)
}

// ShellRunner runs commands as `<Shell> -c <command>`.
type ShellRunner struct {
	// Shell is the shell program. Empty means DefaultShell.
	Shell string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stderr receives the command's standard error. Nil discards it.
	Stderr io.Writer
}

// NewShellRunner creates a ShellRunner for shell that discards stderr.
func NewShellRunner(shell string) *ShellRunner {
	return &ShellRunner{Shell: shell}
}

// Run implements Runner.
func (r *ShellRunner) Run(ctx context.Context, command string) ([]byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.NewLaunchError(shell, err).WithCommand(command)
	}

	// Exit status is not an error; a killed or failing command still yields
	// whatever it wrote before exiting.
	_ = cmd.Wait()

	return stdout.Bytes(), nil
}
