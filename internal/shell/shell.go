// Package shell runs commands through /bin/sh and always returns a structured
// result: timeouts and spawn failures become a failed Result, never an error.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a command when the caller does not pick one.
const DefaultTimeout = 120 * time.Second

// Result is the outcome of one command execution.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the command exited cleanly.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Output joins stdout and stderr for feeding back to the model.
func (r Result) Output() string {
	out := r.Stdout
	if r.Stderr != "" {
		if out != "" {
			out += "\n"
		}
		out += r.Stderr
	}
	return out
}

// Run executes command with the default timeout in the current directory.
func Run(ctx context.Context, command string) Result {
	return RunTimeout(ctx, command, DefaultTimeout, "")
}

// RunTimeout executes command through the shell, bounded by timeout. On
// timeout the process is killed and a synthetic failure result is returned.
func RunTimeout(ctx context.Context, command string, timeout time.Duration, cwd string) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return Result{Command: command, ExitCode: -1, Stderr: "timed out"}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return Result{Command: command, ExitCode: -1, Stderr: err.Error()}
	}

	return Result{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
}
