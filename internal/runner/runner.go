// Package runner executes single command strings as subprocesses.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"faterun/internal/task"
)

// ErrCommandFailed is the sentinel kind for all command execution failures.
var ErrCommandFailed = errors.New("command failed")

// CommandError reports a single command's failure with enough context to
// reproduce it without re-running.
type CommandError struct {
	// Command is the command string as given.
	Command string
	// ExitCode is the process exit code, or -1 when the process could not
	// be launched at all.
	ExitCode int
	// Err is the underlying cause, if any.
	Err error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed to start: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return ErrCommandFailed }

// Runner executes one command string and reports its exit status as an
// error: nil means exit code zero.
//
// The engine depends on this interface; tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, command string, opts task.Options) error
}

// ExecRunner runs commands as real subprocesses.
//
// With opts.Shell the command string is handed to `sh -c` so the shell owns
// interpolation, pipes and redirection; otherwise the string is split on
// whitespace into a program name and arguments and executed directly with no
// interpolation performed here.
type ExecRunner struct {
	// Dir is the working directory for spawned processes. Empty uses the
	// process CWD.
	Dir string

	// Stdout and Stderr receive subprocess output unless opts.Silent is
	// set. Nil defaults to os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	Log zerolog.Logger
}

// Run executes command per opts.
//
// Silent discards both output streams rather than capturing them. Dry spawns
// nothing: it logs what would run and returns synthetic success.
func (r *ExecRunner) Run(ctx context.Context, command string, opts task.Options) error {
	if opts.Dry {
		r.Log.Info().Str("command", command).Msg("would run")
		return nil
	}

	cmd, err := r.buildCommand(ctx, command, opts)
	if err != nil {
		return err
	}
	r.Log.Debug().Str("command", command).Bool("shell", opts.Shell).Msg("running")

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandError{Command: command, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &CommandError{Command: command, ExitCode: -1, Err: err}
	}
	return nil
}

func (r *ExecRunner) buildCommand(ctx context.Context, command string, opts task.Options) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	if opts.Shell {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	} else {
		argv := strings.Fields(command)
		if len(argv) == 0 {
			return nil, &CommandError{Command: command, ExitCode: -1, Err: errors.New("empty command")}
		}
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}
	cmd.Dir = r.Dir

	if opts.Silent {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		return cmd, nil
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd, nil
}
