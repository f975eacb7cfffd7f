package wheelhouse

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// defaultCommandTimeout bounds any single subprocess invocation. Wheel
// installs can legitimately take minutes while pip resolves dependencies.
const defaultCommandTimeout = 15 * time.Minute

// CommandResult holds the captured outputs of a finished subprocess.
type CommandResult struct {
	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string

	// ExitCode is the process exit code (0 on success).
	ExitCode int
}

// CommandRunner abstracts subprocess execution so the pipeline can be
// exercised in tests without spawning real interpreters.
//
// Run returns a non-nil error only when the process could not be started or
// was cut short (executable missing, context deadline). A process that ran to
// completion with a non-zero exit code returns a nil error with the code in
// CommandResult.ExitCode.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (CommandResult, error)
}

// execRunner is the production CommandRunner backed by os/exec.
type execRunner struct {
	timeout time.Duration
}

// NewCommandRunner returns a CommandRunner that executes real subprocesses
// with the default timeout ceiling.
func NewCommandRunner() CommandRunner {
	return &execRunner{timeout: defaultCommandTimeout}
}

func (r *execRunner) Run(ctx context.Context, dir string, name string, args ...string) (CommandResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	// Capture both stdout AND stderr
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result := CommandResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, err
	}
	return result, nil
}
