package wheelhouse

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// PackageExecutor installs a downloaded wheel into an environment. The
// production implementation shells out to pip; tests substitute a double.
type PackageExecutor interface {
	Execute(ctx context.Context, target *ResolvedTarget, env *Environment, forceReinstall bool) (*Outcome, error)
}

// Executor is the production PackageExecutor backed by "<python> -m pip".
type Executor struct {
	runner CommandRunner

	// OnProgress is an optional progress callback; may be nil.
	OnProgress ProgressCallback
}

// NewExecutor creates an Executor. A nil runner uses the production
// CommandRunner.
func NewExecutor(runner CommandRunner, progressCallback ProgressCallback) *Executor {
	if runner == nil {
		runner = NewCommandRunner()
	}
	return &Executor{runner: runner, OnProgress: progressCallback}
}

// importProbeTemplate exits 0 when the module is importable without actually
// importing it (native extensions can be slow or side-effectful to load).
const importProbeTemplate = "import importlib.util, sys; sys.exit(0 if importlib.util.find_spec(%q) else 1)"

// Execute installs the wheel at target.LocalPath using the environment's
// interpreter.
//
// Before touching pip it probes whether the package is already importable;
// if so and forceReinstall is false, it short-circuits with a skipped Success
// outcome and issues no pip invocation. Repeated calls with identical inputs
// are therefore no-ops after the first successful install.
//
// Failure modes: a missing interpreter executable returns EnvironmentError;
// pip exiting non-zero returns InstallError with the exit code and captured
// output. Failures are never retried automatically.
func (x *Executor) Execute(ctx context.Context, target *ResolvedTarget, env *Environment, forceReinstall bool) (*Outcome, error) {
	if !forceReinstall {
		installed, err := x.alreadyInstalled(ctx, target, env)
		if err != nil {
			return nil, err
		}
		if installed {
			return &Outcome{
				Severity: SeveritySuccess,
				Skipped:  true,
				Message:  target.Artifact.Package + " already installed, skipped",
			}, nil
		}
	}

	args := []string{"-m", "pip", "install", "--no-warn-script-location"}
	if forceReinstall {
		args = append(args, "--force-reinstall")
	}
	args = append(args, target.LocalPath)

	if x.OnProgress != nil {
		x.OnProgress("Installing "+target.Artifact.FileName+"...", 0, -1)
	}

	result, err := x.runner.Run(ctx, env.RootDir, env.PythonPath, args...)
	if err != nil {
		if isExecNotFound(err) {
			return nil, &EnvironmentError{Reason: "interpreter not found: " + env.PythonPath, Err: err}
		}
		return nil, &InstallError{ExitCode: -1, Output: err.Error()}
	}
	if result.ExitCode != 0 {
		output := strings.TrimSpace(result.Stderr)
		if output == "" {
			output = strings.TrimSpace(result.Stdout)
		}
		if output == "" {
			output = "unknown installation error"
		}
		return nil, &InstallError{ExitCode: result.ExitCode, Output: output}
	}

	if x.OnProgress != nil {
		x.OnProgress("Installed "+target.Artifact.FileName, 100, 100)
	}
	return &Outcome{
		Severity: SeveritySuccess,
		Message:  "installed " + target.Artifact.FileName,
	}, nil
}

// alreadyInstalled asks the environment's interpreter whether the package is
// importable.
func (x *Executor) alreadyInstalled(ctx context.Context, target *ResolvedTarget, env *Environment) (bool, error) {
	code := fmt.Sprintf(importProbeTemplate, target.Artifact.Package)
	result, err := x.runner.Run(ctx, env.RootDir, env.PythonPath, "-c", code)
	if err != nil {
		if isExecNotFound(err) {
			return false, &EnvironmentError{Reason: "interpreter not found: " + env.PythonPath, Err: err}
		}
		return false, &EnvironmentError{Reason: "error probing installed packages", Err: err}
	}
	return result.ExitCode == 0, nil
}

// isExecNotFound matches the errors os/exec produces for a missing or
// unrunnable executable.
func isExecNotFound(err error) bool {
	var pathErr *fs.PathError
	return errors.Is(err, exec.ErrNotFound) || errors.As(err, &pathErr)
}
