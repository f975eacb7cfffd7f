package wheelhouse

import "fmt"

// Severity classifies a terminal installation outcome.
type Severity int

const (
	// SeveritySuccess means the wheel is in place (installed or already there).
	SeveritySuccess Severity = iota

	// SeverityWarning means installation completed but something deserves
	// attention, such as a version mismatch.
	SeverityWarning

	// SeverityError means the run failed at some stage.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "success"
	}
}

// Glyph returns the fixed status glyph that prefixes rendered status lines.
func (s Severity) Glyph() string {
	switch s {
	case SeverityWarning:
		return "⚠️"
	case SeverityError:
		return "❌"
	default:
		return "✅"
	}
}

// Outcome is the terminal result of one installation run. It is never
// mutated after construction.
type Outcome struct {
	// Severity is the overall result classification.
	Severity Severity

	// Message is the human-readable one-line summary.
	Message string

	// Skipped is true when the install was short-circuited because the
	// package was already present.
	Skipped bool
}

// StatusLine renders the outcome as a single line beginning with the
// severity glyph.
func (o Outcome) StatusLine() string {
	return o.Glyph() + " " + o.Message
}

// Glyph returns the glyph for the outcome's severity.
func (o Outcome) Glyph() string {
	return o.Severity.Glyph()
}

// Report finalizes a run into one Outcome. It is a pure aggregation with no
// side effects and it never fails.
//
// Rules, in priority order:
//  1. A stage error yields SeverityError, naming the stage and cause.
//  2. A version mismatch yields SeverityWarning, stating requested vs.
//     running version; installation was still attempted (or skipped).
//  3. Otherwise the executor's outcome passes through as SeveritySuccess.
//
// env and target may be nil when the run failed before they were produced.
func Report(req InstallRequest, env *Environment, target *ResolvedTarget, execOutcome *Outcome, stage string, stageErr error) Outcome {
	if stageErr != nil {
		return Outcome{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s failed: %v", stage, stageErr),
		}
	}

	if target != nil && target.VersionMismatch {
		return Outcome{
			Severity: SeverityWarning,
			Skipped:  execOutcome.Skipped,
			Message: fmt.Sprintf("%s (requested Python %s, but the running interpreter is %s)",
				execOutcome.Message, req.PythonVersion, env.PythonVersion.MinorString()),
		}
	}

	return *execOutcome
}
