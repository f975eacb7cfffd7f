package wheelhouse

import (
	"errors"
	"strings"
	"testing"
)

func TestReportStageError(t *testing.T) {
	req := InstallRequest{PythonVersion: "3.11"}
	outcome := Report(req, nil, nil, nil, stageDownload, errors.New("connection refused"))

	if outcome.Severity != SeverityError {
		t.Errorf("Expected error severity, got %v", outcome.Severity)
	}
	if !strings.Contains(outcome.Message, "download") {
		t.Errorf("Expected failing stage in message, got %q", outcome.Message)
	}
	if !strings.Contains(outcome.Message, "connection refused") {
		t.Errorf("Expected cause in message, got %q", outcome.Message)
	}
}

func TestReportErrorTakesPriorityOverMismatch(t *testing.T) {
	req := InstallRequest{PythonVersion: "3.12"}
	env := &Environment{PythonVersion: Version{Major: 3, Minor: 11, Patch: 9}}
	target := &ResolvedTarget{VersionMismatch: true}

	outcome := Report(req, env, target, nil, stageInstall, errors.New("pip exploded"))
	if outcome.Severity != SeverityError {
		t.Errorf("A stage error must outrank a mismatch warning, got %v", outcome.Severity)
	}
}

func TestReportVersionMismatchWarning(t *testing.T) {
	req := InstallRequest{PythonVersion: "3.12"}
	env := &Environment{PythonVersion: Version{Major: 3, Minor: 11, Patch: 9}}
	target := &ResolvedTarget{VersionMismatch: true}
	execOutcome := &Outcome{Severity: SeveritySuccess, Message: "installed insightface-0.7.3-cp312-cp312-win_amd64.whl"}

	outcome := Report(req, env, target, execOutcome, "", nil)
	if outcome.Severity != SeverityWarning {
		t.Errorf("Expected warning severity for mismatch, got %v", outcome.Severity)
	}
	if !strings.Contains(outcome.Message, "3.12") || !strings.Contains(outcome.Message, "3.11") {
		t.Errorf("Expected both versions in message, got %q", outcome.Message)
	}
	if !strings.Contains(outcome.Message, "installed") {
		t.Errorf("Expected install result to survive in message, got %q", outcome.Message)
	}
}

func TestReportSkippedPassthrough(t *testing.T) {
	req := InstallRequest{PythonVersion: "3.11"}
	env := &Environment{PythonVersion: Version{Major: 3, Minor: 11, Patch: 9}}
	target := &ResolvedTarget{}
	execOutcome := &Outcome{Severity: SeveritySuccess, Skipped: true, Message: "insightface already installed, skipped"}

	outcome := Report(req, env, target, execOutcome, "", nil)
	if outcome.Severity != SeveritySuccess || !outcome.Skipped {
		t.Errorf("Expected skipped success passthrough, got %+v", outcome)
	}
}

func TestStatusLineGlyphs(t *testing.T) {
	cases := []struct {
		severity Severity
		glyph    string
	}{
		{SeveritySuccess, "✅"},
		{SeverityWarning, "⚠️"},
		{SeverityError, "❌"},
	}
	for _, c := range cases {
		o := Outcome{Severity: c.severity, Message: "msg"}
		if !strings.HasPrefix(o.StatusLine(), c.glyph) {
			t.Errorf("Expected %v status line to start with %s, got %q", c.severity, c.glyph, o.StatusLine())
		}
	}
}
