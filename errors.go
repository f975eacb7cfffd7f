package wheelhouse

import "fmt"

// EnvironmentError indicates that no usable host installation could be located,
// or that the interpreter executable a step needed was missing.
type EnvironmentError struct {
	// Reason describes what could not be located or executed.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *EnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("environment: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("environment: %s", e.Reason)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// UnsupportedVersionError indicates the requested Python version has no
// catalog entry.
type UnsupportedVersionError struct {
	// Version is the requested Python version (e.g., "3.9").
	Version string

	// Supported lists the versions the catalog does carry.
	Supported []string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported Python version %q (supported: %v)", e.Version, e.Supported)
}

// DownloadError indicates the artifact could not be fetched or stored.
type DownloadError struct {
	// URL is the artifact URL that was being fetched.
	URL string

	// Err is the underlying cause (network, HTTP status, storage).
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// InstallError indicates pip exited non-zero while installing the wheel.
type InstallError struct {
	// ExitCode is pip's exit code.
	ExitCode int

	// Output is the captured stderr (or stdout if stderr was empty).
	Output string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("pip exited with code %d: %s", e.ExitCode, e.Output)
}
