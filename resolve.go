package wheelhouse

import "path/filepath"

// wheelCacheDir is the subdirectory of the installation root where downloaded
// wheels are kept between runs.
const wheelCacheDir = "wheels"

// InstallRequest is the immutable input to one installation run.
type InstallRequest struct {
	// PythonVersion is the requested interpreter version (e.g., "3.11").
	PythonVersion string

	// InstallType optionally overrides flavor detection.
	InstallType InstallType

	// ForceReinstall passes --force-reinstall to pip even when the package
	// is already importable.
	ForceReinstall bool
}

// ResolvedTarget is a concrete download-and-install target produced from an
// InstallRequest, the detected Environment, and a catalog lookup.
type ResolvedTarget struct {
	// Artifact is the catalog entry for the requested version.
	Artifact Artifact

	// LocalPath is where the wheel lives (or will live) on disk:
	// <root>/wheels/<FileName>. Derived deterministically so repeated runs
	// reuse a prior download.
	LocalPath string

	// VersionMismatch is true when the requested version differs from the
	// running interpreter's major.minor. Advisory only; installation still
	// proceeds and the mismatch surfaces as a warning in the final outcome.
	VersionMismatch bool
}

// Resolve combines the request with the catalog and environment. It fails
// with UnsupportedVersionError when the catalog has no entry for the
// requested version.
func Resolve(req InstallRequest, env *Environment, catalog *Catalog) (*ResolvedTarget, error) {
	artifact, err := catalog.Lookup(req.PythonVersion)
	if err != nil {
		return nil, err
	}

	return &ResolvedTarget{
		Artifact:        artifact,
		LocalPath:       filepath.Join(env.RootDir, wheelCacheDir, artifact.FileName),
		VersionMismatch: req.PythonVersion != env.PythonVersion.MinorString(),
	}, nil
}
