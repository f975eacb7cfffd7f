package wheelhouse

import "context"

// Stage names used in error outcomes.
const (
	stageDetect   = "environment detection"
	stageResolve  = "resolution"
	stageDownload = "download"
	stageInstall  = "install"
)

// Installer wires the pipeline stages together: detect the environment,
// resolve the artifact, ensure it is downloaded, run pip, and report.
//
// A zero Installer is not usable; construct with New, then optionally replace
// Downloader or Executor with test doubles.
type Installer struct {
	// Catalog maps Python versions to wheel artifacts.
	Catalog *Catalog

	// Detector locates the host installation.
	Detector *Detector

	// Downloader fetches wheels into the local cache.
	Downloader Downloader

	// Executor invokes pip against the downloaded wheel.
	Executor PackageExecutor

	// RootHint, when non-empty, is trusted as the installation root instead
	// of walking upward from the working directory.
	RootHint string
}

// New creates an Installer with production stages. A nil catalog uses the
// built-in one. The progress callback may be nil.
func New(catalog *Catalog, progressCallback ProgressCallback) *Installer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	runner := NewCommandRunner()
	return &Installer{
		Catalog:    catalog,
		Detector:   NewDetector(runner),
		Downloader: NewHTTPDownloader(progressCallback),
		Executor:   NewExecutor(runner, progressCallback),
	}
}

// Install runs the full pipeline synchronously and returns one terminal
// Outcome. It never returns an error: every stage failure is folded into an
// Outcome with SeverityError naming the failing stage, so callers can render
// the status line directly. Concurrent runs for the same artifact are not
// coordinated against each other.
func (in *Installer) Install(ctx context.Context, req InstallRequest) Outcome {
	env, err := in.Detector.Detect(ctx, in.RootHint, req.InstallType)
	if err != nil {
		return Report(req, nil, nil, nil, stageDetect, err)
	}

	target, err := Resolve(req, env, in.Catalog)
	if err != nil {
		return Report(req, env, nil, nil, stageResolve, err)
	}

	if err := in.Downloader.Ensure(ctx, target); err != nil {
		return Report(req, env, target, nil, stageDownload, err)
	}

	outcome, err := in.Executor.Execute(ctx, target, env, req.ForceReinstall)
	if err != nil {
		return Report(req, env, target, nil, stageInstall, err)
	}

	return Report(req, env, target, outcome, "", nil)
}
