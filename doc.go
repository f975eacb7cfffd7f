// Package wheelhouse resolves, downloads, and installs prebuilt insightface
// wheels into a ComfyUI installation, picking the correct binary artifact for
// the host's Python version and installation flavor.
//
// # Pipeline
//
// One call runs the whole pipeline and reduces everything to a single outcome:
//
//	installer := wheelhouse.New(nil, nil)
//	outcome := installer.Install(ctx, wheelhouse.InstallRequest{
//	    PythonVersion: "3.11",
//	})
//	fmt.Println(outcome.StatusLine()) // e.g. "✅ installed insightface-0.7.3-cp311-cp311-win_amd64.whl"
//
// The stages are: environment detection, artifact resolution, download, and
// pip invocation. Any stage failure folds into an error-severity outcome
// naming the failing stage; the pipeline never retries automatically.
//
// # Environment Detection
//
// The installation root is discovered by walking upward from the working
// directory looking for the ComfyUI manifest (main.py beside comfy/) or a
// custom_nodes ancestor, bounded to a fixed number of ancestors. A
// python_embeded directory next to the root marks a portable install, whose
// bundled interpreter receives pip commands; otherwise the ambient system
// interpreter is used:
//
//	env, err := wheelhouse.NewDetector(nil).Detect(ctx, "", wheelhouse.InstallAuto)
//
// # Download Cache
//
// Wheels are cached under <root>/wheels. A non-empty cached file is reused
// without any network access; delete it to force a refetch. Downloads stream
// to a temporary file and are renamed into place atomically, so a crashed
// download never leaves a partial wheel at the canonical path. A msgpack
// metadata sidecar (size, sha256, source URL) written next to each wheel lets
// later runs detect truncated cache entries.
//
// # Idempotence
//
// Before invoking pip the executor probes whether the package is already
// importable in the target interpreter; if so, the run short-circuits with a
// skipped success outcome. ForceReinstall bypasses the probe and passes
// --force-reinstall to pip.
//
// # Catalog
//
// The built-in catalog carries insightface 0.7.3 wheels for Python 3.10
// through 3.13 (win_amd64). A TOML file can replace it:
//
//	catalog, err := wheelhouse.LoadCatalogFile("wheels.toml")
//
// Requesting a version with no catalog entry fails with
// UnsupportedVersionError. Requesting a version different from the running
// interpreter is allowed; the final outcome is downgraded to a warning that
// states both versions.
package wheelhouse
