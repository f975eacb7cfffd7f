package wheelhouse

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// InstallType selects how the installation flavor is determined.
type InstallType int

const (
	// InstallAuto probes the filesystem to classify the installation.
	InstallAuto InstallType = iota

	// InstallPortable forces the portable (embedded interpreter) flavor.
	InstallPortable

	// InstallRegular forces the regular (system interpreter) flavor.
	InstallRegular
)

// String returns the lowercase name used on the CLI.
func (t InstallType) String() string {
	switch t {
	case InstallPortable:
		return "portable"
	case InstallRegular:
		return "regular"
	default:
		return "auto"
	}
}

// ParseInstallType parses an install type name as accepted by the CLI.
func ParseInstallType(s string) (InstallType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return InstallAuto, nil
	case "portable":
		return InstallPortable, nil
	case "regular":
		return InstallRegular, nil
	}
	return InstallAuto, fmt.Errorf("unknown install type %q (want auto, portable, or regular)", s)
}

// Flavor classifies a detected installation.
type Flavor int

const (
	// FlavorRegular is a ComfyUI running on a system-managed interpreter.
	FlavorRegular Flavor = iota

	// FlavorPortable is a self-contained ComfyUI bundling its own interpreter.
	FlavorPortable
)

// String returns a human-readable flavor name.
func (f Flavor) String() string {
	if f == FlavorPortable {
		return "portable"
	}
	return "regular"
}

// Environment describes the host installation a wheel will be installed into.
// It is derived once per run and never persisted.
type Environment struct {
	// RootDir is the ComfyUI installation root.
	RootDir string

	// Flavor is the detected (or overridden) installation flavor.
	Flavor Flavor

	// PythonPath is the interpreter executable that receives pip commands:
	// the embedded python for portable installs, the ambient python otherwise.
	PythonPath string

	// PythonVersion is the version reported by PythonPath.
	PythonVersion Version
}

// maxRootAscent bounds the upward walk during root discovery so a stray
// working directory never walks all the way to the filesystem root.
const maxRootAscent = 8

// embeddedDirNames are the directory names that mark a portable install.
// ComfyUI ships "python_embeded" (sic); the corrected spelling is probed too.
var embeddedDirNames = []string{"python_embeded", "python_embedded"}

// rootProbe inspects one candidate directory and either names the
// installation root or reports inconclusive.
type rootProbe func(dir string) (root string, ok bool)

// probeManifest matches the ComfyUI top level: a main.py file next to the
// comfy package directory.
func probeManifest(dir string) (string, bool) {
	if isFile(filepath.Join(dir, "main.py")) && isDir(filepath.Join(dir, "comfy")) {
		return dir, true
	}
	return "", false
}

// probeCustomNodes matches being inside ComfyUI/custom_nodes; the root is the
// parent of that directory.
func probeCustomNodes(dir string) (string, bool) {
	if filepath.Base(dir) == "custom_nodes" {
		return filepath.Dir(dir), true
	}
	return "", false
}

// rootProbes are evaluated in order at each ancestor directory.
var rootProbes = []rootProbe{probeManifest, probeCustomNodes}

// Detector locates the host installation and classifies its flavor.
// The zero value is not usable; construct with NewDetector.
type Detector struct {
	runner CommandRunner

	// lookPath resolves an executable name on PATH. Swappable for tests.
	lookPath func(file string) (string, error)
}

// NewDetector creates a Detector. A nil runner uses the production
// CommandRunner.
func NewDetector(runner CommandRunner) *Detector {
	if runner == nil {
		runner = NewCommandRunner()
	}
	return &Detector{runner: runner, lookPath: exec.LookPath}
}

// Detect locates the installation root, classifies its flavor, and queries
// the interpreter version. rootHint, when non-empty, is trusted as the root;
// otherwise discovery walks upward from the current working directory.
//
// Returns an EnvironmentError when no plausible root can be found or the
// interpreter cannot be executed. Detection itself only reads the filesystem.
func (d *Detector) Detect(ctx context.Context, rootHint string, override InstallType) (*Environment, error) {
	root, err := d.findRoot(rootHint)
	if err != nil {
		return nil, err
	}

	flavor, pythonPath, err := d.classify(root, override)
	if err != nil {
		return nil, err
	}

	version, err := d.interpreterVersion(ctx, root, pythonPath)
	if err != nil {
		return nil, err
	}

	return &Environment{
		RootDir:       root,
		Flavor:        flavor,
		PythonPath:    pythonPath,
		PythonVersion: version,
	}, nil
}

func (d *Detector) findRoot(rootHint string) (string, error) {
	if rootHint != "" {
		abs, err := filepath.Abs(rootHint)
		if err != nil {
			return "", &EnvironmentError{Reason: "bad root hint " + rootHint, Err: err}
		}
		if !isDir(abs) {
			return "", &EnvironmentError{Reason: "root hint is not a directory: " + abs}
		}
		return abs, nil
	}

	start, err := os.Getwd()
	if err != nil {
		return "", &EnvironmentError{Reason: "cannot determine working directory", Err: err}
	}
	return findRootFrom(start)
}

// findRootFrom walks upward from start, running each root probe at every
// ancestor until one is conclusive or the ascent bound is reached.
func findRootFrom(start string) (string, error) {
	dir := start
	for i := 0; i <= maxRootAscent; i++ {
		for _, probe := range rootProbes {
			if root, ok := probe(dir); ok {
				return root, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &EnvironmentError{
		Reason: fmt.Sprintf("no ComfyUI installation found within %d directories above %s", maxRootAscent, start),
	}
}

func (d *Detector) classify(root string, override InstallType) (Flavor, string, error) {
	switch override {
	case InstallPortable:
		path, err := embeddedPython(root)
		if err != nil {
			return 0, "", err
		}
		return FlavorPortable, path, nil
	case InstallRegular:
		path, err := d.systemPython()
		if err != nil {
			return 0, "", err
		}
		return FlavorRegular, path, nil
	}

	// Auto: the embedded interpreter directory is the portable marker.
	if path, err := embeddedPython(root); err == nil {
		return FlavorPortable, path, nil
	}
	path, err := d.systemPython()
	if err != nil {
		return 0, "", err
	}
	return FlavorRegular, path, nil
}

// embeddedPython returns the embedded interpreter executable under root, or
// an EnvironmentError when the portable marker directory is absent.
func embeddedPython(root string) (string, error) {
	for _, name := range embeddedDirNames {
		p := filepath.Join(root, name, pythonExeName())
		if isFile(p) {
			return p, nil
		}
	}
	return "", &EnvironmentError{Reason: "embedded interpreter not found under " + root}
}

// systemPython locates the ambient interpreter on PATH.
//
// On Unix systems it searches for "python3" then "python". On Windows it
// tries "py" (the Python launcher) first, then "python", relying on lookPath
// rather than the Microsoft Store placeholders resolving to anything useful.
func (d *Detector) systemPython() (string, error) {
	names := []string{"python3", "python"}
	if runtime.GOOS == "windows" {
		names = []string{"py", "python"}
	}
	for _, name := range names {
		if path, err := d.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", &EnvironmentError{Reason: "python not found on PATH"}
}

// interpreterVersion runs "<python> --version" and parses the result. Some
// interpreters print the banner to stderr, so both streams are consulted.
func (d *Detector) interpreterVersion(ctx context.Context, root, pythonPath string) (Version, error) {
	result, err := d.runner.Run(ctx, root, pythonPath, "--version")
	if err != nil {
		return Version{}, &EnvironmentError{Reason: "error running " + pythonPath + " --version", Err: err}
	}
	if result.ExitCode != 0 {
		return Version{}, &EnvironmentError{
			Reason: fmt.Sprintf("%s --version exited with code %d", pythonPath, result.ExitCode),
		}
	}

	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		out = strings.TrimSpace(result.Stderr)
	}
	version, err := ParsePythonVersion(out)
	if err != nil {
		return Version{}, &EnvironmentError{Reason: "error parsing Python version", Err: err}
	}
	return version, nil
}

// pythonExeName returns the interpreter executable name for this OS.
func pythonExeName() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
