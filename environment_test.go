package wheelhouse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeComfyRoot creates a directory that looks like a ComfyUI installation
// top level: a main.py file next to a comfy/ package directory.
func makeComfyRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	// Resolve symlinks so paths compare equal with what a working-directory
	// walk reports (macOS tempdirs live behind /var -> /private/var).
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if err := os.WriteFile(filepath.Join(root, "main.py"), []byte("# comfy entrypoint\n"), 0644); err != nil {
		t.Fatalf("Failed to create main.py: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "comfy"), 0755); err != nil {
		t.Fatalf("Failed to create comfy dir: %v", err)
	}
	return root
}

// addEmbeddedPython drops the portable marker directory with an interpreter
// executable into root and returns the interpreter path.
func addEmbeddedPython(t *testing.T, root string) string {
	t.Helper()
	dir := filepath.Join(root, "python_embeded")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create embedded dir: %v", err)
	}
	path := filepath.Join(dir, pythonExeName())
	if err := os.WriteFile(path, []byte("#!/bin/true\n"), 0755); err != nil {
		t.Fatalf("Failed to create embedded python: %v", err)
	}
	return path
}

// versionRunner responds to "--version" queries with the given banner.
func versionRunner(banner string) *fakeRunner {
	return &fakeRunner{
		respond: func(name string, args []string) (CommandResult, error) {
			if isVersionQuery(args) {
				return CommandResult{Stdout: banner}, nil
			}
			return CommandResult{}, nil
		},
	}
}

func TestFindRootFromNestedCustomNode(t *testing.T) {
	root := makeComfyRoot(t)
	nested := filepath.Join(root, "custom_nodes", "some-node", "src")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	found, err := findRootFrom(nested)
	if err != nil {
		t.Fatalf("findRootFrom failed: %v", err)
	}
	if found != root {
		t.Errorf("Expected root %q, got %q", root, found)
	}
}

func TestFindRootFromCustomNodesWithoutManifest(t *testing.T) {
	// The custom_nodes probe alone should resolve the parent even when the
	// parent lacks the manifest files.
	base := t.TempDir()
	nodes := filepath.Join(base, "custom_nodes")
	if err := os.MkdirAll(nodes, 0755); err != nil {
		t.Fatalf("Failed to create custom_nodes: %v", err)
	}

	found, err := findRootFrom(nodes)
	if err != nil {
		t.Fatalf("findRootFrom failed: %v", err)
	}
	if found != base {
		t.Errorf("Expected root %q, got %q", base, found)
	}
}

func TestFindRootBoundedAscent(t *testing.T) {
	root := makeComfyRoot(t)
	deep := root
	for i := 0; i < maxRootAscent+2; i++ {
		deep = filepath.Join(deep, "d")
	}
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatalf("Failed to create deep dir: %v", err)
	}

	_, err := findRootFrom(deep)
	if err == nil {
		t.Fatal("Expected error when markers are beyond the ascent bound")
	}
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Errorf("Expected EnvironmentError, got %T: %v", err, err)
	}
}

func TestDetectPortable(t *testing.T) {
	root := makeComfyRoot(t)
	embedded := addEmbeddedPython(t, root)

	detector := NewDetector(versionRunner("Python 3.11.9"))
	env, err := detector.Detect(context.Background(), root, InstallAuto)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if env.Flavor != FlavorPortable {
		t.Errorf("Expected portable flavor, got %v", env.Flavor)
	}
	if env.PythonPath != embedded {
		t.Errorf("Expected embedded interpreter %q, got %q", embedded, env.PythonPath)
	}
	if env.PythonVersion.MinorString() != "3.11" {
		t.Errorf("Expected version 3.11, got %s", env.PythonVersion.String())
	}
	if env.RootDir != root {
		t.Errorf("Expected root %q, got %q", root, env.RootDir)
	}
}

func TestDetectRegularWithOverride(t *testing.T) {
	root := makeComfyRoot(t)
	// The embedded marker is present, but the override must win.
	addEmbeddedPython(t, root)

	// Some interpreters print the version banner to stderr.
	runner := &fakeRunner{
		respond: func(name string, args []string) (CommandResult, error) {
			if isVersionQuery(args) {
				return CommandResult{Stderr: "Python 3.12.1\n"}, nil
			}
			return CommandResult{}, nil
		},
	}
	detector := NewDetector(runner)
	detector.lookPath = func(file string) (string, error) {
		return "/usr/bin/python3", nil
	}

	env, err := detector.Detect(context.Background(), root, InstallRegular)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if env.Flavor != FlavorRegular {
		t.Errorf("Expected regular flavor, got %v", env.Flavor)
	}
	if env.PythonPath != "/usr/bin/python3" {
		t.Errorf("Expected system interpreter, got %q", env.PythonPath)
	}
	if env.PythonVersion.MinorString() != "3.12" {
		t.Errorf("Expected version 3.12, got %s", env.PythonVersion.String())
	}
}

func TestDetectPortableOverrideWithoutEmbedded(t *testing.T) {
	root := makeComfyRoot(t)

	detector := NewDetector(versionRunner("Python 3.11.9"))
	_, err := detector.Detect(context.Background(), root, InstallPortable)
	if err == nil {
		t.Fatal("Expected error when forcing portable without embedded interpreter")
	}
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Errorf("Expected EnvironmentError, got %T: %v", err, err)
	}
}

func TestDetectBadRootHint(t *testing.T) {
	detector := NewDetector(versionRunner("Python 3.11.9"))
	_, err := detector.Detect(context.Background(), filepath.Join(t.TempDir(), "missing"), InstallAuto)
	if err == nil {
		t.Fatal("Expected error for nonexistent root hint")
	}
	var envErr *EnvironmentError
	if !errors.As(err, &envErr) {
		t.Errorf("Expected EnvironmentError, got %T: %v", err, err)
	}
}

func TestParseInstallType(t *testing.T) {
	cases := map[string]InstallType{
		"auto":     InstallAuto,
		"":         InstallAuto,
		"Portable": InstallPortable,
		"regular":  InstallRegular,
	}
	for input, want := range cases {
		got, err := ParseInstallType(input)
		if err != nil {
			t.Errorf("ParseInstallType(%q) failed: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseInstallType(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseInstallType("sideways"); err == nil {
		t.Error("Expected error for unknown install type")
	}
}
