package wheelhouse

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Artifact describes one prebuilt wheel in the catalog: where to fetch it,
// what the file is called, and which interpreter/platform it was built for.
type Artifact struct {
	// Package is the distribution name (e.g., "insightface"). It doubles as
	// the module name probed for the already-installed check.
	Package string

	// PythonVersion is the interpreter version the wheel targets (e.g., "3.11").
	PythonVersion string

	// URL is the HTTPS location of the wheel.
	URL string

	// FileName is the wheel file name (PEP 427 format).
	FileName string

	// PlatformTag is the wheel's platform tag (e.g., "win_amd64").
	PlatformTag string
}

// Catalog maps Python versions to wheel artifacts. It is built once at
// startup and treated as immutable; pass it explicitly to Resolve rather
// than reading ambient global state.
type Catalog struct {
	artifacts map[string]Artifact
}

const (
	insightfaceVersion = "0.7.3"
	assetHost          = "https://github.com/Gourieff/Assets/raw/main/Insightface"
	defaultPlatformTag = "win_amd64"
)

// DefaultCatalog returns the built-in catalog of insightface wheels.
// Filenames follow insightface-<ver>-cp<XY>-cp<XY>-win_amd64.whl.
func DefaultCatalog() *Catalog {
	c := &Catalog{artifacts: make(map[string]Artifact)}
	for _, pyver := range []string{"3.10", "3.11", "3.12", "3.13"} {
		v, _ := ParseVersion(pyver)
		tag := "cp" + v.MinorStringCompact()
		fileName := fmt.Sprintf("insightface-%s-%s-%s-%s.whl", insightfaceVersion, tag, tag, defaultPlatformTag)
		c.artifacts[pyver] = Artifact{
			Package:       "insightface",
			PythonVersion: pyver,
			URL:           assetHost + "/" + fileName,
			FileName:      fileName,
			PlatformTag:   defaultPlatformTag,
		}
	}
	return c
}

// catalogFile is the on-disk TOML representation accepted by LoadCatalogFile.
type catalogFile struct {
	Package string `toml:"package"`
	Wheels  map[string]struct {
		URL         string `toml:"url"`
		FileName    string `toml:"filename"`
		PlatformTag string `toml:"platform_tag"`
	} `toml:"wheels"`
}

// LoadCatalogFile reads a catalog from a TOML file. Each [wheels."X.Y"]
// table must carry url and filename; platform_tag defaults to win_amd64.
// The result replaces the built-in catalog wholesale.
func LoadCatalogFile(path string) (*Catalog, error) {
	var cf catalogFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("error reading catalog file: %v", err)
	}
	if cf.Package == "" {
		return nil, fmt.Errorf("catalog file %s: missing package name", path)
	}
	if len(cf.Wheels) == 0 {
		return nil, fmt.Errorf("catalog file %s: no wheel entries", path)
	}

	c := &Catalog{artifacts: make(map[string]Artifact)}
	for pyver, w := range cf.Wheels {
		if _, err := ParseVersion(pyver); err != nil {
			return nil, fmt.Errorf("catalog file %s: bad version key %q: %v", path, pyver, err)
		}
		if w.URL == "" || w.FileName == "" {
			return nil, fmt.Errorf("catalog file %s: entry %q needs url and filename", path, pyver)
		}
		tag := w.PlatformTag
		if tag == "" {
			tag = defaultPlatformTag
		}
		c.artifacts[pyver] = Artifact{
			Package:       cf.Package,
			PythonVersion: pyver,
			URL:           w.URL,
			FileName:      w.FileName,
			PlatformTag:   tag,
		}
	}
	return c, nil
}

// Lookup returns the artifact for a Python version, or UnsupportedVersionError
// if the catalog has no entry for it.
func (c *Catalog) Lookup(pythonVersion string) (Artifact, error) {
	a, ok := c.artifacts[pythonVersion]
	if !ok {
		return Artifact{}, &UnsupportedVersionError{
			Version:   pythonVersion,
			Supported: c.Versions(),
		}
	}
	return a, nil
}

// Versions returns the supported Python versions in sorted order.
func (c *Catalog) Versions() []string {
	versions := make([]string, 0, len(c.artifacts))
	for v := range c.artifacts {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
