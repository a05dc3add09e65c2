// Package manifest reads and writes the project manifest, the TOML file at
// the project root that declares the installed version and, optionally, the
// minimum version an installation must be at before upgrading onto it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jjgreer/appup/internal/version"
)

// Filename is the manifest's name at the project root.
const Filename = "appup.toml"

// Manifest is the parsed project manifest.
type Manifest struct {
	Name           string           `toml:"name,omitempty"`
	Version        version.Version  `toml:"version"`
	MinimumVersion *version.Version `toml:"minimum_version,omitempty"`
}

// Load reads and parses a manifest file. The version field is required.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if m.Version.IsZero() {
		return nil, fmt.Errorf("manifest %s: missing required field %q", path, "version")
	}
	return &m, nil
}

// LoadDir loads the manifest from its conventional location under dir.
func LoadDir(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, Filename))
}

// Save writes the manifest as TOML.
func (m *Manifest) Save(path string) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
