package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestName is the workspace manifest file looked up at the listing
// root.
const ManifestName = ".inkwell.yml"

// Manifest holds per-workspace overrides.
type Manifest struct {
	// Ignore adds doublestar globs to the built-in ignore set.
	Ignore []string `yaml:"ignore"`
	// Languages maps file extensions to language tags, applied on top
	// of the built-in detection table.
	Languages map[string]string `yaml:"languages"`
}

// LoadManifest reads the manifest at root. A missing manifest is not an
// error; the zero Manifest is returned.
func LoadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ManifestName, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
	}
	return &m, nil
}
