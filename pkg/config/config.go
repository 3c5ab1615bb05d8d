// Package config loads cleanpack settings from the package being
// prepared: .cleanpack.yml, .cleanpack.json (comments allowed), or a
// "cleanpack" key inside package.json, first hit wins. A missing
// config is not an error; flags layered on top by the CLI override
// whatever was loaded.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Config holds the file-configurable settings.
type Config struct {
	// Comments lists the comment types to strip (license, jsdoc,
	// regular).
	Comments []string `yaml:"comments" json:"comments"`

	// Fields are manifest fields to delete beyond the defaults.
	Fields []string `yaml:"fields" json:"fields"`

	// KeepScripts replaces the default lifecycle-script keep list.
	KeepScripts []string `yaml:"keepScripts" json:"keepScripts"`

	// Exclude are gitignore-style patterns of files to delete.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Junk extends the built-in junk-file patterns.
	Junk []string `yaml:"junk" json:"junk"`

	// FlattenDir, when set, is the directory flattened to the root.
	FlattenDir string `yaml:"flattenDir" json:"flattenDir"`

	// Extensions overrides the script extensions to process.
	Extensions []string `yaml:"extensions" json:"extensions"`
}

var yamlNames = []string{".cleanpack.yml", ".cleanpack.yaml"}

// Load reads the first config found under root. When none exists it
// returns an empty Config and no error.
func Load(root string) (*Config, error) {
	for _, name := range yamlNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		return &cfg, nil
	}

	if data, err := os.ReadFile(filepath.Join(root, ".cleanpack.json")); err == nil {
		var cfg Config
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing .cleanpack.json: %w", err)
		}
		return &cfg, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .cleanpack.json: %w", err)
	}

	return loadFromManifest(root)
}

// loadFromManifest picks up a "cleanpack" key from package.json.
func loadFromManifest(root string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		// No manifest here is the caller's problem, not config's.
		return &Config{}, nil
	}
	var manifest struct {
		Cleanpack *Config `json:"cleanpack"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return &Config{}, nil
	}
	if manifest.Cleanpack == nil {
		return &Config{}, nil
	}
	return manifest.Cleanpack, nil
}
