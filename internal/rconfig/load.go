package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the optional project configuration file,
// looked for next to the workflow file.
const ConfigFileName = "rebuild.toml"

// FindConfigFile looks for rebuild.toml alongside the workflow file in
// startDir, returning the absolute path if present or "" if not.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	candidate := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}

// LoadFromFile parses the TOML file at path, merging decoded fields over
// NewDefaults. The returned metadata can be used to detect unknown keys via
// MetaData.Undecoded().
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	cfg := NewDefaults()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, md, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, md, nil
}
