package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File names searched for a configuration file.
const (
	LocalFileName = ".cargo-junit.yaml"
	userDirName   = "cargo-junit"
	userFileName  = "config.yaml"
)

// Defaults.
const (
	DefaultFormat = "auto"
	DefaultTheme  = "default"
)

// FileConfig is the YAML configuration file. Pointer fields distinguish
// "unset" from the zero value.
type FileConfig struct {
	Format      string   `yaml:"format,omitempty"`
	Theme       string   `yaml:"theme,omitempty"`
	Output      string   `yaml:"output,omitempty"`
	SuitePrefix string   `yaml:"suite_prefix,omitempty"`
	CargoArgs   []string `yaml:"cargo_args,omitempty"`
	Debug       *bool    `yaml:"debug,omitempty"`
	NoColor     *bool    `yaml:"no_color,omitempty"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so typos surface instead of being silently ignored.
func LoadFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg FileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty file decodes to EOF.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// FindConfigPath returns the first configuration file that exists: the
// local file in dir, then the per-user file. It returns "" when neither
// exists.
func FindConfigPath(dir string) string {
	local := filepath.Join(dir, LocalFileName)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	user := filepath.Join(configHome, userDirName, userFileName)
	if _, err := os.Stat(user); err == nil {
		return user
	}
	return ""
}
