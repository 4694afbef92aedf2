package lib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds defaults read from a YAML settings file. Pointer fields are
// nil when the key is absent so that command-line flags can take precedence
// only when they were actually given.
type Settings struct {
	Algorithm      string   `yaml:"algorithm"`
	Threads        *int     `yaml:"threads"`
	Exclude        []string `yaml:"exclude"`
	FollowSymlinks *bool    `yaml:"followSymlinks"`
	Metadata       *bool    `yaml:"metadata"`
	SkipNewer      *bool    `yaml:"skipNewer"`
	IgnoreFile     *bool    `yaml:"ignoreFile"`
}

// ParseSettings decodes and validates YAML settings. Unknown keys are an error.
func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if s.Algorithm != "" {
		if _, err := ParseAlgorithm(s.Algorithm); err != nil {
			return nil, fmt.Errorf("parsing settings: %w", err)
		}
	}
	if s.Threads != nil && *s.Threads < 0 {
		return nil, fmt.Errorf("parsing settings: threads must not be negative, got %d", *s.Threads)
	}
	return &s, nil
}

// LoadSettings reads settings from an explicit path, or from SettingsFilename
// in dir when path is empty. A missing default file is not an error and
// yields empty settings; a missing explicit file is.
func LoadSettings(path, dir string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, SettingsFilename)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	s, err := ParseSettings(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
