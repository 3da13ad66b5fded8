// Package config loads the optional xlimage.yaml file of the CLI.
package config

import (
	"fmt"
	"os"

	"github.com/ukaji3/xlimage-go/pkg/xlimage/imaging"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory when no
// path is given explicitly.
const FileName = "xlimage.yaml"

// Config holds CLI defaults. Command line flags override every field.
type Config struct {
	TempDir string
	Output  OutputConfig
	Log     LogConfig
}

// OutputConfig holds defaults for written pictures.
type OutputConfig struct {
	Format      string
	JPEGQuality int
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Debug bool
	JSON  bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output: OutputConfig{
			JPEGQuality: imaging.DefaultJPEGQuality,
		},
	}
}

// Load reads the config file at path and applies it on top of the defaults.
// With an empty path, FileName in the working directory is used if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Apply parsed values on top of defaults.
	if y.TempDir != "" {
		cfg.TempDir = y.TempDir
	}
	if y.Output.Format != "" {
		cfg.Output.Format = y.Output.Format
	}
	if y.Output.JPEGQuality != nil {
		cfg.Output.JPEGQuality = *y.Output.JPEGQuality
	}
	if y.Log.Debug != nil {
		cfg.Log.Debug = *y.Log.Debug
	}
	if y.Log.JSON != nil {
		cfg.Log.JSON = *y.Log.JSON
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	if _, err := imaging.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	return nil
}

type yamlConfig struct {
	TempDir string `yaml:"temp_dir"`

	Output struct {
		Format      string `yaml:"format"`
		JPEGQuality *int   `yaml:"jpeg_quality"`
	} `yaml:"output"`

	Log struct {
		Debug *bool `yaml:"debug"`
		JSON  *bool `yaml:"json"`
	} `yaml:"log"`
}
