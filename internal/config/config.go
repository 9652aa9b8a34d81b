// Package config loads the pomgen configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jakopako/pomgen/internal/browser"
	"github.com/jakopako/pomgen/internal/codegen"
	"github.com/jakopako/pomgen/internal/fetch"
	"github.com/jakopako/pomgen/internal/ingest"
	"github.com/jakopako/pomgen/internal/naming"
	"github.com/jakopako/pomgen/internal/output"
	"github.com/jakopako/pomgen/internal/recording"
	"gopkg.in/yaml.v3"
)

// Config defines the overall structure of the pomgen configuration.
// Values will be taken from a config yml file or environment variables
// or both.
type Config struct {
	Recorder recording.RecorderConfig `yaml:"recorder"`
	Enricher naming.EnricherConfig    `yaml:"enricher"`
	Watcher  ingest.WatcherConfig     `yaml:"watcher"`
	Writer   output.WriterConfig      `yaml:"writer"`
	Codegen  codegen.CodegenConfig    `yaml:"codegen"`
	Fetcher  fetch.FetcherConfig      `yaml:"fetcher"`
	Browser  browser.BrowserConfig    `yaml:"browser"`
}

// NewConfig reads the configuration from configPath. If the file doesn't
// exist the configuration is read from the environment only.
func NewConfig(configPath string) (*Config, error) {
	var config Config
	err := cleanenv.ReadConfig(configPath, &config)
	if err == nil {
		return &config, nil
	}
	if _, statErr := os.Stat(configPath); !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config %s: %w", configPath, err)
	}
	config = Config{}
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("error reading config from environment: %w", err)
	}
	return &config, nil
}

// Write writes c as yaml to w. Secrets are masked.
func (c *Config) Write(w io.Writer) error {
	masked := *c
	if masked.Enricher.APIKey != "" {
		masked.Enricher.APIKey = "********"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return err
	}
	return enc.Close()
}
