package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/veracitylab/veracity/pkg/veracity/internalerr"
)

// Config is the YAML configuration shared by the veracity commands
type Config struct {
	Model     Model     `yaml:"model"`
	Store     Storage   `yaml:"store"`
	Server    Server    `yaml:"server"`
	Stopwords Stopwords `yaml:"stopwords"`
	TopTerms  int       `yaml:"top_terms"`
}

// Model points at the trained bundle
type Model struct {
	Path string `yaml:"path"`
}

// Storage selects how verdicts persist
type Storage struct {
	Driver string `yaml:"driver"` // sqlite, memory, or empty for none
	Path   string `yaml:"path"`
}

// Server configures the HTTP API
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Stopwords optionally replaces the built-in list
type Stopwords struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Store:    Storage{Driver: "memory"},
		Server:   Server{Addr: ":8532"},
		TopTerms: 5,
	}
}

// Load reads a YAML configuration file over the defaults, so absent fields
// keep their default values
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no command could run with
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "", "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("%w: sqlite store needs a path", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", internalerr.ErrInvalidConfig, c.Store.Driver)
	}
	return nil
}

// LoadStopwords reads a stopword list: one word per line, blank lines and
// #-comments skipped, everything lowercased
func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	return words, nil
}
