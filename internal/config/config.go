// SPDX-License-Identifier: Apache-2.0

// Package config loads server settings from an optional YAML file with
// TENDER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tenderkit/tender-citations/internal/logging"
)

const envPrefix = "TENDER"

const (
	DefaultServerName       = "tender-citations"
	DefaultServerVersion    = "0.1.0"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMaxDocumentBytes = 32 << 20
)

// ErrOutsideRoots is returned for document paths outside documents.roots.
var ErrOutsideRoots = errors.New("document path is outside the configured roots")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       logging.Config  `mapstructure:"log"`
	Locator   LocatorConfig   `mapstructure:"locator"`
	Documents DocumentsConfig `mapstructure:"documents"`
}

type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type LocatorConfig struct {
	// ExactFallback enables the plain substring search after a failed
	// normalized search.
	ExactFallback bool `mapstructure:"exact_fallback"`
}

type DocumentsConfig struct {
	// Roots lists the directories resolve_evidence may read from.
	Roots    []string `mapstructure:"roots"`
	MaxBytes int64    `mapstructure:"max_bytes"`
}

// newViper registers every key with its default so that environment
// variables such as TENDER_LOG_LEVEL are seen by Unmarshal even without a
// config file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.name", DefaultServerName)
	v.SetDefault("server.version", DefaultServerVersion)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("locator.exact_fallback", true)
	v.SetDefault("documents.roots", []string{"."})
	v.SetDefault("documents.max_bytes", DefaultMaxDocumentBytes)
	return v
}

// Load reads the YAML file at path, if any, merges environment overrides and
// validates the result. An empty path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	cfg, err := unmarshalAndFinalize(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// finalize makes every document root absolute and clean, following symlinks
// for roots that exist.
func (c *Config) finalize() error {
	roots := make([]string, 0, len(c.Documents.Roots))
	for _, r := range c.Documents.Roots {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("failed to resolve document root %q: %w", r, err)
		}
		roots = append(roots, resolveRoot(abs))
	}
	c.Documents.Roots = roots
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is invalid; expected json|console", c.Log.Format)
	}
	if len(c.Documents.Roots) == 0 {
		return errors.New("documents.roots must name at least one directory")
	}
	if c.Documents.MaxBytes <= 0 {
		return fmt.Errorf("documents.max_bytes must be positive, got %d", c.Documents.MaxBytes)
	}
	return nil
}

// Allow resolves path against the first root when relative and checks that
// the result lies inside one of the roots. Symlinks are followed on both
// sides, so a link inside a root cannot point outside it. The returned path
// is the resolved one.
func (d DocumentsConfig) Allow(path string) (string, error) {
	if len(d.Roots) == 0 {
		return "", ErrOutsideRoots
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Roots[0], path)
	}
	path = filepath.Clean(path)
	if !d.contains(path) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoots, path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve document path %q: %w", path, err)
	}
	if !d.contains(resolved) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideRoots, path, resolved)
	}
	return resolved, nil
}

func (d DocumentsConfig) contains(path string) bool {
	for _, root := range d.Roots {
		for _, r := range []string{root, resolveRoot(root)} {
			rel, err := filepath.Rel(r, path)
			if err != nil {
				continue
			}
			if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return true
			}
		}
	}
	return false
}

// resolveRoot follows symlinks in root. A root that does not exist yet is
// returned unchanged.
func resolveRoot(root string) string {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return filepath.Clean(root)
	}
	return resolved
}
