// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gabrielekarra/neurocode/pkg/checks"
)

// defaultEnabledChecks lists every check enabled by DefaultConfig, in the
// order they're written back out by SaveConfig.
var defaultEnabledChecks = []string{
	"UNUSED_IMPORT",
	"UNUSED_FUNCTION",
	"HIGH_FANOUT",
	"UNUSED_PARAM",
	"LONG_FUNCTION",
	"CALL_CYCLE",
}

// Config holds the engine settings for one repository.
type Config struct {
	FanoutThreshold       int               `yaml:"fanout_threshold"`
	LongFunctionThreshold int               `yaml:"long_function_threshold"`
	EnabledChecks         []string          `yaml:"enabled_checks"`
	SeverityOverrides     map[string]string `yaml:"severity_overrides"`

	EmbeddingProvider string `yaml:"embedding_provider,omitempty"`
	EmbedWorkers      int    `yaml:"embed_workers,omitempty"`
}

// DefaultConfig returns the engine's built-in defaults.
func DefaultConfig() Config {
	enabled := make([]string, len(defaultEnabledChecks))
	copy(enabled, defaultEnabledChecks)
	return Config{
		FanoutThreshold:       10,
		LongFunctionThreshold: 50,
		EnabledChecks:         enabled,
		SeverityOverrides:     map[string]string{},
		EmbeddingProvider:     "mock",
		EmbedWorkers:          4,
	}
}

// ConfigDir returns the .neurocode directory under repoRoot.
func ConfigDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".neurocode")
}

// ConfigPath returns the project.yaml path under repoRoot's config dir.
func ConfigPath(repoRoot string) string {
	return filepath.Join(ConfigDir(repoRoot), "project.yaml")
}

// Load reads the config for repoRoot, returning DefaultConfig if no
// project.yaml exists yet.
func Load(repoRoot string) (Config, error) {
	path := ConfigPath(repoRoot)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to repoRoot's project.yaml, creating the .neurocode
// directory if needed.
func SaveConfig(repoRoot string, cfg Config) error {
	dir := ConfigDir(repoRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := ConfigPath(repoRoot)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ChecksConfig converts Config into the checks.Config shape checks.Run
// expects.
func (c Config) ChecksConfig() checks.Config {
	enabled := map[checks.Code]bool{}
	for _, name := range c.EnabledChecks {
		enabled[checks.Code(name)] = true
	}

	overrides := map[checks.Code]checks.Severity{}
	for code, sev := range c.SeverityOverrides {
		overrides[checks.Code(code)] = checks.Severity(sev)
	}

	return checks.Config{
		FanoutThreshold:       c.FanoutThreshold,
		LongFunctionThreshold: c.LongFunctionThreshold,
		EnabledChecks:         enabled,
		SeverityOverrides:     overrides,
	}
}
