// Copyright 2025 docrules LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/conflict"
	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/engine"
	"github.com/docrules/batchreplace/pkg/rule"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔧 Options mirrors engine.Options in config-file form
type Options struct {
	DryRun             bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	StopOnError        bool   `json:"stop_on_error,omitempty" yaml:"stop_on_error,omitempty"`
	MaxReplacements    int    `json:"max_replacements,omitempty" yaml:"max_replacements,omitempty"`
	ConflictResolution string `json:"conflict_resolution,omitempty" yaml:"conflict_resolution,omitempty"`
	StrictValidation   bool   `json:"strict_validation,omitempty" yaml:"strict_validation,omitempty"`
}

// 🔬 Diagnostics carries the analyzer's tunable thresholds
type Diagnostics struct {
	MaxEditDistance int `json:"max_edit_distance,omitempty" yaml:"max_edit_distance,omitempty"`
	ScanBudget      int `json:"scan_budget,omitempty" yaml:"scan_budget,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Documents   []string           `json:"documents" yaml:"documents"`
	OutputDir   string             `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Rules       []rule.ReplaceRule `json:"rules" yaml:"rules"`
	Options     Options            `json:"options,omitempty" yaml:"options,omitempty"`
	Diagnostics Diagnostics        `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Int("documents", len(cfg.Documents)).
		Int("rules", len(cfg.Rules)).
		Msg("configuration loaded")
	return cfg, nil
}

// ✅ Validate checks the configuration as a whole
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return errors.New("at least one rule is required")
	}
	if err := rule.ValidateBatch(c.Rules); err != nil {
		return errors.Errorf("rules: %w", err)
	}
	for _, pattern := range c.Documents {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid document glob: %q", pattern)
		}
	}
	if _, err := conflict.ParsePolicy(c.Options.ConflictResolution); err != nil {
		return err
	}
	return nil
}

// 🔧 EngineOptions converts the config-file options into engine options.
func (c *Config) EngineOptions() engine.Options {
	// Validate already checked the policy spelling.
	policy, _ := conflict.ParsePolicy(c.Options.ConflictResolution)
	return engine.Options{
		DryRun:             c.Options.DryRun,
		StopOnError:        c.Options.StopOnError,
		MaxReplacements:    c.Options.MaxReplacements,
		ConflictResolution: policy,
	}
}

// 🔬 AnalyzerConfig converts the diagnostics block into analyzer config.
func (c *Config) AnalyzerConfig() diagnose.Config {
	return diagnose.Config{
		MaxEditDistance: c.Diagnostics.MaxEditDistance,
		ScanBudget:      c.Diagnostics.ScanBudget,
	}
}
