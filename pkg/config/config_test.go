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
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrules/batchreplace/pkg/conflict"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext() context.Context {
	logger := zerolog.New(io.Discard)
	return logger.WithContext(context.Background())
}

func TestLoadYAML(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "full_config",
			config: `
documents:
  - "docs/**/*.txt"
output_dir: out
rules:
  - id: company
    search_text: "ACME Corp"
    replace_text: "Globex"
    case_sensitive: true
    whole_word: true
    priority: 1
  - id: phone
    search_text: "13800000000"
    replace_text: "13900000000"
options:
  dry_run: true
  max_replacements: 10
  conflict_resolution: longest
  strict_validation: true
diagnostics:
  max_edit_distance: 2
  scan_budget: 500000
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Rules, 2)
				assert.Equal(t, []string{"docs/**/*.txt"}, cfg.Documents)
				assert.Equal(t, "out", cfg.OutputDir)

				assert.Equal(t, "company", cfg.Rules[0].ID)
				assert.Equal(t, "ACME Corp", cfg.Rules[0].SearchText)
				assert.True(t, cfg.Rules[0].CaseSensitive)
				assert.True(t, cfg.Rules[0].WholeWord)
				assert.Equal(t, 1, cfg.Rules[0].Priority)
				assert.True(t, cfg.Rules[0].Enabled, "enabled defaults to true when omitted")

				opts := cfg.EngineOptions()
				assert.True(t, opts.DryRun)
				assert.Equal(t, 10, opts.MaxReplacements)
				assert.Equal(t, conflict.PolicyLongest, opts.ConflictResolution)
				assert.True(t, cfg.Options.StrictValidation)

				ac := cfg.AnalyzerConfig()
				assert.Equal(t, 2, ac.MaxEditDistance)
				assert.Equal(t, 500000, ac.ScanBudget)
			},
		},
		{
			name: "explicitly_disabled_rule",
			config: `
rules:
  - id: off
    search_text: foo
    replace_text: bar
    enabled: false
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Rules, 1)
				assert.False(t, cfg.Rules[0].Enabled)
			},
		},
		{
			name:        "no_rules",
			config:      `documents: ["*.txt"]`,
			wantErr:     true,
			errContains: "at least one rule",
		},
		{
			name: "duplicate_rule_ids",
			config: `
rules:
  - id: dup
    search_text: a
  - id: dup
    search_text: b
`,
			wantErr:     true,
			errContains: "duplicate id",
		},
		{
			name: "bad_conflict_policy",
			config: `
rules:
  - id: r1
    search_text: a
options:
  conflict_resolution: newest
`,
			wantErr:     true,
			errContains: "conflict resolution",
		},
		{
			name: "bad_document_glob",
			config: `
documents:
  - "docs/[unclosed"
rules:
  - id: r1
    search_text: a
`,
			wantErr:     true,
			errContains: "invalid document glob",
		},
		{
			name:        "malformed_yaml",
			config:      `rules: [`,
			wantErr:     true,
			errContains: "unmarshaling YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.config)
			cfg, err := Load(testContext(), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadHCL(t *testing.T) {
	config := `
documents = ["docs/*.txt"]
output_dir = "out"

rule "company" {
  search_text    = "ACME Corp"
  replace_text   = "Globex"
  case_sensitive = true
}

rule "disabled" {
  search_text  = "foo"
  replace_text = "bar"
  enabled      = false
}

options {
  conflict_resolution = "most-specific"
  max_replacements    = 5
}

diagnostics {
  max_edit_distance = 1
}
`
	path := writeConfig(t, "config.hcl", config)
	cfg, err := Load(testContext(), path)
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "company", cfg.Rules[0].ID)
	assert.Equal(t, "ACME Corp", cfg.Rules[0].SearchText)
	assert.True(t, cfg.Rules[0].Enabled)
	assert.False(t, cfg.Rules[1].Enabled)

	opts := cfg.EngineOptions()
	assert.Equal(t, conflict.PolicyMostSpecific, opts.ConflictResolution)
	assert.Equal(t, 5, opts.MaxReplacements)
	assert.Equal(t, 1, cfg.AnalyzerConfig().MaxEditDistance)
}

func TestLoadJSON(t *testing.T) {
	config := `{
  "documents": ["*.txt"],
  "rules": [
    {"id": "r1", "search_text": "foo", "replace_text": "bar"},
    {"id": "r2", "search_text": "甲方", "replace_text": "北京某某科技有限公司", "whole_word": false}
  ],
  "options": {"dry_run": true}
}`
	path := writeConfig(t, "config.json", config)
	cfg, err := Load(testContext(), path)
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 2)
	assert.True(t, cfg.Rules[0].Enabled)
	assert.Equal(t, "甲方", cfg.Rules[1].SearchText)
	assert.True(t, cfg.EngineOptions().DryRun)
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "rules = []")
	_, err := Load(testContext(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(testContext(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &YAMLParser{}, GetParser("a.yaml"))
	assert.IsType(t, &YAMLParser{}, GetParser("a.yml"))
	assert.IsType(t, &HCLParser{}, GetParser("a.hcl"))
	assert.IsType(t, &JSONParser{}, GetParser("a.json"))
	assert.Nil(t, GetParser("a.ini"))
}
