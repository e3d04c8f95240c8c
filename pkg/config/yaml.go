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
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/docrules/batchreplace/pkg/rule"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	// Define YAML schema. Enabled is a pointer so a rule that omits it
	// defaults to enabled, the way rule authors expect.
	type yamlRule struct {
		ID            string `yaml:"id"`
		SearchText    string `yaml:"search_text"`
		ReplaceText   string `yaml:"replace_text"`
		Enabled       *bool  `yaml:"enabled,omitempty"`
		CaseSensitive bool   `yaml:"case_sensitive,omitempty"`
		WholeWord     bool   `yaml:"whole_word,omitempty"`
		Priority      int    `yaml:"priority,omitempty"`
	}
	type yamlConfig struct {
		Documents   []string    `yaml:"documents,omitempty"`
		OutputDir   string      `yaml:"output_dir,omitempty"`
		Rules       []yamlRule  `yaml:"rules"`
		Options     Options     `yaml:"options,omitempty"`
		Diagnostics Diagnostics `yaml:"diagnostics,omitempty"`
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, errors.Errorf("unmarshaling YAML: %w", err)
	}

	cfg := &Config{
		Documents:   yc.Documents,
		OutputDir:   yc.OutputDir,
		Options:     yc.Options,
		Diagnostics: yc.Diagnostics,
	}
	for _, yr := range yc.Rules {
		cfg.Rules = append(cfg.Rules, rule.ReplaceRule{
			ID:            yr.ID,
			SearchText:    yr.SearchText,
			ReplaceText:   yr.ReplaceText,
			Enabled:       yr.Enabled == nil || *yr.Enabled,
			CaseSensitive: yr.CaseSensitive,
			WholeWord:     yr.WholeWord,
			Priority:      yr.Priority,
		})
	}
	return cfg, nil
}
