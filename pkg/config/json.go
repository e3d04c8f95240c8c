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
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/rule"
)

func init() {
	Register(&JSONParser{})
}

// 🔧 JSONParser implements the Parser interface for JSON files. The
// surrounding product speaks JSON, so rule lists exported from it load
// without conversion.
type JSONParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

// 📝 Parse parses the config from JSON
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	type jsonRule struct {
		ID            string `json:"id"`
		SearchText    string `json:"search_text"`
		ReplaceText   string `json:"replace_text"`
		Enabled       *bool  `json:"enabled,omitempty"`
		CaseSensitive bool   `json:"case_sensitive,omitempty"`
		WholeWord     bool   `json:"whole_word,omitempty"`
		Priority      int    `json:"priority,omitempty"`
	}
	type jsonConfig struct {
		Documents   []string    `json:"documents,omitempty"`
		OutputDir   string      `json:"output_dir,omitempty"`
		Rules       []jsonRule  `json:"rules"`
		Options     Options     `json:"options,omitempty"`
		Diagnostics Diagnostics `json:"diagnostics,omitempty"`
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, errors.Errorf("unmarshaling JSON: %w", err)
	}

	cfg := &Config{
		Documents:   jc.Documents,
		OutputDir:   jc.OutputDir,
		Options:     jc.Options,
		Diagnostics: jc.Diagnostics,
	}
	for _, jr := range jc.Rules {
		cfg.Rules = append(cfg.Rules, rule.ReplaceRule{
			ID:            jr.ID,
			SearchText:    jr.SearchText,
			ReplaceText:   jr.ReplaceText,
			Enabled:       jr.Enabled == nil || *jr.Enabled,
			CaseSensitive: jr.CaseSensitive,
			WholeWord:     jr.WholeWord,
			Priority:      jr.Priority,
		})
	}
	return cfg, nil
}
