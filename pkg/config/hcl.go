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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/rule"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclRule struct {
		ID            string `hcl:"id,label"`
		SearchText    string `hcl:"search_text"`
		ReplaceText   string `hcl:"replace_text"`
		Enabled       *bool  `hcl:"enabled,optional"`
		CaseSensitive bool   `hcl:"case_sensitive,optional"`
		WholeWord     bool   `hcl:"whole_word,optional"`
		Priority      int    `hcl:"priority,optional"`
	}
	type hclConfig struct {
		Documents []string  `hcl:"documents,optional"`
		OutputDir string    `hcl:"output_dir,optional"`
		Rules     []hclRule `hcl:"rule,block"`
		Options   *struct {
			DryRun             bool   `hcl:"dry_run,optional"`
			StopOnError        bool   `hcl:"stop_on_error,optional"`
			MaxReplacements    int    `hcl:"max_replacements,optional"`
			ConflictResolution string `hcl:"conflict_resolution,optional"`
			StrictValidation   bool   `hcl:"strict_validation,optional"`
		} `hcl:"options,block"`
		Diagnostics *struct {
			MaxEditDistance int `hcl:"max_edit_distance,optional"`
			ScanBudget      int `hcl:"scan_budget,optional"`
		} `hcl:"diagnostics,block"`
	}

	// Decode HCL
	var hc hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Documents: hc.Documents,
		OutputDir: hc.OutputDir,
	}
	for _, hr := range hc.Rules {
		cfg.Rules = append(cfg.Rules, rule.ReplaceRule{
			ID:            hr.ID,
			SearchText:    hr.SearchText,
			ReplaceText:   hr.ReplaceText,
			Enabled:       hr.Enabled == nil || *hr.Enabled,
			CaseSensitive: hr.CaseSensitive,
			WholeWord:     hr.WholeWord,
			Priority:      hr.Priority,
		})
	}
	if hc.Options != nil {
		cfg.Options = Options{
			DryRun:             hc.Options.DryRun,
			StopOnError:        hc.Options.StopOnError,
			MaxReplacements:    hc.Options.MaxReplacements,
			ConflictResolution: hc.Options.ConflictResolution,
			StrictValidation:   hc.Options.StrictValidation,
		}
	}
	if hc.Diagnostics != nil {
		cfg.Diagnostics = Diagnostics{
			MaxEditDistance: hc.Diagnostics.MaxEditDistance,
			ScanBudget:      hc.Diagnostics.ScanBudget,
		}
	}
	return cfg, nil
}
