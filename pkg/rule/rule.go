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

package rule

import (
	"gitlab.com/tozd/go/errors"
)

// 🔄 ReplaceRule is a single find/replace rule as authored by a user, an OCR
// pass, or an AI suggestion. Rules are immutable inputs: the engine only ever
// reads them and may hand back a fresh copy (see pkg/fix), never a mutation.
type ReplaceRule struct {
	ID            string `json:"id" yaml:"id"`
	SearchText    string `json:"search_text" yaml:"search_text"`
	ReplaceText   string `json:"replace_text" yaml:"replace_text"`
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
	WholeWord     bool   `json:"whole_word" yaml:"whole_word"`
	Priority      int    `json:"priority" yaml:"priority"` // lower value applies first
}

// 🔍 Eligible reports whether the rule takes part in matching at all.
// Disabled rules and rules with an empty search text are skipped silently.
func (r ReplaceRule) Eligible() bool {
	return r.Enabled && r.SearchText != ""
}

// 📝 Validate checks the fields a rule needs before it can be processed.
// An empty search text on an enabled rule is an input error, reported
// per-rule by the engine rather than thrown past the batch boundary.
func (r ReplaceRule) Validate() error {
	if r.ID == "" {
		return errors.New("rule id is required")
	}
	if r.Enabled && r.SearchText == "" {
		return errors.New("search_text is required for an enabled rule")
	}
	return nil
}

// 🎯 ValidateBatch checks a rule list as a unit: per-rule fields plus the
// batch-level invariant that ids are unique.
func ValidateBatch(rules []ReplaceRule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return errors.Errorf("rule %d (%s): %w", i, r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return errors.Errorf("rule %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
