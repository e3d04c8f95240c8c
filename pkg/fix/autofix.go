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

package fix

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/match"
	"github.com/docrules/batchreplace/pkg/rule"
)

// 🔧 Fixer proposes corrected rules using the same normalization layer as
// the diagnostics pass.
type Fixer struct {
	finder *match.Finder
}

// 🏭 NewFixer creates a fixer.
func NewFixer() *Fixer {
	return &Fixer{finder: match.NewFinder()}
}

// 🔧 AutoFixRules returns a slice of the same length and order as rules,
// each entry either the caller's rule unchanged or a shallow copy with the
// search text normalized (trimmed, whitespace-collapsed) or case
// sensitivity turned off. A change is adopted only when it strictly
// increases the exact match count against this text, which is what makes
// running the fixer twice a no-op. ReplaceText, Priority, and ID are never
// touched, and no rule is ever invented or dropped.
func (f *Fixer) AutoFixRules(ctx context.Context, text string, rules []rule.ReplaceRule) []rule.ReplaceRule {
	logger := zerolog.Ctx(ctx)

	fixed := make([]rule.ReplaceRule, len(rules))
	for i, r := range rules {
		fixed[i] = f.fixRule(text, r)
		if fixed[i] != r {
			logger.Debug().
				Str("rule_id", r.ID).
				Str("search_text", r.SearchText).
				Str("fixed_search_text", fixed[i].SearchText).
				Bool("case_sensitive", fixed[i].CaseSensitive).
				Msg("auto-fixed rule")
		}
	}
	return fixed
}

func (f *Fixer) fixRule(text string, r rule.ReplaceRule) rule.ReplaceRule {
	if !r.Eligible() {
		return r
	}
	baseline := len(f.finder.FindMatches(text, r))

	best := r
	bestCount := baseline
	for _, candidate := range candidates(r) {
		count := len(f.finder.FindMatches(text, candidate))
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// candidates enumerates the allowed repairs, mildest first. Later entries
// only win on a strictly higher match count, so the mildest sufficient
// repair is the one adopted.
func candidates(r rule.ReplaceRule) []rule.ReplaceRule {
	var out []rule.ReplaceRule

	add := func(searchText string, caseSensitive bool) {
		c := r
		c.SearchText = searchText
		c.CaseSensitive = caseSensitive
		if c.SearchText == "" {
			return
		}
		for _, prev := range out {
			if prev == c {
				return
			}
		}
		if c != r {
			out = append(out, c)
		}
	}

	trimmed := strings.TrimSpace(r.SearchText)
	collapsed := diagnose.NormalizeWhitespace(r.SearchText)

	add(trimmed, r.CaseSensitive)
	add(collapsed, r.CaseSensitive)
	if r.CaseSensitive {
		add(r.SearchText, false)
		add(trimmed, false)
		add(collapsed, false)
	}
	return out
}
