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

package validate

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docrules/batchreplace/pkg/engine"
	"github.com/docrules/batchreplace/pkg/match"
	"github.com/docrules/batchreplace/pkg/rule"
)

// MinSearchLen is the rune length below which a search text is flagged as
// risky and overly broad.
const MinSearchLen = 2

// 🔧 Options select which checks run and how findings are graded.
// StrictMode keeps integrity findings as blocking errors (use before a real
// write); without it they are downgraded to warnings (use for previews).
type Options struct {
	CheckIntegrity   bool
	CheckConsistency bool
	CheckQuality     bool
	StrictMode       bool
}

// DefaultOptions runs every check in lenient mode.
func DefaultOptions() Options {
	return Options{CheckIntegrity: true, CheckConsistency: true, CheckQuality: true}
}

// 📋 Validation is the advisory outcome. It never blocks a completed
// replacement by itself; only a caller applying StrictMode treats Errors as
// a reason not to commit.
type Validation struct {
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// 🔎 Validator re-checks a finished batch result against the original text.
type Validator struct{}

// 🏭 NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// 🔎 ValidateBatchResult checks structural integrity of the recorded spans,
// cross-rule consistency, and quality heuristics over the rules themselves.
func (v *Validator) ValidateBatchResult(result *engine.BatchReplaceResult, rules []rule.ReplaceRule, opts Options) Validation {
	val := Validation{Valid: true}
	if result == nil {
		val.Valid = false
		val.Errors = append(val.Errors, "no result to validate")
		return val
	}

	// grade routes a would-be error according to StrictMode.
	grade := func(finding string) {
		if opts.StrictMode {
			val.Errors = append(val.Errors, finding)
		} else {
			val.Warnings = append(val.Warnings, finding)
		}
	}

	if opts.CheckIntegrity {
		v.checkIntegrity(result, rules, grade)
	}
	if opts.CheckConsistency {
		v.checkConsistency(result, rules, &val)
	}
	if opts.CheckQuality {
		v.checkQuality(result, rules, &val)
	}

	val.Valid = len(val.Errors) == 0
	return val
}

// checkIntegrity verifies every recorded span against the original text and
// re-verifies the resolver's non-overlap postcondition, then replays the
// surviving spans to confirm the final text is reachable from the original.
func (v *Validator) checkIntegrity(result *engine.BatchReplaceResult, rules []rule.ReplaceRule, grade func(string)) {
	origRunes := []rune(result.OriginalText)
	textLen := len(origRunes)

	type owned struct {
		ruleID string
		span   match.Span
	}
	var all []owned
	corrupted := false

	for _, rr := range result.Results {
		for _, sp := range rr.Matches {
			if sp.Start < 0 || sp.Start >= sp.End || sp.End > textLen {
				grade(fmt.Sprintf("rule %s: span [%d,%d) out of bounds for text of %d runes", rr.RuleID, sp.Start, sp.End, textLen))
				corrupted = true
				continue
			}
			if got := string(origRunes[sp.Start:sp.End]); got != sp.MatchedText {
				grade(fmt.Sprintf("rule %s: span [%d,%d) records %q but the text reads %q", rr.RuleID, sp.Start, sp.End, sp.MatchedText, got))
				corrupted = true
			}
			all = append(all, owned{ruleID: rr.RuleID, span: sp})
		}
	}

	sort.Slice(all, func(a, b int) bool { return all[a].span.Start < all[b].span.Start })
	for i := 0; i+1 < len(all); i++ {
		if all[i].span.End > all[i+1].span.Start {
			grade(fmt.Sprintf("rules %s and %s have overlapping spans [%d,%d) and [%d,%d)",
				all[i].ruleID, all[i+1].ruleID,
				all[i].span.Start, all[i].span.End,
				all[i+1].span.Start, all[i+1].span.End))
			corrupted = true
		}
	}

	if corrupted {
		return
	}

	replaceTexts := make(map[string]string, len(rules))
	for _, r := range rules {
		replaceTexts[r.ID] = r.ReplaceText
	}
	var b strings.Builder
	pos := 0
	for _, o := range all {
		b.WriteString(string(origRunes[pos:o.span.Start]))
		b.WriteString(replaceTexts[o.ruleID])
		pos = o.span.End
	}
	b.WriteString(string(origRunes[pos:]))

	// A final text equal to the original is a dry run (or all no-op rules);
	// anything else must be exactly the replay of the recorded spans.
	if replayed := b.String(); result.FinalText != replayed && result.FinalText != result.OriginalText {
		grade("final text is not reachable from the original by applying the recorded spans")
	}
}

// checkConsistency warns when one rule's replacement output contains another
// rule's search text. The engine intentionally performs a single
// substitution pass, so that output was never re-matched; the warning tells
// the caller the result may read as if one rule undid another.
func (v *Validator) checkConsistency(result *engine.BatchReplaceResult, rules []rule.ReplaceRule, val *Validation) {
	for _, a := range rules {
		ra := result.ResultFor(a.ID)
		if ra == nil || ra.ReplacedCount == 0 || a.ReplaceText == "" {
			continue
		}
		for _, b := range rules {
			if a.ID == b.ID || !b.Eligible() {
				continue
			}
			if strings.Contains(a.ReplaceText, b.SearchText) {
				val.Warnings = append(val.Warnings,
					fmt.Sprintf("rule %s writes text that rule %s searches for; replacements run in one pass, so it was not re-replaced", a.ID, b.ID))
			}
		}
	}
}

// checkQuality raises advisory findings about the rules themselves.
func (v *Validator) checkQuality(result *engine.BatchReplaceResult, rules []rule.ReplaceRule, val *Validation) {
	for _, r := range rules {
		if !r.Eligible() {
			continue
		}
		if r.SearchText == r.ReplaceText {
			val.Warnings = append(val.Warnings, fmt.Sprintf("rule %s replaces text with itself", r.ID))
		}
		if utf8.RuneCountInString(r.SearchText) < MinSearchLen {
			val.Warnings = append(val.Warnings, fmt.Sprintf("rule %s has a %d-rune search text; matches may be overly broad", r.ID, utf8.RuneCountInString(r.SearchText)))
		}

		rr := result.ResultFor(r.ID)
		if rr == nil {
			continue
		}
		if rr.TotalMatches > 0 && rr.ReplacedCount == 0 {
			val.Recommendations = append(val.Recommendations,
				fmt.Sprintf("rule %s lost all %d matches to overlapping rules; review rule priorities", r.ID, rr.TotalMatches))
		}
		if rr.Truncated {
			val.Recommendations = append(val.Recommendations,
				fmt.Sprintf("rule %s was cut short by the replacement cap; raise max_replacements to apply the rest", r.ID))
		}
	}
}
