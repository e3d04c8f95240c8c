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

package conflict

import (
	"sort"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/match"
	"github.com/docrules/batchreplace/pkg/rule"
)

// ⚖️ Policy selects which candidate wins when two rules' spans overlap.
// Only the pre-sweep comparator changes per policy; the sweep itself is
// identical, which is how new policies can be added without touching it.
type Policy int

const (
	// PolicyFirst: lowest priority value wins, then earliest rule index.
	// Deterministic and order-stable; the default.
	PolicyFirst Policy = iota
	// PolicyLongest: the longer span wins.
	PolicyLongest
	// PolicyMostSpecific: the rule with the longer search text wins.
	PolicyMostSpecific
)

// String returns a string representation of Policy.
func (p Policy) String() string {
	switch p {
	case PolicyFirst:
		return "first"
	case PolicyLongest:
		return "longest"
	case PolicyMostSpecific:
		return "most-specific"
	default:
		return "unknown"
	}
}

// 📝 ParsePolicy parses the config-file spelling of a policy.
// The empty string means the default policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "first":
		return PolicyFirst, nil
	case "longest":
		return PolicyLongest, nil
	case "most-specific", "most_specific":
		return PolicyMostSpecific, nil
	default:
		return PolicyFirst, errors.Errorf("unknown conflict resolution policy: %q", s)
	}
}

// 📦 RuleMatches pairs a rule with its candidate (or surviving) spans.
// Slice order follows the caller's rule order throughout.
type RuleMatches struct {
	Rule  rule.ReplaceRule
	Spans []match.Span
}

// candidate is one span tagged with its owning rule for the merge.
type candidate struct {
	ruleIndex int
	rule      rule.ReplaceRule
	span      match.Span
}

// lessFunc orders two candidates; the winner of an overlap is whichever
// sorts earlier.
type lessFunc func(a, b candidate) bool

// comparator returns the pre-sweep ordering for the policy. All policies
// order primarily by ascending start (the sweep accepts leftmost-first);
// they differ only in how same-start overlaps are broken.
func (p Policy) comparator() lessFunc {
	tiebreak := func(a, b candidate) bool {
		if a.rule.Priority != b.rule.Priority {
			return a.rule.Priority < b.rule.Priority
		}
		return a.ruleIndex < b.ruleIndex
	}
	switch p {
	case PolicyLongest:
		return func(a, b candidate) bool {
			if a.span.Start != b.span.Start {
				return a.span.Start < b.span.Start
			}
			if a.span.Len() != b.span.Len() {
				return a.span.Len() > b.span.Len()
			}
			return tiebreak(a, b)
		}
	case PolicyMostSpecific:
		return func(a, b candidate) bool {
			if a.span.Start != b.span.Start {
				return a.span.Start < b.span.Start
			}
			al := utf8.RuneCountInString(a.rule.SearchText)
			bl := utf8.RuneCountInString(b.rule.SearchText)
			if al != bl {
				return al > bl
			}
			return tiebreak(a, b)
		}
	default:
		return func(a, b candidate) bool {
			if a.span.Start != b.span.Start {
				return a.span.Start < b.span.Start
			}
			return tiebreak(a, b)
		}
	}
}

// ⚖️ Resolve merges every rule's candidate spans, orders them with the
// policy's comparator, and sweeps left to right keeping only spans that do
// not overlap an already-accepted span. The returned slice has the same rule
// order as the input with each rule's surviving spans still sorted by start.
//
// Resolving before substitution keeps the engine's rewrite a single linear
// pass with no backtracking, so reported offsets stay valid against the
// original text.
func Resolve(perRule []RuleMatches, policy Policy) []RuleMatches {
	var merged []candidate
	for i, rm := range perRule {
		for _, sp := range rm.Spans {
			merged = append(merged, candidate{ruleIndex: i, rule: rm.Rule, span: sp})
		}
	}

	less := policy.comparator()
	sort.SliceStable(merged, func(a, b int) bool { return less(merged[a], merged[b]) })

	resolved := make([]RuleMatches, len(perRule))
	for i, rm := range perRule {
		resolved[i] = RuleMatches{Rule: rm.Rule}
	}

	lastEnd := -1
	for _, c := range merged {
		if c.span.Start < lastEnd {
			continue // overlaps an accepted span; dropped silently
		}
		resolved[c.ruleIndex].Spans = append(resolved[c.ruleIndex].Spans, c.span)
		lastEnd = c.span.End
	}
	return resolved
}
