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

package diagnose

import (
	"context"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/docrules/batchreplace/pkg/match"
	"github.com/docrules/batchreplace/pkg/rule"
)

// 🏷️ IssueType classifies why an exact match is likely failing.
type IssueType string

const (
	IssueSpecialChars IssueType = "special_chars"
	IssueCase         IssueType = "case"
	IssueWhitespace   IssueType = "whitespace"
	IssueFormat       IssueType = "format"
)

// ⚠️ Issue is one actionable finding about a rule.
type Issue struct {
	Type    IssueType `json:"type"`
	Message string    `json:"message"`
}

// 📊 MatchAnalysis reports the exact/fuzzy split so a caller can show a
// human "0 exact, 3 fuzzy".
type MatchAnalysis struct {
	ExactMatchCount int `json:"exact_match_count"`
	FuzzyMatchCount int `json:"fuzzy_match_count"`
}

// 📋 Diagnostics is the per-rule analysis, independent of whether a
// replacement ever ran.
type Diagnostics struct {
	RuleID        string        `json:"rule_id"`
	FieldType     FieldType     `json:"field_type"`
	MatchAnalysis MatchAnalysis `json:"match_analysis"`
	Issues        []Issue       `json:"issues,omitempty"`
	Suggestions   []string      `json:"suggestions,omitempty"`
}

// 🔧 Config holds the tunable fuzzy thresholds. The source product never
// pinned these down, so they are explicit knobs with documented defaults
// rather than hard-coded guesses.
type Config struct {
	// MaxEditDistance is the Levenshtein tolerance of the sliding-window
	// scan. 0 derives max(1, searchLen/5) per rule.
	MaxEditDistance int
	// ScanBudget bounds the total window comparisons of the Levenshtein
	// scan per rule; 0 means DefaultScanBudget. The scan degrades to a
	// prefix scan on huge documents instead of blowing up quadratically.
	ScanBudget int
}

// DefaultScanBudget is the default rune-comparison budget per rule.
const DefaultScanBudget = 2_000_000

// 🔬 Analyzer re-examines text/rule pairs to explain why the exact pass
// found nothing, or less than the fuzzy pass.
type Analyzer struct {
	finder *match.Finder
	cfg    Config
}

// 🏭 NewAnalyzer creates an analyzer with default thresholds.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(Config{})
}

// 🏭 NewAnalyzerWithConfig creates an analyzer with explicit thresholds.
func NewAnalyzerWithConfig(cfg Config) *Analyzer {
	if cfg.ScanBudget <= 0 {
		cfg.ScanBudget = DefaultScanBudget
	}
	return &Analyzer{finder: match.NewFinder(), cfg: cfg}
}

// 🔬 DiagnoseBatch produces one Diagnostics entry per rule, in rule order.
// Rules are independent, so they are analyzed concurrently.
func (a *Analyzer) DiagnoseBatch(ctx context.Context, text string, rules []rule.ReplaceRule) []Diagnostics {
	logger := zerolog.Ctx(ctx)
	out := make([]Diagnostics, len(rules))

	// Shared normalized forms, computed once per batch.
	normText := Normalize(text)
	wsText := NormalizeWhitespace(text)
	digitText := stripToDigits(text)

	g, _ := errgroup.WithContext(ctx)
	for i := range rules {
		i := i // per-iteration copy for Go <1.22 toolchains
		g.Go(func() error {
			out[i] = a.diagnoseRule(text, normText, wsText, digitText, rules[i])
			return nil
		})
	}
	_ = g.Wait() // workers never error

	logger.Debug().Int("rules", len(rules)).Msg("diagnostics pass finished")
	return out
}

func (a *Analyzer) diagnoseRule(text, normText, wsText, digitText string, r rule.ReplaceRule) Diagnostics {
	d := Diagnostics{
		RuleID:    r.ID,
		FieldType: ClassifyFieldType(r.SearchText),
	}
	if r.SearchText == "" {
		d.Suggestions = append(d.Suggestions, "Search text is empty; the rule can never match.")
		return d
	}

	exact := len(a.finder.FindMatches(text, r))
	d.MatchAnalysis.ExactMatchCount = exact

	// Case-insensitive probe, used both for the fuzzy count and for the
	// case issue below.
	ciCount := exact
	if r.CaseSensitive {
		ci := r
		ci.CaseSensitive = false
		ciCount = len(a.finder.FindMatches(text, ci))
	}

	wsCount := countNonOverlapping(foldCase(wsText, r.CaseSensitive), foldCase(NormalizeWhitespace(r.SearchText), r.CaseSensitive))

	normSearch := Normalize(r.SearchText)
	fuzzyCount := countNonOverlapping(normText, normSearch)
	if fuzzyCount == 0 {
		fuzzyCount = a.separatorTolerantCount(digitText, r.SearchText)
	}
	if fuzzyCount == 0 {
		fuzzyCount = a.levenshteinScan(normText, normSearch)
	}
	if ciCount > fuzzyCount {
		fuzzyCount = ciCount
	}
	if wsCount > fuzzyCount {
		fuzzyCount = wsCount
	}
	d.MatchAnalysis.FuzzyMatchCount = fuzzyCount

	d.Issues = a.detectIssues(r, d.FieldType, exact, ciCount, wsCount, digitText)
	d.Suggestions = buildSuggestions(d, exact, fuzzyCount)
	return d
}

// separatorTolerantCount counts occurrences of the rule's digit sequence in
// the document's digit sequence. This is the substring-containment half of
// the fuzzy pass: "138-0000-0000" in the document still counts for a rule
// searching "13800000000".
func (a *Analyzer) separatorTolerantCount(digitText, searchText string) int {
	digits := stripToDigits(searchText)
	if len(digits) < 4 {
		return 0 // too short to be meaningful as a bare digit run
	}
	return strings.Count(digitText, digits)
}

// levenshteinScan slides windows of near-search length over the normalized
// text and counts non-overlapping windows within the edit-distance
// tolerance. Bounded by the configured budget.
func (a *Analyzer) levenshteinScan(normText, normSearch string) int {
	searchRunes := []rune(normSearch)
	textRunes := []rune(normText)
	n := len(searchRunes)
	if n == 0 || len(textRunes) < n/2 {
		return 0
	}

	maxDist := a.cfg.MaxEditDistance
	if maxDist <= 0 {
		maxDist = n / 5
		if maxDist < 1 {
			maxDist = 1
		}
	}

	// Window lengths bracket the search length so pure insertions and
	// deletions are still reachable within the tolerance.
	minLen := n - maxDist
	if minLen < 1 {
		minLen = 1
	}
	maxLen := n + maxDist

	positions := len(textRunes)
	costPerPos := n * (maxLen - minLen + 1)
	if costPerPos > 0 && positions*costPerPos > a.cfg.ScanBudget {
		positions = a.cfg.ScanBudget / costPerPos
	}

	count := 0
	for i := 0; i < positions; {
		hit := false
		for wl := minLen; wl <= maxLen && !hit; wl++ {
			if i+wl > len(textRunes) {
				break
			}
			window := string(textRunes[i : i+wl])
			if fuzzy.LevenshteinDistance(window, normSearch) <= maxDist {
				hit = true
			}
		}
		if hit {
			count++
			i += n
			continue
		}
		i++
	}
	return count
}

// riskyRunes are characters that commonly differ between typed and OCR'd
// text: curly quotes, full-width punctuation, long dashes, invisible spaces.
var riskyRunes = map[rune]struct{}{
	'‘': {}, '’': {}, '“': {}, '”': {}, // curly quotes
	'＂': {}, '＇': {}, '`': {}, '´': {},
	'…': {}, '—': {}, '–': {}, '～': {},
	'（': {}, '）': {}, '【': {}, '】': {}, '《': {}, '》': {},
	'「': {}, '」': {}, '『': {}, '』': {},
	'，': {}, '。': {}, '、': {}, '：': {}, '；': {}, '！': {}, '？': {},
	'·': {}, '•': {},
	' ': {}, '​': {}, '\uFEFF': {},
}

func (a *Analyzer) detectIssues(r rule.ReplaceRule, ft FieldType, exact, ciCount, wsCount int, digitText string) []Issue {
	var issues []Issue

	if risky := riskyIn(r.SearchText); len(risky) > 0 {
		issues = append(issues, Issue{
			Type:    IssueSpecialChars,
			Message: fmt.Sprintf("search text contains characters that often differ between typed and scanned text: %s", strings.Join(risky, " ")),
		})
	}

	if r.CaseSensitive && ciCount > exact {
		issues = append(issues, Issue{
			Type:    IssueCase,
			Message: fmt.Sprintf("%d match(es) are missed only because of letter case", ciCount-exact),
		})
	}

	if wsCount > exact {
		issues = append(issues, Issue{
			Type:    IssueWhitespace,
			Message: "collapsing consecutive whitespace resolves the mismatch",
		})
	}

	if exact == 0 {
		switch ft {
		case FieldPhone, FieldDate, FieldAmount:
			digits := stripToDigits(r.SearchText)
			if len(digits) >= 4 && strings.Contains(digitText, digits) {
				issues = append(issues, Issue{
					Type:    IssueFormat,
					Message: fmt.Sprintf("the digits of this %s appear in the document with a different format", ft),
				})
			}
		}
	}

	return issues
}

func riskyIn(s string) []string {
	var found []string
	seen := map[rune]struct{}{}
	for _, r := range s {
		if _, risky := riskyRunes[r]; !risky {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		found = append(found, fmt.Sprintf("%q", r))
	}
	return found
}

// buildSuggestions turns the issue list into short remediation strings.
// Deterministic and fully offline; no AI collaborator involved.
func buildSuggestions(d Diagnostics, exact, fuzzyCount int) []string {
	var out []string
	for _, issue := range d.Issues {
		switch issue.Type {
		case IssueSpecialChars:
			out = append(out, "Copy the punctuation exactly as it appears in the document, or drop it from the search text.")
		case IssueCase:
			out = append(out, "Disable case sensitivity for this rule, or match the document's letter case.")
		case IssueWhitespace:
			out = append(out, "Collapse repeated spaces and line breaks in the search text.")
		case IssueFormat:
			switch d.FieldType {
			case FieldPhone:
				out = append(out, "Write the phone number with the same separators the document uses.")
			case FieldDate:
				out = append(out, "Align the date's component order and separators with the document.")
			case FieldAmount:
				out = append(out, "Align the amount's currency symbol and digit grouping with the document.")
			default:
				out = append(out, "Align the value's format with how it appears in the document.")
			}
		}
	}
	if exact == 0 && fuzzyCount == 0 && len(d.Issues) == 0 {
		out = append(out, "The search text was not found even under relaxed matching; re-check it against the document.")
	}
	return out
}

func foldCase(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func countNonOverlapping(text, sub string) int {
	if sub == "" {
		return 0
	}
	return strings.Count(text, sub)
}
