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

package match

import (
	"unicode"

	"github.com/docrules/batchreplace/pkg/rule"
)

// 📏 DefaultContextWindow is the number of runes of surrounding text captured
// on each side of a match for preview and diagnostics. Metadata only; never
// part of the match decision.
const DefaultContextWindow = 20

// 🎯 Span is one located occurrence of a rule's search text. Offsets are rune
// offsets into the original text (not bytes), End exclusive, so spans stay
// correct under CJK and other multi-byte scripts.
type Span struct {
	Start         int    `json:"start"`
	End           int    `json:"end"`
	MatchedText   string `json:"matched_text"`
	ContextBefore string `json:"context_before"`
	ContextAfter  string `json:"context_after"`
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one rune.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// 🔍 Finder locates literal occurrences of a rule's search text.
type Finder struct {
	contextWindow int
}

// 🏭 NewFinder creates a finder with the default context window.
func NewFinder() *Finder {
	return &Finder{contextWindow: DefaultContextWindow}
}

// 🏭 NewFinderWithContext creates a finder with a custom context window.
func NewFinderWithContext(window int) *Finder {
	if window < 0 {
		window = 0
	}
	return &Finder{contextWindow: window}
}

// 🔍 FindMatches returns every occurrence of r.SearchText in text, ordered by
// ascending Start and non-overlapping for this one rule: the scan always
// takes the leftmost candidate and resumes immediately after its end.
//
// The search text is a literal string, never a pattern. An empty search text
// yields no matches and is not an error; ill-formed input degrades to an
// empty list so one bad rule cannot abort a pass over the others.
func (f *Finder) FindMatches(text string, r rule.ReplaceRule) []Span {
	if r.SearchText == "" || text == "" {
		return nil
	}

	textRunes := []rune(text)
	searchRunes := []rune(r.SearchText)
	if len(searchRunes) > len(textRunes) {
		return nil
	}

	// Case folding is rune-by-rune so folded offsets stay aligned with the
	// original text; reported offsets are always into the original.
	hay := textRunes
	needle := searchRunes
	if !r.CaseSensitive {
		hay = foldRunes(textRunes)
		needle = foldRunes(searchRunes)
	}

	var spans []Span
	for i := 0; i+len(needle) <= len(hay); {
		if !runesEqual(hay[i:i+len(needle)], needle) {
			i++
			continue
		}
		end := i + len(needle)
		if r.WholeWord && !isWholeWord(textRunes, i, end) {
			i++
			continue
		}
		spans = append(spans, f.newSpan(textRunes, i, end))
		i = end
	}
	return spans
}

// newSpan builds a Span with its bounded context window out of the original runes.
func (f *Finder) newSpan(textRunes []rune, start, end int) Span {
	ctxStart := start - f.contextWindow
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + f.contextWindow
	if ctxEnd > len(textRunes) {
		ctxEnd = len(textRunes)
	}
	return Span{
		Start:         start,
		End:           end,
		MatchedText:   string(textRunes[start:end]),
		ContextBefore: string(textRunes[ctxStart:start]),
		ContextAfter:  string(textRunes[end:ctxEnd]),
	}
}

// isWholeWord reports whether the runes adjacent to [start, end) are not word
// runes. Word runes are Unicode letters, digits, and underscore, so CJK and
// accented scripts participate in boundaries the same way Latin does.
func isWholeWord(textRunes []rune, start, end int) bool {
	if start > 0 && isWordRune(textRunes[start-1]) {
		return false
	}
	if end < len(textRunes) && isWordRune(textRunes[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
