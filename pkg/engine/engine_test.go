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

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrules/batchreplace/pkg/conflict"
	"github.com/docrules/batchreplace/pkg/rule"
)

func enabledRule(id, search, replace string) rule.ReplaceRule {
	return rule.ReplaceRule{ID: id, SearchText: search, ReplaceText: replace, Enabled: true, CaseSensitive: true}
}

func TestBatchReplace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		text      string
		rules     []rule.ReplaceRule
		opts      Options
		wantFinal string
		wantOK    bool
		check     func(t *testing.T, result *BatchReplaceResult)
	}{
		{
			name:      "empty_rule_list_is_identity",
			text:      "Hello World",
			rules:     nil,
			wantFinal: "Hello World",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.Zero(t, result.TotalMatches)
				assert.Zero(t, result.TotalReplacements)
			},
		},
		{
			name:      "single_rule_replaces_all_occurrences",
			text:      "foo bar foo",
			rules:     []rule.ReplaceRule{enabledRule("r1", "foo", "baz")},
			wantFinal: "baz bar baz",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				rr := result.ResultFor("r1")
				require.NotNil(t, rr)
				assert.Equal(t, 2, rr.ReplacedCount)
				assert.Equal(t, 2, rr.TotalMatches)
			},
		},
		{
			name: "case_insensitive_canonicalization",
			text: "ACME Corp signed with acme corp today",
			rules: []rule.ReplaceRule{
				{ID: "r1", SearchText: "acme corp", ReplaceText: "Globex", Enabled: true, CaseSensitive: false},
			},
			wantFinal: "Globex signed with Globex today",
			wantOK:    true,
		},
		{
			name: "whole_word_leaves_substrings",
			text: "catalog cat",
			rules: []rule.ReplaceRule{
				{ID: "r1", SearchText: "cat", ReplaceText: "dog", Enabled: true, CaseSensitive: true, WholeWord: true},
			},
			wantFinal: "catalog dog",
			wantOK:    true,
		},
		{
			name:      "no_op_rule_search_equals_replace",
			text:      "same same",
			rules:     []rule.ReplaceRule{enabledRule("r1", "same", "same")},
			wantFinal: "same same",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.Equal(t, 2, result.TotalReplacements)
			},
		},
		{
			name: "disabled_rule_reports_zero_matches",
			text: "foo foo",
			rules: []rule.ReplaceRule{
				{ID: "r1", SearchText: "foo", ReplaceText: "bar", Enabled: false},
			},
			wantFinal: "foo foo",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				rr := result.ResultFor("r1")
				require.NotNil(t, rr)
				assert.True(t, rr.Success)
				assert.Zero(t, rr.TotalMatches)
			},
		},
		{
			name: "cjk_replacement",
			text: "甲方与乙方签署本协议，甲方负责付款。",
			rules: []rule.ReplaceRule{
				enabledRule("party-a", "甲方", "北京某某科技有限公司"),
			},
			wantFinal: "北京某某科技有限公司与乙方签署本协议，北京某某科技有限公司负责付款。",
			wantOK:    true,
		},
		{
			name: "dry_run_keeps_text_but_reports",
			text: "foo bar",
			rules: []rule.ReplaceRule{
				enabledRule("r1", "foo", "baz"),
			},
			opts:      Options{DryRun: true},
			wantFinal: "foo bar",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.Equal(t, 1, result.TotalReplacements)
				assert.Equal(t, 1, result.ResultFor("r1").ReplacedCount)
			},
		},
		{
			name: "max_replacements_caps_in_offset_order",
			text: "x x x x x",
			rules: []rule.ReplaceRule{
				enabledRule("r1", "x", "y"),
			},
			opts:      Options{MaxReplacements: 2},
			wantFinal: "y y x x x",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				rr := result.ResultFor("r1")
				assert.Equal(t, 2, rr.ReplacedCount)
				assert.Equal(t, 5, rr.TotalMatches)
				assert.True(t, rr.Truncated)
			},
		},
		{
			name: "invalid_rule_does_not_abort_others",
			text: "foo bar",
			rules: []rule.ReplaceRule{
				{ID: "", SearchText: "foo", ReplaceText: "nope", Enabled: true},
				enabledRule("r2", "bar", "qux"),
			},
			wantFinal: "foo qux",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.False(t, result.Results[0].Success)
				assert.NotEmpty(t, result.Results[0].Error)
				assert.True(t, result.Results[1].Success)
			},
		},
		{
			name: "duplicate_rule_id_charged_to_later",
			text: "foo",
			rules: []rule.ReplaceRule{
				enabledRule("dup", "foo", "bar"),
				enabledRule("dup", "foo", "baz"),
			},
			wantFinal: "bar",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.True(t, result.Results[0].Success)
				assert.False(t, result.Results[1].Success)
				assert.Contains(t, result.Results[1].Error, "duplicate")
			},
		},
		{
			name: "stop_on_error_aborts_batch",
			text: "foo bar",
			rules: []rule.ReplaceRule{
				{ID: "", SearchText: "foo", ReplaceText: "nope", Enabled: true},
				enabledRule("r2", "bar", "qux"),
			},
			opts:      Options{StopOnError: true},
			wantFinal: "foo bar",
			wantOK:    false,
		},
		{
			name: "overlap_longest_policy",
			text: "abcdef",
			rules: []rule.ReplaceRule{
				enabledRule("short", "abc", "S"),
				enabledRule("long", "abcdef", "L"),
			},
			opts:      Options{ConflictResolution: conflict.PolicyLongest},
			wantFinal: "L",
			wantOK:    true,
			check: func(t *testing.T, result *BatchReplaceResult) {
				assert.Zero(t, result.ResultFor("short").ReplacedCount)
				assert.Equal(t, 1, result.ResultFor("short").TotalMatches)
				assert.Equal(t, 1, result.ResultFor("long").ReplacedCount)
			},
		},
		{
			name: "overlap_first_policy_defaults_to_rule_order",
			text: "abcdef",
			rules: []rule.ReplaceRule{
				enabledRule("a", "abc", "X"),
				enabledRule("b", "abcdef", "Y"),
			},
			wantFinal: "Xdef",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := New()
			result := eng.BatchReplace(ctx, tt.text, tt.rules, tt.opts)

			require.NotNil(t, result)
			assert.Equal(t, tt.text, result.OriginalText)
			assert.Equal(t, tt.wantFinal, result.FinalText)
			assert.Equal(t, tt.wantOK, result.Success)
			assert.NotEmpty(t, result.BatchID)
			assert.Len(t, result.Results, len(tt.rules))

			assertSpanInvariants(t, result)
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

// assertSpanInvariants checks the offset and non-overlap guarantees every
// result must hold: each surviving span reproduces the original text at its
// offsets, and no two surviving spans overlap.
func assertSpanInvariants(t *testing.T, result *BatchReplaceResult) {
	t.Helper()
	textRunes := []rune(result.OriginalText)

	type flat struct {
		start, end int
	}
	var all []flat
	for _, rr := range result.Results {
		for _, sp := range rr.Matches {
			require.GreaterOrEqual(t, sp.Start, 0)
			require.LessOrEqual(t, sp.End, len(textRunes))
			require.Less(t, sp.Start, sp.End)
			assert.Equal(t, string(textRunes[sp.Start:sp.End]), sp.MatchedText)
			all = append(all, flat{start: sp.Start, end: sp.End})
		}
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			overlap := all[i].start < all[j].end && all[j].start < all[i].end
			assert.False(t, overlap, "surviving spans overlap: %+v %+v", all[i], all[j])
		}
	}
}

func TestBatchReplace_Deterministic(t *testing.T) {
	ctx := context.Background()
	text := "aa aaa aa aaa aa"
	rules := []rule.ReplaceRule{
		enabledRule("two", "aa", "2"),
		enabledRule("three", "aaa", "3"),
	}

	eng := New()
	first := eng.BatchReplace(ctx, text, rules, Options{ConflictResolution: conflict.PolicyMostSpecific})
	for i := 0; i < 20; i++ {
		again := eng.BatchReplace(ctx, text, rules, Options{ConflictResolution: conflict.PolicyMostSpecific})
		assert.Equal(t, first.FinalText, again.FinalText)
		assert.Equal(t, first.TotalReplacements, again.TotalReplacements)
	}
}

func TestBatchReplace_ReplayReconstruction(t *testing.T) {
	// FinalText must be reachable from OriginalText by applying the surviving
	// spans in increasing offset order.
	ctx := context.Background()
	text := "The cat sat on the mat with another cat."
	rules := []rule.ReplaceRule{
		enabledRule("cats", "cat", "feline"),
		enabledRule("mats", "mat", "rug"),
	}

	result := New().BatchReplace(ctx, text, rules, Options{})
	require.True(t, result.Success)

	replacements := map[string]string{"cats": "feline", "mats": "rug"}
	type step struct {
		start, end int
		text       string
	}
	var steps []step
	for _, rr := range result.Results {
		for _, sp := range rr.Matches {
			steps = append(steps, step{start: sp.Start, end: sp.End, text: replacements[rr.RuleID]})
		}
	}
	for i := range steps {
		for j := i + 1; j < len(steps); j++ {
			if steps[j].start < steps[i].start {
				steps[i], steps[j] = steps[j], steps[i]
			}
		}
	}

	textRunes := []rune(text)
	var rebuilt string
	pos := 0
	for _, s := range steps {
		rebuilt += string(textRunes[pos:s.start]) + s.text
		pos = s.end
	}
	rebuilt += string(textRunes[pos:])
	assert.Equal(t, result.FinalText, rebuilt)
}

func TestBatchReplace_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New().BatchReplace(ctx, "foo", []rule.ReplaceRule{enabledRule("r1", "foo", "bar")}, Options{})
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "foo", result.FinalText)
}
