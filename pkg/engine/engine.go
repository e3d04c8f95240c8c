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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/docrules/batchreplace/pkg/conflict"
	"github.com/docrules/batchreplace/pkg/match"
	"github.com/docrules/batchreplace/pkg/rule"
)

// 🔧 Options control one BatchReplace call.
type Options struct {
	DryRun             bool            // compute results without mutating the text
	StopOnError        bool            // abort the whole batch on the first rule error
	MaxReplacements    int             // global cap on applied spans, 0 = unlimited
	ConflictResolution conflict.Policy // overlap policy, PolicyFirst by default
}

// 📊 RuleResult is the per-rule outcome. Matches holds only the spans that
// survived conflict resolution and truncation; TotalMatches keeps the raw
// count found before any were discarded, for transparency.
type RuleResult struct {
	RuleID        string       `json:"rule_id"`
	Success       bool         `json:"success"`
	Matches       []match.Span `json:"matches,omitempty"`
	ReplacedCount int          `json:"replaced_count"`
	TotalMatches  int          `json:"total_matches"`
	Truncated     bool         `json:"truncated,omitempty"` // spans cut by MaxReplacements
	Error         string       `json:"error,omitempty"`
}

// 📦 BatchReplaceResult is the aggregate outcome of one call. FinalText is
// reachable from OriginalText by applying, in increasing-offset order,
// exactly the surviving spans recorded across all Results. Success reports
// whether the batch as a whole ran to completion: per-rule failures are
// tolerated (and carried in Results) unless StopOnError aborted the run.
type BatchReplaceResult struct {
	BatchID           string        `json:"batch_id"`
	OriginalText      string        `json:"original_text"`
	FinalText         string        `json:"final_text"`
	Results           []RuleResult  `json:"results"`
	TotalMatches      int           `json:"total_matches"`
	TotalReplacements int           `json:"total_replacements"`
	ExecutionTime     time.Duration `json:"execution_time"`
	Success           bool          `json:"success"`
}

// ResultFor returns the result entry for a rule id, or nil.
func (r *BatchReplaceResult) ResultFor(ruleID string) *RuleResult {
	for i := range r.Results {
		if r.Results[i].RuleID == ruleID {
			return &r.Results[i]
		}
	}
	return nil
}

// 🚂 Engine orchestrates matching, conflict resolution, and substitution.
// It holds no mutable state: every call is a pure function of its inputs, so
// independent calls over different documents may run fully in parallel.
type Engine struct {
	finder *match.Finder
}

// 🏭 New creates an engine with the default match finder.
func New() *Engine {
	return &Engine{finder: match.NewFinder()}
}

// 🏭 NewWithFinder creates an engine with a custom finder (e.g. a wider
// context window for previews).
func NewWithFinder(f *match.Finder) *Engine {
	return &Engine{finder: f}
}

// 🔄 BatchReplace locates every rule's matches, resolves cross-rule
// conflicts, and rewrites text in a single left-to-right pass.
//
// Input errors (invalid rule fields, duplicate ids) are reported per rule
// via RuleResult.Error and never abort the batch unless opts.StopOnError is
// set. A per-rule panic is caught and downgraded the same way so one bad
// rule cannot prevent applying the rest.
func (e *Engine) BatchReplace(ctx context.Context, text string, rules []rule.ReplaceRule, opts Options) *BatchReplaceResult {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	result := &BatchReplaceResult{
		BatchID:      uuid.NewString(),
		OriginalText: text,
		FinalText:    text,
		Results:      make([]RuleResult, len(rules)),
		Success:      true,
	}

	logger.Debug().
		Str("batch_id", result.BatchID).
		Int("rules", len(rules)).
		Int("text_runes", len([]rune(text))).
		Bool("dry_run", opts.DryRun).
		Msg("starting batch replace")

	// Per-rule input validation. Duplicate ids violate a batch invariant and
	// are charged to the later occurrence.
	seen := make(map[string]struct{}, len(rules))
	active := make([]bool, len(rules))
	for i, r := range rules {
		result.Results[i] = RuleResult{RuleID: r.ID, Success: true}
		if err := r.Validate(); err != nil {
			result.Results[i].Success = false
			result.Results[i].Error = err.Error()
			continue
		}
		if _, dup := seen[r.ID]; dup {
			result.Results[i].Success = false
			result.Results[i].Error = fmt.Sprintf("duplicate rule id %q", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		active[i] = r.Eligible()
	}

	// Rules are independent until the resolver merge, so matching runs
	// concurrently across rules. The wait below is the single
	// synchronization point.
	raw := make([][]match.Span, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	for i := range rules {
		if !active[i] {
			continue
		}
		i := i // per-iteration copy for Go <1.22 toolchains
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if rec := recover(); rec != nil {
					result.Results[i].Success = false
					result.Results[i].Error = fmt.Sprintf("matching panicked: %v", rec)
					active[i] = false
				}
			}()
			raw[i] = e.finder.FindMatches(text, rules[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Context cancellation: the caller discards the result anyway.
		result.Success = false
		result.ExecutionTime = time.Since(start)
		return result
	}

	for i := range rules {
		result.Results[i].TotalMatches = len(raw[i])
		result.TotalMatches += len(raw[i])
	}

	if opts.StopOnError {
		for i := range rules {
			if result.Results[i].Error != "" {
				logger.Warn().
					Str("batch_id", result.BatchID).
					Str("rule_id", rules[i].ID).
					Str("error", result.Results[i].Error).
					Msg("aborting batch on rule error")
				result.Success = false
				result.ExecutionTime = time.Since(start)
				return result
			}
		}
	}

	// Resolve overlaps across all rules, then apply the global cap in sweep
	// order. Losing a span to a conflict is not an error: the rule simply
	// reports a lower replaced count than its total.
	perRule := make([]conflict.RuleMatches, len(rules))
	for i, r := range rules {
		spans := raw[i]
		if !active[i] {
			spans = nil
		}
		perRule[i] = conflict.RuleMatches{Rule: r, Spans: spans}
	}
	resolved := conflict.Resolve(perRule, opts.ConflictResolution)
	accepted := truncate(resolved, opts.MaxReplacements, result.Results)

	for i := range rules {
		result.Results[i].Matches = resolved[i].Spans
		result.Results[i].ReplacedCount = len(resolved[i].Spans)
		result.TotalReplacements += len(resolved[i].Spans)
	}

	if !opts.DryRun {
		result.FinalText = splice(text, accepted)
	}

	result.ExecutionTime = time.Since(start)
	logger.Debug().
		Str("batch_id", result.BatchID).
		Int("total_matches", result.TotalMatches).
		Int("total_replacements", result.TotalReplacements).
		Dur("execution_time", result.ExecutionTime).
		Bool("success", result.Success).
		Msg("batch replace finished")
	return result
}

// applied pairs a surviving span with the text that replaces it.
type applied struct {
	span        match.Span
	replaceText string
}

// truncate caps the globally accepted span list at maxReplacements, walking
// spans in sweep order. Rules that lose spans here are marked Truncated and
// their surviving slices trimmed in place. maxReplacements <= 0 means no cap.
func truncate(resolved []conflict.RuleMatches, maxReplacements int, results []RuleResult) []applied {
	var all []applied
	type tagged struct {
		ruleIndex int
		span      match.Span
	}
	var flat []tagged
	for i, rm := range resolved {
		for _, sp := range rm.Spans {
			flat = append(flat, tagged{ruleIndex: i, span: sp})
		}
	}
	sort.Slice(flat, func(a, b int) bool { return flat[a].span.Start < flat[b].span.Start })

	if maxReplacements > 0 && len(flat) > maxReplacements {
		for _, t := range flat[maxReplacements:] {
			results[t.ruleIndex].Truncated = true
		}
		flat = flat[:maxReplacements]
		kept := make(map[int]int, len(resolved))
		for _, t := range flat {
			kept[t.ruleIndex]++
		}
		for i := range resolved {
			resolved[i].Spans = resolved[i].Spans[:kept[i]]
		}
	}

	for _, t := range flat {
		all = append(all, applied{span: t.span, replaceText: resolved[t.ruleIndex].Rule.ReplaceText})
	}
	return all
}

// splice rewrites text by walking the accepted spans in ascending order and
// splicing in each rule's replacement. Spans are rune offsets and already
// non-overlapping, so a single forward pass suffices.
func splice(text string, accepted []applied) string {
	if len(accepted) == 0 {
		return text
	}
	textRunes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, a := range accepted {
		b.WriteString(string(textRunes[pos:a.span.Start]))
		b.WriteString(a.replaceText)
		pos = a.span.End
	}
	b.WriteString(string(textRunes[pos:]))
	return b.String()
}
