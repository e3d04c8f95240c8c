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

package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/engine"
)

// 📝 GenerateReport renders a human-readable summary of a diagnostics pass.
// Purely derived from the entries; no new computation happens here.
func GenerateReport(diags []diagnose.Diagnostics) string {
	var b strings.Builder

	b.WriteString("Rule diagnostics report\n")
	b.WriteString(fmt.Sprintf("%d rule(s) analyzed\n\n", len(diags)))

	healthy := 0
	for _, d := range diags {
		if d.MatchAnalysis.ExactMatchCount > 0 && len(d.Issues) == 0 {
			healthy++
		}
	}
	b.WriteString(fmt.Sprintf("Healthy: %d  Needs attention: %d\n\n", healthy, len(diags)-healthy))

	for _, d := range diags {
		b.WriteString(fmt.Sprintf("rule %s (%s): %d exact, %d fuzzy\n",
			d.RuleID, d.FieldType,
			d.MatchAnalysis.ExactMatchCount, d.MatchAnalysis.FuzzyMatchCount))
		for _, issue := range d.Issues {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", issue.Type, issue.Message))
		}
		for _, s := range d.Suggestions {
			b.WriteString(fmt.Sprintf("  -> %s\n", s))
		}
	}
	return b.String()
}

// 📝 SummarizeResult renders a one-screen summary of a batch replacement.
func SummarizeResult(result *engine.BatchReplaceResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Batch %s: %d match(es), %d replacement(s) in %s\n",
		result.BatchID, result.TotalMatches, result.TotalReplacements, result.ExecutionTime))
	for _, rr := range result.Results {
		status := "ok"
		switch {
		case rr.Error != "":
			status = "error: " + rr.Error
		case rr.Truncated:
			status = "truncated"
		case rr.TotalMatches > rr.ReplacedCount:
			status = "partial (conflicts)"
		}
		b.WriteString(fmt.Sprintf("  rule %s: %d/%d applied [%s]\n",
			rr.RuleID, rr.ReplacedCount, rr.TotalMatches, status))
	}
	return b.String()
}

// 🔍 DiffPreview renders a colored character diff between the original and
// final text, for dry-run display.
func DiffPreview(original, final string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, final, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
