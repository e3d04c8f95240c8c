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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/engine"
)

func TestGenerateReport(t *testing.T) {
	diags := []diagnose.Diagnostics{
		{
			RuleID:        "healthy",
			FieldType:     diagnose.FieldGeneric,
			MatchAnalysis: diagnose.MatchAnalysis{ExactMatchCount: 2},
		},
		{
			RuleID:        "broken",
			FieldType:     diagnose.FieldPhone,
			MatchAnalysis: diagnose.MatchAnalysis{ExactMatchCount: 0, FuzzyMatchCount: 1},
			Issues: []diagnose.Issue{
				{Type: diagnose.IssueFormat, Message: "digits appear with a different format"},
			},
			Suggestions: []string{"Write the phone number with the same separators the document uses."},
		},
	}

	out := GenerateReport(diags)

	assert.Contains(t, out, "2 rule(s) analyzed")
	assert.Contains(t, out, "Healthy: 1  Needs attention: 1")
	assert.Contains(t, out, "rule healthy (generic): 2 exact, 0 fuzzy")
	assert.Contains(t, out, "rule broken (phone): 0 exact, 1 fuzzy")
	assert.Contains(t, out, "[format] digits appear with a different format")
	assert.Contains(t, out, "-> Write the phone number")
}

func TestGenerateReport_Empty(t *testing.T) {
	out := GenerateReport(nil)
	assert.Contains(t, out, "0 rule(s) analyzed")
}

func TestSummarizeResult(t *testing.T) {
	result := &engine.BatchReplaceResult{
		BatchID:           "batch-1",
		TotalMatches:      5,
		TotalReplacements: 3,
		Results: []engine.RuleResult{
			{RuleID: "clean", ReplacedCount: 2, TotalMatches: 2},
			{RuleID: "conflicted", ReplacedCount: 1, TotalMatches: 2},
			{RuleID: "capped", ReplacedCount: 0, TotalMatches: 1, Truncated: true},
			{RuleID: "bad", Error: "duplicate rule id \"bad\""},
		},
	}

	out := SummarizeResult(result)

	assert.Contains(t, out, "Batch batch-1: 5 match(es), 3 replacement(s)")
	assert.Contains(t, out, "rule clean: 2/2 applied [ok]")
	assert.Contains(t, out, "rule conflicted: 1/2 applied [partial (conflicts)]")
	assert.Contains(t, out, "rule capped: 0/1 applied [truncated]")
	assert.Contains(t, out, `rule bad: 0/0 applied [error: duplicate rule id "bad"]`)
}

func TestDiffPreview(t *testing.T) {
	out := DiffPreview("foo bar", "baz bar")
	// color codes aside, both sides of the change must appear
	assert.Contains(t, out, "foo")
	assert.Contains(t, out, "baz")
	assert.Contains(t, out, "bar")
}

func TestDiffPreview_NoChange(t *testing.T) {
	assert.Equal(t, "same", DiffPreview("same", "same"))
}
