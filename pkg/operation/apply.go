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

package operation

import (
	"context"
	"fmt"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/engine"
	"github.com/docrules/batchreplace/pkg/log"
	"github.com/docrules/batchreplace/pkg/report"
	"github.com/docrules/batchreplace/pkg/validate"
)

// maxParallelDocuments bounds how many documents are processed at once.
const maxParallelDocuments = 4

// 📦 NewApplyOperation creates the apply operation
func NewApplyOperation(opts Options) Operation {
	return &applyOperation{
		BaseOperation: NewBaseOperation(opts),
		engine:        engine.New(),
		validator:     validate.NewValidator(),
	}
}

// 📦 applyOperation runs BatchReplace over every selected document
type applyOperation struct {
	BaseOperation
	engine    *engine.Engine
	validator *validate.Validator
}

func (op *applyOperation) Name() string { return "apply" }

// docOutcome collects one document's results so console output can be
// rendered sequentially after the parallel phase.
type docOutcome struct {
	path       string
	result     *engine.BatchReplaceResult
	validation validate.Validation
	written    bool
	err        error
}

// 🏃 Execute selects documents, replaces concurrently, then reports.
// Documents are independent, so batches run fully in parallel; each batch is
// itself a pure function of its inputs.
func (op *applyOperation) Execute(ctx context.Context) error {
	files, err := op.selectDocuments()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		op.Logger.Warning("no documents matched the configured globs")
		return nil
	}

	engineOpts := op.Config.EngineOptions()
	valOpts := validate.DefaultOptions()
	valOpts.StrictMode = op.Config.Options.StrictValidation

	outcomes := make([]docOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDocuments)
	for i, path := range files {
		i, path := i, path // per-iteration copies for Go <1.22 toolchains
		g.Go(func() error {
			outcomes[i] = op.processDocument(gctx, path, engineOpts, valOpts)
			return nil
		})
	}
	_ = g.Wait() // per-document errors are carried in outcomes

	failed := 0
	for _, oc := range outcomes {
		op.render(ctx, oc)
		if oc.err != nil {
			failed++
		}
	}

	if failed > 0 {
		return errors.Errorf("%d of %d document(s) failed", failed, len(files))
	}
	op.Logger.Successf("replaced across %d document(s)", len(files))
	return nil
}

// 📄 processDocument runs one batch and, when allowed, writes the result.
func (op *applyOperation) processDocument(ctx context.Context, path string, engineOpts engine.Options, valOpts validate.Options) docOutcome {
	oc := docOutcome{path: path}

	text, err := readDocument(path)
	if err != nil {
		oc.err = err
		return oc
	}

	oc.result = op.engine.BatchReplace(ctx, text, op.Config.Rules, engineOpts)
	oc.validation = op.validator.ValidateBatchResult(oc.result, op.Config.Rules, valOpts)

	if !oc.result.Success {
		oc.err = errors.Errorf("batch aborted for %s", path)
		return oc
	}
	for _, rr := range oc.result.Results {
		if rr.Error != "" {
			// The engine tolerates per-rule failures; the apply pipeline
			// does not write results produced from a partially bad rule set.
			oc.err = errors.Errorf("rule %s failed for %s: %s", rr.RuleID, path, rr.Error)
			return oc
		}
	}
	if valOpts.StrictMode && !oc.validation.Valid {
		oc.err = errors.Errorf("strict validation rejected the result for %s", path)
		return oc
	}
	if engineOpts.DryRun {
		return oc
	}

	if err := op.writeDocument(op.outputPath(path), oc.result.FinalText); err != nil {
		oc.err = err
		return oc
	}
	oc.written = true
	return oc
}

// 🖥️ render prints one document's outcome through the console logger.
func (op *applyOperation) render(ctx context.Context, oc docOutcome) {
	if oc.result == nil {
		op.Logger.Errorf("%s: %v", oc.path, oc.err)
		return
	}

	op.Logger.StartDocumentOperation(ctx, log.DocumentOperation{
		Name:    oc.path,
		BatchID: oc.result.BatchID,
		Runes:   len([]rune(oc.result.OriginalText)),
		DryRun:  op.Config.Options.DryRun,
	})
	for i, rr := range oc.result.Results {
		op.Logger.LogRuleOperation(ctx, log.RuleOperation{
			RuleID:       rr.RuleID,
			FieldType:    string(diagnose.ClassifyFieldType(op.Config.Rules[i].SearchText)),
			Status:       ruleStatus(rr),
			Matches:      rr.TotalMatches,
			Replacements: rr.ReplacedCount,
			IsFailed:     rr.Error != "",
			IsPartial:    rr.Truncated || rr.ReplacedCount < rr.TotalMatches,
			IsIdle:       rr.TotalMatches == 0,
		})
	}
	op.Logger.EndDocumentOperation(ctx)

	for _, w := range oc.validation.Warnings {
		op.Logger.Warning(w)
	}
	for _, rec := range oc.validation.Recommendations {
		op.Logger.Info(rec)
	}
	if op.Config.Options.DryRun && oc.result.TotalReplacements > 0 {
		op.Logger.Plain(report.DiffPreview(oc.result.OriginalText, oc.result.FinalText))
	}
	if oc.err != nil {
		op.Logger.Errorf("%s: %v", oc.path, oc.err)
	}
	op.Logger.LogNewline()
}

func ruleStatus(rr engine.RuleResult) string {
	switch {
	case rr.Error != "":
		return "error"
	case rr.Truncated:
		return "truncated"
	case rr.TotalMatches == 0:
		return "no matches"
	case rr.ReplacedCount < rr.TotalMatches:
		return fmt.Sprintf("%d/%d applied", rr.ReplacedCount, rr.TotalMatches)
	default:
		return fmt.Sprintf("%d applied", rr.ReplacedCount)
	}
}
