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

	"github.com/docrules/batchreplace/pkg/diagnose"
	"github.com/docrules/batchreplace/pkg/report"
)

// 📦 NewDiagnoseOperation creates the diagnose operation
func NewDiagnoseOperation(opts Options) Operation {
	return &diagnoseOperation{
		BaseOperation: NewBaseOperation(opts),
		analyzer:      diagnose.NewAnalyzerWithConfig(opts.Config.AnalyzerConfig()),
	}
}

// 📦 diagnoseOperation analyzes every rule against every selected document
// without touching any file. Useful before an apply, or instead of one.
type diagnoseOperation struct {
	BaseOperation
	analyzer *diagnose.Analyzer
}

func (op *diagnoseOperation) Name() string { return "diagnose" }

// 🏃 Execute runs the diagnostics pass per document and prints the report.
func (op *diagnoseOperation) Execute(ctx context.Context) error {
	files, err := op.selectDocuments()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		op.Logger.Warning("no documents matched the configured globs")
		return nil
	}

	for _, path := range files {
		text, err := readDocument(path)
		if err != nil {
			op.Logger.Errorf("%s: %v", path, err)
			continue
		}
		diags := op.analyzer.DiagnoseBatch(ctx, text, op.Config.Rules)
		op.Logger.Header(path)
		op.Logger.Plain(report.GenerateReport(diags))
	}
	return nil
}
