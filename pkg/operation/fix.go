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
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/docrules/batchreplace/pkg/fix"
)

// 📦 NewFixOperation creates the fix operation
func NewFixOperation(opts Options) Operation {
	return &fixOperation{
		BaseOperation: NewBaseOperation(opts),
		fixer:         fix.NewFixer(),
	}
}

// 📦 fixOperation proposes repaired rules measured against the whole
// selected corpus and prints them as a YAML rules block the user can adopt.
// The caller's rules are never modified in place.
type fixOperation struct {
	BaseOperation
	fixer *fix.Fixer
}

func (op *fixOperation) Name() string { return "fix" }

// 🏃 Execute fixes rules against the concatenated corpus text.
func (op *fixOperation) Execute(ctx context.Context) error {
	files, err := op.selectDocuments()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		op.Logger.Warning("no documents matched the configured globs")
		return nil
	}

	var corpus strings.Builder
	for _, path := range files {
		text, err := readDocument(path)
		if err != nil {
			return err
		}
		corpus.WriteString(text)
		corpus.WriteByte('\n')
	}

	fixed := op.fixer.AutoFixRules(ctx, corpus.String(), op.Config.Rules)

	changed := 0
	for i := range fixed {
		if fixed[i] != op.Config.Rules[i] {
			changed++
		}
	}
	if changed == 0 {
		op.Logger.Info("no rule needed fixing")
		return nil
	}

	out, err := yaml.Marshal(map[string]any{"rules": fixed})
	if err != nil {
		return errors.Errorf("marshaling fixed rules: %w", err)
	}
	op.Logger.Successf("%d rule(s) fixed; updated rules block:", changed)
	op.Logger.Plain(string(out))
	return nil
}
