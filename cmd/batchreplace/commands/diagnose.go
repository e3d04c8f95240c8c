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

package commands

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/docrules/batchreplace/pkg/operation"
)

// NewDiagnoseCmd creates the diagnose command
func NewDiagnoseCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Explain why rules do or do not match",
		Long: `Diagnose runs the exact and fuzzy match analysis for every rule against
every configured document and prints a per-rule report with actionable
issues. No file is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := newOperationOpts(ctx, *configFile)
			if err != nil {
				return err
			}

			logger := zerolog.Ctx(ctx)
			runner := operation.NewRunner(logger, false)
			if err := runner.Run(ctx, operation.NewDiagnoseOperation(opts)); err != nil {
				return err
			}
			pterm.Success.Println("diagnostics finished")
			return nil
		},
	}
	return cmd
}
