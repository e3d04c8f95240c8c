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

// NewFixCmd creates the fix command
func NewFixCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Propose repaired rules for this corpus",
		Long: `Fix measures each rule against the selected documents and proposes
normalized search texts (trimmed or whitespace-collapsed) or relaxed case
sensitivity wherever that provably finds more exact matches. The proposed
rules are printed; nothing is changed in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := newOperationOpts(ctx, *configFile)
			if err != nil {
				return err
			}

			logger := zerolog.Ctx(ctx)
			runner := operation.NewRunner(logger, false)
			if err := runner.Run(ctx, operation.NewFixOperation(opts)); err != nil {
				return err
			}
			pterm.Success.Println("fix finished")
			return nil
		},
	}
	return cmd
}
