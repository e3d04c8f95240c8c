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
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/docrules/batchreplace/pkg/config"
	"github.com/docrules/batchreplace/pkg/log"
	"github.com/docrules/batchreplace/pkg/operation"
)

// newOperationOpts loads config and builds the shared operation options.
func newOperationOpts(ctx context.Context, configFile string) (operation.Options, error) {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return operation.Options{}, errors.Errorf("loading config: %w", err)
	}
	consoleLogger := log.New(os.Stdout, zerolog.Ctx(ctx).GetLevel())
	return operation.Options{Config: cfg, Logger: consoleLogger}, nil
}

// NewApplyCmd creates the apply command
func NewApplyCmd(configFile *string) *cobra.Command {
	var dryRun bool
	var async bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the configured rules to the configured documents",
		Long: `Apply runs the batch replacement over every document matched by the
config's globs. With --dry-run, nothing is written and a diff preview is
shown instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := newOperationOpts(ctx, *configFile)
			if err != nil {
				return err
			}
			if dryRun {
				opts.Config.Options.DryRun = true
			}
			if opts.Config.Options.DryRun {
				pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍"}).Println("dry run: no files will be modified")
			}

			logger := zerolog.Ctx(ctx)
			runner := operation.NewRunner(logger, async)
			if err := runner.Run(ctx, operation.NewApplyOperation(opts)); err != nil {
				return err
			}
			pterm.Success.Println("apply finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview replacements without writing files")
	cmd.Flags().BoolVar(&async, "async", false, "run the operation asynchronously")
	return cmd
}
