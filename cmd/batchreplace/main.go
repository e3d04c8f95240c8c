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

package main

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/docrules/batchreplace/cmd/batchreplace/commands"
)

var (
	// Flags
	configFile string
	debug      bool
)

func main() {
	// Set up logger
	logLevel := zerolog.InfoLevel
	if os.Getenv("BATCHREPLACE_DEBUG") != "" {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "batchreplace",
		Short: "Apply find/replace rules to documents safely",
		Long: `batchreplace applies a set of find/replace rules to plain-text documents
with conflict resolution, dry-run previews, match diagnostics, and automatic
rule repair.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	// Add shared flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".batchreplace.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(
		commands.NewApplyCmd(&configFile),
		commands.NewDiagnoseCmd(&configFile),
		commands.NewFixCmd(&configFile),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
