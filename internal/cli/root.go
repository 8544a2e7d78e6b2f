// Copyright 2025 Stepline Authors
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

// Package cli assembles the stepline root command.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/log"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for Stepline
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepline",
		Short: "Stepline - workflow definition analysis",
		Long: `Stepline analyzes workflow definition source: it extracts step
instantiations, checks the safety rules the execution engine depends on,
regenerates source with edited step parameters, and serves incremental type
diagnostics from warmed sessions.

Run 'stepline extract workflow.go' to list a workflow's steps.
Run 'stepline lint workflow.go' to check its safety rules.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := shared.ValidateFormat(); err != nil {
				return err
			}
			cfg := log.FromEnv()
			if shared.GetVerbose() {
				cfg.Level = "debug"
			}
			if shared.GetQuiet() {
				cfg.Level = "error"
			}
			slog.SetDefault(log.New(cfg))
			return nil
		},
	}

	// Get flag pointers from shared package
	verbose, quiet, json, format, catalog := shared.RegisterFlagPointers()

	// Add global flags
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format (shorthand for --format json)")
	cmd.PersistentFlags().StringVar(format, "format", "", "Output format: text, json, or yaml (default: text)")
	cmd.PersistentFlags().StringVar(catalog, "catalog", "", "Path to step catalog YAML (default: built-in catalog)")

	return cmd
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
