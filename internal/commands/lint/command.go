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

package lint

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/output"
	pkglint "github.com/steplinehq/stepline/pkg/lint"
)

// NewCommand creates the lint command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <workflow.go>",
		Short: "Check workflow source against the safety rules",
		Long: `Lint runs the safety rules that keep a workflow's Execute method
replayable by the execution engine: no panic in replayed statement
positions, no inline step constructions, no embedded credentials, and no
helper calls buried in compound expressions.

Each violation is reported with its rule name and 1-based source position.`,
		Example: `  # Example 1: Lint a workflow
  stepline lint workflow.go

  # Example 2: Machine-readable diagnostics
  stepline lint workflow.go --json

  # Example 3: YAML diagnostics
  stepline lint workflow.go --format yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLint,
	}
	return cmd
}

func runLint(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return shared.NewUsageError("failed to read workflow source", err)
	}

	reg, err := shared.LoadRegistry()
	if err != nil {
		return shared.NewConfigError("failed to load step catalog", err)
	}

	diags := pkglint.Lint(src, reg)
	formatter := shared.GetFormatter()

	if len(diags) > 0 {
		errs := make([]output.JSONError, 0, len(diags))
		for _, d := range diags {
			errs = append(errs, output.JSONError{
				Message:  d.Message,
				Rule:     d.Rule,
				Location: &output.JSONLocation{File: path, Line: d.Line, Column: d.Column},
			})
		}
		if shared.GetFormat() == output.FormatText {
			formatter.SetOutput(cmd.ErrOrStderr())
		}
		if err := formatter.FormatError("lint", errs); err != nil {
			return err
		}
		return shared.NewFindingsError("")
	}

	if shared.GetFormat() == output.FormatText {
		if !shared.GetQuiet() {
			cmd.Printf("%s: no safety violations\n", path)
		}
		return nil
	}
	return formatter.FormatSuccess("lint", output.JSONResponse{Version: "1.0", Command: "lint", Success: true})
}
