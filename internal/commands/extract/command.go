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

package extract

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/output"
	pkgextract "github.com/steplinehq/stepline/pkg/extract"
)

// NewCommand creates the extract command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <workflow.go>",
		Short: "Extract step instantiations from workflow source",
		Long: `Extract parses a workflow source file and reports every step
instantiation declared in its Execute method: variable binding, step class,
parameters with their kinds, and exact source spans.

Step classes are validated against the step catalog. Unregistered classes
are reported as errors while the remaining instantiations are still listed.`,
		Example: `  # Example 1: List the steps of a workflow
  stepline extract workflow.go

  # Example 2: Machine-readable output for tooling
  stepline extract workflow.go --json

  # Example 3: YAML output
  stepline extract workflow.go --format yaml

  # Example 4: Validate against a custom step catalog
  stepline extract workflow.go --catalog catalog.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runExtract,
	}
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := os.ReadFile(path)
	if err != nil {
		return shared.NewUsageError("failed to read workflow source", err)
	}

	reg, err := shared.LoadRegistry()
	if err != nil {
		return shared.NewConfigError("failed to load step catalog", err)
	}

	result := pkgextract.Extract(src, reg)
	formatter := shared.GetFormatter()

	if shared.GetFormat() != output.FormatText {
		// Machine formats carry the whole result, errors included, so
		// callers still see partial extractions.
		type extractResponse struct {
			output.JSONResponse `yaml:",inline"`
			Result              *pkgextract.Result `json:"result" yaml:"result"`
		}
		if err := formatter.FormatSuccess("extract", extractResponse{
			JSONResponse: output.JSONResponse{Version: "1.0", Command: "extract", Success: result.Success},
			Result:       result,
		}); err != nil {
			return err
		}
		if !result.Success {
			return shared.NewFindingsError("")
		}
		return nil
	}

	for _, inst := range result.Ordered() {
		flags := ""
		if inst.IsAwaited {
			flags += " awaited"
		}
		if inst.IsActionInvoked {
			flags += " action"
		}
		cmd.Printf("%s:%d: %s = %s (%d parameters)%s\n",
			path, inst.Line, inst.VariableName, inst.ClassName, len(inst.Parameters), flags)
		for _, p := range inst.Parameters {
			cmd.Printf("    %s: %s = %s\n", p.Name, p.Kind, p.RawValue)
		}
	}
	if len(result.Errors) > 0 {
		errs := make([]output.JSONError, 0, len(result.Errors))
		for _, msg := range result.Errors {
			errs = append(errs, output.JSONError{Message: msg, Location: &output.JSONLocation{File: path}})
		}
		formatter.SetOutput(cmd.ErrOrStderr())
		if err := formatter.FormatError("extract", errs); err != nil {
			return err
		}
	}
	if !result.Success {
		return shared.NewFindingsError("")
	}
	return nil
}
