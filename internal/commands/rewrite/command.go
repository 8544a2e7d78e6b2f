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

package rewrite

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/output"
	pkgrewrite "github.com/steplinehq/stepline/pkg/rewrite"
	"github.com/steplinehq/stepline/pkg/step"
)

// NewCommand creates the rewrite command
func NewCommand() *cobra.Command {
	var (
		overridesPath string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "rewrite <workflow.go>",
		Short: "Regenerate workflow source with edited step parameters",
		Long: `Rewrite applies parameter overrides to the step constructions bound to
the override file's variable names and emits the regenerated source. Every
byte outside the edited config literals is carried over unchanged.

The overrides file is YAML keyed by variable name:

  notify:
    class_name: SlackMessage
    parameters:
      - name: Channel
        raw_value: "#oncall"
        kind: STRING

An override whose class does not match the class bound to that variable in
the source aborts the whole rewrite; nothing is emitted.`,
		Example: `  # Example 1: Rewrite to stdout
  stepline rewrite workflow.go --overrides edits.yaml

  # Example 2: Rewrite in place
  stepline rewrite workflow.go --overrides edits.yaml -o workflow.go`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, args[0], overridesPath, outPath)
		},
	}

	cmd.Flags().StringVar(&overridesPath, "overrides", "", "Path to the YAML overrides file (required)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write regenerated source to this file (default: stdout)")
	_ = cmd.MarkFlagRequired("overrides")

	return cmd
}

func runRewrite(cmd *cobra.Command, path, overridesPath, outPath string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return shared.NewUsageError("failed to read workflow source", err)
	}

	overrideData, err := os.ReadFile(overridesPath)
	if err != nil {
		return shared.NewUsageError("failed to read overrides file", err)
	}
	var overrides map[string]*step.Instantiation
	if err := yaml.Unmarshal(overrideData, &overrides); err != nil {
		return shared.NewUsageError("failed to parse overrides file", err)
	}

	result := pkgrewrite.Reconstruct(src, overrides)
	formatter := shared.GetFormatter()

	if !result.Success {
		errs := make([]output.JSONError, 0, len(result.Errors))
		for _, msg := range result.Errors {
			errs = append(errs, output.JSONError{Message: msg, Location: &output.JSONLocation{File: path}})
		}
		if shared.GetFormat() == output.FormatText {
			formatter.SetOutput(cmd.ErrOrStderr())
		}
		if err := formatter.FormatError("rewrite", errs); err != nil {
			return err
		}
		return shared.NewFindingsError("")
	}

	if shared.GetFormat() != output.FormatText {
		type rewriteResponse struct {
			output.JSONResponse `yaml:",inline"`
			Result              *pkgrewrite.Result `json:"result" yaml:"result"`
		}
		return formatter.FormatSuccess("rewrite", rewriteResponse{
			JSONResponse: output.JSONResponse{Version: "1.0", Command: "rewrite", Success: true},
			Result:       result,
		})
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(result.NewSource), 0o644); err != nil {
			return shared.NewUsageError("failed to write output", err)
		}
		if !shared.GetQuiet() {
			cmd.Printf("wrote %s\n", outPath)
		}
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), result.NewSource)
	return nil
}
