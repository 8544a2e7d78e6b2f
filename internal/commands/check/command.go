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

package check

import (
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/output"
	"github.com/steplinehq/stepline/pkg/typecheck"
)

// NewCommand creates the check command
func NewCommand() *cobra.Command {
	var (
		sessionPath string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "check <workflow.go>",
		Short: "Type-check workflow source against a warmed session",
		Long: `Check runs the incremental type checker over a workflow source file and
reports diagnostics indexed by line. The analysis session is created once
per configuration identity and kept warm, so repeated checks pay only their
own parse.

The session file is YAML:

  key: my-project
  packages:
    github.com/steplinehq/stepline/sdk/flow: ./sdk/flow
    github.com/steplinehq/stepline/sdk/steps: ./sdk/steps

Without --session a minimal session resolving only standard library imports
is used.`,
		Example: `  # Example 1: One-shot check
  stepline check workflow.go --session session.yaml

  # Example 2: Re-check on every save
  stepline check workflow.go --session session.yaml --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], sessionPath, watch)
		},
	}

	cmd.Flags().StringVar(&sessionPath, "session", "", "Path to the YAML session configuration")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-check whenever the source file changes")

	return cmd
}

func runCheck(cmd *cobra.Command, path, sessionPath string, watch bool) error {
	cfg := typecheck.Config{Key: "stepline-cli"}
	if sessionPath != "" {
		data, err := os.ReadFile(sessionPath)
		if err != nil {
			return shared.NewConfigError("failed to read session configuration", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return shared.NewConfigError("failed to parse session configuration", err)
		}
		if cfg.Key == "" {
			cfg.Key = sessionPath
		}
	}

	session, err := typecheck.DefaultPool.Session(cfg)
	if err != nil {
		return shared.NewConfigError("failed to warm type-check session", err)
	}

	if watch {
		return watchAndCheck(cmd, session, path)
	}
	return checkOnce(cmd, session, path)
}

func checkOnce(cmd *cobra.Command, session *typecheck.Session, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return shared.NewUsageError("failed to read workflow source", err)
	}

	result := session.Check(src)
	if err := report(cmd, path, result); err != nil {
		return err
	}
	if !result.Success {
		return shared.NewFindingsError("")
	}
	return nil
}

func report(cmd *cobra.Command, path string, result *typecheck.Result) error {
	formatter := shared.GetFormatter()

	if shared.GetFormat() != output.FormatText {
		// Machine formats carry the whole result so callers keep the
		// variable-type dump alongside the line errors.
		type checkResponse struct {
			output.JSONResponse `yaml:",inline"`
			Result              *typecheck.Result `json:"result" yaml:"result"`
		}
		return formatter.FormatSuccess("check", checkResponse{
			JSONResponse: output.JSONResponse{Version: "1.0", Command: "check", Success: result.Success},
			Result:       result,
		})
	}

	if result.Success {
		if !shared.GetQuiet() {
			cmd.Printf("%s: no type errors (snapshot v%d)\n", path, result.Version)
		}
		return nil
	}

	lines := make([]int, 0, len(result.LineErrors))
	for line := range result.LineErrors {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	errs := make([]output.JSONError, 0, len(lines))
	for _, line := range lines {
		errs = append(errs, output.JSONError{
			Message:  result.LineErrors[line],
			Location: &output.JSONLocation{File: path, Line: line},
		})
	}
	formatter.SetOutput(cmd.ErrOrStderr())
	if err := formatter.FormatError("check", errs); err != nil {
		return err
	}
	if shared.GetVerbose() && len(result.VariableTypes) > 0 {
		cmd.Println("declared bindings:")
		for _, v := range result.VariableTypes {
			cmd.Printf("  %s:%d: %s %s: %s\n", path, v.Line, v.Decl, v.Name, v.Type)
		}
	}
	return nil
}
