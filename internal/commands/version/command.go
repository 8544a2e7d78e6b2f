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

package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/steplinehq/stepline/internal/commands/shared"
	"github.com/steplinehq/stepline/internal/output"
)

// NewCommand creates the version command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, c, b := shared.GetVersion()

			if shared.GetFormat() != output.FormatText {
				type versionResponse struct {
					output.JSONResponse `yaml:",inline"`
					Version             string `json:"version" yaml:"version"`
					Commit              string `json:"commit" yaml:"commit"`
					BuildDate           string `json:"build_date" yaml:"build_date"`
					GoVersion           string `json:"go_version" yaml:"go_version"`
				}
				return shared.GetFormatter().FormatSuccess("version", versionResponse{
					JSONResponse: output.JSONResponse{Version: "1.0", Command: "version", Success: true},
					Version:      v,
					Commit:       c,
					BuildDate:    b,
					GoVersion:    runtime.Version(),
				})
			}

			cmd.Printf("stepline %s (commit %s, built %s, %s)\n", v, c, b, runtime.Version())
			return nil
		},
	}
}
