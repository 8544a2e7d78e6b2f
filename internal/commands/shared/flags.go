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

// Package shared holds state common to every stepline command: global flag
// values, output formatting, exit codes, and catalog loading.
package shared

import (
	"fmt"

	"github.com/steplinehq/stepline/internal/output"
)

// Global flag values - set by root command
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	formatFlag  string
	catalogFlag string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() (*bool, *bool, *bool, *string, *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &formatFlag, &catalogFlag
}

// ValidateFormat checks the --format flag value before any command runs.
func ValidateFormat() error {
	switch formatFlag {
	case "", output.FormatText, output.FormatJSON, output.FormatYAML:
		return nil
	}
	return NewUsageError(fmt.Sprintf("unknown output format %q (supported: text, json, yaml)", formatFlag), nil)
}

// GetFormat resolves the selected output format. --json is shorthand for
// --format json and wins over --format.
func GetFormat() string {
	if jsonFlag {
		return output.FormatJSON
	}
	if formatFlag == "" {
		return output.FormatText
	}
	return formatFlag
}

// GetFormatter returns the output formatter for the selected format.
func GetFormatter() output.Formatter {
	return output.DefaultFormatter(GetFormat())
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetCatalogPath returns the step catalog file path
func GetCatalogPath() string {
	return catalogFlag
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}
