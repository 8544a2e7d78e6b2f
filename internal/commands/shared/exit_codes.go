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

package shared

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for stepline commands
const (
	ExitSuccess = 0
	// ExitFindings: the analysis ran and reported violations or errors in
	// the workflow source.
	ExitFindings = 1
	// ExitUsage: the source or override input could not be read.
	ExitUsage = 2
	// ExitConfig: the catalog or session configuration is unusable.
	ExitConfig = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFindingsError creates an error for analyses that reported findings
func NewFindingsError(msg string) *ExitError {
	return &ExitError{Code: ExitFindings, Message: msg}
}

// NewUsageError creates an error for unreadable inputs
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: msg, Cause: cause}
}

// NewConfigError creates an error for unusable configuration
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Cause: cause}
}

// HandleExitError prints err (unless the message is empty, which means the
// command already produced its own output) and exits with the carried code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Error())
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
