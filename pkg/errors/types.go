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

package errors

import (
	"fmt"
)

// SyntaxError reports source that does not parse at the language level.
// It is fatal to extraction: no instantiations accompany it.
type SyntaxError struct {
	// Path is the virtual path of the workflow source.
	Path string

	// Cause is the underlying parser error.
	Cause error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("syntax error in %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("syntax error: %v", e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// StructuralError reports a step construction the analyzers cannot accept:
// a class absent from the step registry, or a config literal whose fields
// are not in recognizable form. Structural errors are collected
// per-instantiation and do not abort extraction of sibling constructions.
type StructuralError struct {
	// Class is the step class name involved, if known.
	Class string

	// Message is the human-readable error description.
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("step class %q %s", e.Class, e.Message)
	}
	return e.Message
}

// MismatchError reports a reconstruction override whose declared step class
// does not match the class originally extracted at that binding. It aborts
// the whole reconstruction: no partial source is ever emitted.
type MismatchError struct {
	// Variable is the binding name the override targets.
	Variable string

	// Expected is the class name extracted from the source.
	Expected string

	// Given is the class name the override declared.
	Given string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("step %q: class name mismatch: source has %q, override gives %q",
		e.Variable, e.Expected, e.Given)
}

// ConfigError represents configuration problems: unreadable step catalogs,
// invalid type-checker session configuration, or missing settings.
type ConfigError struct {
	// Key is the configuration key that has the problem.
	Key string

	// Reason explains what's wrong with the configuration.
	Reason string

	// Cause is the underlying error (e.g. file read error, parse error).
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
