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

package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Recognized values for the --format flag.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter defines the interface for output formatting.
// Implementations can provide different output formats (JSON, YAML, text)
type Formatter interface {
	// FormatSuccess formats a successful command result
	FormatSuccess(command string, data interface{}) error

	// FormatError formats an error response
	FormatError(command string, errors []JSONError) error

	// SetOutput sets the output writer
	SetOutput(w io.Writer)
}

// DefaultFormatter returns the formatter for a --format flag value.
// Unrecognized values fall back to text; the flag is validated at the
// root command.
func DefaultFormatter(format string) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// JSONFormatter implements Formatter for JSON output
type JSONFormatter struct {
	out io.Writer
}

// FormatSuccess outputs JSON for successful results
func (f *JSONFormatter) FormatSuccess(command string, data interface{}) error {
	return EmitJSON(data)
}

// FormatError outputs JSON for errors
func (f *JSONFormatter) FormatError(command string, errors []JSONError) error {
	return EmitJSONError(command, errors)
}

// SetOutput sets the output writer
func (f *JSONFormatter) SetOutput(w io.Writer) {
	f.out = w
}

// YAMLFormatter implements Formatter for YAML output
type YAMLFormatter struct {
	out io.Writer
}

// FormatSuccess outputs YAML for successful results
func (f *YAMLFormatter) FormatSuccess(command string, data interface{}) error {
	w := f.out
	if w == nil {
		w = os.Stdout
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(data)
}

// FormatError outputs YAML for errors
func (f *YAMLFormatter) FormatError(command string, errors []JSONError) error {
	return f.FormatSuccess(command, map[string]interface{}{
		"command": command,
		"success": false,
		"errors":  errors,
	})
}

// SetOutput sets the output writer
func (f *YAMLFormatter) SetOutput(w io.Writer) {
	f.out = w
}

// TextFormatter implements Formatter for human-readable text output
type TextFormatter struct {
	out io.Writer
}

// FormatSuccess outputs text for successful results
func (f *TextFormatter) FormatSuccess(command string, data interface{}) error {
	// Text formatting is command-specific, so this is a placeholder
	// Each command should handle its own text output
	return nil
}

// FormatError outputs one line per error in file:line:column: message form,
// omitting the location parts the error does not carry
func (f *TextFormatter) FormatError(command string, errors []JSONError) error {
	w := f.out
	if w == nil {
		w = os.Stderr
	}
	for _, e := range errors {
		if prefix := locationPrefix(e.Location); prefix != "" {
			fmt.Fprintf(w, "%s: %s", prefix, e.Message)
		} else {
			fmt.Fprintf(w, "%s", e.Message)
		}
		if e.Rule != "" {
			fmt.Fprintf(w, " (%s)", e.Rule)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func locationPrefix(loc *JSONLocation) string {
	if loc == nil {
		return ""
	}
	prefix := loc.File
	if loc.Line > 0 {
		if prefix != "" {
			prefix += ":"
		}
		prefix += strconv.Itoa(loc.Line)
		if loc.Column > 0 {
			prefix += ":" + strconv.Itoa(loc.Column)
		}
	}
	return prefix
}

// SetOutput sets the output writer
func (f *TextFormatter) SetOutput(w io.Writer) {
	f.out = w
}
