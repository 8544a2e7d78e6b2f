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

// Package step defines the data model shared by the Stepline analyzers:
// step instantiations discovered in workflow source, their parameters, and
// the registry of known step classes.
package step

import (
	"fmt"
)

// ParamKind classifies the syntactic shape of a step parameter value.
// It is a closed enum: the reconstructor switches over every case and
// treats anything else as a programming error.
type ParamKind int

const (
	// KindUnknown marks a bare identifier or expression whose value is
	// only known at runtime.
	KindUnknown ParamKind = iota
	// KindString is a string literal.
	KindString
	// KindNumber is an integer or float literal.
	KindNumber
	// KindBoolean is a true/false literal.
	KindBoolean
	// KindArray is a slice or array composite literal.
	KindArray
	// KindObject is a struct or map composite literal.
	KindObject
	// KindEnv is a reference to a runtime environment value,
	// written as flow.Env("NAME") in workflow source.
	KindEnv
)

var paramKindNames = map[ParamKind]string{
	KindUnknown: "UNKNOWN",
	KindString:  "STRING",
	KindNumber:  "NUMBER",
	KindBoolean: "BOOLEAN",
	KindArray:   "ARRAY",
	KindObject:  "OBJECT",
	KindEnv:     "ENV",
}

// String returns the canonical upper-case name of the kind.
func (k ParamKind) String() string {
	if name, ok := paramKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name
// in JSON and YAML output.
func (k ParamKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextMarshaler.
func (k *ParamKind) UnmarshalText(text []byte) error {
	for kind, name := range paramKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown parameter kind %q", string(text))
}

// ParseKind converts a canonical kind name into a ParamKind.
func ParseKind(name string) (ParamKind, error) {
	var k ParamKind
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return KindUnknown, err
	}
	return k, nil
}

// Parameter is one named field of a step's config literal.
//
// RawValue holds the unquoted value for STRING parameters, the literal text
// for NUMBER and BOOLEAN, the environment variable name for ENV, and the
// exact source text for ARRAY, OBJECT, and UNKNOWN.
type Parameter struct {
	Name     string    `json:"name" yaml:"name"`
	RawValue string    `json:"raw_value" yaml:"raw_value"`
	Kind     ParamKind `json:"kind" yaml:"kind"`
}

// Span is a half-open byte range [Start, End) into the submitted source.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Kind is a step class's category from the registry (for example
// "integration" or "query"). Kinds are opaque to the analyzers.
type Kind string

// Instantiation is one step construction discovered in a workflow
// definition's entry method.
type Instantiation struct {
	// VariableName is the binding name, or a synthesized "Class#n" name
	// for constructions not assigned to a variable. Synthesized names use
	// '#', which cannot appear in a Go identifier, so they never collide
	// with real bindings.
	VariableName string `json:"variable_name" yaml:"variable_name"`

	// ClassName is the step class, e.g. "SlackMessage" for a
	// steps.NewSlackMessage(...) construction.
	ClassName string `json:"class_name" yaml:"class_name"`

	// Kind is the class's registry kind.
	Kind Kind `json:"kind" yaml:"kind"`

	// Span covers the whole construction expression, including any
	// flow.Await wrapper and chained .Action call.
	Span Span `json:"span" yaml:"span"`

	// ArgsSpan covers the element region inside the config literal's
	// braces; the reconstructor replaces exactly this range.
	ArgsSpan Span `json:"args_span" yaml:"args_span"`

	// Line is the 1-based line of the construction in the source.
	Line int `json:"line" yaml:"line"`

	IsAwaited       bool `json:"is_awaited" yaml:"is_awaited"`
	IsActionInvoked bool `json:"is_action_invoked" yaml:"is_action_invoked"`

	Parameters []Parameter `json:"parameters" yaml:"parameters"`
}

// Parameter returns the named parameter, or nil if the instantiation does
// not carry it.
func (inst *Instantiation) Parameter(name string) *Parameter {
	for i := range inst.Parameters {
		if inst.Parameters[i].Name == name {
			return &inst.Parameters[i]
		}
	}
	return nil
}
