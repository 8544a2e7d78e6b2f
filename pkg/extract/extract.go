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

// Package extract discovers step instantiations in workflow definition
// source. Extraction is purely structural: it parses the submitted text,
// locates the workflow definition's entry method, and records every step
// construction with its constructor parameters and exact source spans.
package extract

import (
	"fmt"
	"go/ast"
	"sort"
	"strings"

	"github.com/steplinehq/stepline/internal/dsl"
	"github.com/steplinehq/stepline/pkg/errors"
	"github.com/steplinehq/stepline/pkg/step"
)

// Result is the outcome of one extraction.
//
// Success is false when the source fails to parse, when no workflow
// definition is present, or when any construction names an unregistered
// step class. In the unregistered case every other recognized
// instantiation is still returned so callers can surface partial
// information.
type Result struct {
	Success        bool                           `json:"success" yaml:"success"`
	Instantiations map[string]*step.Instantiation `json:"instantiations" yaml:"instantiations"`
	Errors         []string                       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Ordered returns the instantiations sorted by source position.
func (r *Result) Ordered() []*step.Instantiation {
	out := make([]*step.Instantiation, 0, len(r.Instantiations))
	for _, inst := range r.Instantiations {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

func (r *Result) addError(err error) {
	r.Success = false
	r.Errors = append(r.Errors, err.Error())
}

// Extract parses source text and returns every step instantiation declared
// in the workflow definition's entry method, validated against the
// registry. The source is not retained.
func Extract(src []byte, reg step.Registry) *Result {
	result := &Result{
		Success:        true,
		Instantiations: make(map[string]*step.Instantiation),
	}

	file, err := dsl.Parse("workflow.go", src)
	if err != nil {
		result.addError(&errors.SyntaxError{Cause: err})
		return result
	}

	if file.Class == nil {
		result.addError(&errors.StructuralError{Message: "no workflow definition found: expected a struct type embedding flow.Definition"})
		return result
	}
	if file.Entry == nil {
		result.addError(&errors.StructuralError{
			Class:   file.Class.Name.Name,
			Message: fmt.Sprintf("declares no %s method", dsl.EntryMethodName),
		})
		return result
	}

	anonymous := make(map[string]int)
	for _, bound := range file.Constructions() {
		name := bound.VarName
		if name == "" {
			// Synthesized names embed the class and a 1-based per-class
			// occurrence counter. '#' is not legal in a Go identifier,
			// so these can never collide with a real binding.
			anonymous[bound.ClassName]++
			name = fmt.Sprintf("%s#%d", bound.ClassName, anonymous[bound.ClassName])
		}

		if !reg.IsKnown(bound.ClassName) {
			result.addError(&errors.StructuralError{Class: bound.ClassName, Message: "is not registered"})
			continue
		}
		kind, _ := reg.Kind(bound.ClassName)

		if _, exists := result.Instantiations[name]; exists {
			result.addError(&errors.StructuralError{
				Class:   bound.ClassName,
				Message: fmt.Sprintf("rebinds variable %q already used by another step", name),
			})
			continue
		}

		params, paramErrs := extractParameters(file, bound.Config)
		for _, perr := range paramErrs {
			result.addError(&errors.StructuralError{Class: bound.ClassName, Message: perr})
		}

		result.Instantiations[name] = &step.Instantiation{
			VariableName: name,
			ClassName:    bound.ClassName,
			Kind:         kind,
			Span: step.Span{
				Start: file.Offset(bound.Outer.Pos()),
				End:   file.Offset(bound.Outer.End()),
			},
			ArgsSpan: step.Span{
				Start: file.Offset(bound.Config.Lbrace) + 1,
				End:   file.Offset(bound.Config.Rbrace),
			},
			Line:            file.Line(bound.Outer.Pos()),
			IsAwaited:       bound.IsAwaited,
			IsActionInvoked: bound.IsActionInvoked,
			Parameters:      params,
		}
	}

	reportMalformedConstructors(file, reg, result)

	return result
}

// reportMalformedConstructors flags calls that name a registered step class
// but do not carry the single config-literal argument the constructor
// contract requires. Without this pass such calls would be skipped
// silently, because the shape gate in the recognizer never matches them.
func reportMalformedConstructors(file *dsl.File, reg step.Registry, result *Result) {
	ast.Inspect(file.Entry.Body, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !strings.HasPrefix(sel.Sel.Name, "New") || len(sel.Sel.Name) == len("New") {
			return true
		}
		pkg, ok := sel.X.(*ast.Ident)
		if !ok || !file.IsImport(pkg.Name) {
			return true
		}
		class := strings.TrimPrefix(sel.Sel.Name, "New")
		if !reg.IsKnown(class) {
			return true
		}
		if file.MatchConstruction(call) != nil {
			return true
		}
		result.addError(&errors.StructuralError{
			Class:   class,
			Message: fmt.Sprintf("constructor at line %d must take a single %sConfig literal", file.Line(call.Pos()), class),
		})
		return true
	})
}
