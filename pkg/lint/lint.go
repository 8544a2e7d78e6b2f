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

// Package lint enforces the safety invariants that make a workflow
// definition's entry method instrumentable by the execution engine.
//
// The engine parses the source once, builds a shared Context, and hands it
// to each registered rule. Rules never re-traverse from scratch, so adding
// a rule costs no extra parse pass. Rule failures are independent: a rule
// that panics is recovered, logged, and skipped while the remaining rules
// still run.
package lint

import (
	"go/scanner"
	"log/slog"
	"sort"

	"github.com/steplinehq/stepline/internal/dsl"
	"github.com/steplinehq/stepline/pkg/step"
)

// Diagnostic is one rule violation. Line and Column are 1-based positions
// in the submitted source.
type Diagnostic struct {
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message" yaml:"message"`
	Rule    string `json:"rule" yaml:"rule"`
}

// Context is the shared analysis state built by one AST pass and consumed
// by every rule. It is a short-lived value scoped to a single Lint call.
type Context struct {
	File     *dsl.File
	Registry step.Registry
}

// Rule is one independent safety check.
type Rule interface {
	// Name tags the rule's diagnostics.
	Name() string

	// Check inspects the shared context and returns any violations.
	Check(ctx *Context) []Diagnostic
}

// builtinRules run in order on every Lint call.
var builtinRules = []Rule{
	noPanicInEntry{},
	noInlineStep{},
	noEmbeddedCredentials{},
	noHelperCallInExpression{},
}

// Lint runs every built-in rule against the source and returns the union
// of their diagnostics, sorted by position. Source that does not parse
// yields a single syntax diagnostic.
func Lint(src []byte, reg step.Registry) []Diagnostic {
	return run(src, reg, builtinRules)
}

func run(src []byte, reg step.Registry, rules []Rule) []Diagnostic {
	file, err := dsl.Parse("workflow.go", src)
	if err != nil {
		return []Diagnostic{syntaxDiagnostic(err)}
	}

	ctx := &Context{File: file, Registry: reg}

	var diags []Diagnostic
	if file.Class == nil {
		diags = append(diags, Diagnostic{
			Line:    1,
			Column:  1,
			Message: "no workflow definition found: expected a struct type embedding flow.Definition",
			Rule:    "workflow-structure",
		})
	} else if file.Entry == nil {
		diags = append(diags, Diagnostic{
			Line:    file.Line(file.Class.Pos()),
			Column:  file.Column(file.Class.Pos()),
			Message: "workflow definition declares no " + dsl.EntryMethodName + " method",
			Rule:    "workflow-structure",
		})
	}

	for _, rule := range rules {
		diags = append(diags, checkRule(rule, ctx)...)
	}

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
	return diags
}

// checkRule isolates one rule's execution so a buggy rule cannot take the
// whole lint pass down with it.
func checkRule(rule Rule, ctx *Context) (diags []Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("lint rule panicked; skipping",
				slog.String("rule", rule.Name()),
				slog.Any("panic", r))
			diags = nil
		}
	}()
	return rule.Check(ctx)
}

func syntaxDiagnostic(err error) Diagnostic {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		first := list[0]
		return Diagnostic{Line: first.Pos.Line, Column: first.Pos.Column, Message: first.Msg, Rule: "syntax"}
	}
	return Diagnostic{Line: 1, Column: 1, Message: err.Error(), Rule: "syntax"}
}
