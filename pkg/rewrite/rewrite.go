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

// Package rewrite regenerates workflow source with edited step parameters.
// It re-runs extraction to locate each construction's exact span, then
// splices freshly serialized config fields into the matched literals. Every
// byte outside the matched literals, comments and whitespace included, is
// carried over unchanged.
package rewrite

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/steplinehq/stepline/internal/dsl"
	"github.com/steplinehq/stepline/pkg/errors"
	"github.com/steplinehq/stepline/pkg/extract"
	"github.com/steplinehq/stepline/pkg/step"
)

// Result is the outcome of one reconstruction. On any failure NewSource is
// empty: partial rewrites are never emitted.
type Result struct {
	Success   bool     `json:"success" yaml:"success"`
	NewSource string   `json:"new_source,omitempty" yaml:"new_source,omitempty"`
	Errors    []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// allowAll satisfies step.Registry for span location. Reconstruction does
// not re-validate class registration; the caller already extracted with the
// real registry, and the identity check below pins each override to the
// class found at its binding.
type allowAll struct{}

func (allowAll) IsKnown(string) bool { return true }

func (allowAll) Kind(string) (step.Kind, bool) { return "", true }

// Reconstruct applies parameter overrides to the constructions bound to the
// override map's variable names. Overrides for variables the source does
// not bind are ignored. An override whose ClassName differs from the class
// extracted at that binding aborts the whole operation.
func Reconstruct(src []byte, overrides map[string]*step.Instantiation) *Result {
	file, err := dsl.Parse("workflow.go", src)
	if err != nil {
		return &Result{Success: false, Errors: []string{(&errors.SyntaxError{Cause: err}).Error()}}
	}

	// Sources without a recognizable workflow definition extract to an
	// empty instantiation map, which makes every override a no-op and
	// keeps the identity property: no overrides, no changes.
	extraction := extract.Extract(src, allowAll{})
	flowAlias := file.FlowAlias
	if flowAlias == "" {
		flowAlias = "flow"
	}

	type edit struct {
		span step.Span
		text string
	}
	var edits []edit

	for _, name := range sortedKeys(overrides) {
		override := overrides[name]
		original, ok := extraction.Instantiations[name]
		if !ok {
			continue
		}
		if override.ClassName != original.ClassName {
			mismatch := &errors.MismatchError{
				Variable: name,
				Expected: original.ClassName,
				Given:    override.ClassName,
			}
			return &Result{Success: false, Errors: []string{mismatch.Error()}}
		}
		text, err := emitParameters(override.Parameters, flowAlias)
		if err != nil {
			return &Result{Success: false, Errors: []string{err.Error()}}
		}
		edits = append(edits, edit{span: original.ArgsSpan, text: text})
	}

	// Apply back to front so earlier spans stay valid.
	sort.Slice(edits, func(i, j int) bool { return edits[i].span.Start > edits[j].span.Start })

	out := make([]byte, len(src))
	copy(out, src)
	for _, e := range edits {
		out = append(out[:e.span.Start], append([]byte(e.text), out[e.span.End:]...)...)
	}

	return &Result{Success: true, NewSource: string(out)}
}

// emitParameters serializes config fields in declaration order as a
// single-line element list.
func emitParameters(params []step.Parameter, flowAlias string) (string, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		value, err := emitValue(p, flowAlias)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, value))
	}
	return strings.Join(parts, ", "), nil
}

// emitValue re-emits one parameter value according to its kind. The switch
// covers the whole ParamKind enum; a new kind without a re-emission rule is
// a programming error surfaced at the call site.
func emitValue(p step.Parameter, flowAlias string) (string, error) {
	switch p.Kind {
	case step.KindString:
		return strconv.Quote(p.RawValue), nil
	case step.KindNumber, step.KindBoolean:
		return p.RawValue, nil
	case step.KindEnv:
		return fmt.Sprintf("%s.%s(%q)", flowAlias, dsl.EnvFuncName, p.RawValue), nil
	case step.KindArray, step.KindObject, step.KindUnknown:
		return p.RawValue, nil
	}
	return "", fmt.Errorf("parameter %q: no re-emission rule for kind %v", p.Name, p.Kind)
}

func sortedKeys(m map[string]*step.Instantiation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
