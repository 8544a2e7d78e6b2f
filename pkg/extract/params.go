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

package extract

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/steplinehq/stepline/internal/dsl"
	"github.com/steplinehq/stepline/pkg/step"
)

// extractParameters turns the elements of a config literal into typed step
// parameters. Positional (unkeyed) elements are reported as errors; the
// remaining keyed fields are still extracted.
func extractParameters(file *dsl.File, config *ast.CompositeLit) ([]step.Parameter, []string) {
	params := make([]step.Parameter, 0, len(config.Elts))
	var errs []string

	for _, elt := range config.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			errs = append(errs, fmt.Sprintf("config field at line %d must use named-field form", file.Line(elt.Pos())))
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			errs = append(errs, fmt.Sprintf("config key at line %d is not a plain field name", file.Line(kv.Key.Pos())))
			continue
		}
		raw, kind := classifyValue(file, kv.Value)
		params = append(params, step.Parameter{Name: key.Name, RawValue: raw, Kind: kind})
	}

	return params, errs
}

// classifyValue maps a config field value onto the closed parameter kind
// enum by syntactic shape alone. Anything it does not recognize is
// UNKNOWN with the exact source text preserved, so the reconstructor can
// re-emit it verbatim.
func classifyValue(file *dsl.File, value ast.Expr) (string, step.ParamKind) {
	expr := astutil.Unparen(value)

	switch v := expr.(type) {
	case *ast.BasicLit:
		switch v.Kind {
		case token.STRING:
			if s, err := strconv.Unquote(v.Value); err == nil {
				return s, step.KindString
			}
		case token.INT, token.FLOAT:
			return v.Value, step.KindNumber
		}

	case *ast.Ident:
		if v.Name == "true" || v.Name == "false" {
			return v.Name, step.KindBoolean
		}

	case *ast.UnaryExpr:
		// Negative numeric literals parse as a unary minus.
		if v.Op == token.SUB {
			if lit, ok := astutil.Unparen(v.X).(*ast.BasicLit); ok && (lit.Kind == token.INT || lit.Kind == token.FLOAT) {
				return "-" + lit.Value, step.KindNumber
			}
		}
		if v.Op == token.AND {
			if _, ok := astutil.Unparen(v.X).(*ast.CompositeLit); ok {
				return file.Text(value), step.KindObject
			}
		}

	case *ast.CompositeLit:
		if _, ok := v.Type.(*ast.ArrayType); ok {
			return file.Text(value), step.KindArray
		}
		return file.Text(value), step.KindObject

	case *ast.CallExpr:
		if file.IsFlowCall(v, dsl.EnvFuncName) && len(v.Args) == 1 {
			if lit, ok := astutil.Unparen(v.Args[0]).(*ast.BasicLit); ok && lit.Kind == token.STRING {
				if name, err := strconv.Unquote(lit.Value); err == nil {
					return name, step.KindEnv
				}
			}
		}
	}

	return file.Text(value), step.KindUnknown
}
