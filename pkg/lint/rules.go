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

package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"github.com/steplinehq/stepline/internal/dsl"
)

// credentialsField is the config key that must never appear in submitted
// source; the execution engine injects credentials at run time.
const credentialsField = "Credentials"

// entryStatements yields the statements the execution engine replays
// positionally: direct statements of the entry body, plus direct
// statements of the blocks of top-level if/else chains.
func entryStatements(file *dsl.File) []ast.Stmt {
	if file.Entry == nil || file.Entry.Body == nil {
		return nil
	}
	var out []ast.Stmt
	for _, stmt := range file.Entry.Body.List {
		out = append(out, stmt)
		ifStmt, ok := stmt.(*ast.IfStmt)
		for ok {
			out = append(out, ifStmt.Body.List...)
			switch els := ifStmt.Else.(type) {
			case *ast.BlockStmt:
				out = append(out, els.List...)
				ok = false
			case *ast.IfStmt:
				ifStmt = els
			default:
				ok = false
			}
		}
	}
	return out
}

// noPanicInEntry flags panic statements in the entry method's replayed
// statement positions. The execution engine instruments the entry method's
// control flow and cannot intercept a language-level panic.
type noPanicInEntry struct{}

func (noPanicInEntry) Name() string { return "no-panic-in-entry" }

func (noPanicInEntry) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, stmt := range entryStatements(ctx.File) {
		expr, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		call, ok := expr.X.(*ast.CallExpr)
		if !ok {
			continue
		}
		if ident, ok := call.Fun.(*ast.Ident); ok && ident.Name == "panic" {
			diags = append(diags, Diagnostic{
				Line:    ctx.File.Line(call.Pos()),
				Column:  ctx.File.Column(call.Pos()),
				Message: "panic is not allowed in the " + dsl.EntryMethodName + " method: the execution engine cannot intercept it",
				Rule:    "no-panic-in-entry",
			})
		}
	}
	return diags
}

// noInlineStep flags step constructions used as bare statements in the
// entry method. Only constructions in assignment form are understood by
// the execution engine.
type noInlineStep struct{}

func (noInlineStep) Name() string { return "no-inline-step" }

func (noInlineStep) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for _, stmt := range entryStatements(ctx.File) {
		expr, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		c := ctx.File.MatchConstruction(expr.X)
		if c == nil || !ctx.Registry.IsKnown(c.ClassName) {
			continue
		}
		diags = append(diags, Diagnostic{
			Line:    ctx.File.Line(expr.Pos()),
			Column:  ctx.File.Column(expr.Pos()),
			Message: fmt.Sprintf("step %s must be assigned to a variable; inline constructions are invisible to the execution engine", c.ClassName),
			Rule:    "no-inline-step",
		})
	}
	return diags
}

// noEmbeddedCredentials flags a Credentials field in any step constructor
// call anywhere in the file, at any nesting depth inside the config
// literal. Credentials are injected by the execution engine and must never
// be persisted in submitted source.
type noEmbeddedCredentials struct{}

func (noEmbeddedCredentials) Name() string { return "no-embedded-credentials" }

func (noEmbeddedCredentials) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(ctx.File.File, func(n ast.Node) bool {
		expr, ok := n.(ast.Expr)
		if !ok {
			return true
		}
		c := ctx.File.MatchConstruction(expr)
		if c == nil {
			return true
		}
		// ast.Inspect reaches every nested literal, wrapped or not:
		// parenthesized values, &-literals, conversions, and map keys.
		ast.Inspect(c.Config, func(inner ast.Node) bool {
			kv, ok := inner.(*ast.KeyValueExpr)
			if !ok {
				return true
			}
			if keyName(kv.Key) != credentialsField {
				return true
			}
			diags = append(diags, Diagnostic{
				Line:    ctx.File.Line(kv.Key.Pos()),
				Column:  ctx.File.Column(kv.Key.Pos()),
				Message: fmt.Sprintf("step %s embeds a %s field; credentials are injected at execution time and must not appear in source", c.ClassName, credentialsField),
				Rule:    "no-embedded-credentials",
			})
			return true
		})
		return false
	})
	return diags
}

// keyName resolves a composite literal key whether it is written as a
// field name or a string key in a map literal.
func keyName(key ast.Expr) string {
	switch k := key.(type) {
	case *ast.Ident:
		return k.Name
	case *ast.BasicLit:
		if k.Kind == token.STRING {
			if s, err := strconv.Unquote(k.Value); err == nil {
				return s
			}
		}
	}
	return ""
}

// noHelperCallInExpression flags entry-method helper calls (w.helper(...)
// on the entry receiver) buried inside compound expressions: composite
// literal values and elements. The execution engine instruments helper
// calls by statement position and cannot reach into expression trees. A
// slice literal passed directly to flow.Parallel is the one sanctioned
// compound position.
type noHelperCallInExpression struct{}

func (noHelperCallInExpression) Name() string { return "no-helper-call-in-expression" }

func (r noHelperCallInExpression) Check(ctx *Context) []Diagnostic {
	recv := ctx.File.ReceiverName()
	if recv == "" || ctx.File.Entry == nil || ctx.File.Entry.Body == nil {
		return nil
	}
	v := &helperCallVisitor{ctx: ctx, recv: recv, diags: new([]Diagnostic)}
	ast.Walk(v, ctx.File.Entry.Body)
	return *v.diags
}

// helperCallVisitor carries an explicit parent chain down the walk; each
// child visitor gets its own extended copy, so the chain behaves as an
// immutable stack rather than relying on node back-pointers.
type helperCallVisitor struct {
	ctx   *Context
	recv  string
	chain []ast.Node
	diags *[]Diagnostic
}

func (v *helperCallVisitor) Visit(n ast.Node) ast.Visitor {
	if n == nil {
		return nil
	}
	if _, ok := n.(*ast.FuncLit); ok {
		return nil
	}

	if call, ok := n.(*ast.CallExpr); ok && v.isHelperCall(call) {
		if where := v.compoundContext(); where != "" {
			*v.diags = append(*v.diags, Diagnostic{
				Line:    v.ctx.File.Line(call.Pos()),
				Column:  v.ctx.File.Column(call.Pos()),
				Message: fmt.Sprintf("helper call inside %s cannot be instrumented; move it to its own statement", where),
				Rule:    "no-helper-call-in-expression",
			})
		}
	}

	child := make([]ast.Node, len(v.chain), len(v.chain)+1)
	copy(child, v.chain)
	return &helperCallVisitor{ctx: v.ctx, recv: v.recv, chain: append(child, n), diags: v.diags}
}

// isHelperCall reports whether call is a method call on the entry
// receiver itself.
func (v *helperCallVisitor) isHelperCall(call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == v.recv
}

// compoundContext scans the parent chain from the call outward, stopping
// at the nearest statement boundary (statements are always safe), and
// names the first compound expression context it finds.
func (v *helperCallVisitor) compoundContext() string {
	for i := len(v.chain) - 1; i >= 0; i-- {
		switch node := v.chain[i].(type) {
		case ast.Stmt:
			return ""
		case *ast.KeyValueExpr:
			return "an object literal value"
		case *ast.CompositeLit:
			if v.isParallelArgument(node, i) {
				return ""
			}
			return "an array literal element"
		}
	}
	return ""
}

// isParallelArgument reports whether lit is a slice literal passed
// directly to the flow.Parallel combinator, whose elements the execution
// engine does know how to instrument.
func (v *helperCallVisitor) isParallelArgument(lit *ast.CompositeLit, idx int) bool {
	if _, ok := lit.Type.(*ast.ArrayType); !ok {
		return false
	}
	if idx == 0 {
		return false
	}
	call, ok := v.chain[idx-1].(*ast.CallExpr)
	if !ok || !v.ctx.File.IsFlowCall(call, dsl.ParallelFuncName) {
		return false
	}
	for _, arg := range call.Args {
		if arg == ast.Expr(lit) {
			return true
		}
	}
	return false
}
