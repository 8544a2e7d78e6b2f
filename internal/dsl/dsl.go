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

// Package dsl recognizes the Stepline workflow surface inside Go source:
// the workflow definition struct (identified by its embedded flow.Definition
// field), the Execute entry method, and step constructions of the form
// pkg.NewClass(pkg.ClassConfig{...}), optionally wrapped in flow.Await and
// optionally followed by a chained .Action call.
//
// The extractor, reconstructor, and lint engine all share this single
// recognition layer so the three analyzers can never disagree about what
// counts as a step construction.
package dsl

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

const (
	// FlowImportSuffix identifies the workflow SDK package among a file's
	// imports. Matching by suffix keeps forks and vendored copies working.
	FlowImportSuffix = "/sdk/flow"

	// BaseTypeName is the embedded marker type of workflow definitions.
	BaseTypeName = "Definition"

	// EntryMethodName is the designated entry method the execution engine
	// drives.
	EntryMethodName = "Execute"

	// EnvFuncName marks a runtime environment reference.
	EnvFuncName = "Env"

	// AwaitFuncName is the blocking combinator wrapping a construction.
	AwaitFuncName = "Await"

	// ParallelFuncName is the parallel combinator whose slice argument may
	// legally contain entry-method helper calls.
	ParallelFuncName = "Parallel"

	// ActionMethodName is the chained invocation method on a construction.
	ActionMethodName = "Action"

	// configSuffix is the naming convention tying a constructor to its
	// config literal: NewClass takes a ClassConfig.
	configSuffix = "Config"
)

// File is one parsed workflow source with its resolved DSL anchor points.
// Class and Entry are nil when the source declares no workflow definition;
// callers decide how to report that.
type File struct {
	Fset *token.FileSet
	File *ast.File
	Src  []byte

	// FlowAlias is the local name of the flow SDK import, or "" when the
	// file does not import it.
	FlowAlias string

	// Class is the workflow definition struct's type spec.
	Class *ast.TypeSpec

	// Entry is the Execute method declared on Class.
	Entry *ast.FuncDecl

	// imports maps local package names to import paths.
	imports map[string]string
}

// Parse parses source text and locates the workflow DSL anchor points.
// A grammar-level parse failure returns the parser's error unchanged;
// callers wrap it into their own taxonomy.
func Parse(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	f := &File{
		Fset:    fset,
		File:    astFile,
		Src:     src,
		imports: make(map[string]string),
	}
	f.resolveImports()
	f.locateClass()
	f.locateEntry()
	return f, nil
}

func (f *File) resolveImports() {
	for _, imp := range f.File.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := path[strings.LastIndex(path, "/")+1:]
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "." || name == "_" {
			continue
		}
		f.imports[name] = path
		if strings.HasSuffix(path, FlowImportSuffix) {
			f.FlowAlias = name
		}
	}
}

// locateClass finds the first struct type carrying an embedded
// flow.Definition field.
func (f *File) locateClass() {
	for _, decl := range f.File.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			for _, field := range st.Fields.List {
				if len(field.Names) != 0 {
					continue
				}
				if f.isFlowSelector(field.Type, BaseTypeName) {
					f.Class = ts
					return
				}
			}
		}
	}
}

// locateEntry finds the Execute method declared on the workflow class,
// with either a pointer or a value receiver.
func (f *File) locateEntry() {
	if f.Class == nil {
		return
	}
	for _, decl := range f.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || fn.Name.Name != EntryMethodName {
			continue
		}
		if len(fn.Recv.List) != 1 {
			continue
		}
		recv := fn.Recv.List[0].Type
		if star, ok := recv.(*ast.StarExpr); ok {
			recv = star.X
		}
		if ident, ok := recv.(*ast.Ident); ok && ident.Name == f.Class.Name.Name {
			f.Entry = fn
			return
		}
	}
}

// ReceiverName returns the entry method's receiver binding, or "" when the
// receiver is anonymous or the entry method is missing.
func (f *File) ReceiverName() string {
	if f.Entry == nil || len(f.Entry.Recv.List) == 0 || len(f.Entry.Recv.List[0].Names) == 0 {
		return ""
	}
	return f.Entry.Recv.List[0].Names[0].Name
}

// isFlowSelector reports whether expr is flowAlias.sel, unwrapping a
// leading star.
func (f *File) isFlowSelector(expr ast.Expr, sel string) bool {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	selExpr, ok := expr.(*ast.SelectorExpr)
	if !ok || selExpr.Sel.Name != sel {
		return false
	}
	ident, ok := selExpr.X.(*ast.Ident)
	return ok && f.FlowAlias != "" && ident.Name == f.FlowAlias
}

// IsImport reports whether name is the local name of one of the file's
// imports.
func (f *File) IsImport(name string) bool {
	_, ok := f.imports[name]
	return ok
}

// IsFlowCall reports whether call invokes the named function from the flow
// SDK package (for example flow.Env or flow.Parallel).
func (f *File) IsFlowCall(call *ast.CallExpr, name string) bool {
	return f.isFlowSelector(call.Fun, name)
}

// Offset converts a token position into a byte offset in Src.
func (f *File) Offset(pos token.Pos) int {
	return f.Fset.Position(pos).Offset
}

// Line returns the 1-based line of a token position.
func (f *File) Line(pos token.Pos) int {
	return f.Fset.Position(pos).Line
}

// Column returns the 1-based column of a token position.
func (f *File) Column(pos token.Pos) int {
	return f.Fset.Position(pos).Column
}

// Text returns the exact source text covered by a node.
func (f *File) Text(n ast.Node) string {
	return string(f.Src[f.Offset(n.Pos()):f.Offset(n.End())])
}

// Construction is one syntactic step construction together with its
// optional wrappers.
type Construction struct {
	// Outer is the outermost expression of the construction, including a
	// flow.Await wrapper and a chained .Action call when present.
	Outer ast.Expr

	// Call is the pkg.NewClass(...) call itself.
	Call *ast.CallExpr

	// Config is the keyed config literal passed to the constructor,
	// unwrapped from & and parentheses.
	Config *ast.CompositeLit

	ClassName       string
	IsAwaited       bool
	IsActionInvoked bool
}

// MatchConstruction reports whether expr is a step construction and
// returns its parts. The shape gate requires a package-qualified New-prefix
// call whose single argument is a composite literal named after the class
// with a Config suffix; ordinary constructors such as errors.New or
// time.NewTimer never match.
func (f *File) MatchConstruction(expr ast.Expr) *Construction {
	c := &Construction{Outer: expr}
	inner := astutil.Unparen(expr)

	// Peel flow.Await wrappers and chained .Action calls, in whatever
	// order the author stacked them.
	for {
		call, ok := inner.(*ast.CallExpr)
		if !ok {
			return nil
		}
		if len(call.Args) == 1 && f.IsFlowCall(call, AwaitFuncName) {
			c.IsAwaited = true
			inner = astutil.Unparen(call.Args[0])
			continue
		}
		if sel, ok := call.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == ActionMethodName {
			if _, isCall := astutil.Unparen(sel.X).(*ast.CallExpr); isCall {
				c.IsActionInvoked = true
				inner = astutil.Unparen(sel.X)
				continue
			}
		}
		break
	}

	call, ok := inner.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !strings.HasPrefix(sel.Sel.Name, "New") || len(sel.Sel.Name) == len("New") {
		return nil
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return nil
	}
	if _, imported := f.imports[pkg.Name]; !imported || pkg.Name == f.FlowAlias {
		return nil
	}

	config, ok := unwrapCompositeLit(call.Args[0])
	if !ok {
		return nil
	}
	className := strings.TrimPrefix(sel.Sel.Name, "New")
	if litTypeName(config.Type) != className+configSuffix {
		return nil
	}

	c.Call = call
	c.Config = config
	c.ClassName = className
	return c
}

// unwrapCompositeLit strips parentheses and a leading & from an expression
// and returns the composite literal underneath.
func unwrapCompositeLit(expr ast.Expr) (*ast.CompositeLit, bool) {
	expr = astutil.Unparen(expr)
	if unary, ok := expr.(*ast.UnaryExpr); ok && unary.Op == token.AND {
		expr = astutil.Unparen(unary.X)
	}
	lit, ok := expr.(*ast.CompositeLit)
	return lit, ok
}

// litTypeName returns the bare type name of a composite literal,
// dropping any package qualifier.
func litTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return ""
}

// Bound is a construction found in the entry method, together with its
// variable binding when one exists.
type Bound struct {
	Construction

	// VarName is the binding name, or "" for anonymous constructions.
	VarName string
}

// Constructions walks the entry method body in source order and returns
// every step construction it contains. The walk descends through nested
// blocks (if, for, range, switch, select) but never into function
// literals: closures are opaque to the execution engine, so their contents
// are opaque to the analyzers too.
func (f *File) Constructions() []Bound {
	if f.Entry == nil || f.Entry.Body == nil {
		return nil
	}

	// First pass: record which construction expressions are the direct
	// right-hand side of a variable binding.
	bindings := make(map[ast.Expr]string)
	ast.Inspect(f.Entry.Body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.AssignStmt:
			for i, rhs := range node.Rhs {
				if i >= len(node.Lhs) {
					break
				}
				if f.MatchConstruction(rhs) == nil {
					continue
				}
				if ident, ok := node.Lhs[i].(*ast.Ident); ok && ident.Name != "_" {
					bindings[rhs] = ident.Name
				}
			}
		case *ast.ValueSpec:
			for i, value := range node.Values {
				if i >= len(node.Names) {
					break
				}
				if f.MatchConstruction(value) == nil {
					continue
				}
				if node.Names[i].Name != "_" {
					bindings[value] = node.Names[i].Name
				}
			}
		}
		return true
	})

	// Second pass: collect constructions in source order. Matching stops
	// the descent so the inner constructor call of an Await or Action
	// wrapper is not reported twice.
	var found []Bound
	ast.Inspect(f.Entry.Body, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		expr, ok := n.(ast.Expr)
		if !ok {
			return true
		}
		c := f.MatchConstruction(expr)
		if c == nil {
			return true
		}
		found = append(found, Bound{Construction: *c, VarName: bindings[expr]})
		return false
	})
	return found
}
