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

package typecheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

// VariableTypeInfo describes one declared binding with its structurally
// expanded type. It is emitted only when diagnostics exist, as context for
// the editing UI.
type VariableTypeInfo struct {
	// Name is the binding's identifier.
	Name string `json:"name" yaml:"name"`

	// Decl distinguishes variables, parameters, and struct fields.
	Decl string `json:"decl" yaml:"decl"`

	// Line is the 1-based declaration line.
	Line int `json:"line" yaml:"line"`

	// Type is the expanded type description.
	Type string `json:"type" yaml:"type"`
}

const (
	declVar   = "var"
	declParam = "param"
	declField = "field"

	// maxExpandedFields caps how many fields of a struct shape are shown,
	// bounding output size for large generated config types.
	maxExpandedFields = 16

	// maxExpandDepth stops structural expansion of deeply nested shapes.
	maxExpandDepth = 4
)

// collectVariableTypes walks the syntax tree once and produces a
// best-effort type description for every variable declaration,
// assignment-defined binding, function parameter, and struct field.
// Bindings the checker could not resolve are skipped.
func collectVariableTypes(fset *token.FileSet, file *ast.File, info *types.Info) []VariableTypeInfo {
	if info == nil {
		return nil
	}

	var out []VariableTypeInfo
	record := func(ident *ast.Ident, decl string) {
		if ident == nil || ident.Name == "_" {
			return
		}
		obj := info.Defs[ident]
		if obj == nil || obj.Type() == nil {
			return
		}
		out = append(out, VariableTypeInfo{
			Name: ident.Name,
			Decl: decl,
			Line: fset.Position(ident.Pos()).Line,
			Type: expandType(obj.Type(), 0, make(map[*types.Named]bool)),
		})
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.ValueSpec:
			for _, name := range node.Names {
				record(name, declVar)
			}
		case *ast.AssignStmt:
			if node.Tok != token.DEFINE {
				return true
			}
			for _, lhs := range node.Lhs {
				if ident, ok := lhs.(*ast.Ident); ok {
					record(ident, declVar)
				}
			}
		case *ast.FuncDecl:
			recordFieldList(record, node.Type.Params)
		case *ast.FuncLit:
			recordFieldList(record, node.Type.Params)
		case *ast.StructType:
			for _, field := range node.Fields.List {
				for _, name := range field.Names {
					record(name, declField)
				}
			}
		}
		return true
	})
	return out
}

func recordFieldList(record func(*ast.Ident, string), fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			record(name, declParam)
		}
	}
}

// expandType renders a type with named types expanded into their
// structural shape. Expansion recurses with a cycle guard and caps both
// depth and the number of struct fields shown.
func expandType(t types.Type, depth int, seen map[*types.Named]bool) string {
	switch typ := t.(type) {
	case *types.Named:
		name := typ.Obj().Name()
		if seen[typ] || depth >= maxExpandDepth {
			return name
		}
		seen[typ] = true
		defer delete(seen, typ)

		underlying := typ.Underlying()
		if st, ok := underlying.(*types.Struct); ok {
			return fmt.Sprintf("%s %s", name, expandStruct(st, depth+1, seen))
		}
		if _, ok := underlying.(*types.Interface); ok {
			return name
		}
		return fmt.Sprintf("%s (%s)", name, expandType(underlying, depth+1, seen))

	case *types.Pointer:
		return "*" + expandType(typ.Elem(), depth, seen)

	case *types.Slice:
		return "[]" + expandType(typ.Elem(), depth, seen)

	case *types.Array:
		return fmt.Sprintf("[%d]%s", typ.Len(), expandType(typ.Elem(), depth, seen))

	case *types.Map:
		return fmt.Sprintf("map[%s]%s", expandType(typ.Key(), depth, seen), expandType(typ.Elem(), depth, seen))

	case *types.Struct:
		return expandStruct(typ, depth, seen)
	}

	return types.TypeString(t, func(p *types.Package) string { return p.Name() })
}

func expandStruct(st *types.Struct, depth int, seen map[*types.Named]bool) string {
	var b strings.Builder
	b.WriteString("{")
	shown := st.NumFields()
	truncated := false
	if shown > maxExpandedFields {
		shown = maxExpandedFields
		truncated = true
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		field := st.Field(i)
		b.WriteString(field.Name())
		b.WriteString(" ")
		b.WriteString(expandType(field.Type(), depth, seen))
	}
	if truncated {
		b.WriteString(fmt.Sprintf("; ... %d more", st.NumFields()-shown))
	}
	b.WriteString("}")
	return b.String()
}
