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
	"go/ast"
	"go/importer"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/steplinehq/stepline/pkg/errors"
)

// Result is the outcome of one type check.
type Result struct {
	Success bool `json:"success" yaml:"success"`

	// Version is the snapshot version this result was produced against.
	Version int64 `json:"version" yaml:"version"`

	// LineErrors maps 1-based lines of the submitted source to their
	// diagnostics; multiple diagnostics on one line are newline-joined.
	LineErrors map[int]string `json:"line_errors,omitempty" yaml:"line_errors,omitempty"`

	// VariableTypes is a best-effort dump of every declared binding's
	// expanded type, produced only when diagnostics exist.
	VariableTypes []VariableTypeInfo `json:"variable_types,omitempty" yaml:"variable_types,omitempty"`
}

// snapshot is one named, versioned in-memory stand-in for a source file.
type snapshot struct {
	version int64
	content []byte
}

// Session is one warmed analysis engine. The session mutex serializes
// snapshot updates and diagnostic requests, which enforces the
// single-writer-per-virtual-file invariant for callers sharing a session.
type Session struct {
	mu        sync.Mutex
	cfg       Config
	fset      *token.FileSet
	imp       *cachingImporter
	snapshots map[string]*snapshot
}

func newSession(cfg Config) (*Session, error) {
	s := &Session{
		cfg:       cfg,
		fset:      token.NewFileSet(),
		snapshots: make(map[string]*snapshot),
	}
	s.imp = newCachingImporter(s.fset, cfg.Packages)

	// Warm the configured packages now so the first Check call pays
	// nothing but its own parse.
	for _, path := range sortedPaths(cfg.Packages) {
		if _, err := s.imp.Import(path); err != nil {
			return nil, &errors.ConfigError{
				Key:    "packages." + path,
				Reason: "loading configured package",
				Cause:  err,
			}
		}
	}
	return s, nil
}

// Version returns the current snapshot version of the session's virtual
// file, or 0 before the first Check.
func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap, ok := s.snapshots[s.cfg.filename()]; ok {
		return snap.version
	}
	return 0
}

// Check bumps the virtual file's snapshot to src, requests syntax and
// semantic diagnostics, and folds them into a per-line message map. Safe
// for concurrent use; concurrent callers are serialized.
func (s *Session) Check(src []byte) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.cfg.filename()
	snap, ok := s.snapshots[filename]
	if !ok {
		snap = &snapshot{}
		s.snapshots[filename] = snap
	}
	snap.version++
	snap.content = src

	result := &Result{
		Success:    true,
		Version:    snap.version,
		LineErrors: make(map[int]string),
	}

	file, err := parser.ParseFile(s.fset, filename, src, parser.ParseComments)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok {
			for _, e := range list {
				addLineError(result, e.Pos.Line, e.Msg)
			}
		} else {
			addLineError(result, 1, err.Error())
		}
	}
	if file == nil {
		finish(result, nil, nil, nil)
		return result
	}

	info := &types.Info{
		Defs:  make(map[*ast.Ident]types.Object),
		Types: make(map[ast.Expr]types.TypeAndValue),
	}
	conf := types.Config{
		Importer: s.imp,
		Error: func(err error) {
			typeErr, ok := err.(types.Error)
			if !ok {
				return
			}
			pos := typeErr.Fset.Position(typeErr.Pos)
			// Diagnostics positioned outside the virtual file belong to
			// imported packages, not to this in-memory unit.
			if pos.Filename != filename {
				return
			}
			addLineError(result, pos.Line, typeErr.Msg)
		},
	}
	// The returned error repeats the first collected diagnostic.
	_, _ = conf.Check(strings.TrimSuffix(filename, ".go"), s.fset, []*ast.File{file}, info)

	finish(result, s.fset, file, info)
	return result
}

func addLineError(result *Result, line int, msg string) {
	result.Success = false
	if existing, ok := result.LineErrors[line]; ok {
		result.LineErrors[line] = existing + "\n" + msg
		return
	}
	result.LineErrors[line] = msg
}

// finish attaches the variable type dump when any diagnostic exists.
func finish(result *Result, fset *token.FileSet, file *ast.File, info *types.Info) {
	if result.Success || file == nil {
		return
	}
	result.VariableTypes = collectVariableTypes(fset, file, info)
}

// cachingImporter resolves imports from the configured package
// directories first and falls back to compiling standard library sources.
// Every resolved package is cached for the lifetime of the session.
type cachingImporter struct {
	fset     *token.FileSet
	dirs     map[string]string
	cache    map[string]*types.Package
	fallback types.Importer
}

func newCachingImporter(fset *token.FileSet, dirs map[string]string) *cachingImporter {
	return &cachingImporter{
		fset:     fset,
		dirs:     dirs,
		cache:    make(map[string]*types.Package),
		fallback: importer.ForCompiler(fset, "source", nil),
	}
}

// Import implements types.Importer.
func (i *cachingImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := i.cache[path]; ok {
		return pkg, nil
	}
	if dir, ok := i.dirs[path]; ok {
		pkg, err := i.compileDir(path, dir)
		if err != nil {
			return nil, err
		}
		i.cache[path] = pkg
		return pkg, nil
	}
	pkg, err := i.fallback.Import(path)
	if err != nil {
		return nil, err
	}
	i.cache[path] = pkg
	return pkg, nil
}

// compileDir parses and type-checks every non-test Go file in dir as the
// package for the given import path.
func (i *cachingImporter) compileDir(path, dir string) (*types.Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading package directory %s", dir)
	}

	var files []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(i.fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(os.ErrNotExist, "no Go sources in %s", dir)
	}

	conf := types.Config{Importer: i}
	pkg, err := conf.Check(path, i.fset, files, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "checking package %s", path)
	}
	return pkg, nil
}

func sortedPaths(m map[string]string) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
