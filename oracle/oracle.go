// Package oracle declares the external collaborators the rename engine
// consumes but never implements: the type-checker, the parser, and the
// per-folder path configuration (§6 "External interfaces (consumed)").
//
// Deliberately kept as interfaces rather than a hard-linked concrete
// frontend: spec §1 places the parser and type-checker themselves out of
// scope, and §6 specifies only the shape the core requires of them. A
// concrete language frontend (the teacher's own github.com/cwbudde/go-dws,
// for instance) would plug in behind these interfaces; this repo never
// imports one. See DESIGN.md.
package oracle

import (
	"context"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
	"github.com/oaklang/rename-lsp/model"
)

// Model is everything a TypeChecker returns for one or more files: the
// Defines, the use→def relation, the Facts, and the lexical Scopes
// relation (§6).
type Model struct {
	Defines []model.Define
	UseDef  []model.UseDef
	Facts   []model.Fact
	Scopes  []model.ScopeEdge
	// Errors holds the checker's own diagnostics for the requested
	// files. A non-empty slice does not prevent the Model from being
	// returned. The Index merges only Defines, UseDef, Facts and Scopes;
	// Errors is not read, surfaced or used to stop a rename.
	Errors []CheckError
}

// CheckError is one type-checker diagnostic, addressed by location.
type CheckError struct {
	Location loc.Location
	Message  string
}

// TypeChecker returns precomputed facts for one or more files. Models are
// addressed by physical file path, idempotent, and side-effect-free
// (§6).
type TypeChecker interface {
	Check(ctx context.Context, files []string) (Model, error)
}

// SyntaxTree is an opaque parsed module; only the Locator (outside this
// package) interprets its structure, via the production-kind dispatch
// table of §4.1.
type SyntaxTree interface {
	File() string
}

// Parser parses one file into a SyntaxTree; ParseError carries a source
// range on failure (§6).
type Parser interface {
	Parse(ctx context.Context, file string) (SyntaxTree, error)
}

// NodeLookup is an optional capability a SyntaxTree may implement,
// letting the Driver ask it directly for the syntax nodes it hands to
// the Edit Planner instead of re-walking the tree itself (§4.1). The
// Cursor Classifier does not use it; it queries a classify.TreeQuerier.
// A concrete language frontend's parse tree
// implements this; the Driver type-asserts for it after Parser.Parse and
// falls back to treating the tree as opaque when absent.
type NodeLookup interface {
	NodeAt(l loc.Location) (locator.Node, bool)
}

// ParseError is returned by Parser.Parse on a syntax error.
type ParseError struct {
	Location loc.Location
	Message  string
}

func (e *ParseError) Error() string { return e.Message }

// PathConfig yields, for one workspace folder, the source roots to scan
// and glob-style ignore patterns to exclude, used to enumerate candidate
// source files for fullLoad (§6).
type PathConfig func(workspaceFolder string) (sourceRoots []string, ignorePatterns []string, err error)

// SourceFS is the minimal file-system surface the Workspace Index needs:
// enough to enumerate files under a source root and read their raw bytes
// for the name-containment screening of §4.2. It intentionally excludes
// any mutating operation; applying DocumentEdit file operations is an
// editor-side concern this engine only describes (§3 "DocumentEdit").
type SourceFS interface {
	// Walk enumerates every regular file under root, calling fn with its
	// path. Walk stops and returns fn's error if fn returns one.
	Walk(root string, fn func(path string) error) error
	// ReadFile returns the full contents of path.
	ReadFile(path string) ([]byte, error)
}
