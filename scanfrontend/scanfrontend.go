// Package scanfrontend is a minimal, language-agnostic oracle.Parser /
// oracle.TypeChecker pair: it treats any maximal run of letters, digits,
// and underscores starting with a letter or underscore as an identifier,
// and resolves every later occurrence of a name to its first occurrence
// in the same file. It carries none of the real frontend's structure
// (ADTs, overloading, modules, grammars) spec.md describes — it exists so
// cmd/renamelsp is a runnable binary without hard-linking a concrete
// language implementation, which spec §1/§6 deliberately keeps out of
// this repo's scope. A real deployment replaces it wholesale by
// supplying its own oracle.Parser/oracle.TypeChecker.
package scanfrontend

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
)

// scanIdentifiers returns the byte-offset span of every identifier token
// in contents, in file order. Parser and Checker both call this so their
// two independent passes agree on identical locations.
func scanIdentifiers(file, contents string) []loc.Location {
	var spans []loc.Location
	runes := []rune(contents)
	byteOffset := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r == '_' || unicode.IsLetter(r) {
			start := byteOffset
			startI := i
			for i < len(runes) && (runes[i] == '_' || unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				i++
			}
			length := 0
			for _, rr := range runes[startI:i] {
				length += len(string(rr))
			}
			spans = append(spans, loc.New(file, start, length))
			byteOffset += length
			continue
		}
		byteOffset += len(string(r))
		i++
	}
	return spans
}

// PathConfig is an oracle.PathConfig treating the whole workspace folder
// as a single source root, ignoring version-control and dependency
// directories by name.
func PathConfig(workspaceFolder string) ([]string, []string, error) {
	return []string{workspaceFolder}, []string{".git", ".git/*", "node_modules", "node_modules/*"}, nil
}

// Reserved reports no name as reserved: the scanner has no keyword list
// of its own, since it carries no lexical grammar.
func Reserved(string) bool { return false }

// node is a locator.Node for one scanned identifier occurrence; every
// occurrence is a KindSimpleName, the same production kind the Locator
// uses for bare use/def identifiers (§4.1).
type node struct {
	span loc.Location
}

func (n node) Kind() locator.ProductionKind            { return locator.KindSimpleName }
func (n node) Span() loc.Location                      { return n.span }
func (n node) NameField() (loc.Location, bool)         { return loc.Location{}, false }
func (n node) LastSegment() (loc.Location, bool)       { return loc.Location{}, false }
func (n node) DefinedNonterminal() (loc.Location, bool) { return loc.Location{}, false }

// Tree is the oracle.SyntaxTree scanfrontend.Parser returns: it only
// implements oracle.NodeLookup, not classify.TreeQuerier, since it has no
// field/keyword-argument/module/grammar structure to report.
type Tree struct {
	file  string
	nodes map[loc.Location]locator.Node
}

func (t *Tree) File() string { return t.file }

func (t *Tree) NodeAt(l loc.Location) (locator.Node, bool) {
	n, ok := t.nodes[l]
	return n, ok
}

// Parser implements oracle.Parser over scanIdentifiers.
type Parser struct{ FS oracle.SourceFS }

func (p Parser) Parse(ctx context.Context, file string) (oracle.SyntaxTree, error) {
	contents, err := p.FS.ReadFile(file)
	if err != nil {
		return nil, err
	}
	spans := scanIdentifiers(file, string(contents))
	nodes := make(map[loc.Location]locator.Node, len(spans))
	for _, s := range spans {
		nodes[s] = node{span: s}
	}
	return &Tree{file: file, nodes: nodes}, nil
}

// Checker implements oracle.TypeChecker: the first occurrence of each
// distinct name in a file is its Define; every later occurrence is a use
// resolving to that one Define. Every Define shares one whole-file Scope,
// so the resolver's reachability worklist treats a file as one flat
// scope.
type Checker struct{ FS oracle.SourceFS }

func (c Checker) Check(ctx context.Context, files []string) (oracle.Model, error) {
	var m oracle.Model
	for _, file := range files {
		contents, err := c.FS.ReadFile(file)
		if err != nil {
			return oracle.Model{}, err
		}
		text := string(contents)
		fileScope := loc.New(file, 0, len(contents))

		firstOccurrence := map[string]loc.Location{}
		for _, span := range scanIdentifiers(file, text) {
			name := text[span.Offset:span.End()]
			def, seen := firstOccurrence[name]
			if !seen {
				firstOccurrence[name] = span
				m.Defines = append(m.Defines, model.Define{
					ID:        file + "#" + name,
					Scope:     fileScope,
					Name:      name,
					Role:      model.RoleVariable,
					DefinedAt: span,
					Type:      model.PrimitiveType{Name: "value"},
				})
				continue
			}
			if span == def {
				continue
			}
			m.UseDef = append(m.UseDef, model.UseDef{Use: span, Defs: []loc.Location{def}})
		}
	}
	return m, nil
}

// ModuleName derives the dotted module name cmd/renamelsp's frontend
// would assign a file, from its path relative to root: a/b/c.rsc ->
// a.b.c. Unused by Checker itself (scanfrontend declares no RoleModuleName
// defines, so no file carries a module rename), but exported so a host
// wiring a real frontend alongside this one for testing has a consistent
// naming convention to start from.
func ModuleName(root, file string) string {
	rel, err := filepathRel(root, file)
	if err != nil {
		rel = file
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

func filepathRel(root, file string) (string, error) {
	return filepath.Rel(root, file)
}
