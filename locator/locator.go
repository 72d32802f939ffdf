// Package locator implements the Name/AST Locator (§4.1): given a syntax
// tree node, it returns the identifier sub-location that a rename must
// actually replace, via a small dispatch table keyed on production kind.
package locator

import (
	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
)

// ProductionKind is the closed set of syntax productions the Locator's
// dispatch table recognizes (§4.1).
type ProductionKind int

const (
	KindSimpleName ProductionKind = iota
	KindTypeVariable
	KindNonterminal
	KindNonterminalLabel
	KindQualifiedName
	KindFunctionDecl
	KindVariableDecl
	KindKeywordFormal
	KindAlias
	KindAbstractData
	KindData
	KindModuleHeader
	KindSyntaxRule
	KindOther // "not a named form"
)

// Node is one node of a generic module syntax tree, wide enough for the
// dispatch table to extract identifier sub-locations without the Locator
// knowing the host language's concrete AST types. A real oracle-backed
// parser's tree nodes implement this interface directly.
type Node interface {
	Kind() ProductionKind
	// Span is the node's own span; used directly for simple names, type
	// variables, nonterminals, and nonterminal labels.
	Span() loc.Location
	// NameField is the declared identifier's location for productions
	// that carry a dedicated name field: function signature name,
	// variable/keyword-formal name, alias/abstract-data/data's declared
	// type name, module header's name.
	NameField() (loc.Location, bool)
	// LastSegment is a qualified name's final segment.
	LastSegment() (loc.Location, bool)
	// DefinedNonterminal is a syntax rule's defined non-terminal.
	DefinedNonterminal() (loc.Location, bool)
}

// Locator maps syntax nodes to the identifier sub-location a rename edit
// must target.
type Locator struct{}

// New returns a Locator. It holds no state: the dispatch table is pure.
func New() *Locator {
	return &Locator{}
}

// IdentifierLocation returns the identifier sub-location for n, per the
// production-kind dispatch table of §4.1.
func (l *Locator) IdentifierLocation(n Node) (loc.Location, bool) {
	switch n.Kind() {
	case KindSimpleName, KindTypeVariable, KindNonterminal, KindNonterminalLabel:
		return n.Span(), true
	case KindQualifiedName:
		return n.LastSegment()
	case KindFunctionDecl, KindVariableDecl, KindKeywordFormal,
		KindAlias, KindAbstractData, KindData, KindModuleHeader:
		return n.NameField()
	case KindSyntaxRule:
		return n.DefinedNonterminal()
	default:
		return loc.Location{}, false
	}
}

// IdentifierLocations maps each of the given locations (typically a
// def/use closure grouped by file) to its identifier sub-location, via
// the corresponding syntax node supplied in nodes. A location with no
// entry in nodes, or whose node's kind has no identifier sub-location,
// fails the whole batch with UnsupportedRename carrying every missing
// location (§4.1: "if any member cannot be mapped it fails with
// UnsupportedRename{missing-locations}").
func (l *Locator) IdentifierLocations(locations []loc.Location, nodes map[loc.Location]Node) (map[loc.Location]loc.Location, *model.RenameError) {
	result := make(map[loc.Location]loc.Location, len(locations))
	var missing []model.UnsupportedIssue
	for _, target := range locations {
		n, ok := nodes[target]
		if !ok {
			missing = append(missing, model.UnsupportedIssue{
				Location: target,
				Message:  "no syntax node available for this location",
			})
			continue
		}
		sub, ok := l.IdentifierLocation(n)
		if !ok {
			missing = append(missing, model.UnsupportedIssue{
				Location: target,
				Message:  "not a named form",
			})
			continue
		}
		result[target] = sub
	}
	if len(missing) > 0 {
		return nil, model.UnsupportedRename(missing)
	}
	return result, nil
}
