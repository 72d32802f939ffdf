package model

import "github.com/oaklang/rename-lsp/loc"

// Type is a static type expression, as produced by the type-checker
// oracle. The engine treats a Type mostly opaquely, switching only on its
// Kind (see TypeKind and the concrete types in types.go) rather than
// reaching into language-specific structure.
type Type interface {
	// String returns a human-readable rendering, used only in log/error
	// messages.
	String() string
	// Kind tags which of the closed set of shapes this Type has.
	Kind() TypeKind
}

// Define is one declaration of one name at one source location (§3
// "Define"). Invariant: DefinedAt must lie inside Scope; for module-scope
// definitions Scope is the location of the whole defining file.
type Define struct {
	ID        string // stable id, assigned by the oracle
	Scope     loc.Location
	Name      string
	Role      Role
	DefinedAt loc.Location
	Type      Type
}

// Valid reports whether the Define invariant (DefinedAt ⊑ Scope) holds.
func (d Define) Valid() bool {
	return d.Scope.Contains(d.DefinedAt)
}

// Fact maps any location to its static type, subsuming Define.Type and
// also covering sub-expression locations (§3 "Fact").
type Fact struct {
	Location loc.Location
	Type     Type
}

// UseDef is one entry of the use→def relation: a use location mapping to
// one or more Define locations. More than one Define location indicates a
// legally overloaded use (§4.4).
type UseDef struct {
	Use  loc.Location
	Defs []loc.Location
}

// ScopeEdge records that Inner is lexically nested inside Outer, forming
// the DAG the reachability worklist (§4.4, DESIGN NOTES) traverses.
type ScopeEdge struct {
	Inner loc.Location
	Outer loc.Location
}
