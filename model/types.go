package model

import "github.com/oaklang/rename-lsp/loc"

// TypeKind is the closed set of static-type shapes the rename engine
// needs to distinguish. The engine never interprets a Type beyond this
// tag plus the handful of accessors below (§3 Fact: "an algebraic
// value").
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypePrimitive
	TypeCollection
	TypeADT
	TypeConstructor
	TypeFunction
	TypeParameterKind
	TypeModule
)

// Field is one named, typed member of an ADT: either a positional field,
// a constructor-specific keyword field, or a common keyword field shared
// by every constructor (§4.3.1).
type Field struct {
	Name string
	Type Type
	Loc  loc.Location
}

// ConstructorInfo describes one constructor of an ADT: its own keyword
// fields plus its positional fields, in declaration order.
type ConstructorInfo struct {
	Name             string
	Location         loc.Location
	KeywordFields    []Field
	PositionalFields []Field
}

// PrimitiveType is a built-in scalar type (int, bool, string, ...).
type PrimitiveType struct {
	Name string
}

func (t PrimitiveType) String() string { return t.Name }
func (t PrimitiveType) Kind() TypeKind { return TypePrimitive }

// CollectionType is a set/list/relation/labelled-tuple type. Per §4.3.1
// these never resolve a field member: any identifier attached to a
// collection-typed container classifies as collectionField.
type CollectionType struct {
	Name   string // "set", "list", "relation", "tuple"
	Labels []string
}

func (t CollectionType) String() string { return t.Name }
func (t CollectionType) Kind() TypeKind { return TypeCollection }

// ADTType is an algebraic data type: a set of constructors, each with its
// own positional and keyword fields, plus fields common to every
// constructor (§4.3.1 "commonKeywordFields").
type ADTType struct {
	Name                string
	Location            loc.Location
	CommonKeywordFields []Field
	Constructors        []ConstructorInfo
}

func (t ADTType) String() string { return t.Name }
func (t ADTType) Kind() TypeKind { return TypeADT }

// ConstructorType is the type of a single ADT constructor, e.g. the
// result of resolving a constructor name as a use.
type ConstructorType struct {
	Name string
	ADT  loc.Location
}

func (t ConstructorType) String() string { return t.Name }
func (t ConstructorType) Kind() TypeKind { return TypeConstructor }

// FunctionType is a function signature; equal-named FunctionTypes with
// differing Params are still "the same role" for overload purposes
// (§4.4: "functions with differing arities or signatures are still
// overloaded if they share a name").
type FunctionType struct {
	Params []Type
	Result Type
}

func (t FunctionType) String() string { return "function" }
func (t FunctionType) Kind() TypeKind { return TypeFunction }

// TypeParameterType is the type of a generic type-parameter binding.
type TypeParameterType struct {
	Name string
}

func (t TypeParameterType) String() string { return t.Name }
func (t TypeParameterType) Kind() TypeKind { return TypeParameterKind }

// ModuleType is the type a use resolves to when it names a module itself
// rather than a value or type defined within one (§4.3 "use" query).
type ModuleType struct {
	Name     string
	Location loc.Location
}

func (t ModuleType) String() string { return t.Name }
func (t ModuleType) Kind() TypeKind { return TypeModule }
