package model

import "github.com/oaklang/rename-lsp/loc"

// CursorKind is the outcome of the §4.3 cursor classifier: the single
// kind chosen from the candidate set by the precedence table.
type CursorKind int

const (
	KindUnknown CursorKind = iota
	KindUse
	KindDef
	KindTypeParameter
	KindCollectionField
	KindDataField
	KindDataKeywordField
	KindDataCommonKeywordField
	KindKeywordArgument
	KindModuleName
	KindExceptConstructor
)

func (k CursorKind) String() string {
	switch k {
	case KindUse:
		return "use"
	case KindDef:
		return "def"
	case KindTypeParameter:
		return "typeParameter"
	case KindCollectionField:
		return "collectionField"
	case KindDataField:
		return "dataField"
	case KindDataKeywordField:
		return "dataKeywordField"
	case KindDataCommonKeywordField:
		return "dataCommonKeywordField"
	case KindKeywordArgument:
		return "keywordArgument"
	case KindModuleName:
		return "moduleName"
	case KindExceptConstructor:
		return "exceptConstructor"
	default:
		return "unknown"
	}
}

// IsDataFieldKind reports whether k is one of the kinds the §4.3.1
// data-field sub-classifier produces.
func (k CursorKind) IsDataFieldKind() bool {
	switch k {
	case KindCollectionField, KindDataField, KindDataKeywordField, KindDataCommonKeywordField:
		return true
	}
	return false
}

// Cursor identifies the entity a rename request targets (§3 "Cursor").
type Cursor struct {
	Kind     CursorKind
	Location loc.Location
	// Name is the textual form of the identifier with any escape prefix
	// (e.g. a leading backslash) stripped for comparison.
	Name string
	// Container, when Kind is a field kind, is the location of the ADT
	// or collection type the field belongs to.
	Container loc.Location
	// FieldType carries the static type of a classified field, per
	// §4.3.1.
	FieldType Type
}
