// Package legality implements the Legality Checker (§4.5): four
// independent checks over the resolved (defs, uses) closure, unioned
// into a single set of IllegalRenameReason values.
package legality

import (
	"unicode"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
)

// NameValidator decides whether a candidate new name is syntactically
// legal for a given role, the pluggable half of check 1 (§4.5: "parse the
// escaped new name as the syntactic category appropriate to the role
// set"). DefaultValidator below is the engine's built-in fallback.
type NameValidator interface {
	ValidOrdinaryIdentifier(name string) bool
	ValidNonterminalName(name string) bool
	ValidNonterminalLabel(name string) bool
}

// DefaultValidator applies the same character-class test the teacher's
// completion-context scanner uses to recognize identifier characters
// (letters, digits, underscore), requiring a non-digit first character.
// It treats non-terminal names and labels identically to ordinary
// identifiers; a host with richer grammar knowledge can supply its own
// NameValidator instead.
type DefaultValidator struct{}

func (DefaultValidator) ValidOrdinaryIdentifier(name string) bool { return isIdentifier(name) }
func (DefaultValidator) ValidNonterminalName(name string) bool    { return isIdentifier(name) }
func (DefaultValidator) ValidNonterminalLabel(name string) bool   { return isIdentifier(name) }

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		switch {
		case unicode.IsLetter(ch) || ch == '_':
		case unicode.IsDigit(ch):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// categoryFor maps a resolved role (falling back to the cursor kind when
// no Define is available, e.g. a field cursor) to the syntactic category
// the validator checks the new name against (§4.5 check 1: "ordinary
// identifier, non-terminal name, or non-terminal label").
func categoryFor(role model.Role, kind model.CursorKind) func(NameValidator, string) bool {
	switch role {
	case model.RoleNonterminal:
		return NameValidator.ValidNonterminalName
	case model.RoleNonterminalLabel:
		return NameValidator.ValidNonterminalLabel
	}
	if kind == model.KindExceptConstructor {
		return NameValidator.ValidNonterminalLabel
	}
	return NameValidator.ValidOrdinaryIdentifier
}

// Check runs all four checks and unions their findings (§4.5). escaped is
// the new name after escaping (§4.6); newName is its unescaped form, used
// for double-declaration/capture lookups against existing Defines.
func Check(cursor model.Cursor, defs []loc.Location, newName, escaped string, info *model.WorkspaceInfo, validator NameValidator) []model.IllegalRenameReason {
	if validator == nil {
		validator = DefaultValidator{}
	}

	var reasons []model.IllegalRenameReason
	reasons = append(reasons, checkValidName(cursor, defs, escaped, info, validator)...)
	reasons = append(reasons, checkOutsideWorkspace(defs, info)...)
	reasons = append(reasons, checkDoubleDeclaration(defs, newName, info)...)
	reasons = append(reasons, checkCapture(defs, newName, info)...)
	return reasons
}

func checkValidName(cursor model.Cursor, defs []loc.Location, escaped string, info *model.WorkspaceInfo, validator NameValidator) []model.IllegalRenameReason {
	role := model.RoleUnknown
	if len(defs) > 0 {
		if d, ok := info.DefineAt(defs[0]); ok {
			role = d.Role
		}
	}
	check := categoryFor(role, cursor.Kind)
	if check(validator, escaped) {
		return nil
	}
	return []model.IllegalRenameReason{{
		Kind:    model.InvalidName,
		Witness: defs,
		Detail:  "not a legal " + role.String(),
	}}
}

// checkOutsideWorkspace implements §4.5 check 2: any resolved define
// whose file is absent from sourceFiles fails.
func checkOutsideWorkspace(defs []loc.Location, info *model.WorkspaceInfo) []model.IllegalRenameReason {
	var witnesses []loc.Location
	for _, d := range defs {
		if _, ok := info.SourceFiles[d.File]; !ok {
			witnesses = append(witnesses, d)
		}
	}
	if len(witnesses) == 0 {
		return nil
	}
	return []model.IllegalRenameReason{{Kind: model.DefinitionsOutsideWorkspace, Witness: witnesses}}
}

// checkDoubleDeclaration implements §4.5 check 3: for each currentDef,
// every existing define of newName whose scope contains currentDef is a
// double declaration unless the pair may legally overload, with the ADT
// field and type-parameter-aliasing specializations folded into the same
// containment+compatibility test.
func checkDoubleDeclaration(defs []loc.Location, newName string, info *model.WorkspaceInfo) []model.IllegalRenameReason {
	existing := info.DefinesNamed(newName)
	if len(existing) == 0 {
		return nil
	}

	var reasons []model.IllegalRenameReason
	for _, d := range defs {
		current, ok := info.DefineAt(d)
		if !ok {
			continue
		}
		for _, other := range existing {
			if other.DefinedAt == d {
				continue
			}
			if !other.Scope.Contains(d) {
				continue
			}
			if current.Role.CanOverloadWith(other.Role) {
				continue
			}
			if sameADTContainer(current, other) {
				continue
			}
			reasons = append(reasons, model.IllegalRenameReason{
				Kind:    model.DoubleDeclaration,
				Witness: []loc.Location{d, other.DefinedAt},
			})
		}
	}
	return reasons
}

// sameADTContainer is the "type-parameter-aliasing"/"shared container"
// specialization of §4.5 check 3(a)/(b): two field or type-parameter
// defines that share their enclosing container (the same Scope) are
// allowed to collide only when their roles are both field roles or both
// type-parameter roles, since the checker itself will have already
// rejected an actual duplicate member.
func sameADTContainer(a, b model.Define) bool {
	if a.Scope != b.Scope {
		return false
	}
	return (a.Role.IsFieldRole() && b.Role.IsFieldRole()) ||
		(a.Role == model.RoleTypeParameter && b.Role == model.RoleTypeParameter)
}

// checkCapture implements §4.5 check 4: the three capture/shadowing
// sub-cases, unioned into one non-empty-or-absent CaptureChange reason.
func checkCapture(defs []loc.Location, newName string, info *model.WorkspaceInfo) []model.IllegalRenameReason {
	var witnesses []loc.Location

	for _, d := range defs {
		nD, ok := info.DefineAt(d)
		if !ok {
			continue
		}

		// Implicit-becomes-use: an implicit definition of the new name
		// inside nD's scope would turn into a use of nD after rename.
		for _, other := range info.Defines {
			if other.Name != newName || !isImplicit(other, info) {
				continue
			}
			if nD.Scope.Contains(other.DefinedAt) {
				witnesses = append(witnesses, other.DefinedAt)
			}
		}

		// Current-use-shadowed: a current use under nD.Scope whose
		// defining scope strictly contains nD.Scope would resolve to nD
		// after rename.
		for _, ud := range info.UseDef {
			if !nD.Scope.Contains(ud.Use) {
				continue
			}
			for _, defLoc := range ud.Defs {
				resolved, ok := info.DefineAt(defLoc)
				if !ok {
					continue
				}
				if resolved.Scope.StrictlyContains(nD.Scope) {
					witnesses = append(witnesses, ud.Use)
				}
			}
		}

		// New-use-shadowed: a use of the new name inside nD.Scope would,
		// after rename, resolve to nD instead of its current target.
		for _, ud := range info.UseDef {
			if !nD.Scope.Contains(ud.Use) {
				continue
			}
			if useNamesTarget(ud, newName, info) {
				witnesses = append(witnesses, ud.Use)
			}
		}
	}

	if len(witnesses) == 0 {
		return nil
	}
	return []model.IllegalRenameReason{{Kind: model.CaptureChange, Witness: witnesses}}
}

// isImplicit reports whether d is one of the two implicit-definition
// shapes of §4.5: a variable-role define whose DefinedAt also appears as
// a use, or a pattern-variable define (the qualified-name/multi-variable/
// becomes-pattern cases are folded into the PatternVariable role itself,
// since distinguishing the concrete syntactic position needs tree access
// this package doesn't have).
func isImplicit(d model.Define, info *model.WorkspaceInfo) bool {
	if d.Role == model.RolePatternVariable {
		return true
	}
	return d.Role == model.RoleVariable && info.IsUse(d.DefinedAt)
}

// useNamesTarget reports whether the textual name resolved at ud's use
// equals target, used to find uses of the candidate new name.
func useNamesTarget(ud model.UseDef, target string, info *model.WorkspaceInfo) bool {
	for _, d := range ud.Defs {
		if def, ok := info.DefineAt(d); ok && def.Name == target {
			return true
		}
	}
	return false
}
