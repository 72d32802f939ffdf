// Package classify implements the Cursor Classifier (§4.3): given a
// cursor location and the preloaded WorkspaceInfo, decide what kind of
// entity the cursor designates. Candidate queries run independently
// (conceptually "in parallel", per the spec; here as plain concurrent
// goroutines since each only reads the already-populated WorkspaceInfo)
// and a precedence table picks a single winning kind.
package classify

import (
	"sync"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
)

// TreeQuerier answers the candidate queries that need syntax-tree
// structure rather than just the WorkspaceInfo relations: field
// attachment, keyword-argument binding, module-header membership, and
// exception-clause constructors (§4.3). A Driver wires this to the
// parsed cursor tree; Classify works without one (treating every
// tree-dependent candidate as "nothing"), which is enough to classify
// use/def/typeParameter cursors.
type TreeQuerier interface {
	// FieldCandidate returns the smallest location of a field
	// syntactically attached to a container named by cursorText, plus
	// the container's own location, if the cursor sits on such a field.
	FieldCandidate(cursorText string) (field loc.Location, container loc.Location, ok bool)
	// KeywordArgumentCandidate returns the smallest location of a
	// keyword binding whose name matches cursorText.
	KeywordArgumentCandidate(cursorText string) (loc.Location, bool)
	// ModuleNameCandidate reports whether cursorLoc lies inside a module
	// header's name field, returning that field's location.
	ModuleNameCandidate(cursorLoc loc.Location) (loc.Location, bool)
	// ExceptConstructorCandidate returns the smallest fact location of a
	// production exception clause naming cursorText.
	ExceptConstructorCandidate(cursorText string) (loc.Location, bool)
	// QualifiedNameExtendsPastCursor reports whether cursorLoc lies
	// inside a qualified name whose right part extends past the
	// cursor's own end (§4.3 "use" rule).
	QualifiedNameExtendsPastCursor(cursorLoc loc.Location) bool
}

// nullTree answers every tree-dependent query with "nothing"; used when
// the caller has no syntax tree available.
type nullTree struct{}

func (nullTree) FieldCandidate(string) (loc.Location, loc.Location, bool) {
	return loc.Location{}, loc.Location{}, false
}
func (nullTree) KeywordArgumentCandidate(string) (loc.Location, bool)  { return loc.Location{}, false }
func (nullTree) ModuleNameCandidate(loc.Location) (loc.Location, bool) { return loc.Location{}, false }
func (nullTree) ExceptConstructorCandidate(string) (loc.Location, bool) {
	return loc.Location{}, false
}
func (nullTree) QualifiedNameExtendsPastCursor(loc.Location) bool { return false }

// candidateSet is the set of kinds produced by the candidate queries,
// each tied to the location its query returned.
type candidateSet struct {
	use               (*loc.Location)
	def               *model.Define
	typeParameter     *loc.Location
	collectionField   *loc.Location
	dataField         *fieldCandidate
	dataKeywordField  *fieldCandidate
	dataCommonKwField *fieldCandidate
	keywordArgument   *loc.Location
	moduleName        *loc.Location
	exceptConstructor *loc.Location
}

type fieldCandidate struct {
	Location  loc.Location
	Container loc.Location
	Field     Field
}

// Field mirrors model.Field, named locally so classify doesn't need to
// import the field-lookup helper from resolve/legality; kept as a type
// alias to stay interchangeable.
type Field = model.Field

// Classify decides the Cursor's CursorKind for the textual occurrence at
// cursorLoc (§4.3). cursorText is the identifier text with any escape
// prefix already stripped. tree may be nil.
func Classify(cursorLoc loc.Location, cursorText string, info *model.WorkspaceInfo, tree TreeQuerier) (model.Cursor, *model.RenameError) {
	if tree == nil {
		tree = nullTree{}
	}

	cs := gatherCandidates(cursorLoc, cursorText, info, tree)

	switch {
	case cs.moduleName != nil:
		return model.Cursor{Kind: model.KindModuleName, Location: *cs.moduleName, Name: cursorText}, nil

	case cs.keywordArgument != nil || cs.dataKeywordField != nil || cs.dataCommonKwField != nil:
		return classifyDataField(cursorLoc, cursorText, info, tree)

	case cs.collectionField != nil || cs.dataField != nil:
		return classifyDataField(cursorLoc, cursorText, info, tree)

	case cs.def != nil:
		d := *cs.def
		cursor := model.Cursor{Kind: model.KindDef, Location: d.DefinedAt, Name: cursorText, Container: d.Scope}
		if d.Role == model.RoleConstructorField {
			// Escalate per §4.3: a constructor field define still needs
			// the richer field classification to recover its container
			// and static field type.
			return classifyDataField(cursorLoc, cursorText, info, tree)
		}
		return cursor, nil

	case cs.use != nil:
		return classifyUse(*cs.use, cursorLoc, cursorText, info, tree)

	case singleton(cs) != nil:
		return *singleton(cs), nil
	}

	return model.Cursor{}, model.UnsupportedRename([]model.UnsupportedIssue{{
		Location: cursorLoc,
		Message:  "cursor does not designate a recognized identifier role",
	}})
}

// gatherCandidates runs every candidate query. The spec frames these as
// parallel queries over independent data; WaitGroup-style fan-out keeps
// that shape even though each query here is cheap.
func gatherCandidates(cursorLoc loc.Location, cursorText string, info *model.WorkspaceInfo, tree TreeQuerier) candidateSet {
	var (
		cs candidateSet
		wg sync.WaitGroup
	)

	// Each query writes only its own field of cs, so the goroutines share
	// no mutable state and need no lock.
	run := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}

	run(func() {
		if l, ok := smallestUse(cursorLoc, info); ok {
			cs.use = &l
		}
	})
	run(func() {
		if d, ok := smallestDef(cursorText, cursorLoc, info); ok {
			cs.def = &d
		}
	})
	run(func() {
		if l, ok := smallestTypeParameter(cursorText, info); ok {
			cs.typeParameter = &l
		}
	})
	run(func() {
		if field, container, ok := tree.FieldCandidate(cursorText); ok {
			fc := &fieldCandidate{Location: field, Container: container}
			classifyFieldShape(fc, container, info)
			attachFieldCandidate(&cs, fc)
		}
	})
	run(func() {
		if l, ok := tree.KeywordArgumentCandidate(cursorText); ok {
			cs.keywordArgument = &l
		}
	})
	run(func() {
		if l, ok := tree.ModuleNameCandidate(cursorLoc); ok {
			cs.moduleName = &l
		}
	})
	run(func() {
		if l, ok := tree.ExceptConstructorCandidate(cursorText); ok {
			cs.exceptConstructor = &l
		}
	})

	wg.Wait()
	return cs
}

// attachFieldCandidate files a raw field candidate under the right
// candidate-set slot based on its container's type shape, per §4.3.1.
func attachFieldCandidate(cs *candidateSet, fc *fieldCandidate) {
	switch {
	case fc == nil:
		return
	case fc.Container == (loc.Location{}):
		cs.collectionField = &fc.Location
	default:
		cs.dataField = fc
	}
}

func classifyFieldShape(fc *fieldCandidate, container loc.Location, info *model.WorkspaceInfo) {
	fact, ok := info.FactAt(container)
	if !ok || fact.Type == nil || fact.Type.Kind() == model.TypeCollection {
		fc.Container = loc.Location{}
	}
}

func smallestUse(cursorLoc loc.Location, info *model.WorkspaceInfo) (loc.Location, bool) {
	var candidates []loc.Location
	for _, ud := range info.UseDef {
		if ud.Use.Contains(cursorLoc) {
			candidates = append(candidates, ud.Use)
		}
	}
	return loc.Smallest(cursorLoc, candidates)
}

func smallestDef(name string, cursorLoc loc.Location, info *model.WorkspaceInfo) (model.Define, bool) {
	var best model.Define
	found := false
	for _, d := range info.Defines {
		if d.Name != name || !d.DefinedAt.Contains(cursorLoc) {
			continue
		}
		if !found || d.DefinedAt.Length < best.DefinedAt.Length {
			best = d
			found = true
		}
	}
	return best, found
}

func smallestTypeParameter(name string, info *model.WorkspaceInfo) (loc.Location, bool) {
	var candidates []loc.Location
	for _, f := range info.Facts {
		if f.Type != nil && f.Type.Kind() == model.TypeParameterKind && f.Type.String() == name {
			candidates = append(candidates, f.Location)
		}
	}
	if len(candidates) == 0 {
		return loc.Location{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Length < best.Length {
			best = c
		}
	}
	return best, true
}

// classifyUse implements the "use" branch of the precedence table: a use
// reclassifies as moduleName or typeParameter under two conditions, else
// stands as a plain use (§4.3).
func classifyUse(useLoc, cursorLoc loc.Location, cursorText string, info *model.WorkspaceInfo, tree TreeQuerier) (model.Cursor, *model.RenameError) {
	defs := info.GetDefs(useLoc)
	for _, d := range defs {
		if def, ok := info.DefineAt(d); ok && def.Type != nil && def.Type.Kind() == model.TypeModule {
			return model.Cursor{Kind: model.KindModuleName, Location: useLoc, Name: cursorText}, nil
		}
	}
	if tree.QualifiedNameExtendsPastCursor(cursorLoc) && !defsAreLocalVariables(defs, info) {
		return model.Cursor{Kind: model.KindModuleName, Location: useLoc, Name: cursorText}, nil
	}
	if fact, ok := info.FactAt(useLoc); ok && fact.Type != nil && fact.Type.Kind() == model.TypeParameterKind {
		return model.Cursor{Kind: model.KindTypeParameter, Location: useLoc, Name: cursorText}, nil
	}
	return model.Cursor{Kind: model.KindUse, Location: useLoc, Name: cursorText}, nil
}

func defsAreLocalVariables(defs []loc.Location, info *model.WorkspaceInfo) bool {
	if len(defs) == 0 {
		return false
	}
	for _, d := range defs {
		def, ok := info.DefineAt(d)
		if !ok || def.Role != model.RoleVariable {
			return false
		}
	}
	return true
}

// classifyDataField implements §4.3.1: resolve the container's type and
// locate the matching field, in the order commonKeywordFields, each
// constructor's keyword fields, then positional fields.
func classifyDataField(cursorLoc loc.Location, cursorText string, info *model.WorkspaceInfo, tree TreeQuerier) (model.Cursor, *model.RenameError) {
	field, container, ok := tree.FieldCandidate(cursorText)
	if !ok {
		if kwLoc, ok := tree.KeywordArgumentCandidate(cursorText); ok {
			return model.Cursor{Kind: model.KindKeywordArgument, Location: kwLoc, Name: cursorText}, nil
		}
		return model.Cursor{}, model.UnsupportedRename([]model.UnsupportedIssue{{
			Location: cursorLoc,
			Message:  "no field candidate available for this cursor",
		}})
	}

	fact, hasFact := info.FactAt(container)
	if !hasFact || fact.Type == nil || fact.Type.Kind() == model.TypeCollection {
		return model.Cursor{Kind: model.KindCollectionField, Location: field, Container: container}, nil
	}

	adt, ok := resolveADT(fact.Type, info)
	if !ok {
		return model.Cursor{}, model.IllegalRename([]model.IllegalRenameReason{{
			Kind:    model.DefinitionsOutsideWorkspace,
			Witness: []loc.Location{field},
			Detail:  "container type is not an ADT reachable from the workspace",
		}})
	}

	for _, f := range adt.CommonKeywordFields {
		if f.Name == cursorText {
			return model.Cursor{Kind: model.KindDataCommonKeywordField, Location: field, Container: adt.Location, FieldType: f.Type}, nil
		}
	}
	for _, ctor := range adt.Constructors {
		for _, f := range ctor.KeywordFields {
			if f.Name == cursorText {
				return model.Cursor{Kind: model.KindDataKeywordField, Location: field, Container: adt.Location, FieldType: f.Type}, nil
			}
		}
	}
	for _, ctor := range adt.Constructors {
		for _, f := range ctor.PositionalFields {
			if f.Name == cursorText {
				return model.Cursor{Kind: model.KindDataField, Location: field, Container: adt.Location, FieldType: f.Type}, nil
			}
		}
	}

	return model.Cursor{}, model.IllegalRename([]model.IllegalRenameReason{{
		Kind:    model.DefinitionsOutsideWorkspace,
		Witness: []loc.Location{field},
		Detail:  "no field named " + cursorText + " on " + adt.Name,
	}})
}

func resolveADT(t model.Type, info *model.WorkspaceInfo) (model.ADTType, bool) {
	switch v := t.(type) {
	case model.ADTType:
		return v, true
	case model.ConstructorType:
		if fact, ok := info.FactAt(v.ADT); ok {
			if adt, ok := fact.Type.(model.ADTType); ok {
				return adt, true
			}
		}
	}
	return model.ADTType{}, false
}

// singleton returns the lone candidate location wrapped as a Cursor when
// exactly one non-use/non-def/non-field kind fired, else nil.
func singleton(cs candidateSet) *model.Cursor {
	var hit *model.Cursor
	count := 0
	consider := func(kind model.CursorKind, l *loc.Location) {
		if l == nil {
			return
		}
		count++
		hit = &model.Cursor{Kind: kind, Location: *l}
	}
	consider(model.KindTypeParameter, cs.typeParameter)
	consider(model.KindExceptConstructor, cs.exceptConstructor)
	if count == 1 {
		return hit
	}
	return nil
}
