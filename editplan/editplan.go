// Package editplan implements the Edit Planner (§4.6): turns a resolved
// (defs, uses) closure into TextEdits at each location's identifier
// sub-location, plus file-rename DocumentEdits for a moduleName cursor.
package editplan

import (
	"sort"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/resolve"
)

// ReservedWords decides whether a candidate name needs escaping before
// being written into source text (§4.6: "if the new name is a reserved
// identifier of the host language, prepend a single backslash"). The
// teacher instead flatly refuses to rename onto one of its own DWScript
// keywords (internal/lsp/rename.go's dwscriptKeywords check); this engine
// generalizes that fixed keyword set into a host-supplied predicate and
// escapes rather than rejects, matching the rename specification.
type ReservedWords func(name string) bool

// Escape prepends a backslash to name if reserved reports it as a
// reserved identifier, else returns name unchanged.
func Escape(name string, reserved ReservedWords) string {
	if reserved != nil && reserved(name) {
		return "\\" + name
	}
	return name
}

// Annotator looks up the change-annotation id and definition for a
// location, if the Driver wants this particular edit to carry one (§3
// "RenameLocation").
type Annotator func(l loc.Location) (id string, annotation model.ChangeAnnotation, ok bool)

// Plan builds the DocumentEdits and annotation table for a rename whose
// resolved closure is (defs, uses), where newText is the already-escaped
// replacement text and nodes supplies, for every def/use location, the
// syntax node the Locator needs to find its identifier sub-location
// (§4.6 steps 1-2). renames, for a moduleName cursor, appends one
// renamed(from, to) DocumentEdit per entry (§4.6 step 3).
func Plan(defs, uses []loc.Location, nodes map[loc.Location]locator.Node, newText string, annotate Annotator, renames []resolve.FileRename) (model.Edits, *model.RenameError) {
	byFile, order := groupByFile(defs, uses)

	lctr := locator.New()
	var documents []model.DocumentEdit
	annotations := map[string]model.ChangeAnnotation{}
	var missing []model.UnsupportedIssue

	for _, file := range order {
		type located struct {
			sub loc.Location
			at  loc.Location
		}
		var entries []located
		for _, l := range byFile[file] {
			n, ok := nodes[l]
			if !ok {
				missing = append(missing, model.UnsupportedIssue{Location: l, Message: "no syntax node available for this location"})
				continue
			}
			sub, ok := lctr.IdentifierLocation(n)
			if !ok {
				missing = append(missing, model.UnsupportedIssue{Location: l, Message: "not a named form"})
				continue
			}
			entries = append(entries, located{sub: sub, at: l})
		}
		if len(missing) > 0 {
			continue
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].sub.Offset < entries[j].sub.Offset })

		edits := make([]model.TextEdit, 0, len(entries))
		for _, e := range entries {
			te := model.TextEdit{Range: e.sub, NewText: newText}
			if annotate != nil {
				if id, ann, ok := annotate(e.at); ok {
					te.ChangeAnnotationID = id
					te.HasChangeAnnotationID = true
					annotations[id] = ann
				}
			}
			edits = append(edits, te)
		}
		documents = append(documents, model.Changed(file, edits))
	}

	if len(missing) > 0 {
		return model.Edits{}, model.UnsupportedRename(missing)
	}

	for _, r := range renames {
		documents = append(documents, model.Renamed(r.OldPath, r.NewPath))
	}

	return model.Edits{Documents: documents, ChangeAnnotations: annotations}, nil
}

// groupByFile partitions the union of defs and uses by file, returning a
// deterministic file iteration order so Plan's output is reproducible
// (§8 invariant 2, "deterministic ... up to edit ordering").
func groupByFile(defs, uses []loc.Location) (map[string][]loc.Location, []string) {
	byFile := map[string][]loc.Location{}
	seen := map[loc.Location]bool{}
	for _, l := range append(append([]loc.Location{}, defs...), uses...) {
		if seen[l] {
			continue
		}
		seen[l] = true
		byFile[l.File] = append(byFile[l.File], l)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return byFile, files
}
