package model

import "github.com/oaklang/rename-lsp/loc"

// LoadState is the lazy-loading state of a WorkspaceInfo (§3).
type LoadState int

const (
	Empty LoadState = iota
	Preloaded
	Full
)

func (s LoadState) String() string {
	switch s {
	case Preloaded:
		return "Preloaded"
	case Full:
		return "Full"
	default:
		return "Empty"
	}
}

// WorkspaceInfo is the lazily-populated union of type-checker facts a
// rename consumes (§3). It is created per rename call, populated in two
// phases (preload, then possibly fullLoad), and discarded at completion;
// Defines, UseDef and Facts are immutable once a file's model has been
// merged in.
type WorkspaceInfo struct {
	Defines []Define
	UseDef  []UseDef
	Facts   []Fact
	Scopes  []ScopeEdge

	// SourceFiles is the set of workspace-reachable source file
	// locations (one Location per file, spanning the whole file).
	SourceFiles map[string]loc.Location

	// Modules maps a qualified module name to the location of its
	// declaring file, used to plan file renames for moduleName cursors.
	Modules map[string]loc.Location

	// KnownUnloaded records files that were screened and found not to
	// textually mention the rename's old or escaped name (§4.2): they
	// are registered but never parsed or merged in.
	KnownUnloaded map[string]bool

	Loaded LoadState
}

// NewWorkspaceInfo returns an empty WorkspaceInfo in state Empty.
func NewWorkspaceInfo() *WorkspaceInfo {
	return &WorkspaceInfo{
		SourceFiles:   map[string]loc.Location{},
		Modules:       map[string]loc.Location{},
		KnownUnloaded: map[string]bool{},
	}
}

// GetDefs implements the WorkspaceIndex.getDefs operation (§4.2 item 3):
// if loc is a use, returns its defines; otherwise loc is itself a define
// location and is returned as a singleton.
func (w *WorkspaceInfo) GetDefs(use loc.Location) []loc.Location {
	for _, ud := range w.UseDef {
		if ud.Use == use {
			return ud.Defs
		}
	}
	return []loc.Location{use}
}

// IsUse reports whether loc appears in the domain of UseDef.
func (w *WorkspaceInfo) IsUse(l loc.Location) bool {
	for _, ud := range w.UseDef {
		if ud.Use == l {
			return true
		}
	}
	return false
}

// DefineAt returns the Define whose DefinedAt equals l, if any.
func (w *WorkspaceInfo) DefineAt(l loc.Location) (Define, bool) {
	for _, d := range w.Defines {
		if d.DefinedAt == l {
			return d, true
		}
	}
	return Define{}, false
}

// DefinesNamed returns every Define in the index whose Name matches name.
func (w *WorkspaceInfo) DefinesNamed(name string) []Define {
	var result []Define
	for _, d := range w.Defines {
		if d.Name == name {
			result = append(result, d)
		}
	}
	return result
}

// FactAt returns the Fact recorded for l, if any.
func (w *WorkspaceInfo) FactAt(l loc.Location) (Fact, bool) {
	for _, f := range w.Facts {
		if f.Location == l {
			return f, true
		}
	}
	return Fact{}, false
}

// OuterScopes returns every location that directly or transitively
// encloses inner via the Scopes relation, outermost last. The relation is
// a DAG rooted at file locations (DESIGN NOTES), so this always
// terminates.
func (w *WorkspaceInfo) OuterScopes(inner loc.Location) []loc.Location {
	seen := map[loc.Location]bool{}
	var result []loc.Location
	frontier := []loc.Location{inner}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, edge := range w.Scopes {
			if edge.Inner == cur && !seen[edge.Outer] {
				seen[edge.Outer] = true
				result = append(result, edge.Outer)
				frontier = append(frontier, edge.Outer)
			}
		}
	}
	return result
}
