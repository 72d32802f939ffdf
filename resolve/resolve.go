// Package resolve implements the Overload & Reachability Resolver (§4.4):
// starting from the cursor's initial defines, it expands to every define
// that is potentially overloaded with them and reachable in the
// workspace, via a worklist algorithm over the scope/import DAG. The
// worklist's visited set uses a bits-and-blooms/bitset, the same
// dense-bitset approach the reference dataflow package uses for its
// reaching-definitions worklists, adapted from position-in-a-CFG indices
// to position-in-a-Defines-slice indices.
package resolve

import (
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
)

// FileRename is one old-path/new-path pair implied by a moduleName
// rename (§4.4 "renamesForFiles").
type FileRename struct {
	OldPath string
	NewPath string
}

// Result is the Resolver's output (§4.4).
type Result struct {
	Defs            []loc.Location
	Uses            []loc.Location
	RenamesForFiles []FileRename
}

// sourceExtension is the abstract language's source file suffix, used to
// derive a module's file path from its qualified name when planning
// renamesForFiles; mirrors the "*.rsc-like" file pattern fullLoad scans
// for (§4.2).
const sourceExtension = ".rsc"

// Resolve computes (defs, uses, renamesForFiles) for a classified cursor
// whose initial define set is initialDefs, and (for a moduleName cursor)
// the candidate newName already on offer so file renames can be planned
// in the same pass (§4.4).
func Resolve(cursor model.Cursor, initialDefs []loc.Location, newName string, info *model.WorkspaceInfo) Result {
	byIndex, indexOf := indexDefines(info.Defines)
	visited := bitset.New(uint(len(byIndex)))

	var queue []int
	for _, l := range initialDefs {
		if i, ok := indexOf[l]; ok && !visited.Test(uint(i)) {
			visited.Set(uint(i))
			queue = append(queue, i)
		}
	}

	var closure []model.Define
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		d := byIndex[i]
		closure = append(closure, d)

		for j, candidate := range byIndex {
			if visited.Test(uint(j)) {
				continue
			}
			if potentiallyOverloaded(d, candidate, info) {
				visited.Set(uint(j))
				queue = append(queue, j)
			}
		}
	}

	defs := make([]loc.Location, len(closure))
	defSet := make(map[loc.Location]bool, len(closure))
	for i, d := range closure {
		defs[i] = d.DefinedAt
		defSet[d.DefinedAt] = true
	}

	uses := invertUses(defSet, info)

	var renames []FileRename
	if cursor.Kind == model.KindModuleName {
		renames = renamesForModuleDefs(closure, cursor.Name, newName, info)
	}

	return Result{Defs: defs, Uses: uses, RenamesForFiles: renames}
}

// indexDefines assigns each Define a dense slice index, used as the
// bitset's universe.
func indexDefines(defines []model.Define) ([]model.Define, map[loc.Location]int) {
	byIndex := make([]model.Define, len(defines))
	indexOf := make(map[loc.Location]int, len(defines))
	copy(byIndex, defines)
	for i, d := range byIndex {
		indexOf[d.DefinedAt] = i
	}
	return byIndex, indexOf
}

// potentiallyOverloaded implements §4.4's three-part test: same simple
// name, compatible role, and mutual reachability through the scope graph.
func potentiallyOverloaded(a, b model.Define, info *model.WorkspaceInfo) bool {
	if a.DefinedAt == b.DefinedAt {
		return false
	}
	if a.Name != b.Name {
		return false
	}
	if !a.Role.CanOverloadWith(b.Role) {
		return false
	}
	return mutuallyReachable(a, b, info)
}

// mutuallyReachable holds when a and b's defining scopes are visible to
// one another (one is an ancestor scope of the other, or they are
// siblings in the same scope), or the checker has already witnessed them
// resolving from a common use site (a use whose Defs names both, the
// signature of an already-legal overloaded reference).
func mutuallyReachable(a, b model.Define, info *model.WorkspaceInfo) bool {
	if a.Scope == b.Scope {
		return true
	}
	if scopeAncestorOf(a.Scope, b.Scope, info) || scopeAncestorOf(b.Scope, a.Scope, info) {
		return true
	}
	for _, ud := range info.UseDef {
		hasA, hasB := false, false
		for _, d := range ud.Defs {
			if d == a.DefinedAt {
				hasA = true
			}
			if d == b.DefinedAt {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

func scopeAncestorOf(ancestor, scope loc.Location, info *model.WorkspaceInfo) bool {
	for _, outer := range info.OuterScopes(scope) {
		if outer == ancestor {
			return true
		}
	}
	return false
}

// invertUses returns every use whose resolved define set intersects defs
// (§4.4 "uses = invert(useDef)[defs]").
func invertUses(defs map[loc.Location]bool, info *model.WorkspaceInfo) []loc.Location {
	var uses []loc.Location
	for _, ud := range info.UseDef {
		for _, d := range ud.Defs {
			if defs[d] {
				uses = append(uses, ud.Use)
				break
			}
		}
	}
	return uses
}

// renamesForModuleDefs derives one FileRename per resolved module define,
// mapping each module's qualified name to its file path and the path
// implied by substituting newName for oldName at the final path segment.
func renamesForModuleDefs(closure []model.Define, oldName, newName string, info *model.WorkspaceInfo) []FileRename {
	var renames []FileRename
	for _, d := range closure {
		if d.Role != model.RoleModuleName {
			continue
		}
		if fileLoc, ok := info.Modules[d.Name]; ok {
			renames = append(renames, FileRename{
				OldPath: fileLoc.File,
				NewPath: filePath(fileLoc.File, oldName, newName),
			})
		}
	}
	return renames
}

// filePath derives the new file path for a module rename, replacing the
// last qualified-name segment (oldName) with newName using the same
// dotted-to-slash convention the loader uses to map module names to
// source paths.
func filePath(oldPath, oldName, newName string) string {
	dir := filepath.Dir(oldPath)
	ext := filepath.Ext(oldPath)
	if ext == "" {
		ext = sourceExtension
	}
	oldSeg := lastSegment(oldName)
	newSeg := lastSegment(newName)
	base := strings.TrimSuffix(filepath.Base(oldPath), ext)
	if base == oldSeg {
		base = newSeg
	}
	return filepath.Join(dir, base+ext)
}

func lastSegment(qualified string) string {
	parts := strings.Split(qualified, ".")
	return parts[len(parts)-1]
}
