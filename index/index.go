// Package index implements the Workspace Index (§4.2): a lazy, two-phase
// store of type-checker facts built up over the lifetime of a single
// rename. Its directory-walking and name-containment screening mirror the
// teacher's workspace.Indexer (BuildWorkspaceIndex/indexDirectory), but
// loading now goes through the oracle interfaces instead of a hard-linked
// parser, and the scan runs concurrently via golang.org/x/sync/errgroup
// rather than the teacher's single-goroutine walk.
package index

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
	"github.com/oaklang/rename-lsp/rlog"
)

// Index is the Workspace Index for one rename. It is not safe for reuse
// across renames: WorkspaceInfo is created per call and discarded at
// completion (§3 "Lifecycle").
type Index struct {
	checker oracle.TypeChecker
	parser  oracle.Parser
	fs      oracle.SourceFS
	paths   oracle.PathConfig

	mu   sync.Mutex
	info *model.WorkspaceInfo
	// loadedFiles records files already merged into info, so that within
	// one rename a file's model is never imported twice (§4.2).
	loadedFiles map[string]bool
}

// New constructs an Index backed by the given oracle collaborators.
func New(checker oracle.TypeChecker, parser oracle.Parser, fs oracle.SourceFS, paths oracle.PathConfig) *Index {
	return &Index{
		checker:     checker,
		parser:      parser,
		fs:          fs,
		paths:       paths,
		info:        model.NewWorkspaceInfo(),
		loadedFiles: make(map[string]bool),
	}
}

// Info returns the WorkspaceInfo accumulated so far.
func (ix *Index) Info() *model.WorkspaceInfo {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.info
}

// Preload populates just enough state to classify the cursor: obtain
// cursorFile's type-checker model and import its defines/useDef/facts
// (§4.2 step 1). The Index does not parse files; the Driver does.
func (ix *Index) Preload(ctx context.Context, cursorFile string, rootFolder string) error {
	if err := ix.loadFile(ctx, cursorFile); err != nil {
		return err
	}
	ix.mu.Lock()
	if ix.info.Loaded == model.Empty {
		ix.info.Loaded = model.Preloaded
	}
	ix.mu.Unlock()
	return nil
}

// loadFile type-checks a single file and merges its model into info,
// unless already loaded.
func (ix *Index) loadFile(ctx context.Context, file string) error {
	ix.mu.Lock()
	if ix.loadedFiles[file] {
		ix.mu.Unlock()
		return nil
	}
	ix.mu.Unlock()

	result, err := ix.checker.Check(ctx, []string{file})
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loadedFiles[file] {
		return nil
	}
	ix.merge(result)
	ix.loadedFiles[file] = true
	return nil
}

// merge folds a checker Model into info. Caller must hold ix.mu.
func (ix *Index) merge(m oracle.Model) {
	ix.info.Defines = append(ix.info.Defines, m.Defines...)
	ix.info.UseDef = append(ix.info.UseDef, m.UseDef...)
	ix.info.Facts = append(ix.info.Facts, m.Facts...)
	ix.info.Scopes = append(ix.info.Scopes, m.Scopes...)
}

// FullLoad scans every workspace folder for source files, registers each
// one, and loads (checks, merges) exactly those whose contents
// textually mention cursorName or its escaped form escapedName (§4.2 step
// 2, "name-containment screening is mandatory"). Files that provably do
// not mention the name are still registered in SourceFiles but skipped
// for loading, recorded as "known, unloaded". The Modules map of info is
// not filled here or anywhere else in the Index.
func (ix *Index) FullLoad(ctx context.Context, workspaceFolders []string, cursorName, escapedName string) error {
	var candidates []string
	for _, folder := range workspaceFolders {
		root, ignorePatterns, err := ix.resolvePaths(folder)
		if err != nil {
			return err
		}
		for _, srcRoot := range root {
			err := ix.fs.Walk(srcRoot, func(path string) error {
				if matchesIgnore(path, ignorePatterns) {
					return nil
				}
				candidates = append(candidates, path)
				return nil
			})
			if err != nil {
				return err
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for _, file := range candidates {
		file := file
		// Register every walked file as workspace-reachable even if it was
		// already loaded during preload, or legality's outside-workspace
		// check would wrongly flag its defines.
		ix.registerSourceFile(file)
		ix.mu.Lock()
		already := ix.loadedFiles[file]
		ix.mu.Unlock()
		if already {
			continue
		}
		g.Go(func() error {
			mentions, err := ix.mentionsName(file, cursorName, escapedName)
			if err != nil {
				return err
			}
			if !mentions {
				ix.markKnownUnloaded(file)
				return nil
			}
			return ix.loadFile(gctx, file)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ix.mu.Lock()
	ix.info.Loaded = model.Full
	ix.mu.Unlock()
	return nil
}

// maxParallelLoads bounds how many files are parsed and checked at once
// during fullLoad, the same role the teacher's maxFiles/maxDepth counters
// play against runaway workspace scans, but expressed as a concurrency
// cap via errgroup.SetLimit rather than a hard scan ceiling.
const maxParallelLoads = 8

func (ix *Index) resolvePaths(folder string) ([]string, []string, error) {
	if ix.paths == nil {
		return []string{folder}, nil, nil
	}
	return ix.paths(folder)
}

func (ix *Index) mentionsName(file, cursorName, escapedName string) (bool, error) {
	contents, err := ix.fs.ReadFile(file)
	if err != nil {
		return false, err
	}
	text := string(contents)
	if strings.Contains(text, cursorName) {
		return true, nil
	}
	if escapedName != "" && strings.Contains(text, escapedName) {
		return true, nil
	}
	return false, nil
}

func (ix *Index) registerSourceFile(file string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.info.SourceFiles == nil {
		ix.info.SourceFiles = make(map[string]loc.Location)
	}
	if _, ok := ix.info.SourceFiles[file]; !ok {
		ix.info.SourceFiles[file] = loc.New(file, 0, 0)
	}
}

func (ix *Index) markKnownUnloaded(file string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.info.KnownUnloaded == nil {
		ix.info.KnownUnloaded = make(map[string]bool)
	}
	ix.info.KnownUnloaded[file] = true
	rlog.Printf("index: %s known unloaded (does not mention cursor name)", file)
}

func matchesIgnore(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// GetDefs returns useDef[loc] if loc is a use, else the singleton {loc}
// (§4.2 step 3).
func (ix *Index) GetDefs(l loc.Location) []loc.Location {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.info.GetDefs(l)
}

// ReachableDefs computes the transitive closure of defines reachable via
// the scope relation from any element of seed (§4.2 step 4). Termination
// is guaranteed because the scope graph is a DAG rooted at file
// locations, so OuterScopes only ever walks finitely many hops.
func (ix *Index) ReachableDefs(seed []loc.Location) []model.Define {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	visited := make(map[loc.Location]bool)
	var queue []loc.Location
	queue = append(queue, seed...)
	var result []model.Define

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if d, ok := ix.info.DefineAt(cur); ok {
			result = append(result, d)
		}
		for _, outer := range ix.info.OuterScopes(cur) {
			if !visited[outer] {
				queue = append(queue, outer)
			}
		}
	}
	return result
}
