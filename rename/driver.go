// Package rename implements the Rename Driver (§4.7): the single exposed
// rename operation that orchestrates the Workspace Index, Cursor
// Classifier, Overload & Reachability Resolver, Legality Checker, and
// Edit Planner into the five-step pipeline, with progress reporting and
// cooperative cancellation (§5).
package rename

import (
	"context"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"github.com/oaklang/rename-lsp/classify"
	"github.com/oaklang/rename-lsp/editplan"
	"github.com/oaklang/rename-lsp/index"
	"github.com/oaklang/rename-lsp/legality"
	"github.com/oaklang/rename-lsp/loc"
	"github.com/oaklang/rename-lsp/locator"
	"github.com/oaklang/rename-lsp/model"
	"github.com/oaklang/rename-lsp/oracle"
	"github.com/oaklang/rename-lsp/progress"
	"github.com/oaklang/rename-lsp/resolve"
)

// Driver owns the external collaborators one rename pipeline needs. It
// holds no per-request state, so one Driver may serve many concurrent
// renames (§5: "each owns its own transient WorkspaceInfo with no shared
// mutable state").
type Driver struct {
	Checker   oracle.TypeChecker
	Parser    oracle.Parser
	FS        oracle.SourceFS
	Paths     oracle.PathConfig
	Validator legality.NameValidator
	Reserved  editplan.ReservedWords
}

// New returns a Driver wired to the given oracle collaborators.
func New(checker oracle.TypeChecker, parser oracle.Parser, fs oracle.SourceFS, paths oracle.PathConfig) *Driver {
	return &Driver{Checker: checker, Parser: parser, FS: fs, Paths: paths}
}

// Request is one rename call's input (§4.7: "rename(cursorTree,
// workspaceFolders, newName, pathConfigForFolder) -> Edits"). The cursor
// is supplied pre-resolved to its smallest enclosing identifier
// occurrence, per §3's definition of Cursor; a host's document layer is
// responsible for turning a raw text-offset click into that location.
type Request struct {
	CursorFile       string
	CursorLocation   loc.Location
	CursorName       string
	WorkspaceFolders []string
	RootFolder       string
	NewName          string
	// CheckOnly runs classification and resolution (enough to answer a
	// prepareRename-style preflight: is this cursor renameable, and what
	// range does it cover) without checking legality or planning edits.
	CheckOnly bool
	Progress  progress.Reporter
	Cancel    *progress.CancelToken
}

// Result is a successful Rename's output.
type Result struct {
	Edits  model.Edits
	Cursor model.Cursor
}

// Rename runs the five-step pipeline of §4.7.
func (d *Driver) Rename(ctx context.Context, req Request) (Result, *model.RenameError) {
	report := req.Progress
	if report == nil {
		report = progress.Noop
	}

	ix := index.New(d.Checker, d.Parser, d.FS, d.Paths)

	// Step 1: preload.
	if err := ix.Preload(ctx, req.CursorFile, req.RootFolder); err != nil {
		return Result{}, model.UnexpectedFailure(err.Error())
	}
	report(progress.StepPreload, 1)
	if req.Cancel.IsCancelled() {
		return Result{}, model.Cancelled()
	}

	// Step 2: classify.
	tq, err := d.parseForClassify(ctx, req.CursorFile)
	if err != nil {
		return Result{}, model.UnexpectedFailure(err.Error())
	}
	cursor, cerr := classify.Classify(req.CursorLocation, req.CursorName, ix.Info(), tq)
	if cerr != nil {
		if req.CheckOnly && cerr.Kind == model.ErrUnsupportedRename {
			return Result{Cursor: model.Cursor{Kind: model.KindUnknown}}, nil
		}
		return Result{}, cerr
	}
	report(progress.StepClassify, 1)
	if req.Cancel.IsCancelled() {
		return Result{}, model.Cancelled()
	}

	initial := initialDefines(cursor, ix.Info())

	// First resolve pass, against whatever is already loaded, to decide
	// function-locality (§4.4).
	result := resolve.Resolve(cursor, initial, req.NewName, ix.Info())

	// Step 3: full load, unless function-local.
	if !isFunctionLocal(cursor, result.Defs, ix.Info()) {
		if err := ix.FullLoad(ctx, req.WorkspaceFolders, cursor.Name, editplan.Escape(cursor.Name, d.Reserved)); err != nil {
			return Result{}, model.UnexpectedFailure(err.Error())
		}
		// The full load can surface defines (module names, fields, type
		// parameters) that weren't reachable from the preload-only index, so
		// the seed set has to be recomputed against the now-complete info.
		initial = initialDefines(cursor, ix.Info())
		result = resolve.Resolve(cursor, initial, req.NewName, ix.Info())
	}
	report(progress.StepMaybeFullLoad, 1)
	if req.Cancel.IsCancelled() {
		return Result{}, model.Cancelled()
	}

	// Step 4: resolve (already computed above; this step exists in the
	// progress sequence even when the full load was skipped).
	report(progress.StepResolve, 1)
	if req.Cancel.IsCancelled() {
		return Result{}, model.Cancelled()
	}

	if req.CheckOnly || req.NewName == "" || req.NewName == cursor.Name {
		return Result{Cursor: cursor}, nil
	}

	escaped := editplan.Escape(req.NewName, d.Reserved)

	// Step 5a: legality.
	reasons := legality.Check(cursor, result.Defs, req.NewName, escaped, ix.Info(), d.Validator)
	report(progress.StepCheck, 1)
	if req.Cancel.IsCancelled() {
		return Result{}, model.Cancelled()
	}
	if len(reasons) > 0 {
		return Result{}, model.IllegalRename(reasons)
	}

	// Step 5b: edit planning.
	nodes, err := d.collectNodes(ctx, append(append([]loc.Location{}, result.Defs...), result.Uses...))
	if err != nil {
		return Result{}, model.UnexpectedFailure(err.Error())
	}
	annotate := moduleRenameAnnotator(result.RenamesForFiles)
	edits, perr := editplan.Plan(result.Defs, result.Uses, nodes, escaped, annotate, result.RenamesForFiles)
	report(progress.StepPlan, 1)
	if perr != nil {
		return Result{}, perr
	}

	return Result{Edits: edits, Cursor: cursor}, nil
}

// RunMany runs several renames concurrently, bounding concurrency to
// limit (§5: "multiple renames may run in parallel on different worker
// threads"). A request's own error never aborts its siblings.
func RunMany(ctx context.Context, d *Driver, reqs []Request, limit int) ([]Result, []*model.RenameError) {
	results := make([]Result, len(reqs))
	errs := make([]*model.RenameError, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			r, err := d.Rename(gctx, req)
			results[i] = r
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// parseForClassify parses the cursor file and, if its tree implements
// classify.TreeQuerier, returns it; otherwise the Driver proceeds with
// the reduced candidate set Classify supports without tree access.
func (d *Driver) parseForClassify(ctx context.Context, file string) (classify.TreeQuerier, error) {
	tree, err := d.Parser.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	tq, _ := tree.(classify.TreeQuerier)
	return tq, nil
}

// collectNodes parses every distinct file among locs and, for trees
// implementing oracle.NodeLookup, resolves each location to its syntax
// node (§4.1, §4.6). A location whose file's tree has no NodeLookup
// capability, or whose NodeAt misses, is simply absent from the result;
// editplan.Plan turns that absence into UnsupportedRename.
func (d *Driver) collectNodes(ctx context.Context, locs []loc.Location) (map[loc.Location]locator.Node, error) {
	files := map[string]bool{}
	for _, l := range locs {
		files[l.File] = true
	}

	trees := map[string]oracle.NodeLookup{}
	for file := range files {
		tree, err := d.Parser.Parse(ctx, file)
		if err != nil {
			return nil, err
		}
		if nl, ok := tree.(oracle.NodeLookup); ok {
			trees[file] = nl
		}
	}

	nodes := map[loc.Location]locator.Node{}
	for _, l := range locs {
		nl, ok := trees[l.File]
		if !ok {
			continue
		}
		if n, ok := nl.NodeAt(l); ok {
			nodes[l] = n
		}
	}
	return nodes, nil
}

// moduleRenameAnnotator flags every edit that lands in a file whose
// module is itself being renamed on disk, so a host can surface a
// confirmation prompt before silently rewriting both the reference and
// the containing file's path. One ksuid identifies the whole batch: the
// annotation table collapses identical (label, description) entries
// under a single id regardless of how many edits carry it.
func moduleRenameAnnotator(renames []resolve.FileRename) editplan.Annotator {
	if len(renames) == 0 {
		return nil
	}
	affected := make(map[string]bool, len(renames))
	for _, r := range renames {
		affected[r.OldPath] = true
	}
	id := ksuid.New().String()
	annotation := model.ChangeAnnotation{
		Label:             "module rename",
		Description:       "this edit's containing module is also being renamed on disk",
		NeedsConfirmation: true,
	}
	return func(l loc.Location) (string, model.ChangeAnnotation, bool) {
		if !affected[l.File] {
			return "", model.ChangeAnnotation{}, false
		}
		return id, annotation, true
	}
}

// initialDefines computes the cursor's starting define set before
// overload expansion, per the branch implied by its classified kind.
func initialDefines(cursor model.Cursor, info *model.WorkspaceInfo) []loc.Location {
	switch cursor.Kind {
	case model.KindDef:
		return []loc.Location{cursor.Location}
	case model.KindUse:
		return info.GetDefs(cursor.Location)
	case model.KindModuleName:
		return filterDefsByRole(info, cursor.Name, model.RoleModuleName)
	case model.KindTypeParameter:
		return filterDefsByRole(info, cursor.Name, model.RoleTypeParameter)
	case model.KindExceptConstructor:
		return filterDefsByRole(info, cursor.Name, model.RoleConstructor)
	case model.KindCollectionField:
		return filterDefsByRole(info, cursor.Name, model.RoleCollectionField)
	case model.KindDataField, model.KindDataKeywordField, model.KindDataCommonKeywordField:
		return filterDefsByRole(info, cursor.Name, model.RoleConstructorField)
	case model.KindKeywordArgument:
		defs := info.GetDefs(cursor.Location)
		if len(defs) > 0 {
			return defs
		}
		return filterDefsByRole(info, cursor.Name, model.RoleKeywordParameter)
	default:
		return nil
	}
}

func filterDefsByRole(info *model.WorkspaceInfo, name string, role model.Role) []loc.Location {
	var result []loc.Location
	for _, d := range info.DefinesNamed(name) {
		if d.Role == role {
			result = append(result, d.DefinedAt)
		}
	}
	return result
}

// isFunctionLocal implements the §4.4 function-locality test: every
// resolved define must lie strictly inside some function-typed define,
// and moduleName/collectionField cursors are never function-local.
func isFunctionLocal(cursor model.Cursor, defs []loc.Location, info *model.WorkspaceInfo) bool {
	if cursor.Kind == model.KindModuleName || cursor.Kind == model.KindCollectionField {
		return false
	}
	if len(defs) == 0 {
		return false
	}
	for _, d := range defs {
		if !insideFunctionDefine(d, info) {
			return false
		}
	}
	return true
}

func insideFunctionDefine(d loc.Location, info *model.WorkspaceInfo) bool {
	for _, fn := range info.Defines {
		if fn.Role != model.RoleFunction {
			continue
		}
		if fn.Type == nil || fn.Type.Kind() != model.TypeFunction {
			continue
		}
		if fn.Scope.StrictlyContains(d) {
			return true
		}
	}
	return false
}
